package handler

import (
	"net/http"
	"strconv"
	"time"

	"gustito/backend/internal/apierror"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/middleware"
	"gustito/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AnalyticsHandler struct{ svc service.AnalyticsService }

func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// VentasSemanales godoc
// @Summary Serie diaria de ventas de los ultimos 7 dias
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param sucursal_id query string true "Sucursal"
// @Success 200 {object} dto.VentasSemanalesResponse
// @Router /v1/analytics/ventas-semanales [get]
func (h *AnalyticsHandler) VentasSemanales(c *gin.Context) {
	sucursalID, err := uuid.Parse(c.Query("sucursal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
		return
	}
	var hasta time.Time
	if v := c.Query("hasta"); v != "" {
		hasta, _ = time.Parse("2006-01-02", v)
	}
	resp, err := h.svc.VentasSemanales(c.Request.Context(), sucursalID, hasta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProductosTop returns the branch's best sellers by units.
func (h *AnalyticsHandler) ProductosTop(c *gin.Context) {
	sucursalID, err := uuid.Parse(c.Query("sucursal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
		return
	}
	var desde, hasta time.Time
	if v := c.Query("desde"); v != "" {
		desde, _ = time.Parse("2006-01-02", v)
	}
	if v := c.Query("hasta"); v != "" {
		hasta, _ = time.Parse("2006-01-02", v)
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	resp, err := h.svc.ProductosTop(c.Request.Context(), sucursalID, desde, hasta, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// CrearMeta opens a sales goal for a seller. Admin only.
func (h *AnalyticsHandler) CrearMeta(c *gin.Context) {
	var req dto.CrearMetaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearMeta(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarMetas returns the caller's goals unless an admin asks for another
// user's via ?usuario_id=.
func (h *AnalyticsHandler) ListarMetas(c *gin.Context) {
	usuarioID := middleware.UserID(c)
	if v := c.Query("usuario_id"); v != "" && middleware.GetClaims(c).Rol == middleware.RolAdmin {
		if id, err := uuid.Parse(v); err == nil {
			usuarioID = id
		}
	}
	resp, err := h.svc.ListMetas(c.Request.Context(), usuarioID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
