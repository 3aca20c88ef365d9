package handler

import (
	"net/http"
	"strconv"
	"time"

	"gustito/backend/internal/apierror"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/middleware"
	"gustito/backend/internal/repository"
	"gustito/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Crear godoc
// @Summary Registra una venta completa
// @Description Valida caja abierta (efectivo), consume precios por solicitud,
// @Description descuenta stock FIFO y acredita el saldo de la sucursal, todo
// @Description en una sola transaccion.
// @Tags ventas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearVentaRequest true "Venta"
// @Success 201 {object} dto.VentaResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/ventas [post]
func (h *VentasHandler) Crear(c *gin.Context) {
	var req dto.CrearVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearVenta(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtiene una venta con sus lineas y pago
// @Tags ventas
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de venta"
// @Success 200 {object} dto.VentaResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/ventas/{id} [get]
func (h *VentasHandler) Obtener(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.FindVenta(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar returns a filtered, paginated sale listing.
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter repository.VentaFilter
	filter.SucursalID, _ = uuid.Parse(c.Query("sucursal_id"))
	filter.UsuarioID, _ = uuid.Parse(c.Query("usuario_id"))
	filter.ClienteID, _ = uuid.Parse(c.Query("cliente_id"))
	if v := c.Query("desde"); v != "" {
		filter.Desde, _ = time.Parse("2006-01-02", v)
	}
	if v := c.Query("hasta"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			filter.Hasta = t.AddDate(0, 0, 1)
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "25"))

	resp, err := h.svc.ListVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarSinCaja returns the branch's sales still unattached to a shift
// (card / transfer sales made while no register was open).
func (h *VentasHandler) ListarSinCaja(c *gin.Context) {
	sucursalID, err := uuid.Parse(c.Query("sucursal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
		return
	}
	resp, err := h.svc.ListVentasSinCaja(c.Request.Context(), sucursalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Eliminar reverses a sale and debits the branch balance.
func (h *VentasHandler) Eliminar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarVenta(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
