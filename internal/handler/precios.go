package handler

import (
	"net/http"

	"gustito/backend/internal/dto"
	"gustito/backend/internal/middleware"
	"gustito/backend/internal/service"

	"github.com/gin-gonic/gin"
)

type PreciosHandler struct{ svc service.PrecioService }

func NewPreciosHandler(svc service.PrecioService) *PreciosHandler {
	return &PreciosHandler{svc: svc}
}

// Solicitar godoc
// @Summary Solicita autorizacion de un precio especial
// @Tags precios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.SolicitarPrecioRequest true "Solicitud"
// @Success 201 {object} dto.SolicitudPrecioResponse
// @Router /v1/precios/solicitudes [post]
func (h *PreciosHandler) Solicitar(c *gin.Context) {
	var req dto.SolicitarPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Solicitar(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Aprobar godoc
// @Summary Aprueba una solicitud y crea el precio de un solo uso
// @Tags precios
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de solicitud"
// @Success 200 {object} dto.AprobacionResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/precios/solicitudes/{id}/aprobar [post]
func (h *PreciosHandler) Aprobar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Aprobar(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PreciosHandler) Rechazar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Rechazar(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PreciosHandler) ListarPendientes(c *gin.Context) {
	resp, err := h.svc.ListPendientes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Crear adds a standing price at the end of the product's list.
func (h *PreciosHandler) Crear(c *gin.Context) {
	var req dto.CrearPrecioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearPrecio(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PreciosHandler) ListarPorProducto(c *gin.Context) {
	productoID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListPrecios(c.Request.Context(), productoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *PreciosHandler) Eliminar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarPrecio(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
