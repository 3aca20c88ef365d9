package handler

import (
	"net/http"

	"gustito/backend/internal/apierror"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/middleware"
	"gustito/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// RegistrarEntrega godoc
// @Summary Registra una entrega de proveedor como lotes de stock
// @Tags stock
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.EntregaStockRequest true "Entrega"
// @Success 201 {object} dto.EntregaStockResponse
// @Router /v1/stock/entregas [post]
func (h *StockHandler) RegistrarEntrega(c *gin.Context) {
	var req dto.EntregaStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarEntrega(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Eliminar writes off units from a batch, with an audit record.
func (h *StockHandler) Eliminar(c *gin.Context) {
	var req dto.EliminarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.EliminarStock(c.Request.Context(), middleware.UserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Listar returns the branch's live batches oldest-first.
func (h *StockHandler) Listar(c *gin.Context) {
	sucursalID, err := uuid.Parse(c.Query("sucursal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
		return
	}
	resp, err := h.svc.ListStock(c.Request.Context(), sucursalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Disponible returns SUM(cantidad) for one product in one branch.
func (h *StockHandler) Disponible(c *gin.Context) {
	productoID, err := uuid.Parse(c.Query("producto_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("producto_id inválido"))
		return
	}
	sucursalID, err := uuid.Parse(c.Query("sucursal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("sucursal_id inválido"))
		return
	}
	total, err := h.svc.Disponible(c.Request.Context(), productoID, sucursalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"producto_id": productoID, "sucursal_id": sucursalID, "disponible": total})
}

// ListarVencimientos lists expiration records, optionally by estado.
func (h *StockHandler) ListarVencimientos(c *gin.Context) {
	resp, err := h.svc.ListVencimientos(c.Request.Context(), c.Query("estado"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ResolverVencimiento marks an expiration record as handled.
func (h *StockHandler) ResolverVencimiento(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.ResolverVencimiento(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
