package handler

import (
	"net/http"

	"gustito/backend/internal/model"
	"gustito/backend/internal/repository"

	"github.com/gin-gonic/gin"
)

// SucursalesHandler is thin enough to sit directly on the repository.
type SucursalesHandler struct{ repo repository.SucursalRepository }

func NewSucursalesHandler(repo repository.SucursalRepository) *SucursalesHandler {
	return &SucursalesHandler{repo: repo}
}

type sucursalRequest struct {
	Nombre    string  `json:"nombre" validate:"required,min=2,max=150"`
	Direccion *string `json:"direccion"`
	Telefono  *string `json:"telefono"`
	PBX       *string `json:"pbx"`
}

func (h *SucursalesHandler) Crear(c *gin.Context) {
	var req sucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sucursal := model.Sucursal{
		Nombre:    req.Nombre,
		Direccion: req.Direccion,
		Telefono:  req.Telefono,
		PBX:       req.PBX,
		Activo:    true,
	}
	if err := h.repo.Create(c.Request.Context(), &sucursal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sucursal)
}

func (h *SucursalesHandler) Obtener(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	sucursal, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sucursal)
}

func (h *SucursalesHandler) Listar(c *gin.Context) {
	sucursales, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sucursales})
}

func (h *SucursalesHandler) Actualizar(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req sucursalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sucursal, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	sucursal.Nombre = req.Nombre
	sucursal.Direccion = req.Direccion
	sucursal.Telefono = req.Telefono
	sucursal.PBX = req.PBX
	if err := h.repo.Update(c.Request.Context(), sucursal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sucursal)
}
