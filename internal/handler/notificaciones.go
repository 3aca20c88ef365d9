package handler

import (
	"net/http"

	"gustito/backend/internal/middleware"
	"gustito/backend/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificacionesHandler struct{ svc service.NotificacionService }

func NewNotificacionesHandler(svc service.NotificacionService) *NotificacionesHandler {
	return &NotificacionesHandler{svc: svc}
}

// Listar returns the caller's notifications, ?no_leidas=true for unread only.
func (h *NotificacionesHandler) Listar(c *gin.Context) {
	soloNoLeidas := c.Query("no_leidas") == "true"
	resp, err := h.svc.List(c.Request.Context(), middleware.UserID(c), soloNoLeidas)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// MarcarLeida marks one of the caller's notifications as read.
func (h *NotificacionesHandler) MarcarLeida(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.MarcarLeida(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
