package service

import (
	"context"
	"time"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"
	"gustito/backend/internal/repository"

	"github.com/google/uuid"
)

type NotificacionService interface {
	List(ctx context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]dto.NotificacionResponse, error)
	MarcarLeida(ctx context.Context, id, usuarioID uuid.UUID) error
}

type notificacionService struct {
	repo repository.NotificacionRepository
}

func NewNotificacionService(repo repository.NotificacionRepository) NotificacionService {
	return &notificacionService{repo: repo}
}

func (s *notificacionService) List(ctx context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]dto.NotificacionResponse, error) {
	notifs, err := s.repo.ListPorUsuario(ctx, usuarioID, soloNoLeidas)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.NotificacionResponse, 0, len(notifs))
	for i := range notifs {
		out = append(out, notificacionToResponse(&notifs[i]))
	}
	return out, nil
}

func (s *notificacionService) MarcarLeida(ctx context.Context, id, usuarioID uuid.UUID) error {
	return domain.Classify(s.repo.MarcarLeida(ctx, id, usuarioID))
}

func notificacionToResponse(n *model.Notificacion) dto.NotificacionResponse {
	resp := dto.NotificacionResponse{
		ID:        n.ID.String(),
		Mensaje:   n.Mensaje,
		Categoria: n.Categoria,
		Leida:     n.Leida,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.ReferenciaID != nil {
		ref := n.ReferenciaID.String()
		resp.ReferenciaID = &ref
	}
	return resp
}
