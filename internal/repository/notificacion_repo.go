package repository

import (
	"context"

	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificacionRepository interface {
	Create(ctx context.Context, n *model.Notificacion) error
	ListPorUsuario(ctx context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]model.Notificacion, error)
	MarcarLeida(ctx context.Context, id, usuarioID uuid.UUID) error
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

type notificacionRepo struct{ db *gorm.DB }

func NewNotificacionRepository(db *gorm.DB) NotificacionRepository {
	return &notificacionRepo{db: db}
}

func (r *notificacionRepo) Create(ctx context.Context, n *model.Notificacion) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificacionRepo) ListPorUsuario(ctx context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]model.Notificacion, error) {
	var notifs []model.Notificacion
	q := r.db.WithContext(ctx).
		Where("para_usuario_id = ?", usuarioID).
		Order("created_at DESC").
		Limit(100)
	if soloNoLeidas {
		q = q.Where("leida = false")
	}
	err := q.Find(&notifs).Error
	return notifs, err
}

func (r *notificacionRepo) MarcarLeida(ctx context.Context, id, usuarioID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Notificacion{}).
		Where("id = ? AND para_usuario_id = ?", id, usuarioID).
		Update("leida", true).Error
}

// ListAdminIDs feeds the fan-out of admin-facing notifications.
func (r *notificacionRepo) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("rol = ? AND activo = true", model.RolAdmin).
		Pluck("id", &ids).Error
	return ids, err
}
