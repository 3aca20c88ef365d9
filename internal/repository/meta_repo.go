package repository

import (
	"context"

	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MetaRepository interface {
	Create(ctx context.Context, m *model.MetaUsuario) error
	// FindActivaTx locks the user's current goal. Finalized goals keep
	// accumulating until a new one replaces them, so both states qualify.
	FindActivaTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.MetaUsuario, error)
	UpdateTx(tx *gorm.DB, m *model.MetaUsuario) error
	ListPorUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.MetaUsuario, error)
}

type metaRepo struct{ db *gorm.DB }

func NewMetaRepository(db *gorm.DB) MetaRepository { return &metaRepo{db: db} }

func (r *metaRepo) Create(ctx context.Context, m *model.MetaUsuario) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *metaRepo) FindActivaTx(tx *gorm.DB, usuarioID uuid.UUID) (*model.MetaUsuario, error) {
	var m model.MetaUsuario
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("usuario_id = ? AND estado IN ?", usuarioID,
			[]string{model.MetaAbierta, model.MetaFinalizada}).
		Order("fecha_inicio DESC").
		First(&m).Error
	return &m, err
}

func (r *metaRepo) UpdateTx(tx *gorm.DB, m *model.MetaUsuario) error {
	return tx.Save(m).Error
}

func (r *metaRepo) ListPorUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.MetaUsuario, error) {
	var metas []model.MetaUsuario
	err := r.db.WithContext(ctx).
		Where("usuario_id = ?", usuarioID).
		Order("fecha_inicio DESC").
		Find(&metas).Error
	return metas, err
}
