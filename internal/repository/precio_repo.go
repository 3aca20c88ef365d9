package repository

import (
	"context"

	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PrecioRepository interface {
	CreateTx(tx *gorm.DB, p *model.PrecioProducto) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PrecioProducto, error)
	ListPorProducto(ctx context.Context, productoID uuid.UUID) ([]model.PrecioProducto, error)
	// MaxOrdenTx reads MAX(orden) for the product inside the caller's
	// transaction; the unique (producto_id, orden) index rejects the loser
	// when two approvals race on the same rank.
	MaxOrdenTx(tx *gorm.DB, productoID uuid.UUID) (int, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	CreateSolicitud(ctx context.Context, s *model.SolicitudPrecio) error
	FindSolicitudTx(tx *gorm.DB, id uuid.UUID) (*model.SolicitudPrecio, error)
	UpdateSolicitudTx(tx *gorm.DB, s *model.SolicitudPrecio) error
	DeleteSolicitudTx(tx *gorm.DB, id uuid.UUID) error
	ListSolicitudes(ctx context.Context, estado string) ([]model.SolicitudPrecio, error)

	DB() *gorm.DB
}

type precioRepo struct{ db *gorm.DB }

func NewPrecioRepository(db *gorm.DB) PrecioRepository { return &precioRepo{db: db} }

func (r *precioRepo) DB() *gorm.DB { return r.db }

func (r *precioRepo) CreateTx(tx *gorm.DB, p *model.PrecioProducto) error {
	return tx.Create(p).Error
}

func (r *precioRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.PrecioProducto, error) {
	var p model.PrecioProducto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *precioRepo) ListPorProducto(ctx context.Context, productoID uuid.UUID) ([]model.PrecioProducto, error) {
	var precios []model.PrecioProducto
	err := r.db.WithContext(ctx).
		Where("producto_id = ?", productoID).
		Order("orden ASC").
		Find(&precios).Error
	return precios, err
}

func (r *precioRepo) MaxOrdenTx(tx *gorm.DB, productoID uuid.UUID) (int, error) {
	var max int
	err := tx.Model(&model.PrecioProducto{}).
		Select("COALESCE(MAX(orden), 0)").
		Where("producto_id = ?", productoID).
		Scan(&max).Error
	return max, err
}

func (r *precioRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.PrecioProducto{}, "id = ?", id).Error
}

func (r *precioRepo) CreateSolicitud(ctx context.Context, s *model.SolicitudPrecio) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *precioRepo) FindSolicitudTx(tx *gorm.DB, id uuid.UUID) (*model.SolicitudPrecio, error) {
	var s model.SolicitudPrecio
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *precioRepo) UpdateSolicitudTx(tx *gorm.DB, s *model.SolicitudPrecio) error {
	return tx.Save(s).Error
}

func (r *precioRepo) DeleteSolicitudTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.SolicitudPrecio{}, "id = ?", id).Error
}

func (r *precioRepo) ListSolicitudes(ctx context.Context, estado string) ([]model.SolicitudPrecio, error) {
	var sols []model.SolicitudPrecio
	q := r.db.WithContext(ctx).Preload("Producto").Order("fecha_solicitud DESC")
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Find(&sols).Error
	return sols, err
}
