package repository

import (
	"context"
	"time"

	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	Create(ctx context.Context, s *model.Stock) error
	CreateTx(tx *gorm.DB, s *model.Stock) error
	// FindByIDTx reads one batch locked FOR UPDATE so in-tx quantity math
	// never races a concurrent allocation.
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Stock, error)
	// FindLotesDisponiblesTx returns the non-empty batches for a product at a
	// branch, oldest entry first, locked FOR UPDATE so two concurrent sales
	// cannot drain the same batch.
	FindLotesDisponiblesTx(tx *gorm.DB, productoID, sucursalID uuid.UUID) ([]model.Stock, error)
	FindLotesEmpaqueTx(tx *gorm.DB, empaqueID, sucursalID uuid.UUID) ([]model.Stock, error)
	UpdateCantidadTx(tx *gorm.DB, id uuid.UUID, cantidad int) error
	ListPorSucursal(ctx context.Context, sucursalID uuid.UUID) ([]model.Stock, error)
	SumDisponible(ctx context.Context, productoID, sucursalID uuid.UUID) (int, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	CreateEntrega(ctx context.Context, tx *gorm.DB, e *model.EntregaStock) error
	FindEntregaByID(ctx context.Context, id uuid.UUID) (*model.EntregaStock, error)
	ListEntregas(ctx context.Context, sucursalID uuid.UUID) ([]model.EntregaStock, error)

	CreateEliminacion(ctx context.Context, tx *gorm.DB, e *model.EliminacionStock) error
	ListEliminaciones(ctx context.Context, sucursalID uuid.UUID) ([]model.EliminacionStock, error)

	FindVencidosSinRegistro(ctx context.Context, corte time.Time) ([]model.Stock, error)
	CreateVencimiento(ctx context.Context, v *model.Vencimiento) error
	ListVencimientos(ctx context.Context, estado string) ([]model.Vencimiento, error)
	UpdateVencimientoEstado(ctx context.Context, id uuid.UUID, estado string) error

	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) Create(ctx context.Context, s *model.Stock) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *stockRepo) CreateTx(tx *gorm.DB, s *model.Stock) error {
	return tx.Create(s).Error
}

func (r *stockRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Stock, error) {
	var s model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *stockRepo) FindLotesDisponiblesTx(tx *gorm.DB, productoID, sucursalID uuid.UUID) ([]model.Stock, error) {
	var lotes []model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("producto_id = ? AND sucursal_id = ? AND cantidad > 0", productoID, sucursalID).
		Order("fecha_ingreso ASC, id ASC").
		Find(&lotes).Error
	return lotes, err
}

func (r *stockRepo) FindLotesEmpaqueTx(tx *gorm.DB, empaqueID, sucursalID uuid.UUID) ([]model.Stock, error) {
	var lotes []model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("empaque_id = ? AND sucursal_id = ? AND cantidad > 0", empaqueID, sucursalID).
		Order("fecha_ingreso ASC, id ASC").
		Find(&lotes).Error
	return lotes, err
}

func (r *stockRepo) UpdateCantidadTx(tx *gorm.DB, id uuid.UUID, cantidad int) error {
	return tx.Model(&model.Stock{}).Where("id = ?", id).Update("cantidad", cantidad).Error
}

func (r *stockRepo) ListPorSucursal(ctx context.Context, sucursalID uuid.UUID) ([]model.Stock, error) {
	var lotes []model.Stock
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND cantidad > 0", sucursalID).
		Order("fecha_ingreso ASC").
		Find(&lotes).Error
	return lotes, err
}

func (r *stockRepo) SumDisponible(ctx context.Context, productoID, sucursalID uuid.UUID) (int, error) {
	var total int
	err := r.db.WithContext(ctx).Model(&model.Stock{}).
		Select("COALESCE(SUM(cantidad), 0)").
		Where("producto_id = ? AND sucursal_id = ?", productoID, sucursalID).
		Scan(&total).Error
	return total, err
}

func (r *stockRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&model.Stock{}, "id = ?", id).Error
}

func (r *stockRepo) CreateEntrega(ctx context.Context, tx *gorm.DB, e *model.EntregaStock) error {
	return tx.WithContext(ctx).Create(e).Error
}

func (r *stockRepo) FindEntregaByID(ctx context.Context, id uuid.UUID) (*model.EntregaStock, error) {
	var e model.EntregaStock
	err := r.db.WithContext(ctx).Preload("Proveedor").First(&e, "id = ?", id).Error
	return &e, err
}

func (r *stockRepo) ListEntregas(ctx context.Context, sucursalID uuid.UUID) ([]model.EntregaStock, error) {
	var entregas []model.EntregaStock
	q := r.db.WithContext(ctx).Preload("Proveedor").Order("fecha_entrega DESC")
	if sucursalID != uuid.Nil {
		q = q.Where("sucursal_id = ?", sucursalID)
	}
	err := q.Find(&entregas).Error
	return entregas, err
}

func (r *stockRepo) CreateEliminacion(ctx context.Context, tx *gorm.DB, e *model.EliminacionStock) error {
	return tx.WithContext(ctx).Create(e).Error
}

func (r *stockRepo) ListEliminaciones(ctx context.Context, sucursalID uuid.UUID) ([]model.EliminacionStock, error) {
	var elims []model.EliminacionStock
	q := r.db.WithContext(ctx).Order("fecha_hora DESC")
	if sucursalID != uuid.Nil {
		q = q.Where("sucursal_id = ?", sucursalID)
	}
	err := q.Find(&elims).Error
	return elims, err
}

// FindVencidosSinRegistro returns batches expiring on or before corte that
// still have units and no Vencimiento row yet. The NOT EXISTS makes the sweep
// idempotent.
func (r *stockRepo) FindVencidosSinRegistro(ctx context.Context, corte time.Time) ([]model.Stock, error) {
	var lotes []model.Stock
	err := r.db.WithContext(ctx).
		Where("fecha_vencimiento IS NOT NULL AND fecha_vencimiento <= ? AND cantidad > 0", corte).
		Where("NOT EXISTS (SELECT 1 FROM vencimientos v WHERE v.stock_id = stocks.id)").
		Find(&lotes).Error
	return lotes, err
}

func (r *stockRepo) CreateVencimiento(ctx context.Context, v *model.Vencimiento) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *stockRepo) ListVencimientos(ctx context.Context, estado string) ([]model.Vencimiento, error) {
	var vs []model.Vencimiento
	q := r.db.WithContext(ctx).Order("fecha_vencimiento ASC")
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	err := q.Find(&vs).Error
	return vs, err
}

func (r *stockRepo) UpdateVencimientoEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Vencimiento{}).
		Where("id = ?", id).Update("estado", estado).Error
}
