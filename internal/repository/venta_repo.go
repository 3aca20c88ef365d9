package repository

import (
	"context"
	"time"

	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VentaFilter narrows sale listings; zero values mean "no filter".
type VentaFilter struct {
	SucursalID uuid.UUID
	UsuarioID  uuid.UUID
	ClienteID  uuid.UUID
	Desde      time.Time
	Hasta      time.Time
	Page       int
	Limit      int
}

// VentaDiaRow is one day's aggregate for the weekly sales chart.
type VentaDiaRow struct {
	Dia      time.Time
	Total    decimal.Decimal
	Cantidad int
}

// ProductoTopRow aggregates units and revenue per product.
type ProductoTopRow struct {
	ProductoID uuid.UUID
	Nombre     string
	Unidades   int
	Ingresos   decimal.Decimal
}

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error)
	ListSinCaja(ctx context.Context, sucursalID uuid.UUID) ([]model.Venta, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	VentasPorDia(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]VentaDiaRow, error)
	ProductosTop(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time, limit int) ([]ProductoTopRow, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Productos.Producto").Preload("Empaques.Empaque").
		Preload("Pago").Preload("Cliente").Preload("Usuario").
		First(&v, "id = ?", id).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, filter VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.SucursalID != uuid.Nil {
		q = q.Where("sucursal_id = ?", filter.SucursalID)
	}
	if filter.UsuarioID != uuid.Nil {
		q = q.Where("usuario_id = ?", filter.UsuarioID)
	}
	if filter.ClienteID != uuid.Nil {
		q = q.Where("cliente_id = ?", filter.ClienteID)
	}
	if !filter.Desde.IsZero() {
		q = q.Where("fecha_venta >= ?", filter.Desde)
	}
	if !filter.Hasta.IsZero() {
		q = q.Where("fecha_venta < ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 25
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	err := q.Preload("Productos.Producto").Preload("Empaques.Empaque").
		Preload("Pago").Preload("Cliente").
		Order("fecha_venta DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&ventas).Error
	return ventas, total, err
}

// ListSinCaja returns cashless (bank-equivalent) sales never attached to a
// shift, so a later close can claim them for the day's accounting.
func (r *ventaRepo) ListSinCaja(ctx context.Context, sucursalID uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND registro_caja_id IS NULL", sucursalID).
		Preload("Pago").Preload("Cliente").
		Order("fecha_venta DESC").
		Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) VentasPorDia(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time) ([]VentaDiaRow, error) {
	var rows []VentaDiaRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT date_trunc('day', fecha_venta) AS dia,
		       COALESCE(SUM(total_venta), 0)  AS total,
		       COUNT(*)                       AS cantidad
		FROM ventas
		WHERE sucursal_id = ? AND fecha_venta >= ? AND fecha_venta < ?
		GROUP BY dia
		ORDER BY dia ASC`, sucursalID, desde, hasta).
		Scan(&rows).Error
	return rows, err
}

func (r *ventaRepo) ProductosTop(ctx context.Context, sucursalID uuid.UUID, desde, hasta time.Time, limit int) ([]ProductoTopRow, error) {
	var rows []ProductoTopRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT vp.producto_id,
		       p.nombre,
		       SUM(vp.cantidad)                          AS unidades,
		       COALESCE(SUM(vp.precio_venta * vp.cantidad), 0) AS ingresos
		FROM venta_productos vp
		JOIN ventas v   ON v.id = vp.venta_id
		JOIN productos p ON p.id = vp.producto_id
		WHERE v.sucursal_id = ? AND v.fecha_venta >= ? AND v.fecha_venta < ?
		GROUP BY vp.producto_id, p.nombre
		ORDER BY unidades DESC
		LIMIT ?`, sucursalID, desde, hasta, limit).
		Scan(&rows).Error
	return rows, err
}

func (r *ventaRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if err := tx.WithContext(ctx).Delete(&model.VentaProducto{}, "venta_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&model.VentaEmpaque{}, "venta_id = ?", id).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&model.Pago{}, "venta_id = ?", id).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&model.Venta{}, "id = ?", id).Error
}
