package repository

import (
	"context"

	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	CreateTx(tx *gorm.DB, r *model.RegistroCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RegistroCaja, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.RegistroCaja, error)
	// FindAbiertaTx locks the open shift row (FOR UPDATE) so concurrent
	// open/close attempts serialize on it.
	FindAbiertaTx(tx *gorm.DB, sucursalID, usuarioID uuid.UUID) (*model.RegistroCaja, error)
	FindAbierta(ctx context.Context, sucursalID, usuarioID uuid.UUID) (*model.RegistroCaja, error)
	FindUltimaCerrada(ctx context.Context, sucursalID uuid.UUID) (*model.RegistroCaja, error)
	UpdateTx(tx *gorm.DB, r *model.RegistroCaja) error
	List(ctx context.Context, sucursalID uuid.UUID, limit int) ([]model.RegistroCaja, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	CreateDeposito(ctx context.Context, tx *gorm.DB, d *model.Deposito) error
	CreateEgreso(ctx context.Context, tx *gorm.DB, e *model.Egreso) error
	ListDepositos(ctx context.Context, registroCajaID uuid.UUID) ([]model.Deposito, error)
	ListEgresos(ctx context.Context, registroCajaID uuid.UUID) ([]model.Egreso, error)
	// UnlinkMovimientosTx detaches sales, deposits and expenses from a shift
	// prior to its deletion so the records survive as shift-less movements.
	UnlinkMovimientosTx(tx *gorm.DB, registroCajaID uuid.UUID) error
	// ClaimMovimientosTx attaches the branch's floating deposits, egresos and
	// sales (those created when no shift was open) to the closing shift.
	ClaimMovimientosTx(tx *gorm.DB, sucursalID, registroCajaID uuid.UUID) error
	// SumVentasTx totals every sale linked to the shift, regardless of
	// payment method; goal advancement measures performance, not the drawer.
	SumVentasTx(tx *gorm.DB, registroCajaID uuid.UUID) (decimal.Decimal, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateTx(tx *gorm.DB, reg *model.RegistroCaja) error {
	return tx.Create(reg).Error
}

func (r *cajaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RegistroCaja, error) {
	var reg model.RegistroCaja
	err := r.db.WithContext(ctx).
		Preload("Ventas").Preload("Depositos").Preload("Egresos").
		First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *cajaRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.RegistroCaja, error) {
	var reg model.RegistroCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reg, "id = ?", id).Error
	return &reg, err
}

func (r *cajaRepo) FindAbiertaTx(tx *gorm.DB, sucursalID, usuarioID uuid.UUID) (*model.RegistroCaja, error) {
	var reg model.RegistroCaja
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sucursal_id = ? AND usuario_id = ? AND estado = ?", sucursalID, usuarioID, model.CajaAbierta).
		First(&reg).Error
	return &reg, err
}

func (r *cajaRepo) FindAbierta(ctx context.Context, sucursalID, usuarioID uuid.UUID) (*model.RegistroCaja, error) {
	var reg model.RegistroCaja
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND usuario_id = ? AND estado = ?", sucursalID, usuarioID, model.CajaAbierta).
		First(&reg).Error
	return &reg, err
}

func (r *cajaRepo) FindUltimaCerrada(ctx context.Context, sucursalID uuid.UUID) (*model.RegistroCaja, error) {
	var reg model.RegistroCaja
	err := r.db.WithContext(ctx).
		Where("sucursal_id = ? AND estado = ?", sucursalID, model.CajaCerrada).
		Order("fecha_cierre DESC").
		First(&reg).Error
	return &reg, err
}

func (r *cajaRepo) UpdateTx(tx *gorm.DB, reg *model.RegistroCaja) error {
	return tx.Save(reg).Error
}

func (r *cajaRepo) List(ctx context.Context, sucursalID uuid.UUID, limit int) ([]model.RegistroCaja, error) {
	var regs []model.RegistroCaja
	q := r.db.WithContext(ctx).Order("fecha_inicio DESC")
	if sucursalID != uuid.Nil {
		q = q.Where("sucursal_id = ?", sucursalID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&regs).Error
	return regs, err
}

func (r *cajaRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return tx.WithContext(ctx).Delete(&model.RegistroCaja{}, "id = ?", id).Error
}

func (r *cajaRepo) CreateDeposito(ctx context.Context, tx *gorm.DB, d *model.Deposito) error {
	return tx.WithContext(ctx).Create(d).Error
}

func (r *cajaRepo) CreateEgreso(ctx context.Context, tx *gorm.DB, e *model.Egreso) error {
	return tx.WithContext(ctx).Create(e).Error
}

func (r *cajaRepo) ListDepositos(ctx context.Context, registroCajaID uuid.UUID) ([]model.Deposito, error) {
	var deps []model.Deposito
	err := r.db.WithContext(ctx).
		Where("registro_caja_id = ?", registroCajaID).
		Order("fecha_deposito ASC").
		Find(&deps).Error
	return deps, err
}

func (r *cajaRepo) ListEgresos(ctx context.Context, registroCajaID uuid.UUID) ([]model.Egreso, error) {
	var egs []model.Egreso
	err := r.db.WithContext(ctx).
		Where("registro_caja_id = ?", registroCajaID).
		Order("fecha_egreso ASC").
		Find(&egs).Error
	return egs, err
}

func (r *cajaRepo) ClaimMovimientosTx(tx *gorm.DB, sucursalID, registroCajaID uuid.UUID) error {
	if err := tx.Model(&model.Deposito{}).
		Where("sucursal_id = ? AND registro_caja_id IS NULL", sucursalID).
		Updates(map[string]interface{}{
			"registro_caja_id":  registroCajaID,
			"usado_para_cierre": true,
		}).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.Egreso{}).
		Where("sucursal_id = ? AND registro_caja_id IS NULL", sucursalID).
		Update("registro_caja_id", registroCajaID).Error; err != nil {
		return err
	}
	return tx.Model(&model.Venta{}).
		Where("sucursal_id = ? AND registro_caja_id IS NULL", sucursalID).
		Update("registro_caja_id", registroCajaID).Error
}

func (r *cajaRepo) SumVentasTx(tx *gorm.DB, registroCajaID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&model.Venta{}).
		Select("COALESCE(SUM(total_venta), 0)").
		Where("registro_caja_id = ?", registroCajaID).
		Scan(&total).Error
	return total, err
}

func (r *cajaRepo) UnlinkMovimientosTx(tx *gorm.DB, registroCajaID uuid.UUID) error {
	if err := tx.Model(&model.Venta{}).
		Where("registro_caja_id = ?", registroCajaID).
		Update("registro_caja_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.Deposito{}).
		Where("registro_caja_id = ?", registroCajaID).
		Update("registro_caja_id", nil).Error; err != nil {
		return err
	}
	return tx.Model(&model.Egreso{}).
		Where("registro_caja_id = ?", registroCajaID).
		Update("registro_caja_id", nil).Error
}
