package repository

import (
	"context"

	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SucursalRepository interface {
	Create(ctx context.Context, s *model.Sucursal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
	List(ctx context.Context) ([]model.Sucursal, error)
	Update(ctx context.Context, s *model.Sucursal) error

	FindSaldo(ctx context.Context, sucursalID uuid.UUID) (*model.SucursalSaldo, error)
	// ApplyIngresoTx and ApplyEgresoTx mutate the per-branch running balance.
	// Both lock the saldo row and upsert it if the branch has no row yet, so
	// the first movement of a new branch does not fail.
	ApplyIngresoTx(tx *gorm.DB, sucursalID uuid.UUID, monto decimal.Decimal) error
	ApplyEgresoTx(tx *gorm.DB, sucursalID uuid.UUID, monto decimal.Decimal) error
	ResetSaldo(ctx context.Context, sucursalID uuid.UUID) error
}

type sucursalRepo struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository { return &sucursalRepo{db: db} }

func (r *sucursalRepo) Create(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sucursalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *sucursalRepo) List(ctx context.Context) ([]model.Sucursal, error) {
	var sucs []model.Sucursal
	err := r.db.WithContext(ctx).Where("activo = true").Order("nombre ASC").Find(&sucs).Error
	return sucs, err
}

func (r *sucursalRepo) Update(ctx context.Context, s *model.Sucursal) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sucursalRepo) FindSaldo(ctx context.Context, sucursalID uuid.UUID) (*model.SucursalSaldo, error) {
	var saldo model.SucursalSaldo
	err := r.db.WithContext(ctx).First(&saldo, "sucursal_id = ?", sucursalID).Error
	return &saldo, err
}

func (r *sucursalRepo) lockSaldoTx(tx *gorm.DB, sucursalID uuid.UUID) (*model.SucursalSaldo, error) {
	var saldo model.SucursalSaldo
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&saldo, "sucursal_id = ?", sucursalID).Error
	if err == gorm.ErrRecordNotFound {
		saldo = model.SucursalSaldo{SucursalID: sucursalID}
		if err := tx.Create(&saldo).Error; err != nil {
			return nil, err
		}
		return &saldo, nil
	}
	return &saldo, err
}

func (r *sucursalRepo) ApplyIngresoTx(tx *gorm.DB, sucursalID uuid.UUID, monto decimal.Decimal) error {
	saldo, err := r.lockSaldoTx(tx, sucursalID)
	if err != nil {
		return err
	}
	saldo.SaldoAcumulado = saldo.SaldoAcumulado.Add(monto)
	saldo.TotalIngresos = saldo.TotalIngresos.Add(monto)
	return tx.Save(saldo).Error
}

func (r *sucursalRepo) ApplyEgresoTx(tx *gorm.DB, sucursalID uuid.UUID, monto decimal.Decimal) error {
	saldo, err := r.lockSaldoTx(tx, sucursalID)
	if err != nil {
		return err
	}
	saldo.SaldoAcumulado = saldo.SaldoAcumulado.Sub(monto)
	saldo.TotalEgresos = saldo.TotalEgresos.Add(monto)
	return tx.Save(saldo).Error
}

func (r *sucursalRepo) ResetSaldo(ctx context.Context, sucursalID uuid.UUID) error {
	zero := decimal.Zero
	return r.db.WithContext(ctx).Model(&model.SucursalSaldo{}).
		Where("sucursal_id = ?", sucursalID).
		Updates(map[string]interface{}{
			"saldo_acumulado": zero,
			"total_ingresos":  zero,
			"total_egresos":   zero,
		}).Error
}
