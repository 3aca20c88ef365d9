package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sucursal is a physical sales location with its own stock, shifts and balance.
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Direccion *string
	Telefono  *string
	PBX       *string `gorm:"column:pbx"`
	Activo    bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Sucursal) TableName() string { return "sucursales" }

// SucursalSaldo is the running branch balance ledger, 1:1 with Sucursal.
// It is derived data: mutated exclusively inside the transaction of the
// movement that originates the change (venta, deposito, egreso), plus one
// privileged administrative reset. Never edited directly.
type SucursalSaldo struct {
	SucursalID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaldoAcumulado decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalIngresos  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalEgresos   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	UpdatedAt      time.Time

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
}

func (SucursalSaldo) TableName() string { return "sucursal_saldos" }
