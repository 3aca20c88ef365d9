package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de RegistroCaja. There are no other states.
const (
	CajaAbierta = "ABIERTO"
	CajaCerrada = "CERRADO"
)

// RegistroCaja is one cash-register shift, owned by (sucursal, usuario).
// At most one ABIERTO shift may exist per (sucursal, usuario) — enforced at
// creation time inside the opening transaction, not by a pre-check.
type RegistroCaja struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID   uuid.UUID        `gorm:"type:uuid;not null;index:idx_caja_sucursal_usuario"`
	UsuarioID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_caja_sucursal_usuario"`
	Estado       string           `gorm:"type:varchar(20);not null;default:'ABIERTO'"`
	SaldoInicial decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	SaldoFinal   *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Comentario   *string
	FechaInicio  time.Time `gorm:"autoCreateTime"`
	FechaCierre  *time.Time

	Usuario   *Usuario   `gorm:"foreignKey:UsuarioID"`
	Sucursal  *Sucursal  `gorm:"foreignKey:SucursalID"`
	Ventas    []Venta    `gorm:"foreignKey:RegistroCajaID"`
	Depositos []Deposito `gorm:"foreignKey:RegistroCajaID"`
	Egresos   []Egreso   `gorm:"foreignKey:RegistroCajaID"`
}

func (RegistroCaja) TableName() string { return "registros_caja" }

// Deposito is a cash movement out of the register into a bank. It is created
// linked to the open shift when one exists, otherwise free-floating under the
// sucursal until a shift close claims it. Creation always debits the branch
// balance in the same transaction.
type Deposito struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID       uuid.UUID       `gorm:"type:uuid;not null"`
	RegistroCajaID  *uuid.UUID      `gorm:"type:uuid;index"`
	Monto           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Banco           string          `gorm:"not null"`
	NumeroBoleta    string          `gorm:"not null"`
	UsadoParaCierre bool            `gorm:"not null;default:false"`
	Descripcion     *string
	FechaDeposito   time.Time `gorm:"autoCreateTime"`

	Usuario  *Usuario  `gorm:"foreignKey:UsuarioID"`
	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
}

func (Deposito) TableName() string { return "depositos" }

// Egreso is a manual cash outflow (expense). Same linking and balance rules
// as Deposito.
type Egreso struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null"`
	RegistroCajaID *uuid.UUID      `gorm:"type:uuid;index"`
	Monto          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Descripcion    string          `gorm:"not null"`
	FechaEgreso    time.Time       `gorm:"autoCreateTime"`

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}

func (Egreso) TableName() string { return "egresos" }
