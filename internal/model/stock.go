package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is one discrete inventory batch, owned by a sucursal and keyed on
// exactly one of ProductoID / EmpaqueID. Batches are created by a stock
// delivery and mutated only through FIFO allocation; a batch drained to zero
// stays on record to preserve costing history.
// Invariant: 0 <= Cantidad <= CantidadInicial.
type Stock struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID       *uuid.UUID      `gorm:"type:uuid;index"`
	EmpaqueID        *uuid.UUID      `gorm:"type:uuid;index"`
	SucursalID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cantidad         int             `gorm:"not null"`
	CantidadInicial  int             `gorm:"not null"`
	PrecioCosto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoTotal       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FechaIngreso     time.Time       `gorm:"not null;index"`
	FechaVencimiento *time.Time      `gorm:"index"`
	EntregaStockID   *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt        time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Empaque  *Empaque  `gorm:"foreignKey:EmpaqueID"`
}

func (Stock) TableName() string { return "stocks" }

// EntregaStock is one supplier delivery that produced a set of Stock batches.
type EntregaStock struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	SucursalID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	RecibidoPorID uuid.UUID       `gorm:"type:uuid;not null"`
	MontoTotal    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FechaEntrega  time.Time       `gorm:"autoCreateTime"`

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
	Stocks    []Stock    `gorm:"foreignKey:EntregaStockID"`
}

func (EntregaStock) TableName() string { return "entregas_stock" }

// EliminacionStock is the audit record of a batch write-off. The batch row
// itself is deleted outright; this record is what remains.
type EliminacionStock struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID *uuid.UUID `gorm:"type:uuid;index"`
	EmpaqueID  *uuid.UUID `gorm:"type:uuid;index"`
	SucursalID uuid.UUID  `gorm:"type:uuid;not null;index"`
	UsuarioID  uuid.UUID  `gorm:"type:uuid;not null"`
	Motivo     string     `gorm:"not null;default:'Sin motivo especificado'"`
	FechaHora  time.Time  `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
	Empaque  *Empaque  `gorm:"foreignKey:EmpaqueID"`
	Usuario  *Usuario  `gorm:"foreignKey:UsuarioID"`
}

func (EliminacionStock) TableName() string { return "eliminaciones_stock" }

// Estados de Vencimiento.
const (
	VencimientoPendiente = "PENDIENTE"
	VencimientoResuelto  = "RESUELTO"
)

// Vencimiento flags a batch whose FechaVencimiento is near. The expiration
// sweep creates at most one per batch, which is what makes re-runs idempotent.
type Vencimiento struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StockID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	FechaVencimiento time.Time `gorm:"not null"`
	Descripcion      string    `gorm:"not null"`
	Estado           string    `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	CreatedAt        time.Time

	Stock *Stock `gorm:"foreignKey:StockID"`
}

func (Vencimiento) TableName() string { return "vencimientos" }
