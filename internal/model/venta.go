package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Métodos de pago. CONTADO and EFECTIVO are cash-equivalent and require an
// open shift; TARJETA and TRANSFERENCIA are bank-equivalent — the shift is
// optional and the sale may be created shift-less.
const (
	MetodoContado       = "CONTADO"
	MetodoEfectivo      = "EFECTIVO"
	MetodoTarjeta       = "TARJETA"
	MetodoTransferencia = "TRANSFERENCIA"
)

// EsPagoExentoDeCaja reports whether the payment method may live without an
// open shift.
func EsPagoExentoDeCaja(metodo string) bool {
	return metodo == MetodoTarjeta || metodo == MetodoTransferencia
}

// Venta is a completed sale. TotalVenta is always the engine-computed sum of
// line totals; the client-submitted amount is never persisted.
type Venta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClienteID      *uuid.UUID      `gorm:"type:uuid;index"`
	RegistroCajaID *uuid.UUID      `gorm:"type:uuid;index"`
	TotalVenta     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MetodoPago     string          `gorm:"type:varchar(20);not null"`
	IMEI           *string         `gorm:"column:imei"`
	FechaVenta     time.Time       `gorm:"autoCreateTime;index"`

	Cliente   *Cliente        `gorm:"foreignKey:ClienteID"`
	Productos []VentaProducto `gorm:"foreignKey:VentaID"`
	Empaques  []VentaEmpaque  `gorm:"foreignKey:VentaID"`
	Pago      *Pago           `gorm:"foreignKey:VentaID"`
	Usuario   *Usuario        `gorm:"foreignKey:UsuarioID"`
	Sucursal  *Sucursal       `gorm:"foreignKey:SucursalID"`
}

func (Venta) TableName() string { return "ventas" }

// VentaProducto is one consolidated sale line for a product.
type VentaProducto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID  uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad    int             `gorm:"not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaProducto) TableName() string { return "venta_productos" }

// VentaEmpaque is one sale line for a bundle.
type VentaEmpaque struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	EmpaqueID   uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad    int             `gorm:"not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Empaque *Empaque `gorm:"foreignKey:EmpaqueID"`
}

func (VentaEmpaque) TableName() string { return "venta_empaques" }

// Pago is the payment record bound 1:1 to its Venta.
type Pago struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID    uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	MetodoPago string          `gorm:"type:varchar(20);not null"`
	Monto      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FechaPago  time.Time       `gorm:"autoCreateTime"`
}

func (Pago) TableName() string { return "pagos" }
