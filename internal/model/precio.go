package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de PrecioProducto.
// ESTANDAR: standing reference price, reusable across sales.
// CREADO_POR_SOLICITUD: one-time special price born from an approved
// SolicitudPrecio — consumed by deletion after exactly one sale.
const (
	TipoPrecioEstandar  = "ESTANDAR"
	TipoPrecioSolicitud = "CREADO_POR_SOLICITUD"
)

// PrecioProducto is one entry in a product's ordered price list.
// Orden is unique per producto, assigned MAX(orden)+1 inside the approving
// transaction — never an identity column, never reused, never negative.
type PrecioProducto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_precio_producto_orden"`
	Precio      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Tipo        string          `gorm:"type:varchar(30);not null;default:'ESTANDAR'"`
	Orden       int             `gorm:"not null;uniqueIndex:idx_precio_producto_orden"`
	Usado       bool            `gorm:"not null;default:false"`
	CreadoPorID *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (PrecioProducto) TableName() string { return "precios_producto" }

// Estados de SolicitudPrecio. An approved solicitud is deleted right after the
// special price is created, so APROBADO is only ever observed transiently.
const (
	SolicitudPendiente = "PENDIENTE"
	SolicitudAprobada  = "APROBADO"
)

// SolicitudPrecio is a pending request for a one-time special sale price.
type SolicitudPrecio struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	PrecioSolicitado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SolicitadoPorID  uuid.UUID       `gorm:"type:uuid;not null"`
	AprobadoPorID    *uuid.UUID      `gorm:"type:uuid"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	FechaSolicitud   time.Time       `gorm:"autoCreateTime"`
	FechaRespuesta   *time.Time

	Producto      *Producto `gorm:"foreignKey:ProductoID"`
	SolicitadoPor *Usuario  `gorm:"foreignKey:SolicitadoPorID"`
}

func (SolicitudPrecio) TableName() string { return "solicitudes_precio" }
