package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is an optional buyer reference attached to a Venta.
// Sales may be anonymous; a cliente is created inline at sale time when the
// cashier captures at least nombre + telefono.
type Cliente struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre     string    `gorm:"index;not null"`
	Telefono   *string
	DPI        *string `gorm:"column:dpi"`
	Direccion  *string
	IPInternet *string `gorm:"column:ip_internet"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Cliente) TableName() string { return "clientes" }
