package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotifSolicitudPrecio = "SOLICITUD_PRECIO"
	NotifCierreCaja      = "CIERRE_CAJA"
	NotifMetaCumplida    = "META_CUMPLIDA"
	NotifVencimiento     = "VENCIMIENTO"
)

// Notificacion is a persisted in-app notification; delivery fan-out happens
// over redis pub/sub on top of this record.
type Notificacion struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Mensaje       string     `gorm:"not null"`
	DeUsuarioID   *uuid.UUID `gorm:"type:uuid"`
	ParaUsuarioID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Categoria     string     `gorm:"type:varchar(30);not null"`
	ReferenciaID  *uuid.UUID `gorm:"type:uuid"`
	Leida         bool       `gorm:"not null;default:false"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

func (Notificacion) TableName() string { return "notificaciones" }
