package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MetaAbierta    = "ABIERTO"
	MetaFinalizada = "FINALIZADO"
)

// MetaUsuario tracks a seller's sales goal. Progress is accumulated at shift
// close from the shift's cash sales; the goal finalizes when MontoActual
// reaches MontoMeta.
type MetaUsuario struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	MontoMeta     decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	MontoActual   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'ABIERTO'"`
	Cumplida      bool            `gorm:"not null;default:false"`
	FechaInicio   time.Time       `gorm:"autoCreateTime"`
	FechaCumplida *time.Time

	Usuario *Usuario `gorm:"foreignKey:UsuarioID"`
}

func (MetaUsuario) TableName() string { return "metas_usuario" }
