package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearMetaRequest struct {
	UsuarioID string          `json:"usuario_id" validate:"required,uuid"`
	MontoMeta decimal.Decimal `json:"monto_meta" validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type VentaSemanalPunto struct {
	Fecha      string          `json:"fecha"` // YYYY-MM-DD
	TotalVenta decimal.Decimal `json:"total_venta"`
	Cantidad   int             `json:"cantidad"`
}

type VentasSemanalesResponse struct {
	SucursalID string              `json:"sucursal_id"`
	Desde      string              `json:"desde"`
	Hasta      string              `json:"hasta"`
	Puntos     []VentaSemanalPunto `json:"puntos"`
	Total      decimal.Decimal     `json:"total"`
}

type ProductoTopResponse struct {
	ProductoID string          `json:"producto_id"`
	Nombre     string          `json:"nombre"`
	Unidades   int             `json:"unidades"`
	Ingresos   decimal.Decimal `json:"ingresos"`
}

type MetaResponse struct {
	ID            string          `json:"id"`
	UsuarioID     string          `json:"usuario_id"`
	MontoMeta     decimal.Decimal `json:"monto_meta"`
	MontoActual   decimal.Decimal `json:"monto_actual"`
	Estado        string          `json:"estado"`
	Cumplida      bool            `json:"cumplida"`
	FechaInicio   string          `json:"fecha_inicio"`
	FechaCumplida *string         `json:"fecha_cumplida"`
}

type NotificacionResponse struct {
	ID           string  `json:"id"`
	Mensaje      string  `json:"mensaje"`
	Categoria    string  `json:"categoria"`
	ReferenciaID *string `json:"referencia_id"`
	Leida        bool    `json:"leida"`
	CreatedAt    string  `json:"created_at"`
}
