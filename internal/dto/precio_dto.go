package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SolicitarPrecioRequest struct {
	ProductoID       string          `json:"producto_id"       validate:"required,uuid"`
	PrecioSolicitado decimal.Decimal `json:"precio_solicitado" validate:"required,gt=0"`
}

type CrearPrecioRequest struct {
	ProductoID string          `json:"producto_id" validate:"required,uuid"`
	Precio     decimal.Decimal `json:"precio"      validate:"required,gt=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SolicitudPrecioResponse struct {
	ID               string          `json:"id"`
	ProductoID       string          `json:"producto_id"`
	Producto         string          `json:"producto"`
	PrecioSolicitado decimal.Decimal `json:"precio_solicitado"`
	SolicitadoPorID  string          `json:"solicitado_por_id"`
	Estado           string          `json:"estado"`
	FechaSolicitud   string          `json:"fecha_solicitud"`
}

// AprobacionResponse carries the one-time price minted by an approval. The
// price disappears from the product's list after its first (only) use.
type AprobacionResponse struct {
	SolicitudID string         `json:"solicitud_id"`
	Precio      PrecioResponse `json:"precio"`
}
