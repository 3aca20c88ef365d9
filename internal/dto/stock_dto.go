package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LineaEntregaRequest is one batch received in a supplier delivery. Exactly
// one of producto_id / empaque_id must be set.
type LineaEntregaRequest struct {
	ProductoID       *string         `json:"producto_id"       validate:"omitempty,uuid"`
	EmpaqueID        *string         `json:"empaque_id"        validate:"omitempty,uuid"`
	Cantidad         int             `json:"cantidad"          validate:"required,gt=0"`
	PrecioCosto      decimal.Decimal `json:"precio_costo"      validate:"min=0"`
	FechaVencimiento *string         `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

type EntregaStockRequest struct {
	ProveedorID string                `json:"proveedor_id" validate:"required,uuid"`
	SucursalID  string                `json:"sucursal_id"  validate:"required,uuid"`
	Lineas      []LineaEntregaRequest `json:"lineas"       validate:"required,min=1,dive"`
}

type EliminarStockRequest struct {
	StockID  string  `json:"stock_id" validate:"required,uuid"`
	Cantidad int     `json:"cantidad" validate:"required,gt=0"`
	Motivo   *string `json:"motivo"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockResponse struct {
	ID               string          `json:"id"`
	ProductoID       *string         `json:"producto_id"`
	EmpaqueID        *string         `json:"empaque_id"`
	SucursalID       string          `json:"sucursal_id"`
	Cantidad         int             `json:"cantidad"`
	CantidadInicial  int             `json:"cantidad_inicial"`
	PrecioCosto      decimal.Decimal `json:"precio_costo"`
	CostoTotal       decimal.Decimal `json:"costo_total"`
	FechaIngreso     string          `json:"fecha_ingreso"`
	FechaVencimiento *string         `json:"fecha_vencimiento"`
}

type EntregaStockResponse struct {
	ID           string          `json:"id"`
	ProveedorID  string          `json:"proveedor_id"`
	Proveedor    string          `json:"proveedor"`
	SucursalID   string          `json:"sucursal_id"`
	MontoTotal   decimal.Decimal `json:"monto_total"`
	Lotes        []StockResponse `json:"lotes"`
	FechaEntrega string          `json:"fecha_entrega"`
}

type VencimientoResponse struct {
	ID               string `json:"id"`
	StockID          string `json:"stock_id"`
	FechaVencimiento string `json:"fecha_vencimiento"`
	Descripcion      string `json:"descripcion"`
	Estado           string `json:"estado"`
}
