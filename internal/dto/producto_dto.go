package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CodigoProducto string           `json:"codigo_producto" validate:"required,min=1,max=50"`
	Nombre         string           `json:"nombre"          validate:"required,min=2,max=150"`
	Descripcion    *string          `json:"descripcion"`
	PrecioInicial  *decimal.Decimal `json:"precio_inicial"  validate:"omitempty,gt=0"`
}

type ActualizarProductoRequest struct {
	Nombre      string  `json:"nombre"      validate:"omitempty,min=2,max=150"`
	Descripcion *string `json:"descripcion"`
}

type CrearEmpaqueRequest struct {
	CodigoProducto string          `json:"codigo_producto" validate:"required,min=1,max=50"`
	Nombre         string          `json:"nombre"          validate:"required,min=2,max=150"`
	Descripcion    *string         `json:"descripcion"`
	PrecioCosto    decimal.Decimal `json:"precio_costo"    validate:"min=0"`
	PrecioVenta    decimal.Decimal `json:"precio_venta"    validate:"required,gt=0"`
}

type CrearProveedorRequest struct {
	Nombre   string  `json:"nombre"   validate:"required,min=2,max=150"`
	Telefono *string `json:"telefono"`
	Correo   *string `json:"correo"   validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PrecioResponse struct {
	ID     string          `json:"id"`
	Precio decimal.Decimal `json:"precio"`
	Tipo   string          `json:"tipo"`
	Orden  int             `json:"orden"`
}

type ProductoResponse struct {
	ID             string           `json:"id"`
	CodigoProducto string           `json:"codigo_producto"`
	Nombre         string           `json:"nombre"`
	Descripcion    *string          `json:"descripcion"`
	Activo         bool             `json:"activo"`
	Precios        []PrecioResponse `json:"precios"`
	// StockDisponible is the live SUM(cantidad) across the branch's batches.
	StockDisponible *int `json:"stock_disponible,omitempty"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type EmpaqueResponse struct {
	ID             string          `json:"id"`
	CodigoProducto string          `json:"codigo_producto"`
	Nombre         string          `json:"nombre"`
	Descripcion    *string         `json:"descripcion"`
	PrecioCosto    decimal.Decimal `json:"precio_costo"`
	PrecioVenta    decimal.Decimal `json:"precio_venta"`
}
