package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// LineaVentaRequest is one sale line. PrecioID selects the entry from the
// product's ordered price list; every line must reference a real price, the
// client never sends a free-form amount per line.
type LineaVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	PrecioID   string `json:"precio_id"   validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

type LineaEmpaqueRequest struct {
	EmpaqueID string `json:"empaque_id" validate:"required,uuid"`
	Cantidad  int    `json:"cantidad"   validate:"required,gt=0"`
}

// ClienteInlineRequest creates the customer in the same transaction as the
// sale when no cliente_id is provided.
type ClienteInlineRequest struct {
	Nombre     string  `json:"nombre" validate:"required,min=2"`
	Telefono   *string `json:"telefono"`
	DPI        *string `json:"dpi"`
	Direccion  *string `json:"direccion"`
	IPInternet *string `json:"ip_internet"`
}

type CrearVentaRequest struct {
	SucursalID string                `json:"sucursal_id" validate:"required,uuid"`
	ClienteID  *string               `json:"cliente_id"  validate:"omitempty,uuid"`
	Cliente    *ClienteInlineRequest `json:"cliente"`
	MetodoPago string                `json:"metodo_pago" validate:"required,oneof=CONTADO EFECTIVO TARJETA TRANSFERENCIA"`
	// Monto is the amount the client believes it owes. It is logged and
	// compared against the computed total, never persisted as the total.
	Monto    decimal.Decimal       `json:"monto"    validate:"min=0"`
	IMEI     *string               `json:"imei"`
	Lineas   []LineaVentaRequest   `json:"lineas"   validate:"omitempty,dive"`
	Empaques []LineaEmpaqueRequest `json:"empaques" validate:"omitempty,dive"`
	// CorreoTicket, when set, queues the PDF receipt for email delivery.
	CorreoTicket *string `json:"correo_ticket" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaVentaResponse struct {
	ProductoID  string          `json:"producto_id"`
	Producto    string          `json:"producto"`
	Cantidad    int             `json:"cantidad"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID             string               `json:"id"`
	SucursalID     string               `json:"sucursal_id"`
	UsuarioID      string               `json:"usuario_id"`
	ClienteID      *string              `json:"cliente_id"`
	RegistroCajaID *string              `json:"registro_caja_id"`
	TotalVenta     decimal.Decimal      `json:"total_venta"`
	MetodoPago     string               `json:"metodo_pago"`
	IMEI           *string              `json:"imei"`
	Lineas         []LineaVentaResponse `json:"lineas"`
	FechaVenta     string               `json:"fecha_venta"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
