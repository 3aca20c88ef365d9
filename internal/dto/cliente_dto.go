package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre     string  `json:"nombre" validate:"required,min=2,max=150"`
	Telefono   *string `json:"telefono"`
	DPI        *string `json:"dpi"`
	Direccion  *string `json:"direccion"`
	IPInternet *string `json:"ip_internet"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID         string  `json:"id"`
	Nombre     string  `json:"nombre"`
	Telefono   *string `json:"telefono"`
	DPI        *string `json:"dpi"`
	Direccion  *string `json:"direccion"`
	IPInternet *string `json:"ip_internet"`
}
