package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	SucursalID string `json:"sucursal_id" validate:"required,uuid"`
	// SaldoInicial is optional: when omitted the opening balance is inherited
	// from the branch's last closed shift.
	SaldoInicial *decimal.Decimal `json:"saldo_inicial" validate:"omitempty,min=0"`
	Comentario   *string          `json:"comentario"`
}

type CerrarCajaRequest struct {
	SaldoFinal decimal.Decimal `json:"saldo_final" validate:"min=0"`
	Comentario *string         `json:"comentario"`
}

type DepositoRequest struct {
	SucursalID   string          `json:"sucursal_id"   validate:"required,uuid"`
	Monto        decimal.Decimal `json:"monto"         validate:"required,gt=0"`
	Banco        string          `json:"banco"         validate:"required,min=2"`
	NumeroBoleta string          `json:"numero_boleta" validate:"required,min=1"`
	Descripcion  *string         `json:"descripcion"`
}

type EgresoRequest struct {
	SucursalID  string          `json:"sucursal_id" validate:"required,uuid"`
	Monto       decimal.Decimal `json:"monto"       validate:"required,gt=0"`
	Descripcion string          `json:"descripcion" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RegistroCajaResponse struct {
	ID           string           `json:"id"`
	SucursalID   string           `json:"sucursal_id"`
	UsuarioID    string           `json:"usuario_id"`
	Estado       string           `json:"estado"`
	SaldoInicial decimal.Decimal  `json:"saldo_inicial"`
	SaldoFinal   *decimal.Decimal `json:"saldo_final"`
	Comentario   *string          `json:"comentario"`
	FechaInicio  string           `json:"fecha_inicio"`
	FechaCierre  *string          `json:"fecha_cierre"`
}

type MovimientoResponse struct {
	ID          string          `json:"id"`
	Tipo        string          `json:"tipo"` // venta | deposito | egreso
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion"`
	Fecha       string          `json:"fecha"`
}

// ResumenCajaResponse reconciles a closed shift: the theoretical balance is
// saldo inicial + ventas en efectivo − depositos − egresos, and diferencia is
// what the cashier declared minus that.
type ResumenCajaResponse struct {
	Registro        RegistroCajaResponse `json:"registro"`
	VentasEfectivo  decimal.Decimal      `json:"ventas_efectivo"`
	TotalDepositos  decimal.Decimal      `json:"total_depositos"`
	TotalEgresos    decimal.Decimal      `json:"total_egresos"`
	SaldoTeorico    decimal.Decimal      `json:"saldo_teorico"`
	Diferencia      *decimal.Decimal     `json:"diferencia"`
	Movimientos     []MovimientoResponse `json:"movimientos"`
	CantidadVentas  int                  `json:"cantidad_ventas"`
	VentasSinEnlace int                  `json:"ventas_sin_enlace"`
}

type SaldoSucursalResponse struct {
	SucursalID     string          `json:"sucursal_id"`
	SaldoAcumulado decimal.Decimal `json:"saldo_acumulado"`
	TotalIngresos  decimal.Decimal `json:"total_ingresos"`
	TotalEgresos   decimal.Decimal `json:"total_egresos"`
}
