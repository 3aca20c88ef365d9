package service

import (
	"context"
	"testing"
	"time"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"
	"gustito/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ventaRepoFake struct {
	ventas  map[uuid.UUID]*model.Venta
	deleted []uuid.UUID
	diaRows []repository.VentaDiaRow
	topRows []repository.ProductoTopRow
}

func newVentaRepoFake() *ventaRepoFake {
	return &ventaRepoFake{ventas: map[uuid.UUID]*model.Venta{}}
}

func (f *ventaRepoFake) CreateTx(_ *gorm.DB, v *model.Venta) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	cp := *v
	f.ventas[v.ID] = &cp
	return nil
}

func (f *ventaRepoFake) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := f.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *ventaRepoFake) List(_ context.Context, filter repository.VentaFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range f.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (f *ventaRepoFake) ListSinCaja(_ context.Context, sucursalID uuid.UUID) ([]model.Venta, error) {
	var out []model.Venta
	for _, v := range f.ventas {
		if v.SucursalID == sucursalID && v.RegistroCajaID == nil {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *ventaRepoFake) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	delete(f.ventas, id)
	return nil
}

func (f *ventaRepoFake) VentasPorDia(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]repository.VentaDiaRow, error) {
	return f.diaRows, nil
}

func (f *ventaRepoFake) ProductosTop(_ context.Context, _ uuid.UUID, _, _ time.Time, _ int) ([]repository.ProductoTopRow, error) {
	return f.topRows, nil
}

func (f *ventaRepoFake) DB() *gorm.DB { return nil }

type clienteRepoFake struct {
	clientes map[uuid.UUID]*model.Cliente
}

func newClienteRepoFake() *clienteRepoFake {
	return &clienteRepoFake{clientes: map[uuid.UUID]*model.Cliente{}}
}

func (f *clienteRepoFake) Create(_ context.Context, c *model.Cliente) error {
	return f.CreateTx(nil, c)
}

func (f *clienteRepoFake) CreateTx(_ *gorm.DB, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.clientes[c.ID] = c
	return nil
}

func (f *clienteRepoFake) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := f.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (f *clienteRepoFake) List(_ context.Context, _ string) ([]model.Cliente, error) {
	return nil, nil
}

func (f *clienteRepoFake) Update(_ context.Context, c *model.Cliente) error { return nil }
func (f *clienteRepoFake) Delete(_ context.Context, _ uuid.UUID) error      { return nil }

// ventaFixture wires a full sale pipeline over in-memory fakes: one product
// with a standing price on rank 1 and a stocked batch.
type ventaFixture struct {
	svc        VentaService
	ventaRepo  *ventaRepoFake
	cajaRepo   *cajaRepoFake
	stockRepo  *stockRepoFake
	precioRepo *precioRepoFake
	sucursales *sucursalRepoFake
	clientes   *clienteRepoFake

	sucursalID uuid.UUID
	usuarioID  uuid.UUID
	productoID uuid.UUID
	precio     *model.PrecioProducto
}

func newVentaFixture(t *testing.T) *ventaFixture {
	t.Helper()
	f := &ventaFixture{
		ventaRepo:  newVentaRepoFake(),
		cajaRepo:   newCajaRepoFake(),
		stockRepo:  newStockRepoFake(),
		precioRepo: newPrecioRepoFake(),
		sucursales: &sucursalRepoFake{},
		clientes:   newClienteRepoFake(),
		sucursalID: uuid.New(),
		usuarioID:  uuid.New(),
		productoID: uuid.New(),
	}

	f.precio = &model.PrecioProducto{
		ProductoID: f.productoID,
		Precio:     decimal.NewFromInt(20),
		Tipo:       model.TipoPrecioEstandar,
		Orden:      1,
	}
	require.NoError(t, f.precioRepo.CreateTx(nil, f.precio))
	require.NoError(t, f.stockRepo.CreateTx(nil, &model.Stock{
		ProductoID:      &f.productoID,
		SucursalID:      f.sucursalID,
		Cantidad:        10,
		CantidadInicial: 10,
		PrecioCosto:     decimal.NewFromInt(12),
		FechaIngreso:    time.Now().AddDate(0, 0, -3),
	}))

	productos := newProductoRepoFake()
	stockSvc := NewStockService(f.stockRepo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})
	precioSvc, _ := nuevoPrecioService(f.precioRepo, productos)

	f.svc = NewVentaService(
		f.ventaRepo, f.cajaRepo, f.clientes, productos,
		f.sucursales, stockSvc, precioSvc, nil,
	)
	return f
}

func (f *ventaFixture) abrirCaja(t *testing.T) *model.RegistroCaja {
	t.Helper()
	registro := &model.RegistroCaja{
		SucursalID: f.sucursalID,
		UsuarioID:  f.usuarioID,
		Estado:     model.CajaAbierta,
	}
	require.NoError(t, f.cajaRepo.CreateTx(nil, registro))
	return registro
}

func TestCrearVentaEfectivoSinCaja(t *testing.T) {
	f := newVentaFixture(t)

	_, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonNoOpenShift))
	assert.Empty(t, f.ventaRepo.ventas)
	assert.Empty(t, f.sucursales.ingresos, "el saldo de sucursal no debe tocarse")
}

func TestCrearVentaEfectivoConCaja(t *testing.T) {
	f := newVentaFixture(t)
	registro := f.abrirCaja(t)

	resp, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 3},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalVenta.Equal(decimal.NewFromInt(60)))
	require.NotNil(t, resp.RegistroCajaID)
	assert.Equal(t, registro.ID.String(), *resp.RegistroCajaID)
	require.Len(t, resp.Lineas, 1)
	assert.True(t, resp.Lineas[0].Subtotal.Equal(decimal.NewFromInt(60)))

	// The batch drained by FIFO and the branch balance credited in-tx.
	assert.Equal(t, 7, f.stockRepo.lotes[0].Cantidad)
	require.Len(t, f.sucursales.ingresos, 1)
	assert.True(t, f.sucursales.ingresos[0].Equal(decimal.NewFromInt(60)))

	require.Len(t, f.ventaRepo.ventas, 1)
	for _, v := range f.ventaRepo.ventas {
		require.NotNil(t, v.Pago)
		assert.True(t, v.Pago.Monto.Equal(v.TotalVenta))
		assert.Equal(t, model.MetodoEfectivo, v.Pago.MetodoPago)
	}
}

func TestCrearVentaConsolidaLineasDuplicadas(t *testing.T) {
	f := newVentaFixture(t)
	f.abrirCaja(t)

	resp, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 4},
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 3},
		},
	})
	require.NoError(t, err)

	// Both lines survive in the sale, but the stock drains once with the sum.
	require.Len(t, resp.Lineas, 2)
	assert.True(t, resp.TotalVenta.Equal(decimal.NewFromInt(140)))
	assert.Equal(t, 3, f.stockRepo.lotes[0].Cantidad)
}

func TestCrearVentaLineasDuplicadasExcedenStock(t *testing.T) {
	f := newVentaFixture(t)
	f.abrirCaja(t)

	// 6 + 6 = 12 sobre un lote de 10: la suma consolidada se valida antes de
	// tocar cualquier lote.
	_, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 6},
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 6},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonInsufficientStock))
	assert.Empty(t, f.stockRepo.updates)
	assert.Empty(t, f.ventaRepo.ventas)
}

func TestCrearVentaTarjetaQuedaFlotante(t *testing.T) {
	f := newVentaFixture(t)

	resp, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoTarjeta,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 2},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.RegistroCajaID, "venta con tarjeta sin caja queda flotante")

	flotantes, err := f.svc.ListVentasSinCaja(context.Background(), f.sucursalID)
	require.NoError(t, err)
	require.Len(t, flotantes, 1)
}

func TestCrearVentaTotalIgnoraMontoDelCliente(t *testing.T) {
	f := newVentaFixture(t)
	f.abrirCaja(t)

	// The client claims Q1; the engine recomputes Q40 from the price list.
	resp, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Monto:      decimal.NewFromInt(1),
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 2},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalVenta.Equal(decimal.NewFromInt(40)))
}

func TestCrearVentaConsumePrecioEspecial(t *testing.T) {
	f := newVentaFixture(t)
	f.abrirCaja(t)

	especial := &model.PrecioProducto{
		ProductoID: f.productoID,
		Precio:     decimal.NewFromInt(15),
		Tipo:       model.TipoPrecioSolicitud,
		Orden:      2,
	}
	require.NoError(t, f.precioRepo.CreateTx(nil, especial))

	resp, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: especial.ID.String(), Cantidad: 1},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.TotalVenta.Equal(decimal.NewFromInt(15)))

	// The one-time price is gone; a second sale against it must fail.
	_, err = f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: especial.ID.String(), Cantidad: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonPriceUnavailable))
	assert.Len(t, f.ventaRepo.ventas, 1)
}

func TestCrearVentaStockInsuficiente(t *testing.T) {
	f := newVentaFixture(t)
	f.abrirCaja(t)

	_, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 11},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonInsufficientStock))
	assert.Empty(t, f.ventaRepo.ventas)
	assert.Empty(t, f.sucursales.ingresos)
}

func TestCrearVentaSinLineas(t *testing.T) {
	f := newVentaFixture(t)
	f.abrirCaja(t)

	_, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestCrearVentaClienteInline(t *testing.T) {
	f := newVentaFixture(t)
	f.abrirCaja(t)

	tel := "5555-1234"
	resp, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Cliente:    &dto.ClienteInlineRequest{Nombre: "María López", Telefono: &tel},
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 1},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.ClienteID)
	require.Len(t, f.clientes.clientes, 1)
	for _, c := range f.clientes.clientes {
		assert.Equal(t, "María López", c.Nombre)
		assert.Equal(t, c.ID.String(), *resp.ClienteID)
	}
}

func TestEliminarVentaDebitaSaldo(t *testing.T) {
	f := newVentaFixture(t)
	f.abrirCaja(t)

	resp, err := f.svc.CrearVenta(context.Background(), f.usuarioID, dto.CrearVentaRequest{
		SucursalID: f.sucursalID.String(),
		MetodoPago: model.MetodoEfectivo,
		Lineas: []dto.LineaVentaRequest{
			{ProductoID: f.productoID.String(), PrecioID: f.precio.ID.String(), Cantidad: 2},
		},
	})
	require.NoError(t, err)

	ventaID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.EliminarVenta(context.Background(), ventaID))

	assert.Empty(t, f.ventaRepo.ventas)
	require.Len(t, f.sucursales.egresos, 1)
	assert.True(t, f.sucursales.egresos[0].Equal(decimal.NewFromInt(40)))
}

func TestEliminarVentaInexistente(t *testing.T) {
	f := newVentaFixture(t)

	err := f.svc.EliminarVenta(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
