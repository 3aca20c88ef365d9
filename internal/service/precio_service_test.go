package service

import (
	"context"
	"testing"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type precioRepoFake struct {
	precios     map[uuid.UUID]*model.PrecioProducto
	solicitudes map[uuid.UUID]*model.SolicitudPrecio
}

func newPrecioRepoFake() *precioRepoFake {
	return &precioRepoFake{
		precios:     map[uuid.UUID]*model.PrecioProducto{},
		solicitudes: map[uuid.UUID]*model.SolicitudPrecio{},
	}
}

func (f *precioRepoFake) CreateTx(_ *gorm.DB, p *model.PrecioProducto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existente := range f.precios {
		if existente.ProductoID == p.ProductoID && existente.Orden == p.Orden {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *p
	f.precios[p.ID] = &cp
	return nil
}

func (f *precioRepoFake) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.PrecioProducto, error) {
	p, ok := f.precios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *precioRepoFake) ListPorProducto(_ context.Context, productoID uuid.UUID) ([]model.PrecioProducto, error) {
	var out []model.PrecioProducto
	for _, p := range f.precios {
		if p.ProductoID == productoID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *precioRepoFake) MaxOrdenTx(_ *gorm.DB, productoID uuid.UUID) (int, error) {
	max := 0
	for _, p := range f.precios {
		if p.ProductoID == productoID && p.Orden > max {
			max = p.Orden
		}
	}
	return max, nil
}

func (f *precioRepoFake) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	delete(f.precios, id)
	return nil
}

func (f *precioRepoFake) CreateSolicitud(_ context.Context, s *model.SolicitudPrecio) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	f.solicitudes[s.ID] = &cp
	return nil
}

func (f *precioRepoFake) FindSolicitudTx(_ *gorm.DB, id uuid.UUID) (*model.SolicitudPrecio, error) {
	s, ok := f.solicitudes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *precioRepoFake) UpdateSolicitudTx(_ *gorm.DB, s *model.SolicitudPrecio) error {
	cp := *s
	f.solicitudes[s.ID] = &cp
	return nil
}

func (f *precioRepoFake) DeleteSolicitudTx(_ *gorm.DB, id uuid.UUID) error {
	delete(f.solicitudes, id)
	return nil
}

func (f *precioRepoFake) ListSolicitudes(_ context.Context, estado string) ([]model.SolicitudPrecio, error) {
	var out []model.SolicitudPrecio
	for _, s := range f.solicitudes {
		if estado == "" || s.Estado == estado {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *precioRepoFake) DB() *gorm.DB { return nil }

type productoRepoFake struct {
	productos map[uuid.UUID]*model.Producto
}

func newProductoRepoFake(productos ...*model.Producto) *productoRepoFake {
	f := &productoRepoFake{productos: map[uuid.UUID]*model.Producto{}}
	for _, p := range productos {
		f.productos[p.ID] = p
	}
	return f
}

func (f *productoRepoFake) Create(_ context.Context, p *model.Producto) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.productos[p.ID] = p
	return nil
}

func (f *productoRepoFake) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := f.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *productoRepoFake) FindByCodigo(_ context.Context, _ string) (*model.Producto, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *productoRepoFake) List(_ context.Context, _ string, _, _ int) ([]model.Producto, int64, error) {
	return nil, 0, nil
}

func (f *productoRepoFake) Update(_ context.Context, p *model.Producto) error {
	f.productos[p.ID] = p
	return nil
}

func (f *productoRepoFake) SoftDelete(_ context.Context, id uuid.UUID) error {
	delete(f.productos, id)
	return nil
}

func (f *productoRepoFake) CreateEmpaque(_ context.Context, _ *model.Empaque) error { return nil }
func (f *productoRepoFake) FindEmpaqueByID(_ context.Context, _ uuid.UUID) (*model.Empaque, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *productoRepoFake) ListEmpaques(_ context.Context) ([]model.Empaque, error) { return nil, nil }
func (f *productoRepoFake) UpdateEmpaque(_ context.Context, _ *model.Empaque) error { return nil }
func (f *productoRepoFake) SoftDeleteEmpaque(_ context.Context, _ uuid.UUID) error  { return nil }

type notifRepoFake struct {
	adminIDs       []uuid.UUID
	notificaciones []*model.Notificacion
}

func (f *notifRepoFake) Create(_ context.Context, n *model.Notificacion) error {
	f.notificaciones = append(f.notificaciones, n)
	return nil
}

func (f *notifRepoFake) ListPorUsuario(_ context.Context, usuarioID uuid.UUID, soloNoLeidas bool) ([]model.Notificacion, error) {
	var out []model.Notificacion
	for _, n := range f.notificaciones {
		if n.ParaUsuarioID == usuarioID && (!soloNoLeidas || !n.Leida) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *notifRepoFake) MarcarLeida(_ context.Context, id, _ uuid.UUID) error {
	for _, n := range f.notificaciones {
		if n.ID == id {
			n.Leida = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *notifRepoFake) ListAdminIDs(_ context.Context) ([]uuid.UUID, error) {
	return f.adminIDs, nil
}

// notifierFake records every notification handed to it.
type notifierFake struct {
	enviadas []*model.Notificacion
}

func (f *notifierFake) Enviar(_ context.Context, n *model.Notificacion) error {
	f.enviadas = append(f.enviadas, n)
	return nil
}

func nuevoPrecioService(repo *precioRepoFake, productos *productoRepoFake) (PrecioService, *notifierFake) {
	notifier := &notifierFake{}
	notifRepo := &notifRepoFake{adminIDs: []uuid.UUID{uuid.New(), uuid.New()}}
	return NewPrecioService(repo, productos, notifRepo, notifier), notifier
}

func TestSolicitarNotificaAdmins(t *testing.T) {
	producto := &model.Producto{ID: uuid.New(), Nombre: "Queso fresco"}
	repo := newPrecioRepoFake()
	svc, notifier := nuevoPrecioService(repo, newProductoRepoFake(producto))

	vendedorID := uuid.New()
	resp, err := svc.Solicitar(context.Background(), vendedorID, dto.SolicitarPrecioRequest{
		ProductoID:       producto.ID.String(),
		PrecioSolicitado: decimal.NewFromFloat(18.50),
	})
	require.NoError(t, err)

	assert.Equal(t, model.SolicitudPendiente, resp.Estado)
	assert.Equal(t, "Queso fresco", resp.Producto)
	require.Len(t, repo.solicitudes, 1)
	assert.Len(t, notifier.enviadas, 2, "una notificación por admin activo")
	for _, n := range notifier.enviadas {
		assert.Equal(t, model.NotifSolicitudPrecio, n.Categoria)
		require.NotNil(t, n.DeUsuarioID)
		assert.Equal(t, vendedorID, *n.DeUsuarioID)
	}
}

func TestAprobarAsignaSiguienteOrden(t *testing.T) {
	producto := &model.Producto{ID: uuid.New(), Nombre: "Queso fresco"}
	repo := newPrecioRepoFake()
	adminID := uuid.New()

	// Standing prices occupy ranks 1..3; the special price must land on 4.
	for orden := 1; orden <= 3; orden++ {
		require.NoError(t, repo.CreateTx(nil, &model.PrecioProducto{
			ProductoID: producto.ID,
			Precio:     decimal.NewFromInt(int64(20 + orden)),
			Tipo:       model.TipoPrecioEstandar,
			Orden:      orden,
		}))
	}

	sol := &model.SolicitudPrecio{
		ProductoID:       producto.ID,
		PrecioSolicitado: decimal.NewFromFloat(15.75),
		SolicitadoPorID:  uuid.New(),
		Estado:           model.SolicitudPendiente,
	}
	require.NoError(t, repo.CreateSolicitud(context.Background(), sol))

	svc, _ := nuevoPrecioService(repo, newProductoRepoFake(producto))
	resp, err := svc.Aprobar(context.Background(), sol.ID, adminID)
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Precio.Orden)
	assert.Equal(t, model.TipoPrecioSolicitud, resp.Precio.Tipo)
	assert.True(t, resp.Precio.Precio.Equal(decimal.NewFromFloat(15.75)))

	// The request is consumed, not archived.
	assert.Empty(t, repo.solicitudes)
	assert.Len(t, repo.precios, 4)
}

func TestAprobarNotificaAlSolicitante(t *testing.T) {
	producto := &model.Producto{ID: uuid.New(), Nombre: "Queso fresco"}
	repo := newPrecioRepoFake()
	vendedorID := uuid.New()
	adminID := uuid.New()
	sol := &model.SolicitudPrecio{
		ProductoID:       producto.ID,
		PrecioSolicitado: decimal.NewFromFloat(15.75),
		SolicitadoPorID:  vendedorID,
		Estado:           model.SolicitudPendiente,
	}
	require.NoError(t, repo.CreateSolicitud(context.Background(), sol))

	svc, notifier := nuevoPrecioService(repo, newProductoRepoFake(producto))
	_, err := svc.Aprobar(context.Background(), sol.ID, adminID)
	require.NoError(t, err)

	require.Len(t, notifier.enviadas, 1)
	n := notifier.enviadas[0]
	assert.Equal(t, vendedorID, n.ParaUsuarioID)
	assert.Equal(t, model.NotifSolicitudPrecio, n.Categoria)
	require.NotNil(t, n.DeUsuarioID)
	assert.Equal(t, adminID, *n.DeUsuarioID)
}

func TestRechazarNotificaAlSolicitante(t *testing.T) {
	producto := &model.Producto{ID: uuid.New(), Nombre: "Queso fresco"}
	repo := newPrecioRepoFake()
	vendedorID := uuid.New()
	sol := &model.SolicitudPrecio{
		ProductoID:       producto.ID,
		PrecioSolicitado: decimal.NewFromInt(12),
		SolicitadoPorID:  vendedorID,
		Estado:           model.SolicitudPendiente,
	}
	require.NoError(t, repo.CreateSolicitud(context.Background(), sol))

	svc, notifier := nuevoPrecioService(repo, newProductoRepoFake(producto))
	require.NoError(t, svc.Rechazar(context.Background(), sol.ID, uuid.New()))

	require.Len(t, notifier.enviadas, 1)
	assert.Equal(t, vendedorID, notifier.enviadas[0].ParaUsuarioID)
}

func TestAprobarSolicitudYaRespondida(t *testing.T) {
	producto := &model.Producto{ID: uuid.New(), Nombre: "Queso fresco"}
	repo := newPrecioRepoFake()
	sol := &model.SolicitudPrecio{
		ProductoID:       producto.ID,
		PrecioSolicitado: decimal.NewFromInt(12),
		SolicitadoPorID:  uuid.New(),
		Estado:           model.SolicitudAprobada,
	}
	require.NoError(t, repo.CreateSolicitud(context.Background(), sol))

	svc, _ := nuevoPrecioService(repo, newProductoRepoFake(producto))
	_, err := svc.Aprobar(context.Background(), sol.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonAuthorizationNotPending))
	assert.Empty(t, repo.precios, "no debe crearse precio alguno")
}

func TestRechazarEliminaSolicitud(t *testing.T) {
	producto := &model.Producto{ID: uuid.New(), Nombre: "Queso fresco"}
	repo := newPrecioRepoFake()
	sol := &model.SolicitudPrecio{
		ProductoID:       producto.ID,
		PrecioSolicitado: decimal.NewFromInt(12),
		SolicitadoPorID:  uuid.New(),
		Estado:           model.SolicitudPendiente,
	}
	require.NoError(t, repo.CreateSolicitud(context.Background(), sol))

	svc, _ := nuevoPrecioService(repo, newProductoRepoFake(producto))
	require.NoError(t, svc.Rechazar(context.Background(), sol.ID, uuid.New()))
	assert.Empty(t, repo.solicitudes)
	assert.Empty(t, repo.precios)
}

func TestConsumirPrecioEspecialUnaSolaVez(t *testing.T) {
	productoID := uuid.New()
	repo := newPrecioRepoFake()
	especial := &model.PrecioProducto{
		ProductoID: productoID,
		Precio:     decimal.NewFromInt(9),
		Tipo:       model.TipoPrecioSolicitud,
		Orden:      2,
	}
	require.NoError(t, repo.CreateTx(nil, especial))

	svc, _ := nuevoPrecioService(repo, newProductoRepoFake())

	precio, err := svc.ConsumirPrecioTx(nil, especial.ID, productoID)
	require.NoError(t, err)
	assert.True(t, precio.Precio.Equal(decimal.NewFromInt(9)))

	// Second attempt: the price was deleted on first use.
	_, err = svc.ConsumirPrecioTx(nil, especial.ID, productoID)
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonPriceUnavailable))
}

func TestConsumirPrecioEstandarPermanece(t *testing.T) {
	productoID := uuid.New()
	repo := newPrecioRepoFake()
	estandar := &model.PrecioProducto{
		ProductoID: productoID,
		Precio:     decimal.NewFromInt(25),
		Tipo:       model.TipoPrecioEstandar,
		Orden:      1,
	}
	require.NoError(t, repo.CreateTx(nil, estandar))

	svc, _ := nuevoPrecioService(repo, newProductoRepoFake())

	for i := 0; i < 2; i++ {
		precio, err := svc.ConsumirPrecioTx(nil, estandar.ID, productoID)
		require.NoError(t, err)
		assert.Equal(t, model.TipoPrecioEstandar, precio.Tipo)
	}
	assert.Len(t, repo.precios, 1)
}

func TestConsumirPrecioDeOtroProducto(t *testing.T) {
	repo := newPrecioRepoFake()
	precio := &model.PrecioProducto{
		ProductoID: uuid.New(),
		Precio:     decimal.NewFromInt(25),
		Tipo:       model.TipoPrecioEstandar,
		Orden:      1,
	}
	require.NoError(t, repo.CreateTx(nil, precio))

	svc, _ := nuevoPrecioService(repo, newProductoRepoFake())

	_, err := svc.ConsumirPrecioTx(nil, precio.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonPriceUnavailable))
	assert.Len(t, repo.precios, 1, "un precio de otro producto no debe consumirse")
}
