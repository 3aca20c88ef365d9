package service

import (
	"context"
	"testing"
	"time"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stockRepoFake keeps batches in memory. DB() returns nil so runTx executes
// the body without a real transaction.
type stockRepoFake struct {
	lotes          []model.Stock
	updates        map[uuid.UUID]int
	deleted        []uuid.UUID
	entregas       []*model.EntregaStock
	eliminaciones  []*model.EliminacionStock
	vencidos       []model.Stock
	vencimientos   []*model.Vencimiento
	failVencimWith error

	// drainOnLock drains units from a batch the first time it is read under
	// lock, simulating a sale that committed before the lock was acquired.
	drainOnLock map[uuid.UUID]int
}

func newStockRepoFake(lotes ...model.Stock) *stockRepoFake {
	return &stockRepoFake{lotes: lotes, updates: map[uuid.UUID]int{}}
}

func (f *stockRepoFake) Create(_ context.Context, s *model.Stock) error { return f.CreateTx(nil, s) }

func (f *stockRepoFake) CreateTx(_ *gorm.DB, s *model.Stock) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	f.lotes = append(f.lotes, *s)
	return nil
}

func (f *stockRepoFake) FindByID(_ context.Context, id uuid.UUID) (*model.Stock, error) {
	for i := range f.lotes {
		if f.lotes[i].ID == id {
			l := f.lotes[i]
			return &l, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *stockRepoFake) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Stock, error) {
	if n, ok := f.drainOnLock[id]; ok {
		delete(f.drainOnLock, id)
		for i := range f.lotes {
			if f.lotes[i].ID == id {
				f.lotes[i].Cantidad -= n
			}
		}
	}
	return f.FindByID(context.Background(), id)
}

func (f *stockRepoFake) FindLotesDisponiblesTx(_ *gorm.DB, productoID, sucursalID uuid.UUID) ([]model.Stock, error) {
	var out []model.Stock
	for _, l := range f.lotes {
		if l.ProductoID != nil && *l.ProductoID == productoID && l.SucursalID == sucursalID && l.Cantidad > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *stockRepoFake) FindLotesEmpaqueTx(_ *gorm.DB, empaqueID, sucursalID uuid.UUID) ([]model.Stock, error) {
	var out []model.Stock
	for _, l := range f.lotes {
		if l.EmpaqueID != nil && *l.EmpaqueID == empaqueID && l.SucursalID == sucursalID && l.Cantidad > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *stockRepoFake) UpdateCantidadTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	f.updates[id] = cantidad
	for i := range f.lotes {
		if f.lotes[i].ID == id {
			f.lotes[i].Cantidad = cantidad
		}
	}
	return nil
}

func (f *stockRepoFake) ListPorSucursal(_ context.Context, sucursalID uuid.UUID) ([]model.Stock, error) {
	var out []model.Stock
	for _, l := range f.lotes {
		if l.SucursalID == sucursalID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *stockRepoFake) SumDisponible(_ context.Context, productoID, sucursalID uuid.UUID) (int, error) {
	total := 0
	for _, l := range f.lotes {
		if l.ProductoID != nil && *l.ProductoID == productoID && l.SucursalID == sucursalID {
			total += l.Cantidad
		}
	}
	return total, nil
}

func (f *stockRepoFake) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	for i := range f.lotes {
		if f.lotes[i].ID == id {
			f.lotes = append(f.lotes[:i], f.lotes[i+1:]...)
			break
		}
	}
	return nil
}

func (f *stockRepoFake) CreateEntrega(_ context.Context, _ *gorm.DB, e *model.EntregaStock) error {
	e.ID = uuid.New()
	f.entregas = append(f.entregas, e)
	return nil
}

func (f *stockRepoFake) FindEntregaByID(_ context.Context, id uuid.UUID) (*model.EntregaStock, error) {
	for _, e := range f.entregas {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *stockRepoFake) ListEntregas(_ context.Context, _ uuid.UUID) ([]model.EntregaStock, error) {
	var out []model.EntregaStock
	for _, e := range f.entregas {
		out = append(out, *e)
	}
	return out, nil
}

func (f *stockRepoFake) CreateEliminacion(_ context.Context, _ *gorm.DB, e *model.EliminacionStock) error {
	f.eliminaciones = append(f.eliminaciones, e)
	return nil
}

func (f *stockRepoFake) ListEliminaciones(_ context.Context, _ uuid.UUID) ([]model.EliminacionStock, error) {
	return nil, nil
}

func (f *stockRepoFake) FindVencidosSinRegistro(_ context.Context, _ time.Time) ([]model.Stock, error) {
	return f.vencidos, nil
}

func (f *stockRepoFake) CreateVencimiento(_ context.Context, v *model.Vencimiento) error {
	if f.failVencimWith != nil {
		err := f.failVencimWith
		f.failVencimWith = nil
		return err
	}
	f.vencimientos = append(f.vencimientos, v)
	return nil
}

func (f *stockRepoFake) ListVencimientos(_ context.Context, estado string) ([]model.Vencimiento, error) {
	var out []model.Vencimiento
	for _, v := range f.vencimientos {
		if estado == "" || v.Estado == estado {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *stockRepoFake) UpdateVencimientoEstado(_ context.Context, id uuid.UUID, estado string) error {
	for _, v := range f.vencimientos {
		if v.ID == id {
			v.Estado = estado
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *stockRepoFake) DB() *gorm.DB { return nil }

type proveedorRepoFake struct {
	proveedores map[uuid.UUID]*model.Proveedor
}

func (f *proveedorRepoFake) Create(_ context.Context, p *model.Proveedor) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.proveedores[p.ID] = p
	return nil
}

func (f *proveedorRepoFake) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := f.proveedores[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (f *proveedorRepoFake) List(_ context.Context) ([]model.Proveedor, error) { return nil, nil }
func (f *proveedorRepoFake) Update(_ context.Context, _ *model.Proveedor) error {
	return nil
}
func (f *proveedorRepoFake) SoftDelete(_ context.Context, _ uuid.UUID) error { return nil }

func lote(productoID, sucursalID uuid.UUID, cantidad int, ingreso time.Time) model.Stock {
	return model.Stock{
		ID:              uuid.New(),
		ProductoID:      &productoID,
		SucursalID:      sucursalID,
		Cantidad:        cantidad,
		CantidadInicial: cantidad,
		PrecioCosto:     decimal.NewFromInt(10),
		FechaIngreso:    ingreso,
	}
}

func TestAllocateProductoDrainsOldestFirst(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	viejo := lote(productoID, sucursalID, 5, base)
	medio := lote(productoID, sucursalID, 4, base.Add(24*time.Hour))
	nuevo := lote(productoID, sucursalID, 10, base.Add(48*time.Hour))

	repo := newStockRepoFake(viejo, medio, nuevo)
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	plan, err := svc.AllocateProductoTx(nil, productoID, sucursalID, 7)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, viejo.ID, plan[0].StockID)
	assert.Equal(t, 5, plan[0].Cantidad)
	assert.Equal(t, medio.ID, plan[1].StockID)
	assert.Equal(t, 2, plan[1].Cantidad)

	assert.Equal(t, 0, repo.updates[viejo.ID])
	assert.Equal(t, 2, repo.updates[medio.ID])
	_, touched := repo.updates[nuevo.ID]
	assert.False(t, touched, "el lote más nuevo no debe ser tocado")
}

func TestAllocateProductoExacto(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	l := lote(productoID, sucursalID, 6, time.Now())

	repo := newStockRepoFake(l)
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	plan, err := svc.AllocateProductoTx(nil, productoID, sucursalID, 6)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 6, plan[0].Cantidad)
	assert.Equal(t, 0, repo.updates[l.ID])
}

func TestAllocateProductoInsuficiente(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	repo := newStockRepoFake(
		lote(productoID, sucursalID, 2, time.Now()),
		lote(productoID, sucursalID, 1, time.Now()),
	)
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	_, err := svc.AllocateProductoTx(nil, productoID, sucursalID, 5)
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonInsufficientStock))
	assert.Empty(t, repo.updates, "ningún lote debe mutarse cuando la asignación falla")
}

func TestEliminarStockParcial(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	l := lote(productoID, sucursalID, 10, time.Now())
	repo := newStockRepoFake(l)
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	motivo := "merma por rotura"
	err := svc.EliminarStock(context.Background(), uuid.New(), dto.EliminarStockRequest{
		StockID:  l.ID.String(),
		Cantidad: 4,
		Motivo:   &motivo,
	})
	require.NoError(t, err)

	assert.Equal(t, 6, repo.updates[l.ID])
	assert.Empty(t, repo.deleted)
	require.Len(t, repo.eliminaciones, 1)
	assert.Equal(t, motivo, repo.eliminaciones[0].Motivo)
}

func TestEliminarStockLoteCompleto(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	l := lote(productoID, sucursalID, 3, time.Now())
	repo := newStockRepoFake(l)
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	err := svc.EliminarStock(context.Background(), uuid.New(), dto.EliminarStockRequest{
		StockID:  l.ID.String(),
		Cantidad: 3,
	})
	require.NoError(t, err)

	require.Len(t, repo.deleted, 1)
	assert.Equal(t, l.ID, repo.deleted[0])
	require.Len(t, repo.eliminaciones, 1)
	assert.Equal(t, "Sin motivo especificado", repo.eliminaciones[0].Motivo)
}

func TestEliminarStockDescuentaSobreElLoteBloqueado(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	l := lote(productoID, sucursalID, 10, time.Now())
	repo := newStockRepoFake(l)
	// Una venta concurrente drena 6 unidades antes de que se tome el lock.
	repo.drainOnLock = map[uuid.UUID]int{l.ID: 6}
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	err := svc.EliminarStock(context.Background(), uuid.New(), dto.EliminarStockRequest{
		StockID:  l.ID.String(),
		Cantidad: 3,
	})
	require.NoError(t, err)

	// 4 bajo lock menos 3 eliminadas: nunca 10-3=7 sobre la lectura vieja.
	assert.Equal(t, 1, repo.updates[l.ID])
}

func TestEliminarStockExcedeLoteBloqueado(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	l := lote(productoID, sucursalID, 10, time.Now())
	repo := newStockRepoFake(l)
	repo.drainOnLock = map[uuid.UUID]int{l.ID: 8}
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	err := svc.EliminarStock(context.Background(), uuid.New(), dto.EliminarStockRequest{
		StockID:  l.ID.String(),
		Cantidad: 5,
	})
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonInsufficientStock))
	assert.Empty(t, repo.updates)
	assert.Empty(t, repo.eliminaciones)
}

func TestEliminarStockExcedeLote(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	l := lote(productoID, sucursalID, 2, time.Now())
	repo := newStockRepoFake(l)
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	err := svc.EliminarStock(context.Background(), uuid.New(), dto.EliminarStockRequest{
		StockID:  l.ID.String(),
		Cantidad: 5,
	})
	require.Error(t, err)
	assert.True(t, domain.Is(err, domain.ReasonInsufficientStock))
	assert.Empty(t, repo.eliminaciones)
	assert.Empty(t, repo.updates)
}

func TestRegistrarEntregaCreaLotes(t *testing.T) {
	proveedor := &model.Proveedor{ID: uuid.New(), Nombre: "Distribuidora Sur"}
	provRepo := &proveedorRepoFake{proveedores: map[uuid.UUID]*model.Proveedor{proveedor.ID: proveedor}}
	repo := newStockRepoFake()
	svc := NewStockService(repo, provRepo, &notifRepoFake{}, &notifierFake{})

	productoID := uuid.New().String()
	sucursalID := uuid.New()
	venc := "2026-12-31"

	resp, err := svc.RegistrarEntrega(context.Background(), uuid.New(), dto.EntregaStockRequest{
		ProveedorID: proveedor.ID.String(),
		SucursalID:  sucursalID.String(),
		Lineas: []dto.LineaEntregaRequest{
			{ProductoID: &productoID, Cantidad: 12, PrecioCosto: decimal.NewFromFloat(3.50), FechaVencimiento: &venc},
			{ProductoID: &productoID, Cantidad: 5, PrecioCosto: decimal.NewFromInt(4)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Distribuidora Sur", resp.Proveedor)
	assert.True(t, resp.MontoTotal.Equal(decimal.NewFromInt(62)), "12*3.50 + 5*4 = 62, fue %s", resp.MontoTotal)
	require.Len(t, resp.Lotes, 2)
	assert.Equal(t, 12, resp.Lotes[0].Cantidad)
	require.NotNil(t, resp.Lotes[0].FechaVencimiento)
	assert.Equal(t, venc, *resp.Lotes[0].FechaVencimiento)

	require.Len(t, repo.entregas, 1)
	require.Len(t, repo.lotes, 2)
	for _, l := range repo.lotes {
		require.NotNil(t, l.EntregaStockID)
		assert.Equal(t, repo.entregas[0].ID, *l.EntregaStockID)
		assert.Equal(t, l.CantidadInicial, l.Cantidad)
	}
}

func TestRegistrarEntregaLineaAmbigua(t *testing.T) {
	proveedor := &model.Proveedor{ID: uuid.New(), Nombre: "Distribuidora Sur"}
	provRepo := &proveedorRepoFake{proveedores: map[uuid.UUID]*model.Proveedor{proveedor.ID: proveedor}}
	svc := NewStockService(newStockRepoFake(), provRepo, &notifRepoFake{}, &notifierFake{})

	productoID := uuid.New().String()
	empaqueID := uuid.New().String()

	// Both set.
	_, err := svc.RegistrarEntrega(context.Background(), uuid.New(), dto.EntregaStockRequest{
		ProveedorID: proveedor.ID.String(),
		SucursalID:  uuid.New().String(),
		Lineas: []dto.LineaEntregaRequest{
			{ProductoID: &productoID, EmpaqueID: &empaqueID, Cantidad: 1, PrecioCosto: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	// Neither set.
	_, err = svc.RegistrarEntrega(context.Background(), uuid.New(), dto.EntregaStockRequest{
		ProveedorID: proveedor.ID.String(),
		SucursalID:  uuid.New().String(),
		Lineas: []dto.LineaEntregaRequest{
			{Cantidad: 1, PrecioCosto: decimal.NewFromInt(1)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestRegistrarVencimientosIdempotente(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	ayer := time.Now().Add(-24 * time.Hour)

	l1 := lote(productoID, sucursalID, 3, time.Now().AddDate(0, -2, 0))
	l1.FechaVencimiento = &ayer
	l2 := lote(productoID, sucursalID, 1, time.Now().AddDate(0, -1, 0))
	l2.FechaVencimiento = &ayer

	repo := newStockRepoFake()
	repo.vencidos = []model.Stock{l1, l2}
	svc := NewStockService(repo, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	created, err := svc.RegistrarVencimientos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	require.Len(t, repo.vencimientos, 2)
	assert.Equal(t, model.VencimientoPendiente, repo.vencimientos[0].Estado)

	// A duplicate-key failure on one batch must not abort the sweep.
	repo2 := newStockRepoFake()
	repo2.vencidos = []model.Stock{l1, l2}
	repo2.failVencimWith = gorm.ErrDuplicatedKey
	svc2 := NewStockService(repo2, &proveedorRepoFake{}, &notifRepoFake{}, &notifierFake{})

	created, err = svc2.RegistrarVencimientos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestRegistrarVencimientosNotificaAAdministradores(t *testing.T) {
	productoID := uuid.New()
	sucursalID := uuid.New()
	proximo := time.Now().AddDate(0, 0, 5)

	l1 := lote(productoID, sucursalID, 3, time.Now().AddDate(0, -1, 0))
	l1.FechaVencimiento = &proximo

	repo := newStockRepoFake()
	repo.vencidos = []model.Stock{l1}
	admin1 := uuid.New()
	admin2 := uuid.New()
	notifier := &notifierFake{}
	svc := NewStockService(repo, &proveedorRepoFake{},
		&notifRepoFake{adminIDs: []uuid.UUID{admin1, admin2}}, notifier)

	created, err := svc.RegistrarVencimientos(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	// Un resumen por administrador por barrido.
	require.Len(t, notifier.enviadas, 2)
	destinos := []uuid.UUID{notifier.enviadas[0].ParaUsuarioID, notifier.enviadas[1].ParaUsuarioID}
	assert.ElementsMatch(t, []uuid.UUID{admin1, admin2}, destinos)
	for _, n := range notifier.enviadas {
		assert.Equal(t, model.NotifVencimiento, n.Categoria)
	}

	// Sin lotes nuevos no se vuelve a avisar.
	repo.vencidos = nil
	created, err = svc.RegistrarVencimientos(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, notifier.enviadas, 2)
}
