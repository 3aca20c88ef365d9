package service

import (
	"context"
	"fmt"
	"time"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"
	"gustito/backend/internal/notify"
	"gustito/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Asignacion is one batch drained (fully or partially) by an allocation.
type Asignacion struct {
	StockID     uuid.UUID
	Cantidad    int
	PrecioCosto decimal.Decimal
}

type StockService interface {
	// AllocateProductoTx drains batches oldest-first inside the caller's
	// transaction. All-or-nothing: when the branch cannot cover cantidad no
	// batch is touched and ReasonInsufficientStock comes back.
	AllocateProductoTx(tx *gorm.DB, productoID, sucursalID uuid.UUID, cantidad int) ([]Asignacion, error)
	AllocateEmpaqueTx(tx *gorm.DB, empaqueID, sucursalID uuid.UUID, cantidad int) ([]Asignacion, error)

	RegistrarEntrega(ctx context.Context, usuarioID uuid.UUID, req dto.EntregaStockRequest) (*dto.EntregaStockResponse, error)
	EliminarStock(ctx context.Context, usuarioID uuid.UUID, req dto.EliminarStockRequest) error
	ListStock(ctx context.Context, sucursalID uuid.UUID) ([]dto.StockResponse, error)
	Disponible(ctx context.Context, productoID, sucursalID uuid.UUID) (int, error)

	// RegistrarVencimientos scans for batches that expire within the warning
	// window and lack an expiration record, creates one per batch and avisa a
	// los administradores. Safe to run repeatedly.
	RegistrarVencimientos(ctx context.Context) (int, error)
	ListVencimientos(ctx context.Context, estado string) ([]dto.VencimientoResponse, error)
	ResolverVencimiento(ctx context.Context, id uuid.UUID) error
}

// diasAvisoVencimiento is how far ahead the sweep warns about expiring batches.
const diasAvisoVencimiento = 10

type stockService struct {
	repo          repository.StockRepository
	proveedorRepo repository.ProveedorRepository
	notifRepo     repository.NotificacionRepository
	notifier      notify.Notifier
}

func NewStockService(
	repo repository.StockRepository,
	proveedorRepo repository.ProveedorRepository,
	notifRepo repository.NotificacionRepository,
	notifier notify.Notifier,
) StockService {
	return &stockService{
		repo:          repo,
		proveedorRepo: proveedorRepo,
		notifRepo:     notifRepo,
		notifier:      notifier,
	}
}

func (s *stockService) allocate(lotes []model.Stock, cantidad int, tx *gorm.DB) ([]Asignacion, error) {
	disponible := 0
	for _, l := range lotes {
		disponible += l.Cantidad
	}
	if disponible < cantidad {
		return nil, domain.BusinessRule(domain.ReasonInsufficientStock,
			"stock insuficiente para completar la venta")
	}

	// Plan first over the locked snapshot, then apply. A failure mid-apply
	// aborts the surrounding transaction, so batches never end half-drained.
	restante := cantidad
	var plan []Asignacion
	for _, lote := range lotes {
		if restante == 0 {
			break
		}
		tomar := lote.Cantidad
		if tomar > restante {
			tomar = restante
		}
		plan = append(plan, Asignacion{StockID: lote.ID, Cantidad: tomar, PrecioCosto: lote.PrecioCosto})
		restante -= tomar
	}

	for i, lote := range lotes {
		if i >= len(plan) {
			break
		}
		nueva := lote.Cantidad - plan[i].Cantidad
		if err := s.repo.UpdateCantidadTx(tx, lote.ID, nueva); err != nil {
			return nil, err
		}
	}
	return plan, nil
}

func (s *stockService) AllocateProductoTx(tx *gorm.DB, productoID, sucursalID uuid.UUID, cantidad int) ([]Asignacion, error) {
	lotes, err := s.repo.FindLotesDisponiblesTx(tx, productoID, sucursalID)
	if err != nil {
		return nil, err
	}
	return s.allocate(lotes, cantidad, tx)
}

func (s *stockService) AllocateEmpaqueTx(tx *gorm.DB, empaqueID, sucursalID uuid.UUID, cantidad int) ([]Asignacion, error) {
	lotes, err := s.repo.FindLotesEmpaqueTx(tx, empaqueID, sucursalID)
	if err != nil {
		return nil, err
	}
	return s.allocate(lotes, cantidad, tx)
}

func (s *stockService) RegistrarEntrega(ctx context.Context, usuarioID uuid.UUID, req dto.EntregaStockRequest) (*dto.EntregaStockResponse, error) {
	proveedorID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, domain.Validation("proveedor_id inválido")
	}
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, domain.Validation("sucursal_id inválido")
	}
	proveedor, err := s.proveedorRepo.FindByID(ctx, proveedorID)
	if err != nil {
		return nil, domain.Classify(err)
	}

	type lotePlan struct {
		stock model.Stock
	}
	var lotes []lotePlan
	montoTotal := decimal.Zero

	for _, linea := range req.Lineas {
		if (linea.ProductoID == nil) == (linea.EmpaqueID == nil) {
			return nil, domain.Validation("cada línea debe referir exactamente un producto o un empaque")
		}
		st := model.Stock{
			SucursalID:      sucursalID,
			Cantidad:        linea.Cantidad,
			CantidadInicial: linea.Cantidad,
			PrecioCosto:     linea.PrecioCosto,
			CostoTotal:      linea.PrecioCosto.Mul(decimal.NewFromInt(int64(linea.Cantidad))),
			FechaIngreso:    time.Now(),
		}
		if linea.ProductoID != nil {
			pid, err := uuid.Parse(*linea.ProductoID)
			if err != nil {
				return nil, domain.Validation("producto_id inválido")
			}
			st.ProductoID = &pid
		}
		if linea.EmpaqueID != nil {
			eid, err := uuid.Parse(*linea.EmpaqueID)
			if err != nil {
				return nil, domain.Validation("empaque_id inválido")
			}
			st.EmpaqueID = &eid
		}
		if linea.FechaVencimiento != nil {
			fv, err := time.Parse("2006-01-02", *linea.FechaVencimiento)
			if err != nil {
				return nil, domain.Validation("fecha_vencimiento inválida")
			}
			st.FechaVencimiento = &fv
		}
		montoTotal = montoTotal.Add(st.CostoTotal)
		lotes = append(lotes, lotePlan{stock: st})
	}

	entrega := model.EntregaStock{
		ProveedorID:   proveedorID,
		SucursalID:    sucursalID,
		RecibidoPorID: usuarioID,
		MontoTotal:    montoTotal,
		FechaEntrega:  time.Now(),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateEntrega(ctx, tx, &entrega); err != nil {
			return err
		}
		for i := range lotes {
			lotes[i].stock.EntregaStockID = &entrega.ID
			if err := s.repo.CreateTx(tx, &lotes[i].stock); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, domain.Classify(txErr)
	}

	resp := &dto.EntregaStockResponse{
		ID:           entrega.ID.String(),
		ProveedorID:  proveedorID.String(),
		Proveedor:    proveedor.Nombre,
		SucursalID:   sucursalID.String(),
		MontoTotal:   montoTotal,
		FechaEntrega: entrega.FechaEntrega.Format(time.RFC3339),
	}
	for _, l := range lotes {
		resp.Lotes = append(resp.Lotes, stockToResponse(&l.stock))
	}
	log.Info().
		Str("entrega_id", entrega.ID.String()).
		Str("proveedor", proveedor.Nombre).
		Str("monto_total", montoTotal.String()).
		Int("lotes", len(lotes)).
		Msg("entrega de stock registrada")
	return resp, nil
}

func (s *stockService) EliminarStock(ctx context.Context, usuarioID uuid.UUID, req dto.EliminarStockRequest) error {
	stockID, err := uuid.Parse(req.StockID)
	if err != nil {
		return domain.Validation("stock_id inválido")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// The quantity check and the write must see the same row; a sale
		// allocating from this batch in parallel would otherwise be
		// silently overwritten.
		lote, err := s.repo.FindByIDTx(tx, stockID)
		if err != nil {
			return err
		}
		if req.Cantidad > lote.Cantidad {
			return domain.BusinessRule(domain.ReasonInsufficientStock,
				"no se puede eliminar más unidades de las existentes en el lote")
		}

		elim := model.EliminacionStock{
			ProductoID: lote.ProductoID,
			EmpaqueID:  lote.EmpaqueID,
			SucursalID: lote.SucursalID,
			UsuarioID:  usuarioID,
			Motivo:     "Sin motivo especificado",
			FechaHora:  time.Now(),
		}
		if req.Motivo != nil && *req.Motivo != "" {
			elim.Motivo = *req.Motivo
		}
		if err := s.repo.CreateEliminacion(ctx, tx, &elim); err != nil {
			return err
		}

		restante := lote.Cantidad - req.Cantidad
		if restante == 0 {
			return s.repo.Delete(ctx, tx, lote.ID)
		}
		return s.repo.UpdateCantidadTx(tx, lote.ID, restante)
	})
	return domain.Classify(txErr)
}

func (s *stockService) ListStock(ctx context.Context, sucursalID uuid.UUID) ([]dto.StockResponse, error) {
	lotes, err := s.repo.ListPorSucursal(ctx, sucursalID)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.StockResponse, 0, len(lotes))
	for i := range lotes {
		out = append(out, stockToResponse(&lotes[i]))
	}
	return out, nil
}

func (s *stockService) Disponible(ctx context.Context, productoID, sucursalID uuid.UUID) (int, error) {
	return s.repo.SumDisponible(ctx, productoID, sucursalID)
}

func (s *stockService) RegistrarVencimientos(ctx context.Context) (int, error) {
	corte := time.Now().AddDate(0, 0, diasAvisoVencimiento)
	lotes, err := s.repo.FindVencidosSinRegistro(ctx, corte)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, lote := range lotes {
		v := model.Vencimiento{
			StockID:          lote.ID,
			FechaVencimiento: *lote.FechaVencimiento,
			Descripcion:      "Lote por vencer con unidades restantes",
			Estado:           model.VencimientoPendiente,
		}
		if err := s.repo.CreateVencimiento(ctx, &v); err != nil {
			// The unique stock_id index swallows the race with a parallel
			// sweep; log and keep going.
			log.Warn().Err(err).Str("stock_id", lote.ID.String()).Msg("vencimiento no registrado")
			continue
		}
		created++
	}
	if created > 0 {
		log.Info().Int("registrados", created).Msg("barrido de vencimientos completado")
		s.notificarVencimientos(ctx, created)
	}
	return created, nil
}

// notificarVencimientos sends one summary per admin per sweep; the records
// created above gate re-notification on later runs.
func (s *stockService) notificarVencimientos(ctx context.Context, cantidad int) {
	adminIDs, err := s.notifRepo.ListAdminIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("vencimientos: no se pudo listar administradores")
		return
	}
	for _, adminID := range adminIDs {
		n := model.Notificacion{
			Mensaje:       fmt.Sprintf("%d lote(s) vencen dentro de los próximos %d días", cantidad, diasAvisoVencimiento),
			ParaUsuarioID: adminID,
			Categoria:     model.NotifVencimiento,
		}
		if err := s.notifier.Enviar(ctx, &n); err != nil {
			log.Warn().Err(err).Msg("vencimientos: notificación fallida")
		}
	}
}

func (s *stockService) ListVencimientos(ctx context.Context, estado string) ([]dto.VencimientoResponse, error) {
	vs, err := s.repo.ListVencimientos(ctx, estado)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.VencimientoResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, dto.VencimientoResponse{
			ID:               v.ID.String(),
			StockID:          v.StockID.String(),
			FechaVencimiento: v.FechaVencimiento.Format("2006-01-02"),
			Descripcion:      v.Descripcion,
			Estado:           v.Estado,
		})
	}
	return out, nil
}

func (s *stockService) ResolverVencimiento(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateVencimientoEstado(ctx, id, model.VencimientoResuelto)
}

func stockToResponse(st *model.Stock) dto.StockResponse {
	resp := dto.StockResponse{
		ID:              st.ID.String(),
		SucursalID:      st.SucursalID.String(),
		Cantidad:        st.Cantidad,
		CantidadInicial: st.CantidadInicial,
		PrecioCosto:     st.PrecioCosto,
		CostoTotal:      st.CostoTotal,
		FechaIngreso:    st.FechaIngreso.Format(time.RFC3339),
	}
	if st.ProductoID != nil {
		pid := st.ProductoID.String()
		resp.ProductoID = &pid
	}
	if st.EmpaqueID != nil {
		eid := st.EmpaqueID.String()
		resp.EmpaqueID = &eid
	}
	if st.FechaVencimiento != nil {
		fv := st.FechaVencimiento.Format("2006-01-02")
		resp.FechaVencimiento = &fv
	}
	return resp
}
