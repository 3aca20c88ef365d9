package service

import (
	"context"
	"time"

	"gustito/backend/internal/domain"
	"gustito/backend/internal/dto"
	"gustito/backend/internal/model"
	"gustito/backend/internal/repository"
	"gustito/backend/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	// CrearVenta runs the whole sale as one transaction: shift check, price
	// resolution (consuming one-time prices), FIFO stock allocation, customer
	// creation, sale + payment rows and the branch balance credit. The PDF
	// ticket is queued only after commit.
	CrearVenta(ctx context.Context, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error)
	FindVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter repository.VentaFilter) (*dto.VentaListResponse, error)
	ListVentasSinCaja(ctx context.Context, sucursalID uuid.UUID) ([]dto.VentaResponse, error)
	// EliminarVenta reverses the sale: restocks nothing (batches may be gone)
	// but removes the records and debits the branch balance.
	EliminarVenta(ctx context.Context, id uuid.UUID) error
}

type ventaService struct {
	repo         repository.VentaRepository
	cajaRepo     repository.CajaRepository
	clienteRepo  repository.ClienteRepository
	productoRepo repository.ProductoRepository
	sucursal     repository.SucursalRepository
	stock        StockService
	precios      PrecioService
	dispatcher   *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	cajaRepo repository.CajaRepository,
	clienteRepo repository.ClienteRepository,
	productoRepo repository.ProductoRepository,
	sucursal repository.SucursalRepository,
	stock StockService,
	precios PrecioService,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		cajaRepo:     cajaRepo,
		clienteRepo:  clienteRepo,
		productoRepo: productoRepo,
		sucursal:     sucursal,
		stock:        stock,
		precios:      precios,
		dispatcher:   dispatcher,
	}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *ventaService) CrearVenta(ctx context.Context, usuarioID uuid.UUID, req dto.CrearVentaRequest) (*dto.VentaResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, domain.Validation("sucursal_id inválido")
	}
	if len(req.Lineas) == 0 && len(req.Empaques) == 0 {
		return nil, domain.Validation("la venta no tiene líneas")
	}

	var venta model.Venta
	var lineasResp []dto.LineaVentaResponse

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// 1. Shift gate. Cash methods demand an open shift; bank-equivalent
		//    methods attach to one only if it happens to be open.
		var registroID *uuid.UUID
		registro, err := s.cajaRepo.FindAbiertaTx(tx, sucursalID, usuarioID)
		switch {
		case err == nil:
			registroID = &registro.ID
		case err == gorm.ErrRecordNotFound:
			if !model.EsPagoExentoDeCaja(req.MetodoPago) {
				return domain.BusinessRule(domain.ReasonNoOpenShift,
					"debe abrir caja antes de vender en efectivo")
			}
		default:
			return err
		}

		// 2. Customer: referenced or created inline inside the transaction.
		var clienteID *uuid.UUID
		if req.ClienteID != nil {
			cid, err := uuid.Parse(*req.ClienteID)
			if err != nil {
				return domain.Validation("cliente_id inválido")
			}
			clienteID = &cid
		} else if req.Cliente != nil {
			cliente := model.Cliente{
				Nombre:     req.Cliente.Nombre,
				Telefono:   req.Cliente.Telefono,
				DPI:        req.Cliente.DPI,
				Direccion:  req.Cliente.Direccion,
				IPInternet: req.Cliente.IPInternet,
			}
			if err := s.clienteRepo.CreateTx(tx, &cliente); err != nil {
				return err
			}
			clienteID = &cliente.ID
		}

		// 3. Resolve prices and allocate stock. The total is recomputed from
		//    the resolved prices; req.Monto is advisory only.
		total := decimal.Zero
		var lineas []model.VentaProducto
		var lineasEmpaque []model.VentaEmpaque
		lineasResp = lineasResp[:0]

		cantidadPorProducto := make(map[uuid.UUID]int, len(req.Lineas))
		var ordenProductos []uuid.UUID

		for _, linea := range req.Lineas {
			productoID, err := uuid.Parse(linea.ProductoID)
			if err != nil {
				return domain.Validation("producto_id inválido")
			}
			precioID, err := uuid.Parse(linea.PrecioID)
			if err != nil {
				return domain.Validation("precio_id inválido")
			}

			precio, err := s.precios.ConsumirPrecioTx(tx, precioID, productoID)
			if err != nil {
				return err
			}
			if _, visto := cantidadPorProducto[productoID]; !visto {
				ordenProductos = append(ordenProductos, productoID)
			}
			cantidadPorProducto[productoID] += linea.Cantidad

			subtotal := precio.Precio.Mul(decimal.NewFromInt(int64(linea.Cantidad)))
			total = total.Add(subtotal)
			lineas = append(lineas, model.VentaProducto{
				ProductoID:  productoID,
				Cantidad:    linea.Cantidad,
				PrecioVenta: precio.Precio,
			})
			lineasResp = append(lineasResp, dto.LineaVentaResponse{
				ProductoID:  productoID.String(),
				Cantidad:    linea.Cantidad,
				PrecioVenta: precio.Precio,
				Subtotal:    subtotal,
			})
		}

		// Duplicate product lines consolidate into one FIFO allocation per
		// product, so a repeated item never races itself over the same batches.
		for _, productoID := range ordenProductos {
			if _, err := s.stock.AllocateProductoTx(tx, productoID, sucursalID, cantidadPorProducto[productoID]); err != nil {
				return err
			}
		}

		for _, linea := range req.Empaques {
			empaqueID, err := uuid.Parse(linea.EmpaqueID)
			if err != nil {
				return domain.Validation("empaque_id inválido")
			}
			empaque, err := s.productoRepo.FindEmpaqueByID(ctx, empaqueID)
			if err != nil {
				return err
			}
			if _, err := s.stock.AllocateEmpaqueTx(tx, empaqueID, sucursalID, linea.Cantidad); err != nil {
				return err
			}
			subtotal := empaque.PrecioVenta.Mul(decimal.NewFromInt(int64(linea.Cantidad)))
			total = total.Add(subtotal)
			lineasEmpaque = append(lineasEmpaque, model.VentaEmpaque{
				EmpaqueID:   empaqueID,
				Cantidad:    linea.Cantidad,
				PrecioVenta: empaque.PrecioVenta,
			})
		}

		if !req.Monto.IsZero() && !req.Monto.Equal(total) {
			log.Warn().
				Str("monto_cliente", req.Monto.String()).
				Str("total_calculado", total.String()).
				Msg("venta: monto enviado por el cliente difiere del total calculado")
		}

		// 4. Persist the sale with its lines and 1:1 payment.
		venta = model.Venta{
			SucursalID:     sucursalID,
			UsuarioID:      usuarioID,
			ClienteID:      clienteID,
			RegistroCajaID: registroID,
			TotalVenta:     total,
			MetodoPago:     req.MetodoPago,
			IMEI:           req.IMEI,
			FechaVenta:     time.Now(),
			Productos:      lineas,
			Empaques:       lineasEmpaque,
			Pago: &model.Pago{
				MetodoPago: req.MetodoPago,
				Monto:      total,
			},
		}
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}

		// 5. Credit the branch balance in the same transaction.
		return s.sucursal.ApplyIngresoTx(tx, sucursalID, total)
	})
	if txErr != nil {
		return nil, domain.Classify(txErr)
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("total", venta.TotalVenta.String()).
		Str("metodo_pago", venta.MetodoPago).
		Bool("con_caja", venta.RegistroCajaID != nil).
		Msg("venta registrada")

	// 6. Queue the ticket after commit; a queue failure never undoes a sale.
	if s.dispatcher != nil {
		payload := worker.TicketPayload{VentaID: venta.ID.String()}
		if req.CorreoTicket != nil {
			payload.Correo = *req.CorreoTicket
		}
		if err := s.dispatcher.EnqueueTicket(ctx, payload); err != nil {
			log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("venta: ticket no encolado")
		}
	}

	resp := ventaToResponse(&venta)
	resp.Lineas = lineasResp
	return resp, nil
}

func (s *ventaService) FindVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Classify(err)
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) ListVentas(ctx context.Context, filter repository.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 25
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Classify(err)
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) ListVentasSinCaja(ctx context.Context, sucursalID uuid.UUID) ([]dto.VentaResponse, error) {
	ventas, err := s.repo.ListSinCaja(ctx, sucursalID)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		out = append(out, *ventaToResponse(&ventas[i]))
	}
	return out, nil
}

func (s *ventaService) EliminarVenta(ctx context.Context, id uuid.UUID) error {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Classify(err)
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Delete(ctx, tx, venta.ID); err != nil {
			return err
		}
		return s.sucursal.ApplyEgresoTx(tx, venta.SucursalID, venta.TotalVenta)
	})
	if txErr != nil {
		return domain.Classify(txErr)
	}
	log.Info().Str("venta_id", id.String()).Msg("venta eliminada")
	return nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	resp := &dto.VentaResponse{
		ID:         v.ID.String(),
		SucursalID: v.SucursalID.String(),
		UsuarioID:  v.UsuarioID.String(),
		TotalVenta: v.TotalVenta,
		MetodoPago: v.MetodoPago,
		IMEI:       v.IMEI,
		FechaVenta: v.FechaVenta.Format(time.RFC3339),
	}
	if v.ClienteID != nil {
		cid := v.ClienteID.String()
		resp.ClienteID = &cid
	}
	if v.RegistroCajaID != nil {
		rid := v.RegistroCajaID.String()
		resp.RegistroCajaID = &rid
	}
	for i := range v.Productos {
		linea := &v.Productos[i]
		nombre := ""
		if linea.Producto != nil {
			nombre = linea.Producto.Nombre
		}
		resp.Lineas = append(resp.Lineas, dto.LineaVentaResponse{
			ProductoID:  linea.ProductoID.String(),
			Producto:    nombre,
			Cantidad:    linea.Cantidad,
			PrecioVenta: linea.PrecioVenta,
			Subtotal:    linea.PrecioVenta.Mul(decimal.NewFromInt(int64(linea.Cantidad))),
		})
	}
	return resp
}
