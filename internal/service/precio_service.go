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
	"gorm.io/gorm"
)

type PrecioService interface {
	// Solicitar opens a PENDIENTE request and notifies every active admin.
	Solicitar(ctx context.Context, usuarioID uuid.UUID, req dto.SolicitarPrecioRequest) (*dto.SolicitudPrecioResponse, error)
	// Aprobar mints a one-time CREADO_POR_SOLICITUD price ranked MAX(orden)+1
	// and deletes the request, all in one transaction.
	Aprobar(ctx context.Context, solicitudID, adminID uuid.UUID) (*dto.AprobacionResponse, error)
	Rechazar(ctx context.Context, solicitudID, adminID uuid.UUID) error
	ListPendientes(ctx context.Context) ([]dto.SolicitudPrecioResponse, error)

	CrearPrecio(ctx context.Context, adminID uuid.UUID, req dto.CrearPrecioRequest) (*dto.PrecioResponse, error)
	ListPrecios(ctx context.Context, productoID uuid.UUID) ([]dto.PrecioResponse, error)
	EliminarPrecio(ctx context.Context, precioID uuid.UUID) error

	// ConsumirPrecioTx validates a selected price inside the sale transaction
	// and, when it is a one-time special price, deletes it so it can never be
	// used twice.
	ConsumirPrecioTx(tx *gorm.DB, precioID, productoID uuid.UUID) (*model.PrecioProducto, error)
}

type precioService struct {
	repo         repository.PrecioRepository
	productoRepo repository.ProductoRepository
	notifRepo    repository.NotificacionRepository
	notifier     notify.Notifier
}

func NewPrecioService(
	repo repository.PrecioRepository,
	productoRepo repository.ProductoRepository,
	notifRepo repository.NotificacionRepository,
	notifier notify.Notifier,
) PrecioService {
	return &precioService{
		repo:         repo,
		productoRepo: productoRepo,
		notifRepo:    notifRepo,
		notifier:     notifier,
	}
}

func (s *precioService) Solicitar(ctx context.Context, usuarioID uuid.UUID, req dto.SolicitarPrecioRequest) (*dto.SolicitudPrecioResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, domain.Validation("producto_id inválido")
	}
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, domain.Classify(err)
	}

	sol := model.SolicitudPrecio{
		ProductoID:       productoID,
		PrecioSolicitado: req.PrecioSolicitado,
		SolicitadoPorID:  usuarioID,
		Estado:           model.SolicitudPendiente,
	}
	if err := s.repo.CreateSolicitud(ctx, &sol); err != nil {
		return nil, domain.Classify(err)
	}

	// Best-effort fan-out; the request stands even if no admin is reachable.
	adminIDs, err := s.notifRepo.ListAdminIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("precio: no se pudo listar admins para notificar")
	}
	for _, adminID := range adminIDs {
		refID := sol.ID
		n := model.Notificacion{
			Mensaje: fmt.Sprintf("Solicitud de precio especial: %s a Q%s",
				producto.Nombre, req.PrecioSolicitado.StringFixed(2)),
			DeUsuarioID:   &usuarioID,
			ParaUsuarioID: adminID,
			Categoria:     model.NotifSolicitudPrecio,
			ReferenciaID:  &refID,
		}
		if err := s.notifier.Enviar(ctx, &n); err != nil {
			log.Warn().Err(err).Str("admin_id", adminID.String()).Msg("precio: notificación fallida")
		}
	}

	return solicitudToResponse(&sol, producto.Nombre), nil
}

func (s *precioService) Aprobar(ctx context.Context, solicitudID, adminID uuid.UUID) (*dto.AprobacionResponse, error) {
	var precio model.PrecioProducto
	var solicitante uuid.UUID
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sol, err := s.repo.FindSolicitudTx(tx, solicitudID)
		if err != nil {
			return err
		}
		solicitante = sol.SolicitadoPorID
		if sol.Estado != model.SolicitudPendiente {
			return domain.BusinessRule(domain.ReasonAuthorizationNotPending,
				"la solicitud ya fue respondida")
		}

		maxOrden, err := s.repo.MaxOrdenTx(tx, sol.ProductoID)
		if err != nil {
			return err
		}

		precio = model.PrecioProducto{
			ProductoID:  sol.ProductoID,
			Precio:      sol.PrecioSolicitado,
			Tipo:        model.TipoPrecioSolicitud,
			Orden:       maxOrden + 1,
			CreadoPorID: &adminID,
		}
		if err := s.repo.CreateTx(tx, &precio); err != nil {
			return err
		}

		// The approved request is consumed: it never lingers in APROBADO.
		return s.repo.DeleteSolicitudTx(tx, sol.ID)
	})
	if txErr != nil {
		return nil, domain.Classify(txErr)
	}

	log.Info().
		Str("solicitud_id", solicitudID.String()).
		Str("precio_id", precio.ID.String()).
		Int("orden", precio.Orden).
		Msg("solicitud de precio aprobada")

	s.notificarResolucion(ctx, solicitante, adminID, &precio.ID,
		fmt.Sprintf("Solicitud de precio aprobada: Q%s", precio.Precio.StringFixed(2)))

	return &dto.AprobacionResponse{
		SolicitudID: solicitudID.String(),
		Precio:      precioToResponse(&precio),
	}, nil
}

func (s *precioService) Rechazar(ctx context.Context, solicitudID, adminID uuid.UUID) error {
	var solicitante uuid.UUID
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sol, err := s.repo.FindSolicitudTx(tx, solicitudID)
		if err != nil {
			return err
		}
		if sol.Estado != model.SolicitudPendiente {
			return domain.BusinessRule(domain.ReasonAuthorizationNotPending,
				"la solicitud ya fue respondida")
		}
		solicitante = sol.SolicitadoPorID
		return s.repo.DeleteSolicitudTx(tx, sol.ID)
	})
	if txErr != nil {
		return domain.Classify(txErr)
	}
	s.notificarResolucion(ctx, solicitante, adminID, nil, "Solicitud de precio rechazada")
	return nil
}

// notificarResolucion avisa al solicitante después del commit; un fallo aquí
// nunca deshace la resolución.
func (s *precioService) notificarResolucion(ctx context.Context, solicitante, adminID uuid.UUID, refID *uuid.UUID, mensaje string) {
	n := model.Notificacion{
		Mensaje:       mensaje,
		DeUsuarioID:   &adminID,
		ParaUsuarioID: solicitante,
		Categoria:     model.NotifSolicitudPrecio,
		ReferenciaID:  refID,
	}
	if err := s.notifier.Enviar(ctx, &n); err != nil {
		log.Warn().Err(err).Msg("precio: notificación al solicitante fallida")
	}
}

func (s *precioService) ListPendientes(ctx context.Context) ([]dto.SolicitudPrecioResponse, error) {
	sols, err := s.repo.ListSolicitudes(ctx, model.SolicitudPendiente)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.SolicitudPrecioResponse, 0, len(sols))
	for i := range sols {
		nombre := ""
		if sols[i].Producto != nil {
			nombre = sols[i].Producto.Nombre
		}
		out = append(out, *solicitudToResponse(&sols[i], nombre))
	}
	return out, nil
}

func (s *precioService) CrearPrecio(ctx context.Context, adminID uuid.UUID, req dto.CrearPrecioRequest) (*dto.PrecioResponse, error) {
	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, domain.Validation("producto_id inválido")
	}
	var precio model.PrecioProducto
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		maxOrden, err := s.repo.MaxOrdenTx(tx, productoID)
		if err != nil {
			return err
		}
		precio = model.PrecioProducto{
			ProductoID:  productoID,
			Precio:      req.Precio,
			Tipo:        model.TipoPrecioEstandar,
			Orden:       maxOrden + 1,
			CreadoPorID: &adminID,
		}
		return s.repo.CreateTx(tx, &precio)
	})
	if txErr != nil {
		return nil, domain.Classify(txErr)
	}
	resp := precioToResponse(&precio)
	return &resp, nil
}

func (s *precioService) ListPrecios(ctx context.Context, productoID uuid.UUID) ([]dto.PrecioResponse, error) {
	precios, err := s.repo.ListPorProducto(ctx, productoID)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.PrecioResponse, 0, len(precios))
	for i := range precios {
		out = append(out, precioToResponse(&precios[i]))
	}
	return out, nil
}

func (s *precioService) EliminarPrecio(ctx context.Context, precioID uuid.UUID) error {
	return domain.Classify(runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteTx(tx, precioID)
	}))
}

func (s *precioService) ConsumirPrecioTx(tx *gorm.DB, precioID, productoID uuid.UUID) (*model.PrecioProducto, error) {
	precio, err := s.repo.FindByIDTx(tx, precioID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.BusinessRule(domain.ReasonPriceUnavailable,
				"el precio seleccionado ya no está disponible")
		}
		return nil, err
	}
	if precio.ProductoID != productoID {
		return nil, domain.BusinessRule(domain.ReasonPriceUnavailable,
			"el precio no corresponde al producto")
	}
	if precio.Tipo == model.TipoPrecioSolicitud {
		if err := s.repo.DeleteTx(tx, precio.ID); err != nil {
			return nil, err
		}
	}
	return precio, nil
}

func solicitudToResponse(sol *model.SolicitudPrecio, producto string) *dto.SolicitudPrecioResponse {
	return &dto.SolicitudPrecioResponse{
		ID:               sol.ID.String(),
		ProductoID:       sol.ProductoID.String(),
		Producto:         producto,
		PrecioSolicitado: sol.PrecioSolicitado,
		SolicitadoPorID:  sol.SolicitadoPorID.String(),
		Estado:           sol.Estado,
		FechaSolicitud:   sol.FechaSolicitud.Format(time.RFC3339),
	}
}

func precioToResponse(p *model.PrecioProducto) dto.PrecioResponse {
	return dto.PrecioResponse{
		ID:     p.ID.String(),
		Precio: p.Precio,
		Tipo:   p.Tipo,
		Orden:  p.Orden,
	}
}
