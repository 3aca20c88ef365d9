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

type CajaService interface {
	// Abrir opens a shift for (sucursal, usuario). The single-open-shift rule
	// is checked inside the transaction, against locked rows.
	Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.RegistroCajaResponse, error)
	// Cerrar closes the shift, claims the branch's floating deposits and
	// cashless sales, and advances the cashier's sales goal.
	Cerrar(ctx context.Context, registroID, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.RegistroCajaResponse, error)
	FindAbierta(ctx context.Context, sucursalID, usuarioID uuid.UUID) (*dto.RegistroCajaResponse, error)
	Resumen(ctx context.Context, registroID uuid.UUID) (*dto.ResumenCajaResponse, error)
	List(ctx context.Context, sucursalID uuid.UUID, limit int) ([]dto.RegistroCajaResponse, error)
	// EliminarRegistro deletes a shift record but keeps its movements,
	// detached, so money history never disappears with the shift.
	EliminarRegistro(ctx context.Context, registroID uuid.UUID) error

	RegistrarDeposito(ctx context.Context, usuarioID uuid.UUID, req dto.DepositoRequest) (*dto.MovimientoResponse, error)
	RegistrarEgreso(ctx context.Context, usuarioID uuid.UUID, req dto.EgresoRequest) (*dto.MovimientoResponse, error)

	Saldo(ctx context.Context, sucursalID uuid.UUID) (*dto.SaldoSucursalResponse, error)
	ResetSaldo(ctx context.Context, sucursalID uuid.UUID) error
}

type cajaService struct {
	repo         repository.CajaRepository
	sucursalRepo repository.SucursalRepository
	metaRepo     repository.MetaRepository
	notifRepo    repository.NotificacionRepository
	notifier     notify.Notifier
}

func NewCajaService(
	repo repository.CajaRepository,
	sucursalRepo repository.SucursalRepository,
	metaRepo repository.MetaRepository,
	notifRepo repository.NotificacionRepository,
	notifier notify.Notifier,
) CajaService {
	return &cajaService{
		repo:         repo,
		sucursalRepo: sucursalRepo,
		metaRepo:     metaRepo,
		notifRepo:    notifRepo,
		notifier:     notifier,
	}
}

func (s *cajaService) Abrir(ctx context.Context, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.RegistroCajaResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, domain.Validation("sucursal_id inválido")
	}

	var registro model.RegistroCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindAbiertaTx(tx, sucursalID, usuarioID); err == nil {
			return domain.BusinessRule(domain.ReasonShiftAlreadyOpen,
				"ya existe una caja abierta para este usuario en la sucursal")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		// Opening balance inherits the branch's last declared close; the
		// caller's value only seeds a branch without close history.
		saldoInicial := decimal.Zero
		if ultima, err := s.repo.FindUltimaCerrada(ctx, sucursalID); err == nil && ultima.SaldoFinal != nil {
			saldoInicial = *ultima.SaldoFinal
		} else if req.SaldoInicial != nil {
			saldoInicial = *req.SaldoInicial
		}

		registro = model.RegistroCaja{
			SucursalID:   sucursalID,
			UsuarioID:    usuarioID,
			Estado:       model.CajaAbierta,
			SaldoInicial: saldoInicial,
			Comentario:   req.Comentario,
			FechaInicio:  time.Now(),
		}
		return s.repo.CreateTx(tx, &registro)
	})
	if txErr != nil {
		return nil, domain.Classify(txErr)
	}

	log.Info().
		Str("registro_id", registro.ID.String()).
		Str("sucursal_id", sucursalID.String()).
		Str("usuario_id", usuarioID.String()).
		Str("saldo_inicial", registro.SaldoInicial.String()).
		Msg("caja abierta")
	return registroToResponse(&registro), nil
}

func (s *cajaService) Cerrar(ctx context.Context, registroID, usuarioID uuid.UUID, req dto.CerrarCajaRequest) (*dto.RegistroCajaResponse, error) {
	var registro *model.RegistroCaja
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		registro, err = s.repo.FindByIDTx(tx, registroID)
		if err != nil {
			return err
		}
		if registro.Estado == model.CajaCerrada {
			return domain.BusinessRule(domain.ReasonShiftAlreadyClosed, "la caja ya está cerrada")
		}

		// Claim the branch's floating movements: deposits, egresos and
		// cashless sales created without an open shift fold into this close.
		if err := s.repo.ClaimMovimientosTx(tx, registro.SucursalID, registro.ID); err != nil {
			return err
		}

		now := time.Now()
		registro.Estado = model.CajaCerrada
		registro.SaldoFinal = &req.SaldoFinal
		registro.FechaCierre = &now
		if req.Comentario != nil {
			registro.Comentario = req.Comentario
		}
		if err := s.repo.UpdateTx(tx, registro); err != nil {
			return err
		}

		return s.avanzarMetaTx(ctx, tx, registro)
	})
	if txErr != nil {
		return nil, domain.Classify(txErr)
	}

	log.Info().
		Str("registro_id", registro.ID.String()).
		Str("saldo_final", req.SaldoFinal.String()).
		Msg("caja cerrada")

	s.notificarCierre(ctx, registro)
	return registroToResponse(registro), nil
}

// notificarCierre avisa a los administradores después del commit; un fallo
// aquí nunca deshace el cierre.
func (s *cajaService) notificarCierre(ctx context.Context, registro *model.RegistroCaja) {
	adminIDs, err := s.notifRepo.ListAdminIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("caja: no se pudo listar administradores para el aviso de cierre")
		return
	}
	saldo := decimal.Zero
	if registro.SaldoFinal != nil {
		saldo = *registro.SaldoFinal
	}
	for _, adminID := range adminIDs {
		n := model.Notificacion{
			Mensaje:       fmt.Sprintf("Caja cerrada con saldo declarado Q%s", saldo.StringFixed(2)),
			DeUsuarioID:   &registro.UsuarioID,
			ParaUsuarioID: adminID,
			Categoria:     model.NotifCierreCaja,
			ReferenciaID:  &registro.ID,
		}
		if err := s.notifier.Enviar(ctx, &n); err != nil {
			log.Warn().Err(err).Msg("caja: notificación de cierre fallida")
		}
	}
}

// avanzarMetaTx adds every sale linked to the shift to the cashier's current
// goal and finalizes it when the target is reached. Finalized goals keep
// accumulating.
func (s *cajaService) avanzarMetaTx(ctx context.Context, tx *gorm.DB, registro *model.RegistroCaja) error {
	meta, err := s.metaRepo.FindActivaTx(tx, registro.UsuarioID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	ventas, err := s.repo.SumVentasTx(tx, registro.ID)
	if err != nil {
		return err
	}
	if ventas.IsZero() {
		return nil
	}

	meta.MontoActual = meta.MontoActual.Add(ventas)
	recienCumplida := false
	if !meta.Cumplida && meta.MontoActual.GreaterThanOrEqual(meta.MontoMeta) {
		now := time.Now()
		meta.Cumplida = true
		meta.Estado = model.MetaFinalizada
		meta.FechaCumplida = &now
		recienCumplida = true
	}
	if err := s.metaRepo.UpdateTx(tx, meta); err != nil {
		return err
	}

	if recienCumplida {
		n := model.Notificacion{
			Mensaje:       fmt.Sprintf("Meta de ventas alcanzada: Q%s", meta.MontoMeta.StringFixed(2)),
			ParaUsuarioID: registro.UsuarioID,
			Categoria:     model.NotifMetaCumplida,
			ReferenciaID:  &meta.ID,
		}
		if err := s.notifier.Enviar(ctx, &n); err != nil {
			log.Warn().Err(err).Msg("caja: notificación de meta fallida")
		}
	}
	return nil
}

// FindAbierta returns the user's open shift at the branch, or nil when there
// is none; asking is not an error.
func (s *cajaService) FindAbierta(ctx context.Context, sucursalID, usuarioID uuid.UUID) (*dto.RegistroCajaResponse, error) {
	registro, err := s.repo.FindAbierta(ctx, sucursalID, usuarioID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, domain.Classify(err)
	}
	return registroToResponse(registro), nil
}

func (s *cajaService) Resumen(ctx context.Context, registroID uuid.UUID) (*dto.ResumenCajaResponse, error) {
	registro, err := s.repo.FindByID(ctx, registroID)
	if err != nil {
		return nil, domain.Classify(err)
	}

	ventasEfectivo := decimal.Zero
	sinEnlace := 0
	var movimientos []dto.MovimientoResponse

	for i := range registro.Ventas {
		v := &registro.Ventas[i]
		if model.EsPagoExentoDeCaja(v.MetodoPago) {
			sinEnlace++
		} else {
			ventasEfectivo = ventasEfectivo.Add(v.TotalVenta)
		}
		movimientos = append(movimientos, dto.MovimientoResponse{
			ID:          v.ID.String(),
			Tipo:        "venta",
			Monto:       v.TotalVenta,
			Descripcion: "Venta " + v.MetodoPago,
			Fecha:       v.FechaVenta.Format(time.RFC3339),
		})
	}

	totalDepositos := decimal.Zero
	for i := range registro.Depositos {
		d := &registro.Depositos[i]
		totalDepositos = totalDepositos.Add(d.Monto)
		movimientos = append(movimientos, dto.MovimientoResponse{
			ID:          d.ID.String(),
			Tipo:        "deposito",
			Monto:       d.Monto,
			Descripcion: fmt.Sprintf("Depósito %s boleta %s", d.Banco, d.NumeroBoleta),
			Fecha:       d.FechaDeposito.Format(time.RFC3339),
		})
	}

	totalEgresos := decimal.Zero
	for i := range registro.Egresos {
		e := &registro.Egresos[i]
		totalEgresos = totalEgresos.Add(e.Monto)
		movimientos = append(movimientos, dto.MovimientoResponse{
			ID:          e.ID.String(),
			Tipo:        "egreso",
			Monto:       e.Monto,
			Descripcion: e.Descripcion,
			Fecha:       e.FechaEgreso.Format(time.RFC3339),
		})
	}

	saldoTeorico := registro.SaldoInicial.Add(ventasEfectivo).Sub(totalDepositos).Sub(totalEgresos)
	resumen := &dto.ResumenCajaResponse{
		Registro:        *registroToResponse(registro),
		VentasEfectivo:  ventasEfectivo,
		TotalDepositos:  totalDepositos,
		TotalEgresos:    totalEgresos,
		SaldoTeorico:    saldoTeorico,
		Movimientos:     movimientos,
		CantidadVentas:  len(registro.Ventas),
		VentasSinEnlace: sinEnlace,
	}
	if registro.SaldoFinal != nil {
		diferencia := registro.SaldoFinal.Sub(saldoTeorico)
		resumen.Diferencia = &diferencia
	}
	return resumen, nil
}

func (s *cajaService) List(ctx context.Context, sucursalID uuid.UUID, limit int) ([]dto.RegistroCajaResponse, error) {
	registros, err := s.repo.List(ctx, sucursalID, limit)
	if err != nil {
		return nil, domain.Classify(err)
	}
	out := make([]dto.RegistroCajaResponse, 0, len(registros))
	for i := range registros {
		out = append(out, *registroToResponse(&registros[i]))
	}
	return out, nil
}

func (s *cajaService) EliminarRegistro(ctx context.Context, registroID uuid.UUID) error {
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.repo.FindByIDTx(tx, registroID); err != nil {
			return err
		}
		if err := s.repo.UnlinkMovimientosTx(tx, registroID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, registroID)
	})
	return domain.Classify(txErr)
}

func (s *cajaService) RegistrarDeposito(ctx context.Context, usuarioID uuid.UUID, req dto.DepositoRequest) (*dto.MovimientoResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, domain.Validation("sucursal_id inválido")
	}

	dep := model.Deposito{
		SucursalID:    sucursalID,
		UsuarioID:     usuarioID,
		Monto:         req.Monto,
		Banco:         req.Banco,
		NumeroBoleta:  req.NumeroBoleta,
		Descripcion:   req.Descripcion,
		FechaDeposito: time.Now(),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Attach to the open shift when there is one; a missing shift is not
		// an error, the deposit floats until a close claims it.
		if registro, err := s.repo.FindAbiertaTx(tx, sucursalID, usuarioID); err == nil {
			dep.RegistroCajaID = &registro.ID
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := s.repo.CreateDeposito(ctx, tx, &dep); err != nil {
			return err
		}
		return s.sucursalRepo.ApplyEgresoTx(tx, sucursalID, req.Monto)
	})
	if txErr != nil {
		return nil, domain.Classify(txErr)
	}

	log.Info().
		Str("deposito_id", dep.ID.String()).
		Str("monto", req.Monto.String()).
		Bool("con_caja", dep.RegistroCajaID != nil).
		Msg("depósito registrado")
	return &dto.MovimientoResponse{
		ID:          dep.ID.String(),
		Tipo:        "deposito",
		Monto:       dep.Monto,
		Descripcion: fmt.Sprintf("Depósito %s boleta %s", dep.Banco, dep.NumeroBoleta),
		Fecha:       dep.FechaDeposito.Format(time.RFC3339),
	}, nil
}

func (s *cajaService) RegistrarEgreso(ctx context.Context, usuarioID uuid.UUID, req dto.EgresoRequest) (*dto.MovimientoResponse, error) {
	sucursalID, err := uuid.Parse(req.SucursalID)
	if err != nil {
		return nil, domain.Validation("sucursal_id inválido")
	}

	egreso := model.Egreso{
		SucursalID:  sucursalID,
		UsuarioID:   usuarioID,
		Monto:       req.Monto,
		Descripcion: req.Descripcion,
		FechaEgreso: time.Now(),
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if registro, err := s.repo.FindAbiertaTx(tx, sucursalID, usuarioID); err == nil {
			egreso.RegistroCajaID = &registro.ID
		} else if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := s.repo.CreateEgreso(ctx, tx, &egreso); err != nil {
			return err
		}
		return s.sucursalRepo.ApplyEgresoTx(tx, sucursalID, req.Monto)
	})
	if txErr != nil {
		return nil, domain.Classify(txErr)
	}

	return &dto.MovimientoResponse{
		ID:          egreso.ID.String(),
		Tipo:        "egreso",
		Monto:       egreso.Monto,
		Descripcion: egreso.Descripcion,
		Fecha:       egreso.FechaEgreso.Format(time.RFC3339),
	}, nil
}

func (s *cajaService) Saldo(ctx context.Context, sucursalID uuid.UUID) (*dto.SaldoSucursalResponse, error) {
	saldo, err := s.sucursalRepo.FindSaldo(ctx, sucursalID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &dto.SaldoSucursalResponse{
				SucursalID:     sucursalID.String(),
				SaldoAcumulado: decimal.Zero,
				TotalIngresos:  decimal.Zero,
				TotalEgresos:   decimal.Zero,
			}, nil
		}
		return nil, domain.Classify(err)
	}
	return &dto.SaldoSucursalResponse{
		SucursalID:     saldo.SucursalID.String(),
		SaldoAcumulado: saldo.SaldoAcumulado,
		TotalIngresos:  saldo.TotalIngresos,
		TotalEgresos:   saldo.TotalEgresos,
	}, nil
}

func (s *cajaService) ResetSaldo(ctx context.Context, sucursalID uuid.UUID) error {
	return domain.Classify(s.sucursalRepo.ResetSaldo(ctx, sucursalID))
}

func registroToResponse(r *model.RegistroCaja) *dto.RegistroCajaResponse {
	resp := &dto.RegistroCajaResponse{
		ID:           r.ID.String(),
		SucursalID:   r.SucursalID.String(),
		UsuarioID:    r.UsuarioID.String(),
		Estado:       r.Estado,
		SaldoInicial: r.SaldoInicial,
		SaldoFinal:   r.SaldoFinal,
		Comentario:   r.Comentario,
		FechaInicio:  r.FechaInicio.Format(time.RFC3339),
	}
	if r.FechaCierre != nil {
		fc := r.FechaCierre.Format(time.RFC3339)
		resp.FechaCierre = &fc
	}
	return resp
}
