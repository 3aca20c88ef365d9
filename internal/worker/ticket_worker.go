package worker

// ticket_worker.go
// Generates the PDF receipt for a completed sale and, when the job carries a
// customer email, chains an email job for delivery.

import (
	"context"
	"encoding/json"
	"fmt"

	"gustito/backend/internal/infra"
	"gustito/backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type TicketWorker struct {
	ventaRepo      repository.VentaRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
}

func NewTicketWorker(ventaRepo repository.VentaRepository, dispatcher *Dispatcher, pdfStoragePath string) *TicketWorker {
	return &TicketWorker{
		ventaRepo:      ventaRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
	}
}

func (w *TicketWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload TicketPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("ticket_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}

	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		log.Error().Str("venta_id", payload.VentaID).Msg("ticket_worker: invalid venta_id")
		return nil
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return fmt.Errorf("ticket_worker: fetch venta %s: %w", payload.VentaID, err)
	}

	pdfPath, err := infra.GenerateTicketPDF(venta, w.pdfStoragePath)
	if err != nil {
		return err
	}
	log.Info().Str("venta_id", payload.VentaID).Str("pdf", pdfPath).Msg("ticket generado")

	if payload.Correo == "" {
		return nil
	}
	return w.dispatcher.EnqueueEmail(ctx, EmailPayload{
		ToEmail: payload.Correo,
		Subject: "Su comprobante de compra",
		Body:    "Adjuntamos el comprobante de su compra. ¡Gracias!",
		PDFPath: pdfPath,
	})
}
