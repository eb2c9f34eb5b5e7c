package worker

// ticket_worker.go
// Generates the receipt PDF for a registered sale, shaped by the empresa's
// printing preferences.

import (
	"context"
	"encoding/json"
	"fmt"

	"gestion/internal/infra"
	"gestion/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TicketJobPayload is the job envelope sent to QueueTickets.
type TicketJobPayload struct {
	VentaID   string `json:"venta_id"`
	EmpresaID string `json:"empresa_id"`
}

type TicketWorker struct {
	ventaRepo   repository.VentaRepository
	empresaRepo repository.EmpresaRepository
	storagePath string
}

func NewTicketWorker(ventaRepo repository.VentaRepository, empresaRepo repository.EmpresaRepository, storagePath string) *TicketWorker {
	return &TicketWorker{ventaRepo: ventaRepo, empresaRepo: empresaRepo, storagePath: storagePath}
}

func (w *TicketWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload TicketJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("ticket_worker: invalid payload")
		return nil // malformed payloads are not retryable
	}

	empresaID, err := uuid.Parse(payload.EmpresaID)
	if err != nil {
		log.Error().Str("empresa_id", payload.EmpresaID).Msg("ticket_worker: invalid empresa_id")
		return nil
	}
	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		log.Error().Str("venta_id", payload.VentaID).Msg("ticket_worker: invalid venta_id")
		return nil
	}

	venta, err := w.ventaRepo.FindByID(ctx, empresaID, ventaID)
	if err != nil {
		return fmt.Errorf("ticket_worker: venta %s: %w", payload.VentaID, err)
	}
	empresa, err := w.empresaRepo.FindByID(ctx, empresaID)
	if err != nil {
		return fmt.Errorf("ticket_worker: empresa %s: %w", payload.EmpresaID, err)
	}

	pdfPath, err := infra.GenerateTicketPDF(venta, empresa, w.storagePath)
	if err != nil {
		return fmt.Errorf("ticket_worker: generate pdf: %w", err)
	}

	log.Info().
		Str("venta_id", payload.VentaID).
		Int("ticket", venta.NumeroTicket).
		Str("pdf", pdfPath).
		Msg("ticket_worker: PDF generated")
	return nil
}
