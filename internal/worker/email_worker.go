package worker

// email_worker.go
// Mails the daily closing summary to the empresa admins. The SMTP relay sits
// behind a circuit breaker so an outage fast-fails instead of blocking the
// pool.

import (
	"context"
	"encoding/json"
	"fmt"

	"gestion/internal/infra"
	"gestion/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CierreEmailPayload is the job envelope sent to QueueEmails.
type CierreEmailPayload struct {
	EmpresaID string `json:"empresa_id"`
	Fecha     string `json:"fecha"`
	Total     string `json:"total"`
	Ventas    int    `json:"ventas"`
	Items     int    `json:"items"`
	Utilidad  string `json:"utilidad"`
}

type CierreEmailWorker struct {
	mailer      *infra.Mailer
	perfilRepo  repository.PerfilRepository
	empresaRepo repository.EmpresaRepository
	breaker     *infra.CircuitBreaker
}

func NewCierreEmailWorker(
	mailer *infra.Mailer,
	perfilRepo repository.PerfilRepository,
	empresaRepo repository.EmpresaRepository,
	breaker *infra.CircuitBreaker,
) *CierreEmailWorker {
	return &CierreEmailWorker{mailer: mailer, perfilRepo: perfilRepo, empresaRepo: empresaRepo, breaker: breaker}
}

func (w *CierreEmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload CierreEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}

	empresaID, err := uuid.Parse(payload.EmpresaID)
	if err != nil {
		log.Error().Str("empresa_id", payload.EmpresaID).Msg("email_worker: invalid empresa_id")
		return nil
	}

	// Montos ilegibles descartan el job: un resumen con $ 0 inventado es peor
	// que ninguno.
	total, err := decimal.NewFromString(payload.Total)
	if err != nil {
		log.Error().Str("empresa_id", payload.EmpresaID).Str("total", payload.Total).Msg("email_worker: total inválido")
		return nil
	}
	utilidad, err := decimal.NewFromString(payload.Utilidad)
	if err != nil {
		log.Error().Str("empresa_id", payload.EmpresaID).Str("utilidad", payload.Utilidad).Msg("email_worker: utilidad inválida")
		return nil
	}

	empresa, err := w.empresaRepo.FindByID(ctx, empresaID)
	if err != nil {
		return fmt.Errorf("email_worker: empresa %s: %w", payload.EmpresaID, err)
	}
	perfiles, err := w.perfilRepo.ListByEmpresa(ctx, empresaID, false)
	if err != nil {
		return fmt.Errorf("email_worker: perfiles: %w", err)
	}

	subject := fmt.Sprintf("%s — Cierre de caja %s", empresa.Nombre, payload.Fecha)
	body := fmt.Sprintf(
		"Resumen del día %s\n\nTotal vendido: %s\nTransacciones: %d\nUnidades vendidas: %d\nUtilidad: %s\n",
		payload.Fecha, infra.FormatCOP(total), payload.Ventas, payload.Items, infra.FormatCOP(utilidad),
	)

	enviados := 0
	for _, p := range perfiles {
		if p.Rol != "admin" {
			continue
		}
		to := p.Email
		err := w.breaker.Execute(func() error {
			return w.mailer.Send(to, subject, body, "")
		})
		if err != nil {
			return fmt.Errorf("email_worker: send to %s: %w", to, err)
		}
		enviados++
	}

	log.Info().Str("empresa_id", payload.EmpresaID).Int("enviados", enviados).Msg("email_worker: resumen de cierre enviado")
	return nil
}
