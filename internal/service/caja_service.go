package service

import (
	"context"
	"errors"
	"time"

	"gestion/internal/bus"
	"gestion/internal/dto"
	"gestion/internal/model"
	"gestion/internal/repository"
	"gestion/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CajaService interface {
	Abrir(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error)
	Cerrar(ctx context.Context, empresaID, usuarioID uuid.UUID) (*dto.CierreCajaResponse, error)
	Actual(ctx context.Context, empresaID uuid.UUID) (*dto.SesionCajaResponse, error)
	Historial(ctx context.Context, empresaID uuid.UUID, page, limit int) (*dto.HistorialCajaResponse, error)
	// AbiertaHoy is the trading gate consulted by carrito and ventas
	AbiertaHoy(ctx context.Context, empresaID uuid.UUID) bool
}

type cajaService struct {
	repo       repository.CajaRepository
	ventaRepo  repository.VentaRepository
	eventos    *bus.Bus
	dispatcher *worker.Dispatcher
	loc        *time.Location
}

func NewCajaService(
	repo repository.CajaRepository,
	ventaRepo repository.VentaRepository,
	eventos *bus.Bus,
	dispatcher *worker.Dispatcher,
	loc *time.Location,
) CajaService {
	return &cajaService{repo: repo, ventaRepo: ventaRepo, eventos: eventos, dispatcher: dispatcher, loc: loc}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *cajaService) Abrir(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.AbrirCajaRequest) (*dto.SesionCajaResponse, error) {
	hoy := diaOperativo(s.loc)

	// Reopening over a stale session is allowed; reopening today's open
	// session is rejected to avoid silently resetting the monto de apertura.
	if existente, err := s.repo.FindSesionByEmpresa(ctx, empresaID); err == nil {
		if existente.Estado == "abierta" && existente.FechaApertura == hoy {
			return nil, errors.New("La caja ya está abierta hoy")
		}
	}

	sesion := &model.SesionCaja{
		EmpresaID:     empresaID,
		Estado:        "abierta",
		FechaApertura: hoy,
		MontoApertura: req.MontoApertura,
		AbiertaPor:    usuarioID,
		CerradaPor:    nil,
		OpenedAt:      time.Now(),
		ClosedAt:      nil,
	}
	// Upsert on (empresa_id): concurrent duplicate aperturas converge on one row
	if err := s.repo.UpsertSesion(ctx, sesion); err != nil {
		return nil, err
	}

	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoCaja, EmpresaID: empresaID})
	}
	return s.sesionToResponse(sesion), nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Single logical transaction: the daily summary is fetched BEFORE any write;
// if that fetch fails the sesión stays abierta and nothing is persisted.

func (s *cajaService) Cerrar(ctx context.Context, empresaID, usuarioID uuid.UUID) (*dto.CierreCajaResponse, error) {
	sesion, err := s.repo.FindSesionByEmpresa(ctx, empresaID)
	if err != nil {
		return nil, errors.New("No hay sesión de caja para cerrar")
	}
	hoy := diaOperativo(s.loc)
	if sesion.Estado != "abierta" || sesion.FechaApertura != hoy {
		return nil, errors.New("No hay caja abierta hoy")
	}

	desde, hasta, err := rangoDia(hoy, s.loc)
	if err != nil {
		return nil, err
	}
	resumen, err := s.ventaRepo.ResumenPorRango(ctx, empresaID, desde, hasta)
	if err != nil {
		return nil, errors.New("No se pudo obtener el resumen del día; la caja sigue abierta")
	}

	ahora := time.Now()
	cierre := &model.CierreCaja{
		EmpresaID:          empresaID,
		FechaCierre:        hoy,
		MontoApertura:      sesion.MontoApertura,
		TotalIngresos:      resumen.TotalVentas,
		TotalTransacciones: int(resumen.CantidadTransacciones),
		TotalItemsVendidos: int(resumen.TotalItemsVendidos),
		Utilidad:           resumen.Utilidad,
		CerradaPor:         usuarioID,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateCierreTx(tx, cierre); err != nil {
			return err
		}
		sesion.Estado = "cerrada"
		sesion.CerradaPor = &usuarioID
		sesion.ClosedAt = &ahora
		return s.repo.UpdateSesionTx(tx, sesion)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Best-effort: mail the closing summary to the empresa admin
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueCierreEmail(ctx, map[string]interface{}{
			"empresa_id": empresaID.String(),
			"fecha":      hoy,
			"total":      cierre.TotalIngresos.String(),
			"ventas":     cierre.TotalTransacciones,
			"items":      cierre.TotalItemsVendidos,
			"utilidad":   cierre.Utilidad.String(),
		})
	}
	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoCaja, EmpresaID: empresaID})
	}

	return cierreToResponse(cierre), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) Actual(ctx context.Context, empresaID uuid.UUID) (*dto.SesionCajaResponse, error) {
	sesion, err := s.repo.FindSesionByEmpresa(ctx, empresaID)
	if err != nil {
		return nil, nil // nunca abierta — the handler reports "sin sesión"
	}
	return s.sesionToResponse(sesion), nil
}

func (s *cajaService) Historial(ctx context.Context, empresaID uuid.UUID, page, limit int) (*dto.HistorialCajaResponse, error) {
	cierres, total, err := s.repo.ListCierres(ctx, empresaID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CierreCajaResponse, 0, len(cierres))
	for i := range cierres {
		items = append(items, *cierreToResponse(&cierres[i]))
	}
	return &dto.HistorialCajaResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *cajaService) AbiertaHoy(ctx context.Context, empresaID uuid.UUID) bool {
	sesion, err := s.repo.FindSesionByEmpresa(ctx, empresaID)
	if err != nil {
		return false
	}
	return sesion.Estado == "abierta" && sesion.FechaApertura == diaOperativo(s.loc)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *cajaService) sesionToResponse(sesion *model.SesionCaja) *dto.SesionCajaResponse {
	resp := &dto.SesionCajaResponse{
		ID:            sesion.ID.String(),
		Estado:        sesion.Estado,
		FechaApertura: sesion.FechaApertura,
		MontoApertura: sesion.MontoApertura,
		AbiertaHoy:    sesion.Estado == "abierta" && sesion.FechaApertura == diaOperativo(s.loc),
		OpenedAt:      sesion.OpenedAt.Format(time.RFC3339),
	}
	if sesion.ClosedAt != nil {
		t := sesion.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}

func cierreToResponse(c *model.CierreCaja) *dto.CierreCajaResponse {
	return &dto.CierreCajaResponse{
		ID:                 c.ID.String(),
		FechaCierre:        c.FechaCierre,
		MontoApertura:      c.MontoApertura,
		TotalIngresos:      c.TotalIngresos,
		TotalTransacciones: c.TotalTransacciones,
		TotalItemsVendidos: c.TotalItemsVendidos,
		Utilidad:           c.Utilidad,
	}
}
