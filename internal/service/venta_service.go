package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gestion/internal/bus"
	"gestion/internal/dto"
	"gestion/internal/model"
	"gestion/internal/repository"
	"gestion/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaService interface {
	Registrar(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	Listar(ctx context.Context, empresaID uuid.UUID, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	caja         CajaService
	eventos      *bus.Bus
	dispatcher   *worker.Dispatcher
	loc          *time.Location
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	caja CajaService,
	eventos *bus.Bus,
	dispatcher *worker.Dispatcher,
	loc *time.Location,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		movRepo:      movRepo,
		caja:         caja,
		eventos:      eventos,
		dispatcher:   dispatcher,
		loc:          loc,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Registrar ─────────────────────────────────────────────────────────────────
// Atomic sale registration:
//   1. Validate caja abierta hoy
//   2. BEGIN TX: next ticket, insert venta+items, conditional stock decrement,
//      movimiento_stock ledger rows
//   3. COMMIT — any failed step rolls everything back; stock never moves
//      without its venta and ledger entry
//   4. (async) ticket PDF job, inventory-refresh event

func (s *ventaService) Registrar(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	if !s.caja.AbiertaHoy(ctx, empresaID) {
		return nil, errors.New("No hay caja abierta hoy")
	}
	if len(req.Items) == 0 {
		return nil, errors.New("La venta no tiene ítems")
	}

	sesionID := uuid.Nil
	if actual, err := s.caja.Actual(ctx, empresaID); err == nil && actual != nil {
		if parsed, err := uuid.Parse(actual.ID); err == nil {
			sesionID = parsed
		}
	}

	var venta model.Venta
	nombres := make(map[uuid.UUID]string)
	referencias := make(map[uuid.UUID]string)

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.repo.NextTicketNumberTx(tx, empresaID)
		if err != nil {
			return err
		}

		total := decimal.Zero
		utilidad := decimal.Zero
		items := make([]model.VentaItem, 0, len(req.Items))

		for _, item := range req.Items {
			pid, err := uuid.Parse(item.ProductoID)
			if err != nil {
				return fmt.Errorf("producto_id inválido: %w", err)
			}
			p, err := s.productoRepo.FindByIDTx(tx, empresaID, pid)
			if err != nil {
				return fmt.Errorf("producto %s no encontrado", item.ProductoID)
			}
			if !p.Activo {
				return fmt.Errorf("el producto %s está inactivo y no puede venderse", p.Nombre)
			}
			nombres[pid] = p.Nombre
			referencias[pid] = p.Referencia

			cantidad := decimal.NewFromInt(int64(item.Cantidad))
			total = total.Add(item.PrecioUnitario.Mul(cantidad))
			utilidad = utilidad.Add(item.PrecioUnitario.Sub(item.CostoUnitario).Mul(cantidad))
			items = append(items, model.VentaItem{
				ProductoID:       pid,
				Cantidad:         item.Cantidad,
				PrecioUnitario:   item.PrecioUnitario,
				CostoUnitario:    item.CostoUnitario,
				PrecioModificado: item.PrecioModificado,
			})
		}

		venta = model.Venta{
			EmpresaID:    empresaID,
			UsuarioID:    usuarioID,
			SesionCajaID: sesionID,
			NumeroTicket: ticket,
			Total:        total,
			Utilidad:     utilidad,
			Items:        items,
		}
		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}

		// Descontar stock + ledger. The conditional decrement makes the whole
		// venta fail when any item lacks stock — no partial sales.
		for _, item := range venta.Items {
			antes, err := s.productoRepo.FindByIDTx(tx, empresaID, item.ProductoID)
			if err != nil {
				return err
			}
			if err := s.productoRepo.DescontarStockTx(tx, empresaID, item.ProductoID, item.Cantidad); err != nil {
				if errors.Is(err, repository.ErrStockInsuficiente) {
					return fmt.Errorf("stock insuficiente de %s", nombres[item.ProductoID])
				}
				return err
			}
			ref := venta.ID
			mov := &model.MovimientoStock{
				EmpresaID:     empresaID,
				ProductoID:    item.ProductoID,
				Tipo:          "venta",
				Cantidad:      -item.Cantidad,
				StockAnterior: antes.StockActual,
				StockNuevo:    antes.StockActual - item.Cantidad,
				Motivo:        fmt.Sprintf("Venta #%d", venta.NumeroTicket),
				ReferenciaID:  &ref,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async ticket PDF — best-effort, fire & forget
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueTicket(ctx, map[string]interface{}{
			"venta_id":   venta.ID.String(),
			"empresa_id": empresaID.String(),
		})
	}
	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoVenta, EmpresaID: empresaID})
	}

	return ventaToResponse(&venta, nombres, referencias), nil
}

// Listar returns a paginated list of sales for one business day (default: today).
func (s *ventaService) Listar(ctx context.Context, empresaID uuid.UUID, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	dia := filter.Fecha
	if dia == "" {
		dia = diaOperativo(s.loc)
	}
	desde, hasta, err := rangoDia(dia, s.loc)
	if err != nil {
		return nil, errors.New("fecha inválida, use YYYY-MM-DD")
	}

	ventas, total, err := s.repo.List(ctx, empresaID, desde, hasta, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i], nil, nil))
	}
	return &dto.VentaListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func ventaToResponse(v *model.Venta, nombres, referencias map[uuid.UUID]string) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		nombre := nombres[item.ProductoID]
		referencia := referencias[item.ProductoID]
		if item.Producto != nil {
			nombre = item.Producto.Nombre
			referencia = item.Producto.Referencia
		}
		items = append(items, dto.ItemVentaResponse{
			Producto:         nombre,
			Referencia:       referencia,
			Cantidad:         item.Cantidad,
			PrecioUnitario:   item.PrecioUnitario,
			Subtotal:         item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad))),
			PrecioModificado: item.PrecioModificado,
		})
	}
	return &dto.VentaResponse{
		ID:           v.ID.String(),
		NumeroTicket: v.NumeroTicket,
		Items:        items,
		Total:        v.Total,
		Utilidad:     v.Utilidad,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
	}
}
