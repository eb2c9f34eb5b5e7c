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

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventarioService interface {
	RegistrarCompra(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.RegistrarCompraRequest) (*dto.RegistrarCompraResponse, error)
	AjustarStock(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.AjusteStockRequest) (*dto.ProductoResponse, error)
	Alertas(ctx context.Context, empresaID uuid.UUID) ([]dto.AlertaStockResponse, error)
	Movimientos(ctx context.Context, empresaID uuid.UUID, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
}

type inventarioService struct {
	productoRepo  repository.ProductoRepository
	movRepo       repository.MovimientoStockRepository
	historialRepo repository.HistorialPrecioRepository
	eventos       *bus.Bus
}

func NewInventarioService(
	productoRepo repository.ProductoRepository,
	movRepo repository.MovimientoStockRepository,
	historialRepo repository.HistorialPrecioRepository,
	eventos *bus.Bus,
) InventarioService {
	return &inventarioService{
		productoRepo:  productoRepo,
		movRepo:       movRepo,
		historialRepo: historialRepo,
		eventos:       eventos,
	}
}

// ── Compras ───────────────────────────────────────────────────────────────────

// calcularCPP blends the existing inventory cost with the invoice cost,
// weighted by units, rounded to 2 decimals:
//
//	(stock*costoPrev + cantidad*costoCompra) / (stock + cantidad)
//
// With zero prior stock the new cost is simply the invoice cost.
func calcularCPP(stock int, costoPrev decimal.Decimal, cantidad int, costoCompra decimal.Decimal) decimal.Decimal {
	if stock <= 0 {
		return costoCompra.Round(2)
	}
	valorExistente := costoPrev.Mul(decimal.NewFromInt(int64(stock)))
	valorCompra := costoCompra.Mul(decimal.NewFromInt(int64(cantidad)))
	totalUnidades := decimal.NewFromInt(int64(stock + cantidad))
	return valorExistente.Add(valorCompra).Div(totalUnidades).Round(2)
}

// RegistrarCompra is a stock-in purchase: increments stock, recalculates the
// weighted-average cost, and records the movimiento plus the cost change in
// one transaction.
func (s *inventarioService) RegistrarCompra(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.RegistrarCompraRequest) (*dto.RegistrarCompraResponse, error) {
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, errors.New("producto_id inválido")
	}

	var resp dto.RegistrarCompraResponse
	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		p, err := s.productoRepo.FindByIDTx(tx, empresaID, pid)
		if err != nil {
			return errors.New("producto no encontrado")
		}

		nuevoCPP := calcularCPP(p.StockActual, p.PrecioCosto, req.Cantidad, req.CostoCompra)
		if err := s.productoRepo.ActualizarCompraTx(tx, empresaID, pid, req.Cantidad, nuevoCPP); err != nil {
			return err
		}

		costo := req.CostoCompra
		mov := &model.MovimientoStock{
			EmpresaID:     empresaID,
			ProductoID:    pid,
			Tipo:          "compra",
			Cantidad:      req.Cantidad,
			StockAnterior: p.StockActual,
			StockNuevo:    p.StockActual + req.Cantidad,
			CostoUnitario: &costo,
			Motivo:        fmt.Sprintf("Compra de %d unidades", req.Cantidad),
		}
		if err := s.movRepo.CreateTx(tx, mov); err != nil {
			return err
		}

		if !nuevoCPP.Equal(p.PrecioCosto) {
			hist := &model.HistorialPrecio{
				EmpresaID:    empresaID,
				ProductoID:   pid,
				CostoAntes:   p.PrecioCosto,
				CostoDespues: nuevoCPP,
				VentaAntes:   p.PrecioVenta,
				VentaDespues: p.PrecioVenta,
				Motivo:       "compra",
			}
			if err := s.historialRepo.CreateTx(tx, hist); err != nil {
				return err
			}
		}

		resp = dto.RegistrarCompraResponse{
			ProductoID: pid.String(),
			NuevoStock: p.StockActual + req.Cantidad,
			NuevoCPP:   nuevoCPP,
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoInventario, EmpresaID: empresaID})
	}
	return &resp, nil
}

// ── Ajustes manuales ──────────────────────────────────────────────────────────

func (s *inventarioService) AjustarStock(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.AjusteStockRequest) (*dto.ProductoResponse, error) {
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, errors.New("producto_id inválido")
	}
	if req.Cantidad == 0 {
		return nil, errors.New("la cantidad del ajuste no puede ser cero")
	}

	var actualizado *model.Producto
	txErr := runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		p, err := s.productoRepo.FindByIDTx(tx, empresaID, pid)
		if err != nil {
			return errors.New("producto no encontrado")
		}
		if req.Cantidad < 0 && p.StockActual+req.Cantidad < 0 {
			return fmt.Errorf("el ajuste dejaría el stock de %s en negativo", p.Nombre)
		}
		if err := s.productoRepo.SumarStockTx(tx, empresaID, pid, req.Cantidad); err != nil {
			return err
		}
		mov := &model.MovimientoStock{
			EmpresaID:     empresaID,
			ProductoID:    pid,
			Tipo:          "ajuste_manual",
			Cantidad:      req.Cantidad,
			StockAnterior: p.StockActual,
			StockNuevo:    p.StockActual + req.Cantidad,
			Motivo:        req.Motivo,
		}
		if err := s.movRepo.CreateTx(tx, mov); err != nil {
			return err
		}
		p.StockActual += req.Cantidad
		actualizado = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoInventario, EmpresaID: empresaID})
	}
	return productoToResponse(actualizado), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *inventarioService) Alertas(ctx context.Context, empresaID uuid.UUID) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListAlertas(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, len(productos))
	for i, p := range productos {
		alertas[i] = dto.AlertaStockResponse{
			ProductoID:     p.ID.String(),
			Referencia:     p.Referencia,
			Nombre:         p.Nombre,
			StockActual:    p.StockActual,
			AlertaStockMin: p.AlertaStockMin,
		}
	}
	return alertas, nil
}

func (s *inventarioService) Movimientos(ctx context.Context, empresaID uuid.UUID, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movs, total, err := s.movRepo.List(ctx, empresaID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimientoStockResponse, len(movs))
	for i, m := range movs {
		nombre := ""
		if m.Producto != nil {
			nombre = m.Producto.Nombre
		}
		items[i] = dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Producto:      nombre,
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			CostoUnitario: m.CostoUnitario,
			Motivo:        m.Motivo,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
	}
	return &dto.MovimientoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
