package service

import (
	"context"
	"errors"
	"time"

	"gestion/internal/bus"
	"gestion/internal/dto"
	"gestion/internal/model"
	"gestion/internal/repository"

	"github.com/google/uuid"
)

type ProductoService interface {
	Crear(ctx context.Context, empresaID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, empresaID, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, empresaID uuid.UUID, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, empresaID, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, empresaID, id uuid.UUID) error
	Reactivar(ctx context.Context, empresaID, id uuid.UUID) error
	HistorialPrecios(ctx context.Context, empresaID, id uuid.UUID) ([]dto.HistorialPrecioResponse, error)
}

type productoService struct {
	repo          repository.ProductoRepository
	historialRepo repository.HistorialPrecioRepository
	eventos       *bus.Bus
}

func NewProductoService(
	repo repository.ProductoRepository,
	historialRepo repository.HistorialPrecioRepository,
	eventos *bus.Bus,
) ProductoService {
	return &productoService{repo: repo, historialRepo: historialRepo, eventos: eventos}
}

func (s *productoService) Crear(ctx context.Context, empresaID uuid.UUID, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	p := &model.Producto{
		EmpresaID:      empresaID,
		Referencia:     req.Referencia,
		Nombre:         req.Nombre,
		Descripcion:    req.Descripcion,
		PrecioCosto:    req.PrecioCosto,
		PrecioVenta:    req.PrecioVenta,
		StockActual:    req.StockActual,
		AlertaStockMin: req.AlertaStockMin,
		Activo:         true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, errors.New("No se pudo crear el producto; verifique que la referencia no esté en uso")
	}
	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoInventario, EmpresaID: empresaID})
	}
	return productoToResponse(p), nil
}

func (s *productoService) Obtener(ctx context.Context, empresaID, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, empresaID, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, empresaID uuid.UUID, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, empresaID, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoResponse, len(productos))
	for i := range productos {
		items[i] = *productoToResponse(&productos[i])
	}
	return &dto.ProductoListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Actualizar edits catalog fields. A precio_venta change also records an
// immutable entry in historial_precios; already-carted lines keep their
// snapshot price.
func (s *productoService) Actualizar(ctx context.Context, empresaID, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, empresaID, id)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}

	ventaAntes := p.PrecioVenta
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.PrecioVenta != nil {
		if req.PrecioVenta.IsNegative() {
			return nil, errors.New("el precio de venta no puede ser negativo")
		}
		p.PrecioVenta = *req.PrecioVenta
	}
	if req.AlertaStockMin != nil {
		p.AlertaStockMin = *req.AlertaStockMin
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if req.PrecioVenta != nil && !ventaAntes.Equal(p.PrecioVenta) {
		hist := &model.HistorialPrecio{
			EmpresaID:    empresaID,
			ProductoID:   p.ID,
			CostoAntes:   p.PrecioCosto,
			CostoDespues: p.PrecioCosto,
			VentaAntes:   ventaAntes,
			VentaDespues: p.PrecioVenta,
			Motivo:       "manual",
		}
		if err := s.historialRepo.Create(ctx, hist); err != nil {
			return nil, err
		}
	}

	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoInventario, EmpresaID: empresaID})
	}
	return productoToResponse(p), nil
}

// Desactivar is a soft delete: the product disappears from search and cannot
// be sold, but its historial and movimientos stay intact.
func (s *productoService) Desactivar(ctx context.Context, empresaID, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, empresaID, id); err != nil {
		return err
	}
	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoInventario, EmpresaID: empresaID})
	}
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, empresaID, id uuid.UUID) error {
	if err := s.repo.Reactivar(ctx, empresaID, id); err != nil {
		return err
	}
	if s.eventos != nil {
		s.eventos.Publicar(ctx, bus.Evento{Tipo: bus.EventoInventario, EmpresaID: empresaID})
	}
	return nil
}

func (s *productoService) HistorialPrecios(ctx context.Context, empresaID, id uuid.UUID) ([]dto.HistorialPrecioResponse, error) {
	hist, err := s.historialRepo.ListByProducto(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.HistorialPrecioResponse, len(hist))
	for i, h := range hist {
		resp[i] = dto.HistorialPrecioResponse{
			CostoAntes:   h.CostoAntes,
			CostoDespues: h.CostoDespues,
			VentaAntes:   h.VentaAntes,
			VentaDespues: h.VentaDespues,
			Motivo:       h.Motivo,
			CreatedAt:    h.CreatedAt.Format(time.RFC3339),
		}
	}
	return resp, nil
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:             p.ID.String(),
		Referencia:     p.Referencia,
		Nombre:         p.Nombre,
		Descripcion:    p.Descripcion,
		PrecioCosto:    p.PrecioCosto,
		PrecioVenta:    p.PrecioVenta,
		StockActual:    p.StockActual,
		AlertaStockMin: p.AlertaStockMin,
		StockBajo:      p.StockActual <= p.AlertaStockMin,
		Activo:         p.Activo,
	}
}
