package service

import (
	"context"
	"errors"
	"sync"

	"gestion/internal/carrito"
	"gestion/internal/dto"
	"gestion/internal/repository"

	"github.com/google/uuid"
)

// ErrVentaEnProceso is returned when a checkout for the same terminal is
// already in flight.
var ErrVentaEnProceso = errors.New("Hay una venta en proceso, espere un momento")

// CarritoService orchestrates the per-terminal cart: each empresa+usuario pair
// holds one persisted cart that survives restarts. Catalog data is only read
// at add time — every line is a frozen snapshot afterward.
type CarritoService interface {
	Ver(ctx context.Context, empresaID, usuarioID uuid.UUID) (*dto.CarritoResponse, error)
	Agregar(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.AgregarLineaRequest) (*dto.CarritoResponse, error)
	ActualizarCantidad(ctx context.Context, empresaID, usuarioID uuid.UUID, lineaID string, req dto.ActualizarCantidadRequest) (*dto.CarritoResponse, error)
	ActualizarPrecio(ctx context.Context, empresaID, usuarioID uuid.UUID, lineaID string, req dto.ActualizarPrecioRequest) (*dto.CarritoResponse, error)
	Quitar(ctx context.Context, empresaID, usuarioID uuid.UUID, lineaID string) (*dto.CarritoResponse, error)
	Vaciar(ctx context.Context, empresaID, usuarioID uuid.UUID) error
	// Checkout converts the cart into a registered sale. An empty cart is a
	// no-op; concurrent invocations for the same terminal collapse into one.
	Checkout(ctx context.Context, empresaID, usuarioID uuid.UUID) (*dto.ReciboResponse, error)
}

type carritoService struct {
	store        carrito.Store
	productoRepo repository.ProductoRepository
	caja         CajaService
	ventas       VentaService

	// enProceso guards against double-submit: one checkout at a time per
	// terminal key.
	enProceso sync.Map
}

func NewCarritoService(
	store carrito.Store,
	productoRepo repository.ProductoRepository,
	caja CajaService,
	ventas VentaService,
) CarritoService {
	return &carritoService{store: store, productoRepo: productoRepo, caja: caja, ventas: ventas}
}

func clave(empresaID, usuarioID uuid.UUID) string {
	return empresaID.String() + ":" + usuarioID.String()
}

func (s *carritoService) Ver(ctx context.Context, empresaID, usuarioID uuid.UUID) (*dto.CarritoResponse, error) {
	c, err := s.store.Cargar(ctx, clave(empresaID, usuarioID))
	if err != nil {
		return nil, err
	}
	return carritoToResponse(c, nil), nil
}

func (s *carritoService) Agregar(ctx context.Context, empresaID, usuarioID uuid.UUID, req dto.AgregarLineaRequest) (*dto.CarritoResponse, error) {
	if !s.caja.AbiertaHoy(ctx, empresaID) {
		return nil, errors.New("No hay caja abierta hoy")
	}

	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, errors.New("producto_id inválido")
	}
	p, err := s.productoRepo.FindByID(ctx, empresaID, pid)
	if err != nil {
		return nil, errors.New("producto no encontrado")
	}
	if !p.Activo {
		return nil, errors.New("el producto está inactivo")
	}

	k := clave(empresaID, usuarioID)
	c, err := s.store.Cargar(ctx, k)
	if err != nil {
		return nil, err
	}

	// Snapshot del producto al momento de agregar: precio, costo y techo de
	// stock quedan congelados en la línea.
	c.Agregar(carrito.Linea{
		ProductoID:      p.ID,
		Referencia:      p.Referencia,
		Nombre:          p.Nombre,
		PrecioUnitario:  p.PrecioVenta,
		CostoUnitario:   p.PrecioCosto,
		StockDisponible: p.StockActual,
	})

	return s.guardarYResponder(ctx, k, c)
}

func (s *carritoService) ActualizarCantidad(ctx context.Context, empresaID, usuarioID uuid.UUID, lineaID string, req dto.ActualizarCantidadRequest) (*dto.CarritoResponse, error) {
	if !s.caja.AbiertaHoy(ctx, empresaID) {
		return nil, errors.New("No hay caja abierta hoy")
	}
	k := clave(empresaID, usuarioID)
	c, err := s.store.Cargar(ctx, k)
	if err != nil {
		return nil, err
	}
	if !c.ActualizarCantidad(lineaID, req.Cantidad) {
		return nil, errors.New("línea no encontrada")
	}
	return s.guardarYResponder(ctx, k, c)
}

func (s *carritoService) ActualizarPrecio(ctx context.Context, empresaID, usuarioID uuid.UUID, lineaID string, req dto.ActualizarPrecioRequest) (*dto.CarritoResponse, error) {
	if !s.caja.AbiertaHoy(ctx, empresaID) {
		return nil, errors.New("No hay caja abierta hoy")
	}
	k := clave(empresaID, usuarioID)
	c, err := s.store.Cargar(ctx, k)
	if err != nil {
		return nil, err
	}
	if !c.ActualizarPrecio(lineaID, req.Precio) {
		return nil, errors.New("línea no encontrada")
	}
	return s.guardarYResponder(ctx, k, c)
}

func (s *carritoService) Quitar(ctx context.Context, empresaID, usuarioID uuid.UUID, lineaID string) (*dto.CarritoResponse, error) {
	if !s.caja.AbiertaHoy(ctx, empresaID) {
		return nil, errors.New("No hay caja abierta hoy")
	}
	k := clave(empresaID, usuarioID)
	c, err := s.store.Cargar(ctx, k)
	if err != nil {
		return nil, err
	}
	if !c.Quitar(lineaID) {
		return nil, errors.New("línea no encontrada")
	}
	return s.guardarYResponder(ctx, k, c)
}

func (s *carritoService) Vaciar(ctx context.Context, empresaID, usuarioID uuid.UUID) error {
	return s.store.Limpiar(ctx, clave(empresaID, usuarioID))
}

func (s *carritoService) Checkout(ctx context.Context, empresaID, usuarioID uuid.UUID) (*dto.ReciboResponse, error) {
	k := clave(empresaID, usuarioID)

	if _, enCurso := s.enProceso.LoadOrStore(k, struct{}{}); enCurso {
		return nil, ErrVentaEnProceso
	}
	defer s.enProceso.Delete(k)

	c, err := s.store.Cargar(ctx, k)
	if err != nil {
		return nil, err
	}
	if c.Vacio() {
		return nil, errors.New("El carrito está vacío")
	}

	req := dto.RegistrarVentaRequest{Items: make([]dto.ItemVentaRequest, 0, len(c.Lineas))}
	for _, l := range c.Lineas {
		req.Items = append(req.Items, dto.ItemVentaRequest{
			ProductoID:       l.ProductoID.String(),
			Cantidad:         l.Cantidad,
			PrecioUnitario:   l.PrecioUnitario,
			CostoUnitario:    l.CostoUnitario,
			PrecioModificado: l.PrecioModificado,
		})
	}

	// La venta fallida deja el carrito intacto para corregir y reintentar
	venta, err := s.ventas.Registrar(ctx, empresaID, usuarioID, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Limpiar(ctx, k); err != nil {
		// La venta ya está registrada: el carrito huérfano expira por TTL
		return reciboFromVenta(venta), nil
	}
	return reciboFromVenta(venta), nil
}

func (s *carritoService) guardarYResponder(ctx context.Context, k string, c *carrito.Carrito) (*dto.CarritoResponse, error) {
	avisos := c.DrenarAvisos()
	if err := s.store.Guardar(ctx, k, c); err != nil {
		return nil, err
	}
	return carritoToResponse(c, avisos), nil
}

func carritoToResponse(c *carrito.Carrito, avisos []string) *dto.CarritoResponse {
	lineas := make([]dto.LineaCarritoResponse, len(c.Lineas))
	for i, l := range c.Lineas {
		lineas[i] = dto.LineaCarritoResponse{
			ID:               l.ID,
			ProductoID:       l.ProductoID.String(),
			Referencia:       l.Referencia,
			Nombre:           l.Nombre,
			Cantidad:         l.Cantidad,
			PrecioUnitario:   l.PrecioUnitario,
			StockDisponible:  l.StockDisponible,
			Subtotal:         l.Subtotal(),
			PrecioModificado: l.PrecioModificado,
		}
	}
	return &dto.CarritoResponse{Lineas: lineas, Total: c.Total(), Avisos: avisos}
}

func reciboFromVenta(v *dto.VentaResponse) *dto.ReciboResponse {
	return &dto.ReciboResponse{
		VentaID:      v.ID,
		NumeroTicket: v.NumeroTicket,
		Items:        v.Items,
		Total:        v.Total,
		Utilidad:     v.Utilidad,
		CreatedAt:    v.CreatedAt,
	}
}
