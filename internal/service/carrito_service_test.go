package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"gestion/internal/carrito"
	"gestion/internal/dto"
	"gestion/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory carrito.Store ──────────────────────────────────────────────────
// Round-trips through JSON like the Redis store, so mutations on a loaded cart
// never leak into the snapshot without an explicit Guardar.

type carritoStoreMem struct {
	mu        sync.Mutex
	snapshots map[string][]byte
}

var _ carrito.Store = (*carritoStoreMem)(nil)

func newCarritoStoreMem() *carritoStoreMem {
	return &carritoStoreMem{snapshots: make(map[string][]byte)}
}

func (s *carritoStoreMem) Cargar(_ context.Context, clave string) (*carrito.Carrito, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.snapshots[clave]
	if !ok {
		return carrito.Nuevo(), nil
	}
	var c carrito.Carrito
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *carritoStoreMem) Guardar(_ context.Context, clave string, c *carrito.Carrito) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[clave] = raw
	return nil
}

func (s *carritoStoreMem) Limpiar(_ context.Context, clave string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, clave)
	return nil
}

// ── VentaService stub ────────────────────────────────────────────────────────

type ventasServiceStub struct {
	mu        sync.Mutex
	llamadas  int
	ultimoReq dto.RegistrarVentaRequest
	fallo     error
	// iniciado/continuar coordinan el test de doble checkout
	iniciado  chan struct{}
	continuar chan struct{}
}

var _ VentaService = (*ventasServiceStub)(nil)

func (s *ventasServiceStub) Registrar(_ context.Context, _, _ uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	s.mu.Lock()
	s.llamadas++
	s.ultimoReq = req
	s.mu.Unlock()

	if s.iniciado != nil {
		s.iniciado <- struct{}{}
		<-s.continuar
	}
	if s.fallo != nil {
		return nil, s.fallo
	}

	total := decimal.Zero
	for _, item := range req.Items {
		total = total.Add(item.PrecioUnitario.Mul(decimal.NewFromInt(int64(item.Cantidad))))
	}
	return &dto.VentaResponse{ID: uuid.NewString(), NumeroTicket: 1, Total: total}, nil
}

func (s *ventasServiceStub) Listar(_ context.Context, _ uuid.UUID, _ dto.VentaFilter) (*dto.VentaListResponse, error) {
	return &dto.VentaListResponse{}, nil
}

func (s *ventasServiceStub) vecesLlamado() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.llamadas
}

// ── Tests ────────────────────────────────────────────────────────────────────

type carritoEnv struct {
	svc       CarritoService
	store     *carritoStoreMem
	productos *productoRepoFake
	caja      *cajaAbiertaStub
	ventas    *ventasServiceStub
	empresaID uuid.UUID
	usuarioID uuid.UUID
}

func nuevoCarritoEnv() *carritoEnv {
	env := &carritoEnv{
		store:     newCarritoStoreMem(),
		productos: newProductoRepoFake(),
		caja:      &cajaAbiertaStub{abierta: true, sesionID: uuid.New()},
		ventas:    &ventasServiceStub{},
		empresaID: uuid.New(),
		usuarioID: uuid.New(),
	}
	env.svc = NewCarritoService(env.store, env.productos, env.caja, env.ventas)
	return env
}

func (e *carritoEnv) producto(nombre string, venta, costo float64, stock int) uuid.UUID {
	return e.productos.agregar(model.Producto{
		EmpresaID:   e.empresaID,
		Referencia:  "REF-" + nombre,
		Nombre:      nombre,
		PrecioVenta: decimal.NewFromFloat(venta),
		PrecioCosto: decimal.NewFromFloat(costo),
		StockActual: stock,
		Activo:      true,
	})
}

func TestCarritoAgregar_CajaCerrada(t *testing.T) {
	env := nuevoCarritoEnv()
	env.caja.abierta = false
	pid := env.producto("Arroz 500g", 3500, 2800, 10)

	_, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})

	require.Error(t, err)
	assert.Equal(t, "No hay caja abierta hoy", err.Error())
}

func TestCarritoMutaciones_CajaCerrada(t *testing.T) {
	env := nuevoCarritoEnv()
	pid := env.producto("Arroz 500g", 3500, 2800, 10)

	resp, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})
	require.NoError(t, err)
	lineaID := resp.Lineas[0].ID

	// Cerrada la caja, ninguna mutación del carrito pasa
	env.caja.abierta = false

	_, err = env.svc.ActualizarCantidad(context.Background(), env.empresaID, env.usuarioID, lineaID,
		dto.ActualizarCantidadRequest{Cantidad: 5})
	require.Error(t, err)
	assert.Equal(t, "No hay caja abierta hoy", err.Error())

	_, err = env.svc.ActualizarPrecio(context.Background(), env.empresaID, env.usuarioID, lineaID,
		dto.ActualizarPrecioRequest{Precio: decimal.NewFromInt(4000)})
	require.Error(t, err)
	assert.Equal(t, "No hay caja abierta hoy", err.Error())

	_, err = env.svc.Quitar(context.Background(), env.empresaID, env.usuarioID, lineaID)
	require.Error(t, err)
	assert.Equal(t, "No hay caja abierta hoy", err.Error())

	// El snapshot persistido queda tal cual estaba
	visto, err := env.svc.Ver(context.Background(), env.empresaID, env.usuarioID)
	require.NoError(t, err)
	require.Len(t, visto.Lineas, 1)
	assert.Equal(t, 1, visto.Lineas[0].Cantidad)
	assert.True(t, visto.Lineas[0].PrecioUnitario.Equal(decimal.NewFromInt(3500)))
}

func TestCarritoAgregar_ProductoInactivoOInexistente(t *testing.T) {
	env := nuevoCarritoEnv()
	pid := env.producto("Descontinuado", 5000, 4000, 10)
	env.productos.productos[pid].Activo = false

	_, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inactivo")

	_, err = env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: uuid.NewString(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no encontrado")
}

func TestCarritoAgregar_LaLineaEsUnSnapshot(t *testing.T) {
	env := nuevoCarritoEnv()
	pid := env.producto("Café 250g", 9500, 7000, 5)

	resp, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Lineas, 1)

	// Subir el precio de catálogo no toca la línea ya agregada
	env.productos.productos[pid].PrecioVenta = decimal.NewFromInt(11000)

	visto, err := env.svc.Ver(context.Background(), env.empresaID, env.usuarioID)
	require.NoError(t, err)
	assert.True(t, visto.Lineas[0].PrecioUnitario.Equal(decimal.NewFromInt(9500)))

	// La nueva línea sí toma el precio nuevo — y queda como línea aparte
	resp, err = env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})
	require.NoError(t, err)
	require.Len(t, resp.Lineas, 2)
	assert.True(t, resp.Lineas[1].PrecioUnitario.Equal(decimal.NewFromInt(11000)))
}

func TestCarritoActualizarCantidad_AvisoDeClampSoloUnaVez(t *testing.T) {
	env := nuevoCarritoEnv()
	pid := env.producto("Aceite 1L", 12000, 9500, 4)

	resp, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})
	require.NoError(t, err)
	lineaID := resp.Lineas[0].ID

	resp, err = env.svc.ActualizarCantidad(context.Background(), env.empresaID, env.usuarioID, lineaID,
		dto.ActualizarCantidadRequest{Cantidad: 99})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Lineas[0].Cantidad)
	require.Len(t, resp.Avisos, 1)
	assert.Contains(t, resp.Avisos[0], "Solo hay 4 unidades")

	// El aviso no se repite en lecturas posteriores
	visto, err := env.svc.Ver(context.Background(), env.empresaID, env.usuarioID)
	require.NoError(t, err)
	assert.Empty(t, visto.Avisos)
}

func TestCarritoCheckout_Vacio(t *testing.T) {
	env := nuevoCarritoEnv()

	_, err := env.svc.Checkout(context.Background(), env.empresaID, env.usuarioID)

	require.Error(t, err)
	assert.Equal(t, "El carrito está vacío", err.Error())
	assert.Equal(t, 0, env.ventas.vecesLlamado())
}

func TestCarritoCheckout_RegistraVentaYLimpiaElCarrito(t *testing.T) {
	env := nuevoCarritoEnv()
	pid := env.producto("Arroz 500g", 3500, 2800, 10)

	resp, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})
	require.NoError(t, err)
	_, err = env.svc.ActualizarCantidad(context.Background(), env.empresaID, env.usuarioID, resp.Lineas[0].ID,
		dto.ActualizarCantidadRequest{Cantidad: 3})
	require.NoError(t, err)

	recibo, err := env.svc.Checkout(context.Background(), env.empresaID, env.usuarioID)

	require.NoError(t, err)
	assert.Equal(t, 1, recibo.NumeroTicket)
	assert.True(t, recibo.Total.Equal(decimal.NewFromInt(10500)))
	assert.Equal(t, 1, env.ventas.vecesLlamado())

	require.Len(t, env.ventas.ultimoReq.Items, 1)
	assert.Equal(t, pid.String(), env.ventas.ultimoReq.Items[0].ProductoID)
	assert.Equal(t, 3, env.ventas.ultimoReq.Items[0].Cantidad)

	visto, err := env.svc.Ver(context.Background(), env.empresaID, env.usuarioID)
	require.NoError(t, err)
	assert.Empty(t, visto.Lineas)
}

func TestCarritoCheckout_VentaFallidaDejaElCarritoIntacto(t *testing.T) {
	env := nuevoCarritoEnv()
	env.ventas.fallo = errors.New("stock insuficiente de Arroz 500g")
	pid := env.producto("Arroz 500g", 3500, 2800, 10)

	_, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})
	require.NoError(t, err)

	_, err = env.svc.Checkout(context.Background(), env.empresaID, env.usuarioID)
	require.Error(t, err)

	visto, err := env.svc.Ver(context.Background(), env.empresaID, env.usuarioID)
	require.NoError(t, err)
	require.Len(t, visto.Lineas, 1)

	// Corregido el fallo, el reintento sale con el mismo carrito
	env.ventas.fallo = nil
	_, err = env.svc.Checkout(context.Background(), env.empresaID, env.usuarioID)
	require.NoError(t, err)
	assert.Equal(t, 2, env.ventas.vecesLlamado())
}

func TestCarritoCheckout_DobleSubmitColapsaEnUnaVenta(t *testing.T) {
	env := nuevoCarritoEnv()
	env.ventas.iniciado = make(chan struct{})
	env.ventas.continuar = make(chan struct{})
	pid := env.producto("Café 250g", 9500, 7000, 5)

	_, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{
		ProductoID: pid.String(),
	})
	require.NoError(t, err)

	primero := make(chan error, 1)
	go func() {
		_, err := env.svc.Checkout(context.Background(), env.empresaID, env.usuarioID)
		primero <- err
	}()

	// Con el primer checkout dentro de Registrar, el segundo debe rebotar
	<-env.ventas.iniciado
	_, err = env.svc.Checkout(context.Background(), env.empresaID, env.usuarioID)
	require.ErrorIs(t, err, ErrVentaEnProceso)

	close(env.ventas.continuar)
	require.NoError(t, <-primero)
	assert.Equal(t, 1, env.ventas.vecesLlamado())
}

func TestCarritoQuitarYVaciar(t *testing.T) {
	env := nuevoCarritoEnv()
	arroz := env.producto("Arroz 500g", 3500, 2800, 10)
	aceite := env.producto("Aceite 1L", 12000, 9500, 4)

	resp, err := env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{ProductoID: arroz.String()})
	require.NoError(t, err)
	_, err = env.svc.Agregar(context.Background(), env.empresaID, env.usuarioID, dto.AgregarLineaRequest{ProductoID: aceite.String()})
	require.NoError(t, err)

	quitado, err := env.svc.Quitar(context.Background(), env.empresaID, env.usuarioID, resp.Lineas[0].ID)
	require.NoError(t, err)
	require.Len(t, quitado.Lineas, 1)
	assert.Equal(t, "Aceite 1L", quitado.Lineas[0].Nombre)

	_, err = env.svc.Quitar(context.Background(), env.empresaID, env.usuarioID, "no-existe")
	require.Error(t, err)

	require.NoError(t, env.svc.Vaciar(context.Background(), env.empresaID, env.usuarioID))
	visto, err := env.svc.Ver(context.Background(), env.empresaID, env.usuarioID)
	require.NoError(t, err)
	assert.Empty(t, visto.Lineas)
}
