//go:build integration

package router_test

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gestion/internal/config"
	"gestion/internal/infra"
	"gestion/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("gestion_test"),
		tcPostgres.WithUsername("gestion"),
		tcPostgres.WithPassword("gestion"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		TicketStoragePath:  t.TempDir(),
		ZonaHoraria:        "UTC",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	r := router.New(cfg, db, rdb, time.UTC)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	// Registrar empresa + login como admin
	regResp := do(t, srv, "POST", "/v1/auth/registro",
		jsonBody(t, map[string]string{
			"nombre_empresa": "Tienda E2E",
			"email_admin":    "admin@e2e.test",
			"password_admin": "gestion-e2e-2026",
		}), "")
	require.Equal(t, http.StatusCreated, regResp.StatusCode)
	regResp.Body.Close()

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"email": "admin@e2e.test", "password": "gestion-e2e-2026"}), "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func (e *testEnv) crearProducto(t *testing.T, nombre string, costo, venta float64, stock int) string {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/productos",
		jsonBody(t, map[string]any{
			"referencia":       "REF-" + nombre,
			"nombre":           nombre,
			"precio_costo":     costo,
			"precio_venta":     venta,
			"stock_actual":     stock,
			"alerta_stock_min": 5,
		}), e.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func (e *testEnv) abrirCaja(t *testing.T, monto float64) {
	t.Helper()
	resp := do(t, e.server, "POST", "/v1/caja/abrir",
		jsonBody(t, map[string]any{"monto_apertura": monto}), e.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Ciclo completo: registro → caja → carrito → checkout → listado → cierre.
func TestE2E_CicloCompletoDeVenta(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.crearProducto(t, "Gaseosa 500ml", 1500, 2500, 20)
	env.abrirCaja(t, 50000)

	// Agregar al carrito y subir la cantidad
	addResp := do(t, env.server, "POST", "/v1/carrito/lineas",
		jsonBody(t, map[string]string{"producto_id": prodID}), env.token)
	require.Equal(t, http.StatusOK, addResp.StatusCode)
	var cart struct {
		Lineas []struct {
			ID string `json:"id"`
		} `json:"lineas"`
	}
	decodeJSON(t, addResp, &cart)
	require.Len(t, cart.Lineas, 1)

	qtyResp := do(t, env.server, "PATCH", "/v1/carrito/lineas/"+cart.Lineas[0].ID+"/cantidad",
		jsonBody(t, map[string]int{"cantidad": 3}), env.token)
	require.Equal(t, http.StatusOK, qtyResp.StatusCode)
	qtyResp.Body.Close()

	// Checkout
	coResp := do(t, env.server, "POST", "/v1/carrito/checkout", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusCreated, coResp.StatusCode)
	var recibo struct {
		NumeroTicket int     `json:"numero_ticket"`
		Total        float64 `json:"total,string"`
	}
	decodeJSON(t, coResp, &recibo)
	assert.Equal(t, 1, recibo.NumeroTicket)
	assert.InDelta(t, 7500, recibo.Total, 0.01)

	// El stock bajó y la venta aparece en el listado del día
	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 17, prod.StockActual)

	listResp := do(t, env.server, "GET",
		fmt.Sprintf("/v1/ventas?fecha=%s", time.Now().UTC().Format("2006-01-02")), nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var lista struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &lista)
	assert.EqualValues(t, 1, lista.Total)

	// Cierre del día
	cerrarResp := do(t, env.server, "POST", "/v1/caja/cerrar", jsonBody(t, map[string]any{}), env.token)
	require.Equal(t, http.StatusOK, cerrarResp.StatusCode)
	var cierre struct {
		TotalTransacciones int     `json:"total_transacciones"`
		TotalIngresos      float64 `json:"total_ingresos,string"`
	}
	decodeJSON(t, cerrarResp, &cierre)
	assert.Equal(t, 1, cierre.TotalTransacciones)
	assert.InDelta(t, 7500, cierre.TotalIngresos, 0.01)

	// Sin caja abierta, no se vende
	addResp2 := do(t, env.server, "POST", "/v1/carrito/lineas",
		jsonBody(t, map[string]string{"producto_id": prodID}), env.token)
	assert.Equal(t, http.StatusBadRequest, addResp2.StatusCode)
	addResp2.Body.Close()
}

// La venta que excede el stock falla completa y no descuenta nada.
func TestE2E_StockInsuficienteNoDescuenta(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.crearProducto(t, "Panela", 3000, 4000, 2)
	env.abrirCaja(t, 10000)

	ventaResp := do(t, env.server, "POST", "/v1/ventas",
		jsonBody(t, map[string]any{
			"items": []map[string]any{{
				"producto_id":     prodID,
				"cantidad":        5,
				"precio_unitario": 4000,
				"costo_unitario":  3000,
			}},
		}), env.token)
	assert.Equal(t, http.StatusBadRequest, ventaResp.StatusCode)
	ventaResp.Body.Close()

	prodResp := do(t, env.server, "GET", "/v1/productos/"+prodID, nil, env.token)
	require.Equal(t, http.StatusOK, prodResp.StatusCode)
	var prod struct {
		StockActual int `json:"stock_actual"`
	}
	decodeJSON(t, prodResp, &prod)
	assert.Equal(t, 2, prod.StockActual)
}

// La compra suma stock y recalcula el costo promedio ponderado.
func TestE2E_CompraRecalculaCPP(t *testing.T) {
	env := setupTestEnv(t)
	prodID := env.crearProducto(t, "Arroz 500g", 100, 150, 10)

	compraResp := do(t, env.server, "POST", "/v1/inventario/compras",
		jsonBody(t, map[string]any{
			"producto_id":  prodID,
			"cantidad":     5,
			"costo_compra": 130,
		}), env.token)
	require.Equal(t, http.StatusOK, compraResp.StatusCode)
	var compra struct {
		NuevoStock int     `json:"nuevo_stock"`
		NuevoCPP   float64 `json:"nuevo_cpp,string"`
	}
	decodeJSON(t, compraResp, &compra)
	assert.Equal(t, 15, compra.NuevoStock)
	assert.InDelta(t, 110, compra.NuevoCPP, 0.001)

	// El cambio queda en el historial de precios
	histResp := do(t, env.server, "GET", "/v1/productos/"+prodID+"/historial-precios", nil, env.token)
	require.Equal(t, http.StatusOK, histResp.StatusCode)
	var hist struct {
		Data []struct {
			Motivo string `json:"motivo"`
		} `json:"data"`
	}
	decodeJSON(t, histResp, &hist)
	require.NotEmpty(t, hist.Data)
	assert.Equal(t, "compra", hist.Data[0].Motivo)
}
