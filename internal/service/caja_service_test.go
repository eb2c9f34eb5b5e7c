package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gestion/internal/dto"
	"gestion/internal/model"
	"gestion/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory CajaRepository ─────────────────────────────────────────────────

type cajaRepoFake struct {
	sesiones map[uuid.UUID]*model.SesionCaja // keyed by empresa_id
	cierres  []model.CierreCaja
}

var _ repository.CajaRepository = (*cajaRepoFake)(nil)

func newCajaRepoFake() *cajaRepoFake {
	return &cajaRepoFake{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *cajaRepoFake) UpsertSesion(_ context.Context, s *model.SesionCaja) error {
	if existente, ok := r.sesiones[s.EmpresaID]; ok {
		s.ID = existente.ID
	} else if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sesiones[s.EmpresaID] = s
	return nil
}

func (r *cajaRepoFake) FindSesionByEmpresa(_ context.Context, empresaID uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[empresaID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *cajaRepoFake) UpdateSesionTx(_ *gorm.DB, s *model.SesionCaja) error {
	r.sesiones[s.EmpresaID] = s
	return nil
}

func (r *cajaRepoFake) CreateCierreTx(_ *gorm.DB, c *model.CierreCaja) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.cierres = append(r.cierres, *c)
	return nil
}

func (r *cajaRepoFake) ListCierres(_ context.Context, empresaID uuid.UUID, page, limit int) ([]model.CierreCaja, int64, error) {
	var out []model.CierreCaja
	for _, c := range r.cierres {
		if c.EmpresaID == empresaID {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

func (r *cajaRepoFake) DB() *gorm.DB { return nil }

// ── VentaRepository fake that only answers aggregates ────────────────────────

type resumenVentasFake struct {
	resumen *repository.ResumenVentas
	fallo   error
}

var _ repository.VentaRepository = (*resumenVentasFake)(nil)

func (r *resumenVentasFake) NextTicketNumberTx(_ *gorm.DB, _ uuid.UUID) (int, error) {
	return 1, nil
}
func (r *resumenVentasFake) CreateTx(_ *gorm.DB, _ *model.Venta) error { return nil }
func (r *resumenVentasFake) FindByID(_ context.Context, _, _ uuid.UUID) (*model.Venta, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *resumenVentasFake) List(_ context.Context, _ uuid.UUID, _, _ time.Time, _, _ int) ([]model.Venta, int64, error) {
	return nil, 0, nil
}
func (r *resumenVentasFake) Resumen(_ context.Context, _ uuid.UUID) (*repository.ResumenVentas, error) {
	return r.resumen, r.fallo
}
func (r *resumenVentasFake) ResumenPorRango(_ context.Context, _ uuid.UUID, _, _ time.Time) (*repository.ResumenVentas, error) {
	return r.resumen, r.fallo
}
func (r *resumenVentasFake) DetallePorRango(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]repository.DetalleVenta, error) {
	return nil, nil
}
func (r *resumenVentasFake) DB() *gorm.DB { return nil }

// ── Tests ────────────────────────────────────────────────────────────────────

func nuevaCajaService(repo *cajaRepoFake, ventas *resumenVentasFake) CajaService {
	return NewCajaService(repo, ventas, nil, nil, time.UTC)
}

func TestCajaAbrir_CreaSesionDelDia(t *testing.T) {
	repo := newCajaRepoFake()
	svc := nuevaCajaService(repo, &resumenVentasFake{})
	empresaID, usuarioID := uuid.New(), uuid.New()

	resp, err := svc.Abrir(context.Background(), empresaID, usuarioID, dto.AbrirCajaRequest{
		MontoApertura: decimal.NewFromInt(50000),
	})

	require.NoError(t, err)
	assert.Equal(t, "abierta", resp.Estado)
	assert.True(t, resp.AbiertaHoy)
	assert.Equal(t, diaOperativo(time.UTC), resp.FechaApertura)
	assert.True(t, svc.AbiertaHoy(context.Background(), empresaID))
}

func TestCajaAbrir_RechazaReaperturaDelMismoDia(t *testing.T) {
	repo := newCajaRepoFake()
	svc := nuevaCajaService(repo, &resumenVentasFake{})
	empresaID := uuid.New()

	_, err := svc.Abrir(context.Background(), empresaID, uuid.New(), dto.AbrirCajaRequest{
		MontoApertura: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	_, err = svc.Abrir(context.Background(), empresaID, uuid.New(), dto.AbrirCajaRequest{
		MontoApertura: decimal.NewFromInt(99999),
	})
	require.Error(t, err)
	assert.Equal(t, "La caja ya está abierta hoy", err.Error())
}

func TestCajaAbrir_PermiteReabrirSobreSesionVieja(t *testing.T) {
	repo := newCajaRepoFake()
	svc := nuevaCajaService(repo, &resumenVentasFake{})
	empresaID := uuid.New()

	// Sesión que quedó abierta ayer: no habilita ventas y se puede reabrir
	repo.sesiones[empresaID] = &model.SesionCaja{
		ID:            uuid.New(),
		EmpresaID:     empresaID,
		Estado:        "abierta",
		FechaApertura: "2020-01-01",
		MontoApertura: decimal.NewFromInt(10000),
		OpenedAt:      time.Now().AddDate(0, 0, -1),
	}
	assert.False(t, svc.AbiertaHoy(context.Background(), empresaID))

	resp, err := svc.Abrir(context.Background(), empresaID, uuid.New(), dto.AbrirCajaRequest{
		MontoApertura: decimal.NewFromInt(20000),
	})
	require.NoError(t, err)
	assert.True(t, resp.AbiertaHoy)
	assert.True(t, svc.AbiertaHoy(context.Background(), empresaID))
}

func TestCajaCerrar_PersisteCierreYCierraSesion(t *testing.T) {
	repo := newCajaRepoFake()
	ventas := &resumenVentasFake{resumen: &repository.ResumenVentas{
		TotalVentas:           decimal.NewFromInt(185000),
		CantidadTransacciones: 12,
		TotalItemsVendidos:    31,
		Utilidad:              decimal.NewFromInt(47500),
	}}
	svc := nuevaCajaService(repo, ventas)
	empresaID, usuarioID := uuid.New(), uuid.New()

	_, err := svc.Abrir(context.Background(), empresaID, usuarioID, dto.AbrirCajaRequest{
		MontoApertura: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	cierre, err := svc.Cerrar(context.Background(), empresaID, usuarioID)

	require.NoError(t, err)
	assert.True(t, cierre.TotalIngresos.Equal(decimal.NewFromInt(185000)))
	assert.Equal(t, 12, cierre.TotalTransacciones)
	assert.Equal(t, 31, cierre.TotalItemsVendidos)
	assert.True(t, cierre.Utilidad.Equal(decimal.NewFromInt(47500)))
	assert.True(t, cierre.MontoApertura.Equal(decimal.NewFromInt(50000)))

	require.Len(t, repo.cierres, 1)
	assert.Equal(t, "cerrada", repo.sesiones[empresaID].Estado)
	assert.NotNil(t, repo.sesiones[empresaID].ClosedAt)
	assert.False(t, svc.AbiertaHoy(context.Background(), empresaID))
}

func TestCajaCerrar_ResumenFallidoDejaLaCajaAbierta(t *testing.T) {
	repo := newCajaRepoFake()
	ventas := &resumenVentasFake{fallo: errors.New("conexión perdida")}
	svc := nuevaCajaService(repo, ventas)
	empresaID, usuarioID := uuid.New(), uuid.New()

	_, err := svc.Abrir(context.Background(), empresaID, usuarioID, dto.AbrirCajaRequest{
		MontoApertura: decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	_, err = svc.Cerrar(context.Background(), empresaID, usuarioID)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "la caja sigue abierta")
	assert.Empty(t, repo.cierres)
	assert.Equal(t, "abierta", repo.sesiones[empresaID].Estado)
	assert.True(t, svc.AbiertaHoy(context.Background(), empresaID))
}

func TestCajaCerrar_SinSesionDelDia(t *testing.T) {
	repo := newCajaRepoFake()
	svc := nuevaCajaService(repo, &resumenVentasFake{})
	empresaID := uuid.New()

	_, err := svc.Cerrar(context.Background(), empresaID, uuid.New())
	require.Error(t, err)

	// Sesión de otro día tampoco se puede cerrar
	repo.sesiones[empresaID] = &model.SesionCaja{
		ID: uuid.New(), EmpresaID: empresaID, Estado: "abierta", FechaApertura: "2020-01-01",
	}
	_, err = svc.Cerrar(context.Background(), empresaID, uuid.New())
	require.Error(t, err)
	assert.Equal(t, "No hay caja abierta hoy", err.Error())
}

func TestCajaActual_SinSesionDevuelveNil(t *testing.T) {
	svc := nuevaCajaService(newCajaRepoFake(), &resumenVentasFake{})

	resp, err := svc.Actual(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, resp)
}
