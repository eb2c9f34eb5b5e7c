package service

import (
	"context"
	"testing"

	"gestion/internal/config"
	"gestion/internal/dto"
	"gestion/internal/model"
	"gestion/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory PerfilRepository ───────────────────────────────────────────────

type perfilRepoFake struct {
	perfiles map[uuid.UUID]*model.Perfil
	empresas *empresaRepoFake
}

var _ repository.PerfilRepository = (*perfilRepoFake)(nil)

func newPerfilRepoFake(empresas *empresaRepoFake) *perfilRepoFake {
	return &perfilRepoFake{perfiles: make(map[uuid.UUID]*model.Perfil), empresas: empresas}
}

func (r *perfilRepoFake) Create(_ context.Context, p *model.Perfil) error {
	for _, existente := range r.perfiles {
		if existente.Email == p.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.perfiles[p.ID] = p
	return nil
}

func (r *perfilRepoFake) CreateTx(_ *gorm.DB, p *model.Perfil) error {
	return r.Create(context.Background(), p)
}

func (r *perfilRepoFake) FindByEmail(_ context.Context, email string) (*model.Perfil, error) {
	for _, p := range r.perfiles {
		if p.Email == email {
			return r.conEmpresa(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *perfilRepoFake) FindByID(_ context.Context, id uuid.UUID) (*model.Perfil, error) {
	p, ok := r.perfiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.conEmpresa(p), nil
}

func (r *perfilRepoFake) ListByEmpresa(_ context.Context, empresaID uuid.UUID, incluirInactivos bool) ([]model.Perfil, error) {
	var out []model.Perfil
	for _, p := range r.perfiles {
		if p.EmpresaID == empresaID && (incluirInactivos || p.Activo) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *perfilRepoFake) Desactivar(_ context.Context, empresaID, id uuid.UUID) error {
	if p, ok := r.perfiles[id]; ok && p.EmpresaID == empresaID {
		p.Activo = false
	}
	return nil
}

// conEmpresa emula el Preload("Empresa") del repositorio real.
func (r *perfilRepoFake) conEmpresa(p *model.Perfil) *model.Perfil {
	copia := *p
	if r.empresas != nil {
		if e, ok := r.empresas.empresas[p.EmpresaID]; ok {
			copia.Empresa = e
		}
	}
	return &copia
}

// ── In-memory EmpresaRepository ──────────────────────────────────────────────

type empresaRepoFake struct {
	empresas map[uuid.UUID]*model.Empresa
}

var _ repository.EmpresaRepository = (*empresaRepoFake)(nil)

func newEmpresaRepoFake() *empresaRepoFake {
	return &empresaRepoFake{empresas: make(map[uuid.UUID]*model.Empresa)}
}

func (r *empresaRepoFake) CreateTx(_ *gorm.DB, e *model.Empresa) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.empresas[e.ID] = e
	return nil
}

func (r *empresaRepoFake) FindByID(_ context.Context, id uuid.UUID) (*model.Empresa, error) {
	e, ok := r.empresas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *empresaRepoFake) Update(_ context.Context, e *model.Empresa) error {
	r.empresas[e.ID] = e
	return nil
}

func (r *empresaRepoFake) DB() *gorm.DB { return nil }

// ── Tests ────────────────────────────────────────────────────────────────────

func nuevoAuthService() (AuthService, *perfilRepoFake, *empresaRepoFake) {
	empresas := newEmpresaRepoFake()
	perfiles := newPerfilRepoFake(empresas)
	cfg := &config.Config{
		JWTSecret:          "secreto-de-prueba",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return NewAuthService(perfiles, empresas, cfg), perfiles, empresas
}

func TestRegistrarEmpresa_CreaEmpresaYAdmin(t *testing.T) {
	svc, perfiles, empresas := nuevoAuthService()

	resp, err := svc.RegistrarEmpresa(context.Background(), dto.RegistrarEmpresaRequest{
		NombreEmpresa: "Tienda La Esquina",
		EmailAdmin:    "dueno@laesquina.co",
		PasswordAdmin: "clave-segura",
	})

	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Rol)
	assert.True(t, resp.Activo)
	assert.Equal(t, "Tienda La Esquina", resp.Empresa.Nombre)
	assert.True(t, resp.Empresa.PlanActivo)
	assert.Len(t, perfiles.perfiles, 1)
	assert.Len(t, empresas.empresas, 1)

	// El hash nunca es la clave en claro
	for _, p := range perfiles.perfiles {
		assert.NotEqual(t, "clave-segura", p.PasswordHash)
		assert.NotEmpty(t, p.PasswordHash)
	}
}

func TestRegistrarEmpresa_EmailDuplicado(t *testing.T) {
	svc, _, _ := nuevoAuthService()

	_, err := svc.RegistrarEmpresa(context.Background(), dto.RegistrarEmpresaRequest{
		NombreEmpresa: "Tienda Uno",
		EmailAdmin:    "mismo@correo.co",
		PasswordAdmin: "clave-segura",
	})
	require.NoError(t, err)

	_, err = svc.RegistrarEmpresa(context.Background(), dto.RegistrarEmpresaRequest{
		NombreEmpresa: "Tienda Dos",
		EmailAdmin:    "mismo@correo.co",
		PasswordAdmin: "otra-clave-123",
	})
	require.Error(t, err)
	assert.Equal(t, "El email ya está registrado", err.Error())
}

func TestLogin_CredencialesCorrectas(t *testing.T) {
	svc, _, _ := nuevoAuthService()
	_, err := svc.RegistrarEmpresa(context.Background(), dto.RegistrarEmpresaRequest{
		NombreEmpresa: "Tienda Demo",
		EmailAdmin:    "admin@demo.co",
		PasswordAdmin: "clave-segura",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "admin@demo.co",
		Password: "clave-segura",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "admin", resp.Perfil.Rol)
}

func TestLogin_Rechazos(t *testing.T) {
	svc, perfiles, empresas := nuevoAuthService()
	_, err := svc.RegistrarEmpresa(context.Background(), dto.RegistrarEmpresaRequest{
		NombreEmpresa: "Tienda Demo",
		EmailAdmin:    "admin@demo.co",
		PasswordAdmin: "clave-segura",
	})
	require.NoError(t, err)

	// Clave incorrecta
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "admin@demo.co", Password: "incorrecta"})
	require.Error(t, err)
	assert.Equal(t, "credenciales invalidas", err.Error())

	// Email desconocido
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nadie@demo.co", Password: "clave-segura"})
	require.Error(t, err)

	// Perfil desactivado
	for id, p := range perfiles.perfiles {
		require.NoError(t, perfiles.Desactivar(context.Background(), p.EmpresaID, id))
	}
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "admin@demo.co", Password: "clave-segura"})
	require.Error(t, err)
	assert.Equal(t, "credenciales invalidas", err.Error())

	// Plan de la empresa suspendido
	for _, p := range perfiles.perfiles {
		p.Activo = true
	}
	for _, e := range empresas.empresas {
		e.PlanActivo = false
	}
	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "admin@demo.co", Password: "clave-segura"})
	require.Error(t, err)
	assert.Equal(t, "La suscripción de la empresa está inactiva", err.Error())
}

func TestRefresh_EmiteNuevosTokens(t *testing.T) {
	svc, _, _ := nuevoAuthService()
	_, err := svc.RegistrarEmpresa(context.Background(), dto.RegistrarEmpresaRequest{
		NombreEmpresa: "Tienda Demo",
		EmailAdmin:    "admin@demo.co",
		PasswordAdmin: "clave-segura",
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "admin@demo.co", Password: "clave-segura",
	})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, login.Perfil.ID, resp.Perfil.ID)

	_, err = svc.Refresh(context.Background(), "no-es-un-jwt")
	require.Error(t, err)
}

func TestCrearPerfil_VendedorParaLaEmpresa(t *testing.T) {
	svc, _, _ := nuevoAuthService()
	admin, err := svc.RegistrarEmpresa(context.Background(), dto.RegistrarEmpresaRequest{
		NombreEmpresa: "Tienda Demo",
		EmailAdmin:    "admin@demo.co",
		PasswordAdmin: "clave-segura",
	})
	require.NoError(t, err)
	empresaID := uuid.MustParse(admin.Empresa.ID)

	vendedor, err := svc.CrearPerfil(context.Background(), empresaID, dto.CrearPerfilRequest{
		Email:    "caja1@demo.co",
		Nombre:   "Caja 1",
		Password: "clave-caja-1",
		Rol:      "vendedor",
	})
	require.NoError(t, err)
	assert.Equal(t, "vendedor", vendedor.Rol)

	// El email es único global: reusarlo falla
	_, err = svc.CrearPerfil(context.Background(), empresaID, dto.CrearPerfilRequest{
		Email:    "caja1@demo.co",
		Nombre:   "Caja repetida",
		Password: "clave-caja-2",
		Rol:      "vendedor",
	})
	require.Error(t, err)

	// Listar sin inactivos tras desactivar al vendedor
	require.NoError(t, svc.DesactivarPerfil(context.Background(), empresaID, uuid.MustParse(vendedor.ID)))
	activos, err := svc.ListarPerfiles(context.Background(), empresaID, false)
	require.NoError(t, err)
	require.Len(t, activos, 1)
	assert.Equal(t, "admin@demo.co", activos[0].Email)

	todos, err := svc.ListarPerfiles(context.Background(), empresaID, true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}
