package service

import (
	"context"
	"errors"
	"time"

	"gestion/internal/config"
	"gestion/internal/dto"
	"gestion/internal/model"
	"gestion/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	// RegistrarEmpresa creates the tenant and its first admin atomically.
	RegistrarEmpresa(ctx context.Context, req dto.RegistrarEmpresaRequest) (*dto.PerfilResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	CrearPerfil(ctx context.Context, empresaID uuid.UUID, req dto.CrearPerfilRequest) (*dto.PerfilResponse, error)
	ListarPerfiles(ctx context.Context, empresaID uuid.UUID, incluirInactivos bool) ([]dto.PerfilResponse, error)
	DesactivarPerfil(ctx context.Context, empresaID, id uuid.UUID) error
	Perfil(ctx context.Context, id uuid.UUID) (*dto.PerfilResponse, error)
}

type authService struct {
	perfiles repository.PerfilRepository
	empresas repository.EmpresaRepository
	cfg      *config.Config
}

func NewAuthService(perfiles repository.PerfilRepository, empresas repository.EmpresaRepository, cfg *config.Config) AuthService {
	return &authService{perfiles: perfiles, empresas: empresas, cfg: cfg}
}

func (s *authService) RegistrarEmpresa(ctx context.Context, req dto.RegistrarEmpresaRequest) (*dto.PerfilResponse, error) {
	if existente, err := s.perfiles.FindByEmail(ctx, req.EmailAdmin); err == nil && existente != nil && existente.ID != uuid.Nil {
		return nil, errors.New("El email ya está registrado")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PasswordAdmin), 12)
	if err != nil {
		return nil, err
	}

	empresa := &model.Empresa{
		Nombre:       req.NombreEmpresa,
		PlanActivo:   true,
		PapelAnchoMM: 80,
		FuenteTamano: 9,
		MargenMM:     4,
		CopiasTicket: 1,
	}
	perfil := &model.Perfil{
		Email:        req.EmailAdmin,
		Nombre:       req.NombreEmpresa,
		PasswordHash: string(hash),
		Rol:          "admin",
		Activo:       true,
	}

	// Empresa y perfil en una sola transacción: si el perfil falla, la
	// empresa no queda huérfana.
	txErr := runTx(ctx, s.empresas.DB(), func(tx *gorm.DB) error {
		if err := s.empresas.CreateTx(tx, empresa); err != nil {
			return err
		}
		perfil.EmpresaID = empresa.ID
		return s.perfiles.CreateTx(tx, perfil)
	})
	if txErr != nil {
		return nil, txErr
	}

	perfil.Empresa = empresa
	return perfilToResponse(perfil), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	perfil, err := s.perfiles.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("credenciales invalidas")
	}
	if !perfil.Activo {
		return nil, errors.New("credenciales invalidas")
	}
	if perfil.Empresa != nil && !perfil.Empresa.PlanActivo {
		return nil, errors.New("La suscripción de la empresa está inactiva")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(perfil.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("credenciales invalidas")
	}

	return s.buildLoginResponse(perfil)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("refresh token invalido o expirado")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("claims invalidos")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("token mal formado")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, errors.New("token mal formado")
	}

	perfil, err := s.perfiles.FindByID(ctx, uid)
	if err != nil || !perfil.Activo {
		return nil, errors.New("usuario no encontrado o inactivo")
	}

	return s.buildLoginResponse(perfil)
}

func (s *authService) CrearPerfil(ctx context.Context, empresaID uuid.UUID, req dto.CrearPerfilRequest) (*dto.PerfilResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	perfil := &model.Perfil{
		EmpresaID:    empresaID,
		Email:        req.Email,
		Nombre:       req.Nombre,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		Activo:       true,
	}
	if err := s.perfiles.Create(ctx, perfil); err != nil {
		return nil, errors.New("No se pudo crear el perfil; verifique que el email no esté en uso")
	}
	return perfilToResponse(perfil), nil
}

func (s *authService) ListarPerfiles(ctx context.Context, empresaID uuid.UUID, incluirInactivos bool) ([]dto.PerfilResponse, error) {
	perfiles, err := s.perfiles.ListByEmpresa(ctx, empresaID, incluirInactivos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PerfilResponse, len(perfiles))
	for i := range perfiles {
		resp[i] = *perfilToResponse(&perfiles[i])
	}
	return resp, nil
}

func (s *authService) DesactivarPerfil(ctx context.Context, empresaID, id uuid.UUID) error {
	return s.perfiles.Desactivar(ctx, empresaID, id)
}

func (s *authService) Perfil(ctx context.Context, id uuid.UUID) (*dto.PerfilResponse, error) {
	perfil, err := s.perfiles.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("perfil no encontrado")
	}
	return perfilToResponse(perfil), nil
}

func (s *authService) buildLoginResponse(perfil *model.Perfil) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(perfil, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(perfil, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		Perfil:       *perfilToResponse(perfil),
	}, nil
}

func (s *authService) generateToken(perfil *model.Perfil, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    perfil.ID.String(),
		"empresa_id": perfil.EmpresaID.String(),
		"email":      perfil.Email,
		"rol":        perfil.Rol,
		"exp":        time.Now().Add(duration).Unix(),
		"iat":        time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func perfilToResponse(p *model.Perfil) *dto.PerfilResponse {
	resp := &dto.PerfilResponse{
		ID:     p.ID.String(),
		Email:  p.Email,
		Nombre: p.Nombre,
		Rol:    p.Rol,
		Activo: p.Activo,
	}
	if p.Empresa != nil {
		resp.Empresa = dto.EmpresaResumen{
			ID:         p.Empresa.ID.String(),
			Nombre:     p.Empresa.Nombre,
			PlanActivo: p.Empresa.PlanActivo,
		}
	} else {
		resp.Empresa = dto.EmpresaResumen{ID: p.EmpresaID.String()}
	}
	return resp
}
