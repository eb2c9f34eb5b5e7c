package service

import (
	"context"
	"errors"

	"gestion/internal/dto"
	"gestion/internal/repository"

	"github.com/google/uuid"
)

type EmpresaService interface {
	Preferencias(ctx context.Context, empresaID uuid.UUID) (*dto.PreferenciasImpresionResponse, error)
	ActualizarPreferencias(ctx context.Context, empresaID uuid.UUID, req dto.PreferenciasImpresionRequest) (*dto.PreferenciasImpresionResponse, error)
}

type empresaService struct {
	repo repository.EmpresaRepository
}

func NewEmpresaService(repo repository.EmpresaRepository) EmpresaService {
	return &empresaService{repo: repo}
}

func (s *empresaService) Preferencias(ctx context.Context, empresaID uuid.UUID) (*dto.PreferenciasImpresionResponse, error) {
	empresa, err := s.repo.FindByID(ctx, empresaID)
	if err != nil {
		return nil, errors.New("empresa no encontrada")
	}
	return &dto.PreferenciasImpresionResponse{
		PapelAnchoMM:    empresa.PapelAnchoMM,
		FuenteTamano:    empresa.FuenteTamano,
		MargenMM:        empresa.MargenMM,
		ImprimirLogo:    empresa.ImprimirLogo,
		CopiasTicket:    empresa.CopiasTicket,
		AutoImprimir:    empresa.AutoImprimir,
		NombreImpresora: empresa.NombreImpresora,
	}, nil
}

// ActualizarPreferencias applies a partial update: only the fields present in
// the request change. Presentation settings only — nothing here touches sales
// or inventory data.
func (s *empresaService) ActualizarPreferencias(ctx context.Context, empresaID uuid.UUID, req dto.PreferenciasImpresionRequest) (*dto.PreferenciasImpresionResponse, error) {
	empresa, err := s.repo.FindByID(ctx, empresaID)
	if err != nil {
		return nil, errors.New("empresa no encontrada")
	}

	if req.PapelAnchoMM != nil {
		empresa.PapelAnchoMM = *req.PapelAnchoMM
	}
	if req.FuenteTamano != nil {
		empresa.FuenteTamano = *req.FuenteTamano
	}
	if req.MargenMM != nil {
		empresa.MargenMM = *req.MargenMM
	}
	if req.ImprimirLogo != nil {
		empresa.ImprimirLogo = *req.ImprimirLogo
	}
	if req.CopiasTicket != nil {
		empresa.CopiasTicket = *req.CopiasTicket
	}
	if req.AutoImprimir != nil {
		empresa.AutoImprimir = *req.AutoImprimir
	}
	if req.NombreImpresora != nil {
		empresa.NombreImpresora = *req.NombreImpresora
	}

	if err := s.repo.Update(ctx, empresa); err != nil {
		return nil, err
	}
	return &dto.PreferenciasImpresionResponse{
		PapelAnchoMM:    empresa.PapelAnchoMM,
		FuenteTamano:    empresa.FuenteTamano,
		MargenMM:        empresa.MargenMM,
		ImprimirLogo:    empresa.ImprimirLogo,
		CopiasTicket:    empresa.CopiasTicket,
		AutoImprimir:    empresa.AutoImprimir,
		NombreImpresora: empresa.NombreImpresora,
	}, nil
}
