package service

import (
	"context"
	"errors"
	"time"

	"gestion/internal/dto"
	"gestion/internal/repository"

	"github.com/google/uuid"
)

type ReporteService interface {
	Resumen(ctx context.Context, empresaID uuid.UUID) (*dto.ResumenVentasResponse, error)
	VentasDelDia(ctx context.Context, empresaID uuid.UUID) (*dto.VentasDelDiaResponse, error)
	UtilidadDelDia(ctx context.Context, empresaID uuid.UUID) (*dto.UtilidadDelDiaResponse, error)
	DetallePorRango(ctx context.Context, empresaID uuid.UUID, filter dto.DetalleVentaFilter) ([]dto.DetalleVentaRow, error)
}

type reporteService struct {
	ventaRepo repository.VentaRepository
	loc       *time.Location
}

func NewReporteService(ventaRepo repository.VentaRepository, loc *time.Location) ReporteService {
	return &reporteService{ventaRepo: ventaRepo, loc: loc}
}

func (s *reporteService) Resumen(ctx context.Context, empresaID uuid.UUID) (*dto.ResumenVentasResponse, error) {
	resumen, err := s.ventaRepo.Resumen(ctx, empresaID)
	if err != nil {
		return nil, err
	}
	return &dto.ResumenVentasResponse{
		TotalVentas:           resumen.TotalVentas,
		CantidadTransacciones: resumen.CantidadTransacciones,
		TotalItemsVendidos:    resumen.TotalItemsVendidos,
	}, nil
}

func (s *reporteService) VentasDelDia(ctx context.Context, empresaID uuid.UUID) (*dto.VentasDelDiaResponse, error) {
	hoy := diaOperativo(s.loc)
	desde, hasta, err := rangoDia(hoy, s.loc)
	if err != nil {
		return nil, err
	}
	resumen, err := s.ventaRepo.ResumenPorRango(ctx, empresaID, desde, hasta)
	if err != nil {
		return nil, err
	}
	return &dto.VentasDelDiaResponse{
		Fecha:                 hoy,
		TotalVentas:           resumen.TotalVentas,
		CantidadTransacciones: resumen.CantidadTransacciones,
		TotalItemsVendidos:    resumen.TotalItemsVendidos,
	}, nil
}

func (s *reporteService) UtilidadDelDia(ctx context.Context, empresaID uuid.UUID) (*dto.UtilidadDelDiaResponse, error) {
	hoy := diaOperativo(s.loc)
	desde, hasta, err := rangoDia(hoy, s.loc)
	if err != nil {
		return nil, err
	}
	resumen, err := s.ventaRepo.ResumenPorRango(ctx, empresaID, desde, hasta)
	if err != nil {
		return nil, err
	}
	return &dto.UtilidadDelDiaResponse{Fecha: hoy, Utilidad: resumen.Utilidad}, nil
}

// DetallePorRango aggregates sold units per product over [fecha_inicio, fecha_fin],
// both ends inclusive in the business time zone.
func (s *reporteService) DetallePorRango(ctx context.Context, empresaID uuid.UUID, filter dto.DetalleVentaFilter) ([]dto.DetalleVentaRow, error) {
	desde, _, err := rangoDia(filter.FechaInicio, s.loc)
	if err != nil {
		return nil, errors.New("fecha_inicio inválida, use YYYY-MM-DD")
	}
	_, hasta, err := rangoDia(filter.FechaFin, s.loc)
	if err != nil {
		return nil, errors.New("fecha_fin inválida, use YYYY-MM-DD")
	}
	if hasta.Before(desde) {
		return nil, errors.New("fecha_fin no puede ser anterior a fecha_inicio")
	}

	rows, err := s.ventaRepo.DetallePorRango(ctx, empresaID, desde, hasta)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.DetalleVentaRow, len(rows))
	for i, r := range rows {
		resp[i] = dto.DetalleVentaRow{
			ProductoID:       r.ProductoID.String(),
			NombreProducto:   r.NombreProducto,
			Referencia:       r.Referencia,
			CantidadVendida:  r.CantidadVendida,
			PrecioUnitario:   r.PrecioUnitario,
			TotalLinea:       r.TotalLinea,
			PrecioModificado: r.PrecioModificado,
		}
	}
	return resp, nil
}
