package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoApertura decimal.Decimal `json:"monto_apertura" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionCajaResponse struct {
	ID            string          `json:"id"`
	Estado        string          `json:"estado"`
	FechaApertura string          `json:"fecha_apertura"`
	MontoApertura decimal.Decimal `json:"monto_apertura"`
	// AbiertaHoy is the trading gate: estado abierta AND fecha_apertura == today
	AbiertaHoy bool    `json:"abierta_hoy"`
	OpenedAt   string  `json:"opened_at"`
	ClosedAt   *string `json:"closed_at,omitempty"`
}

type CierreCajaResponse struct {
	ID                 string          `json:"id"`
	FechaCierre        string          `json:"fecha_cierre"`
	MontoApertura      decimal.Decimal `json:"monto_apertura"`
	TotalIngresos      decimal.Decimal `json:"total_ingresos"`
	TotalTransacciones int             `json:"total_transacciones"`
	TotalItemsVendidos int             `json:"total_items_vendidos"`
	Utilidad           decimal.Decimal `json:"utilidad"`
}

type HistorialCajaResponse struct {
	Data  []CierreCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
