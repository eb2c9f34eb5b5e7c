package dto

import "github.com/shopspring/decimal"

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ResumenVentasResponse is the all-time aggregate shown on the dashboard.
type ResumenVentasResponse struct {
	TotalVentas           decimal.Decimal `json:"total_ventas"`
	CantidadTransacciones int64           `json:"cantidad_transacciones"`
	TotalItemsVendidos    int64           `json:"total_items_vendidos"`
}

// VentasDelDiaResponse aggregates the current business day.
type VentasDelDiaResponse struct {
	Fecha                 string          `json:"fecha"`
	TotalVentas           decimal.Decimal `json:"total_ventas"`
	CantidadTransacciones int64           `json:"cantidad_transacciones"`
	TotalItemsVendidos    int64           `json:"total_items_vendidos"`
}

type UtilidadDelDiaResponse struct {
	Fecha    string          `json:"fecha"`
	Utilidad decimal.Decimal `json:"utilidad"`
}

// DetalleVentaFilter is bound from the query string of GET /v1/reportes/detalle.
type DetalleVentaFilter struct {
	FechaInicio string `form:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	FechaFin    string `form:"fecha_fin"    validate:"required,datetime=2006-01-02"`
}

// DetalleVentaRow is one product aggregated over a date range.
type DetalleVentaRow struct {
	ProductoID       string          `json:"producto_id"`
	NombreProducto   string          `json:"nombre_producto"`
	Referencia       string          `json:"referencia"`
	CantidadVendida  int64           `json:"cantidad_vendida"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	TotalLinea       decimal.Decimal `json:"total_linea"`
	PrecioModificado bool            `json:"precio_modificado"`
}
