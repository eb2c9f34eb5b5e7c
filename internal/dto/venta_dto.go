package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha string `form:"fecha"` // YYYY-MM-DD; empty = today
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest carries one cart line into RegistrarVenta. The price and
// cost come from the line snapshot, not from the live product row.
type ItemVentaRequest struct {
	ProductoID       string          `json:"producto_id"       validate:"required,uuid"`
	Cantidad         int             `json:"cantidad"          validate:"required,min=1"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"   validate:"min=0"`
	CostoUnitario    decimal.Decimal `json:"costo_unitario"    validate:"min=0"`
	PrecioModificado bool            `json:"precio_modificado"`
}

type RegistrarVentaRequest struct {
	Items []ItemVentaRequest `json:"items" validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	Producto         string          `json:"producto"`
	Referencia       string          `json:"referencia"`
	Cantidad         int             `json:"cantidad"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	PrecioModificado bool            `json:"precio_modificado"`
}

type VentaResponse struct {
	ID           string              `json:"id"`
	NumeroTicket int                 `json:"numero_ticket"`
	Items        []ItemVentaResponse `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	Utilidad     decimal.Decimal     `json:"utilidad"`
	CreatedAt    string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
