package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AgregarLineaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
}

type ActualizarCantidadRequest struct {
	Cantidad int `json:"cantidad"` // <= 0 removes the line
}

type ActualizarPrecioRequest struct {
	Precio decimal.Decimal `json:"precio"` // negatives clamp to zero
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LineaCarritoResponse struct {
	ID               string          `json:"id"`
	ProductoID       string          `json:"producto_id"`
	Referencia       string          `json:"referencia"`
	Nombre           string          `json:"nombre"`
	Cantidad         int             `json:"cantidad"`
	PrecioUnitario   decimal.Decimal `json:"precio_unitario"`
	StockDisponible  int             `json:"stock_disponible"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	PrecioModificado bool            `json:"precio_modificado"`
}

// CarritoResponse includes any bounded warnings raised by the last operation
// (stock ceiling clamps, caja-closed rejections). Warnings are transient and
// never repeated on subsequent reads.
type CarritoResponse struct {
	Lineas []LineaCarritoResponse `json:"lineas"`
	Total  decimal.Decimal        `json:"total"`
	Avisos []string               `json:"avisos,omitempty"`
}

// ReciboResponse is the transient receipt-ready summary returned on checkout,
// retained only in the response for optional print output.
type ReciboResponse struct {
	VentaID      string              `json:"venta_id"`
	NumeroTicket int                 `json:"numero_ticket"`
	Items        []ItemVentaResponse `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	Utilidad     decimal.Decimal     `json:"utilidad"`
	CreatedAt    string              `json:"created_at"`
}
