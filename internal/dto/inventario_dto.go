package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RegistrarCompraRequest is a stock-in purchase. The invoice cost feeds the
// weighted-average cost recalculation.
type RegistrarCompraRequest struct {
	ProductoID  string          `json:"producto_id"  validate:"required,uuid"`
	Cantidad    int             `json:"cantidad"     validate:"required,min=1"`
	CostoCompra decimal.Decimal `json:"costo_compra" validate:"min=0"`
}

type AjusteStockRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	// Cantidad: positive = entrada, negative = salida
	Cantidad int    `json:"cantidad" validate:"required"`
	Motivo   string `json:"motivo"   validate:"required,min=3"`
}

// MovimientoFilter is bound from the query string of GET /v1/inventario/movimientos.
type MovimientoFilter struct {
	ProductoID string `form:"producto_id" validate:"omitempty,uuid"`
	Tipo       string `form:"tipo"        validate:"omitempty,oneof=venta compra ajuste_manual"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RegistrarCompraResponse struct {
	ProductoID string          `json:"producto_id"`
	NuevoStock int             `json:"nuevo_stock"`
	// NuevoCPP is the recalculated weighted-average cost
	NuevoCPP decimal.Decimal `json:"nuevo_cpp"`
}

type AlertaStockResponse struct {
	ProductoID     string `json:"producto_id"`
	Referencia     string `json:"referencia"`
	Nombre         string `json:"nombre"`
	StockActual    int    `json:"stock_actual"`
	AlertaStockMin int    `json:"alerta_stock_min"`
}

type MovimientoStockResponse struct {
	ID            string           `json:"id"`
	ProductoID    string           `json:"producto_id"`
	Producto      string           `json:"producto"`
	Tipo          string           `json:"tipo"`
	Cantidad      int              `json:"cantidad"`
	StockAnterior int              `json:"stock_anterior"`
	StockNuevo    int              `json:"stock_nuevo"`
	CostoUnitario *decimal.Decimal `json:"costo_unitario,omitempty"`
	Motivo        string           `json:"motivo"`
	CreatedAt     string           `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}
