package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// ProductoFilter is bound from the query string of GET /v1/productos.
type ProductoFilter struct {
	Nombre     string `form:"nombre"`
	Referencia string `form:"referencia"`
	Activo     string `form:"activo"` // "false" = inactivos, "all" = todos, default = activos
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Referencia     string          `json:"referencia"       validate:"required,min=1,max=60"`
	Nombre         string          `json:"nombre"           validate:"required,min=2,max=150"`
	Descripcion    *string         `json:"descripcion"`
	PrecioCosto    decimal.Decimal `json:"precio_costo"     validate:"min=0"`
	PrecioVenta    decimal.Decimal `json:"precio_venta"     validate:"min=0"`
	StockActual    int             `json:"stock_actual"     validate:"min=0"`
	AlertaStockMin int             `json:"alerta_stock_min" validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre         *string          `json:"nombre"           validate:"omitempty,min=2,max=150"`
	Descripcion    *string          `json:"descripcion"`
	PrecioVenta    *decimal.Decimal `json:"precio_venta"     validate:"omitempty"`
	AlertaStockMin *int             `json:"alerta_stock_min" validate:"omitempty,min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID             string          `json:"id"`
	Referencia     string          `json:"referencia"`
	Nombre         string          `json:"nombre"`
	Descripcion    *string         `json:"descripcion"`
	PrecioCosto    decimal.Decimal `json:"precio_costo"`
	PrecioVenta    decimal.Decimal `json:"precio_venta"`
	StockActual    int             `json:"stock_actual"`
	AlertaStockMin int             `json:"alerta_stock_min"`
	StockBajo      bool            `json:"stock_bajo"`
	Activo         bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type HistorialPrecioResponse struct {
	CostoAntes   decimal.Decimal `json:"costo_antes"`
	CostoDespues decimal.Decimal `json:"costo_despues"`
	VentaAntes   decimal.Decimal `json:"venta_antes"`
	VentaDespues decimal.Decimal `json:"venta_despues"`
	Motivo       string          `json:"motivo"`
	CreatedAt    string          `json:"created_at"`
}
