package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is one catalog item owned by an empresa.
// PrecioCosto is the CPP (costo promedio ponderado): recalculated on every
// compra as a quantity-weighted blend of the prior cost and the invoice cost.
type Producto struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_empresa_referencia"`
	Referencia string    `gorm:"not null;uniqueIndex:idx_empresa_referencia"`
	Nombre     string    `gorm:"index;not null"`
	Descripcion *string
	PrecioCosto decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual int             `gorm:"not null;default:0"`
	// AlertaStockMin: stock_actual <= this threshold raises a low-stock alert
	AlertaStockMin int  `gorm:"not null;default:5"`
	Activo         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
