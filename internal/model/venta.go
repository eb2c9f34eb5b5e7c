package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Venta is a completed sale. Construction is atomic: the venta row, its
// items, the stock decrements, and the movimiento_stock ledger entries are
// written in a single transaction or not at all.
type Venta struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID    uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID    uuid.UUID `gorm:"type:uuid;not null"`
	SesionCajaID uuid.UUID `gorm:"type:uuid;index;not null"`
	// NumeroTicket is sequential per empresa
	NumeroTicket int             `gorm:"not null"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Utilidad = SUM((precio_unitario - costo_unitario) * cantidad)
	Utilidad  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Usuario *Perfil     `gorm:"foreignKey:UsuarioID"`
}

// VentaItem freezes the commercial conditions of one cart line at checkout:
// the unit price actually charged (which may have been edited per line) and
// the product cost at sale time, so margins survive later price changes.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CostoUnitario  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PrecioModificado marks an ad-hoc per-line price edit made at checkout
	PrecioModificado bool `gorm:"not null;default:false"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
