package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SesionCaja is the per-empresa cash register session.
// Estado: "abierta" | "cerrada"
//
// A session only authorizes sales when Estado is "abierta" AND FechaApertura
// equals the current business day in the configured time zone: a session left
// open from a prior day is treated as closed until explicitly reopened.
type SesionCaja struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// One session row per empresa — apertura upserts on conflict so concurrent
	// duplicate submissions are idempotent.
	EmpresaID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Estado        string          `gorm:"type:varchar(20);not null;default:'cerrada'"`
	FechaApertura string          `gorm:"type:date;not null"` // YYYY-MM-DD, business day
	MontoApertura decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AbiertaPor    uuid.UUID       `gorm:"type:uuid;not null"`
	CerradaPor    *uuid.UUID      `gorm:"type:uuid"`
	OpenedAt      time.Time
	ClosedAt      *time.Time
	UpdatedAt     time.Time
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// CierreCaja is the immutable daily closing record persisted when a sesión is
// closed. Rows are never modified or deleted.
type CierreCaja struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_empresa_fecha_cierre"`
	FechaCierre        string          `gorm:"type:date;not null;uniqueIndex:idx_empresa_fecha_cierre"`
	MontoApertura      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalIngresos      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalTransacciones int             `gorm:"not null"`
	TotalItemsVendidos int             `gorm:"not null"`
	Utilidad           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CerradaPor         uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt          time.Time
}

func (CierreCaja) TableName() string { return "cierres_caja" }
