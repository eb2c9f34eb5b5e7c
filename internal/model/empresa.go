package model

import (
	"time"

	"github.com/google/uuid"
)

// Empresa is one customer business (tenant). Every tenant-owned row in the
// system carries an empresa_id and repositories always filter by it, so one
// empresa can never see another's data.
type Empresa struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre     string    `gorm:"not null"`
	PlanActivo bool      `gorm:"not null;default:true"`

	// Preferencias de impresión de tickets. Presentation settings only,
	// consumed by the ticket PDF worker.
	PapelAnchoMM    int    `gorm:"not null;default:80;column:papel_ancho_mm"`
	FuenteTamano    int    `gorm:"not null;default:9"`
	MargenMM        int    `gorm:"not null;default:4;column:margen_mm"`
	ImprimirLogo    bool   `gorm:"not null;default:false"`
	CopiasTicket    int    `gorm:"not null;default:1"`
	AutoImprimir    bool   `gorm:"not null;default:false"`
	NombreImpresora string `gorm:"not null;default:''"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Perfiles []Perfil `gorm:"foreignKey:EmpresaID"`
}

func (Empresa) TableName() string { return "empresas" }
