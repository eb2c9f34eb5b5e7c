package model

import (
	"time"

	"github.com/google/uuid"
)

// Perfil stores one user of an empresa with role-based access.
// Rol: "vendedor" | "admin"
type Perfil struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpresaID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Email        string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(20);not null"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Empresa *Empresa `gorm:"foreignKey:EmpresaID"`
}

func (Perfil) TableName() string { return "perfiles" }
