package repository

import (
	"context"

	"gestion/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PerfilRepository interface {
	Create(ctx context.Context, p *model.Perfil) error
	CreateTx(tx *gorm.DB, p *model.Perfil) error
	FindByEmail(ctx context.Context, email string) (*model.Perfil, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Perfil, error)
	ListByEmpresa(ctx context.Context, empresaID uuid.UUID, incluirInactivos bool) ([]model.Perfil, error)
	Desactivar(ctx context.Context, empresaID, id uuid.UUID) error
}

type perfilRepo struct{ db *gorm.DB }

func NewPerfilRepository(db *gorm.DB) PerfilRepository { return &perfilRepo{db: db} }

func (r *perfilRepo) Create(ctx context.Context, p *model.Perfil) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *perfilRepo) CreateTx(tx *gorm.DB, p *model.Perfil) error {
	return tx.Create(p).Error
}

func (r *perfilRepo) FindByEmail(ctx context.Context, email string) (*model.Perfil, error) {
	var p model.Perfil
	err := r.db.WithContext(ctx).Preload("Empresa").Where("email = ?", email).First(&p).Error
	return &p, err
}

func (r *perfilRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Perfil, error) {
	var p model.Perfil
	err := r.db.WithContext(ctx).Preload("Empresa").First(&p, id).Error
	return &p, err
}

func (r *perfilRepo) ListByEmpresa(ctx context.Context, empresaID uuid.UUID, incluirInactivos bool) ([]model.Perfil, error) {
	var perfiles []model.Perfil
	q := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID)
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre ASC").Find(&perfiles).Error
	return perfiles, err
}

func (r *perfilRepo) Desactivar(ctx context.Context, empresaID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Perfil{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		Update("activo", false).Error
}
