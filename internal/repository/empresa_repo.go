package repository

import (
	"context"

	"gestion/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmpresaRepository interface {
	CreateTx(tx *gorm.DB, e *model.Empresa) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Empresa, error)
	Update(ctx context.Context, e *model.Empresa) error
	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type empresaRepo struct{ db *gorm.DB }

func NewEmpresaRepository(db *gorm.DB) EmpresaRepository { return &empresaRepo{db: db} }

func (r *empresaRepo) CreateTx(tx *gorm.DB, e *model.Empresa) error {
	return tx.Create(e).Error
}

func (r *empresaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Empresa, error) {
	var e model.Empresa
	err := r.db.WithContext(ctx).First(&e, id).Error
	return &e, err
}

func (r *empresaRepo) Update(ctx context.Context, e *model.Empresa) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *empresaRepo) DB() *gorm.DB { return r.db }
