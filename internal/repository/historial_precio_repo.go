package repository

import (
	"context"

	"gestion/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistorialPrecioRepository interface {
	Create(ctx context.Context, h *model.HistorialPrecio) error
	CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error
	ListByProducto(ctx context.Context, empresaID, productoID uuid.UUID) ([]model.HistorialPrecio, error)
}

type historialPrecioRepo struct{ db *gorm.DB }

func NewHistorialPrecioRepository(db *gorm.DB) HistorialPrecioRepository {
	return &historialPrecioRepo{db: db}
}

func (r *historialPrecioRepo) Create(ctx context.Context, h *model.HistorialPrecio) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historialPrecioRepo) CreateTx(tx *gorm.DB, h *model.HistorialPrecio) error {
	return tx.Create(h).Error
}

func (r *historialPrecioRepo) ListByProducto(ctx context.Context, empresaID, productoID uuid.UUID) ([]model.HistorialPrecio, error) {
	var hist []model.HistorialPrecio
	err := r.db.WithContext(ctx).
		Where("empresa_id = ? AND producto_id = ?", empresaID, productoID).
		Order("created_at DESC").
		Find(&hist).Error
	return hist, err
}
