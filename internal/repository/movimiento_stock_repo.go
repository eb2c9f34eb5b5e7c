package repository

import (
	"context"

	"gestion/internal/dto"
	"gestion/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	List(ctx context.Context, empresaID uuid.UUID, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error)
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) List(ctx context.Context, empresaID uuid.UUID, filter dto.MovimientoFilter) ([]model.MovimientoStock, int64, error) {
	var movs []model.MovimientoStock
	var total int64

	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{}).Where("empresa_id = ?", empresaID)
	if filter.ProductoID != "" {
		q = q.Where("producto_id = ?", filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Producto").Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&movs).Error
	return movs, total, err
}
