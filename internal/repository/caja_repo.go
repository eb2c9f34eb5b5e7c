package repository

import (
	"context"

	"gestion/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CajaRepository interface {
	// UpsertSesion writes the per-empresa session row. ON CONFLICT (empresa_id)
	// overwrites, so concurrent duplicate aperturas are idempotent.
	UpsertSesion(ctx context.Context, s *model.SesionCaja) error
	FindSesionByEmpresa(ctx context.Context, empresaID uuid.UUID) (*model.SesionCaja, error)
	UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error
	CreateCierreTx(tx *gorm.DB, c *model.CierreCaja) error
	ListCierres(ctx context.Context, empresaID uuid.UUID, page, limit int) ([]model.CierreCaja, int64, error)
	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) UpsertSesion(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "empresa_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"estado", "fecha_apertura", "monto_apertura", "abierta_por",
			"cerrada_por", "opened_at", "closed_at", "updated_at",
		}),
	}).Create(s).Error
}

func (r *cajaRepo) FindSesionByEmpresa(ctx context.Context, empresaID uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).First(&s).Error
	return &s, err
}

func (r *cajaRepo) UpdateSesionTx(tx *gorm.DB, s *model.SesionCaja) error {
	return tx.Save(s).Error
}

func (r *cajaRepo) CreateCierreTx(tx *gorm.DB, c *model.CierreCaja) error {
	return tx.Create(c).Error
}

func (r *cajaRepo) ListCierres(ctx context.Context, empresaID uuid.UUID, page, limit int) ([]model.CierreCaja, int64, error) {
	var cierres []model.CierreCaja
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CierreCaja{}).Where("empresa_id = ?", empresaID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("fecha_cierre DESC").Limit(limit).Offset(offset).Find(&cierres).Error
	return cierres, total, err
}

func (r *cajaRepo) DB() *gorm.DB { return r.db }
