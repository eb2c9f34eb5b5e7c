package repository

import (
	"context"
	"errors"

	"gestion/internal/dto"
	"gestion/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrStockInsuficiente is returned by the conditional decrement when the
// product does not hold enough stock — the enclosing sale transaction must
// roll back entirely.
var ErrStockInsuficiente = errors.New("stock insuficiente")

// ProductoRepository defines the data access contract for products. Every
// query is scoped by empresa_id: the repository is the row-level-security
// boundary of the system.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Producto, error)
	List(ctx context.Context, empresaID uuid.UUID, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	SoftDelete(ctx context.Context, empresaID, id uuid.UUID) error
	Reactivar(ctx context.Context, empresaID, id uuid.UUID) error
	ListAlertas(ctx context.Context, empresaID uuid.UUID) ([]model.Producto, error)

	// Used inside transactions — callers must pass the tx instance
	FindByIDTx(tx *gorm.DB, empresaID, id uuid.UUID) (*model.Producto, error)
	// DescontarStockTx decrements stock only when enough is available;
	// returns ErrStockInsuficiente otherwise.
	DescontarStockTx(tx *gorm.DB, empresaID, id uuid.UUID, cantidad int) error
	SumarStockTx(tx *gorm.DB, empresaID, id uuid.UUID, delta int) error
	ActualizarCompraTx(tx *gorm.DB, empresaID, id uuid.UUID, cantidad int, nuevoCosto decimal.Decimal) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("empresa_id = ?", empresaID).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) List(ctx context.Context, empresaID uuid.UUID, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("empresa_id = ?", empresaID)

	// Activo filter: "false" = inactivos, "all" = todos, anything else = activos (default)
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
		// no filter
	default:
		q = q.Where("activo = true")
	}

	if filter.Referencia != "" {
		q = q.Where("referencia = ?", filter.Referencia)
	}
	if filter.Nombre != "" {
		q = q.Where("nombre ILIKE ?", "%"+filter.Nombre+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productoRepo) SoftDelete(ctx context.Context, empresaID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		Update("activo", false).Error
}

func (r *productoRepo) Reactivar(ctx context.Context, empresaID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		Update("activo", true).Error
}

func (r *productoRepo) ListAlertas(ctx context.Context, empresaID uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("empresa_id = ? AND activo = true AND stock_actual <= alerta_stock_min", empresaID).
		Order("stock_actual ASC").
		Find(&productos).Error
	return productos, err
}

func (r *productoRepo) FindByIDTx(tx *gorm.DB, empresaID, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Where("empresa_id = ?", empresaID).First(&p, id).Error
	return &p, err
}

func (r *productoRepo) DescontarStockTx(tx *gorm.DB, empresaID, id uuid.UUID, cantidad int) error {
	res := tx.Model(&model.Producto{}).
		Where("id = ? AND empresa_id = ? AND stock_actual >= ?", id, empresaID, cantidad).
		Update("stock_actual", gorm.Expr("stock_actual - ?", cantidad))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockInsuficiente
	}
	return nil
}

func (r *productoRepo) SumarStockTx(tx *gorm.DB, empresaID, id uuid.UUID, delta int) error {
	return tx.Model(&model.Producto{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		Update("stock_actual", gorm.Expr("stock_actual + ?", delta)).Error
}

func (r *productoRepo) ActualizarCompraTx(tx *gorm.DB, empresaID, id uuid.UUID, cantidad int, nuevoCosto decimal.Decimal) error {
	return tx.Model(&model.Producto{}).
		Where("id = ? AND empresa_id = ?", id, empresaID).
		Updates(map[string]interface{}{
			"stock_actual": gorm.Expr("stock_actual + ?", cantidad),
			"precio_costo": nuevoCosto,
		}).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
