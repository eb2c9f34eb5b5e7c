package repository

import (
	"context"
	"time"

	"gestion/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ResumenVentas is the aggregate row backing the dashboard and daily reports.
type ResumenVentas struct {
	TotalVentas           decimal.Decimal
	CantidadTransacciones int64
	TotalItemsVendidos    int64
	Utilidad              decimal.Decimal
}

// DetalleVenta is one product aggregated over a date range.
type DetalleVenta struct {
	ProductoID       uuid.UUID
	NombreProducto   string
	Referencia       string
	CantidadVendida  int64
	PrecioUnitario   decimal.Decimal
	TotalLinea       decimal.Decimal
	PrecioModificado bool
}

type VentaRepository interface {
	// NextTicketNumberTx returns MAX(numero_ticket)+1 for the empresa; must be
	// called inside the sale transaction so concurrent sales serialize on the
	// inserted row's unique ordering.
	NextTicketNumberTx(tx *gorm.DB, empresaID uuid.UUID) (int, error)
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, empresaID uuid.UUID, desde, hasta time.Time, page, limit int) ([]model.Venta, int64, error)

	// Aggregates for reportes
	Resumen(ctx context.Context, empresaID uuid.UUID) (*ResumenVentas, error)
	ResumenPorRango(ctx context.Context, empresaID uuid.UUID, desde, hasta time.Time) (*ResumenVentas, error)
	DetallePorRango(ctx context.Context, empresaID uuid.UUID, desde, hasta time.Time) ([]DetalleVenta, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) NextTicketNumberTx(tx *gorm.DB, empresaID uuid.UUID) (int, error) {
	var next int
	err := tx.Raw(
		"SELECT COALESCE(MAX(numero_ticket), 0) + 1 FROM ventas WHERE empresa_id = ?",
		empresaID,
	).Scan(&next).Error
	return next, err
}

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, empresaID, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Items").Preload("Items.Producto").
		Where("empresa_id = ?", empresaID).
		First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) List(ctx context.Context, empresaID uuid.UUID, desde, hasta time.Time, page, limit int) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("empresa_id = ? AND created_at >= ? AND created_at < ?", empresaID, desde, hasta)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Preload("Items").Preload("Items.Producto").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ventas).Error
	return ventas, total, err
}

func (r *ventaRepo) Resumen(ctx context.Context, empresaID uuid.UUID) (*ResumenVentas, error) {
	return r.resumen(ctx, r.db.WithContext(ctx).Model(&model.Venta{}).Where("ventas.empresa_id = ?", empresaID))
}

func (r *ventaRepo) ResumenPorRango(ctx context.Context, empresaID uuid.UUID, desde, hasta time.Time) (*ResumenVentas, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("ventas.empresa_id = ? AND ventas.created_at >= ? AND ventas.created_at < ?", empresaID, desde, hasta)
	return r.resumen(ctx, q)
}

func (r *ventaRepo) resumen(ctx context.Context, q *gorm.DB) (*ResumenVentas, error) {
	var row struct {
		Total    decimal.Decimal
		Cantidad int64
		Utilidad decimal.Decimal
	}
	if err := q.Session(&gorm.Session{}).
		Select("COALESCE(SUM(total), 0) AS total, COUNT(*) AS cantidad, COALESCE(SUM(utilidad), 0) AS utilidad").
		Scan(&row).Error; err != nil {
		return nil, err
	}

	// Unit count lives on venta_items — second aggregate over the same filter
	var items int64
	if err := q.Session(&gorm.Session{}).
		Joins("JOIN venta_items ON venta_items.venta_id = ventas.id").
		Select("COALESCE(SUM(venta_items.cantidad), 0)").
		Scan(&items).Error; err != nil {
		return nil, err
	}

	return &ResumenVentas{
		TotalVentas:           row.Total,
		CantidadTransacciones: row.Cantidad,
		TotalItemsVendidos:    items,
		Utilidad:              row.Utilidad,
	}, nil
}

func (r *ventaRepo) DetallePorRango(ctx context.Context, empresaID uuid.UUID, desde, hasta time.Time) ([]DetalleVenta, error) {
	var rows []DetalleVenta
	err := r.db.WithContext(ctx).
		Table("venta_items").
		Joins("JOIN ventas ON ventas.id = venta_items.venta_id").
		Joins("JOIN productos ON productos.id = venta_items.producto_id").
		Where("ventas.empresa_id = ? AND ventas.created_at >= ? AND ventas.created_at < ?", empresaID, desde, hasta).
		Select(`venta_items.producto_id,
			productos.nombre AS nombre_producto,
			productos.referencia,
			SUM(venta_items.cantidad) AS cantidad_vendida,
			venta_items.precio_unitario,
			SUM(venta_items.cantidad * venta_items.precio_unitario) AS total_linea,
			BOOL_OR(venta_items.precio_modificado) AS precio_modificado`).
		Group("venta_items.producto_id, productos.nombre, productos.referencia, venta_items.precio_unitario").
		Order("total_linea DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *ventaRepo) DB() *gorm.DB { return r.db }
