package infra

import (
	"fmt"

	"gestion/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the schema. Also used by integration tests
// against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Empresa{},
		&model.Perfil{},
		&model.Producto{},
		&model.SesionCaja{},
		&model.CierreCaja{},
		&model.Venta{},
		&model.VentaItem{},
		&model.MovimientoStock{},
		&model.HistorialPrecio{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index backing the low-stock alert query
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_productos_stock_bajo') THEN
		    CREATE INDEX idx_productos_stock_bajo
		        ON productos (empresa_id)
		        WHERE activo = true AND stock_actual <= alerta_stock_min;
		  END IF;
		END $$`,
		// Per-empresa ticket numbering: unique pair keeps MAX+1 honest under
		// concurrent sales (the tx that loses the race retries at the handler)
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ventas_empresa_ticket') THEN
		    CREATE UNIQUE INDEX idx_ventas_empresa_ticket
		        ON ventas (empresa_id, numero_ticket);
		  END IF;
		END $$`,
		// Reporting range scans
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_ventas_empresa_fecha') THEN
		    CREATE INDEX idx_ventas_empresa_fecha
		        ON ventas (empresa_id, created_at);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
