package infra

import (
	"fmt"

	"gustito/backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial unique indexes).
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

// RunMigrations is also called directly by integration tests against a
// throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Sucursal{},
		&model.SucursalSaldo{},
		&model.Cliente{},
		&model.Proveedor{},
		&model.Producto{},
		&model.Empaque{},
		&model.PrecioProducto{},
		&model.SolicitudPrecio{},
		&model.EntregaStock{},
		&model.Stock{},
		&model.EliminacionStock{},
		&model.Vencimiento{},
		&model.RegistroCaja{},
		&model.Deposito{},
		&model.Egreso{},
		&model.Venta{},
		&model.VentaProducto{},
		&model.VentaEmpaque{},
		&model.Pago{},
		&model.MetaUsuario{},
		&model.Notificacion{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Re-running on an already-patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Backstop for the one-open-shift rule: the service locks the open row
		// inside the transaction, this index catches anything that slips past
		// (e.g. rows inserted outside the service).
		{"unique open shift per sucursal+usuario", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_caja_abierta_unica
    ON registros_caja (sucursal_id, usuario_id)
    WHERE estado = 'ABIERTO'`},
		// FIFO allocation always scans live batches of one product in one branch.
		{"partial index for live batches", `
CREATE INDEX IF NOT EXISTS idx_stocks_disponibles
    ON stocks (sucursal_id, producto_id, fecha_ingreso, id)
    WHERE cantidad > 0`},
		// The close claims floating movements; keep that scan off the full table.
		{"partial index for floating sales", `
CREATE INDEX IF NOT EXISTS idx_ventas_sin_caja
    ON ventas (sucursal_id)
    WHERE registro_caja_id IS NULL`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
