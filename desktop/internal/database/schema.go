package database

import (
	"context"
	"fmt"
)

const entitySchema = `(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tipo TEXT,
	razon_social TEXT,
	condicion_iva TEXT,
	cuit_dni TEXT,
	tel1 TEXT, cont1 TEXT,
	tel2 TEXT, cont2 TEXT,
	email TEXT,
	calle TEXT, nro TEXT, entre TEXT,
	localidad TEXT, cp TEXT, provincia TEXT,
	estado TEXT
)`

const ccSchema = `(
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	fecha TEXT,
	%s INTEGER,
	doc TEXT,
	numero TEXT,
	concepto TEXT,
	medio TEXT,
	debe REAL,
	haber REAL,
	caja_mov_id INTEGER,
	cheque_id INTEGER,
	obs TEXT
)`

// CC tables of the current layout, by owner kind and account bucket
const (
	TableCCClientes1    = "cc_clientes_c1"
	TableCCClientes2    = "cc_clientes_c2"
	TableCCProveedores1 = "cc_proveedores_c1"
	TableCCProveedores2 = "cc_proveedores_c2"
)

// CCTables lists every current-layout CC table
var CCTables = []string{TableCCClientes1, TableCCClientes2, TableCCProveedores1, TableCCProveedores2}

// InitSchema creates the current tables when missing. Existing tables, including
// legacy variants, are never altered except for additive columns.
func (db *DB) InitSchema(ctx context.Context) error {
	stmts := []string{
		"CREATE TABLE IF NOT EXISTS clientes " + entitySchema,
		"CREATE TABLE IF NOT EXISTS proveedores " + entitySchema,
		`CREATE TABLE IF NOT EXISTS movimientos_caja (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fecha TEXT,
			tipo TEXT,
			medio TEXT,
			concepto TEXT,
			detalle TEXT,
			monto REAL,
			tercero_tipo TEXT,
			tercero_id INTEGER,
			estado TEXT,
			origen_tipo TEXT,
			origen_id INTEGER,
			categoria_id INTEGER,
			centro_costo_id INTEGER,
			cuenta TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS cheques (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			numero TEXT,
			banco TEXT,
			importe REAL,
			fecha_recibido TEXT,
			fecha_cobro TEXT,
			cliente_id INTEGER,
			firmante_nombre TEXT,
			firmante_cuit TEXT,
			estado TEXT,
			fecha_estado TEXT,
			obs TEXT,
			mov_caja_id INTEGER,
			proveedor_id INTEGER,
			cuenta_banco TEXT,
			gastos_bancarios REAL,
			cuenta TEXT
		)`,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s "+ccSchema, TableCCClientes1, "cliente_id"),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s "+ccSchema, TableCCClientes2, "cliente_id"),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s "+ccSchema, TableCCProveedores1, "proveedor_id"),
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s "+ccSchema, TableCCProveedores2, "proveedor_id"),
		`CREATE TABLE IF NOT EXISTS numeradores (
			tipo TEXT PRIMARY KEY,
			valor INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS divisas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fecha TEXT,
			tipo TEXT,
			usd REAL,
			tc REAL,
			pesos REAL,
			cuenta TEXT,
			mov_caja_id INTEGER,
			obs TEXT
		)`,
		"CREATE INDEX IF NOT EXISTS idx_cheques_mov_caja ON cheques(mov_caja_id)",
	}

	for _, stmt := range stmts {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	has, err := db.HasColumn(ctx, "cheques", "recibo_nro")
	if err != nil {
		return err
	}
	if !has {
		if _, err := db.conn.ExecContext(ctx, "ALTER TABLE cheques ADD COLUMN recibo_nro TEXT"); err != nil {
			return fmt.Errorf("failed to add cheques.recibo_nro: %w", err)
		}
	}
	return nil
}
