package caja

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
)

// Directions of a cash movement
const (
	Ingreso = "ingreso"
	Egreso  = "egreso"
)

var (
	ErrNotFound        = errors.New("cash entry not found")
	ErrSystemGenerated = errors.New("cash entry was generated by a document and cannot be changed manually")
)

// Entry is one cash-ledger movement. OrigenTipo/OrigenID are set on entries
// created by a document (cc_cli, cc_prov, divisas...).
type Entry struct {
	ID          int64   `json:"id"`
	Fecha       string  `json:"fecha"`
	Tipo        string  `json:"tipo"`
	Medio       string  `json:"medio"`
	Concepto    string  `json:"concepto"`
	Detalle     string  `json:"detalle"`
	Monto       float64 `json:"monto"`
	TerceroTipo string  `json:"tercero_tipo,omitempty"`
	TerceroID   int64   `json:"tercero_id,omitempty"`
	Estado      string  `json:"estado"`
	OrigenTipo  string  `json:"origen_tipo,omitempty"`
	OrigenID    int64   `json:"origen_id,omitempty"`
	Cuenta      int     `json:"cuenta"`
}

// IsManual reports whether the entry was typed in by hand
func (e Entry) IsManual() bool {
	return strings.TrimSpace(e.OrigenTipo) == ""
}

// Filter narrows List; zero values match everything
type Filter struct {
	Desde  string `json:"desde"`
	Hasta  string `json:"hasta"`
	Tipo   string `json:"tipo"`
	Medio  string `json:"medio"`
	Cuenta int    `json:"cuenta"`
}

// NormalizeCuenta maps "cuenta1"/"1" to 1 and anything else to 2
func NormalizeCuenta(v string) int {
	if strings.HasSuffix(strings.TrimSpace(v), "1") {
		return 1
	}
	return 2
}

// Service manages the cash ledger
type Service struct {
	db *database.DB
}

// NewService creates a new cash-ledger service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

const selectColumns = `id, COALESCE(fecha,''), COALESCE(tipo,''), COALESCE(medio,''), COALESCE(concepto,''),
	COALESCE(detalle,''), COALESCE(monto,0), COALESCE(tercero_tipo,''), COALESCE(tercero_id,0),
	COALESCE(estado,''), COALESCE(origen_tipo,''), COALESCE(origen_id,0), COALESCE(cuenta,'')`

func scanEntry(sc interface{ Scan(...interface{}) error }) (Entry, error) {
	var e Entry
	var cuenta string
	err := sc.Scan(&e.ID, &e.Fecha, &e.Tipo, &e.Medio, &e.Concepto, &e.Detalle, &e.Monto,
		&e.TerceroTipo, &e.TerceroID, &e.Estado, &e.OrigenTipo, &e.OrigenID, &cuenta)
	e.Cuenta = NormalizeCuenta(cuenta)
	return e, err
}

func normalize(e *Entry) error {
	fecha, err := common.NormalizeDate(e.Fecha)
	if err != nil {
		return err
	}
	e.Fecha = fecha
	e.Tipo = strings.ToLower(strings.TrimSpace(e.Tipo))
	if e.Tipo != Ingreso && e.Tipo != Egreso {
		return common.ValidationError{Field: "tipo", Message: "must be ingreso or egreso"}
	}
	if err := common.ValidateAmount(e.Monto); err != nil {
		return err
	}
	e.Monto = currency.NewFromFloat(e.Monto).ToFloat64()
	e.Medio = common.NormalizeMedium(e.Medio)
	if e.Estado == "" {
		e.Estado = "ok"
	}
	if e.Cuenta != 1 {
		e.Cuenta = 2
	}
	return nil
}

// Add inserts a movement and returns its id
func (s *Service) Add(ctx context.Context, e Entry) (int64, error) {
	if err := normalize(&e); err != nil {
		return 0, err
	}

	res, err := s.db.GetConn().ExecContext(ctx, `INSERT INTO movimientos_caja
		(fecha, tipo, medio, concepto, detalle, monto, tercero_tipo, tercero_id, estado, origen_tipo, origen_id, cuenta)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.Fecha, e.Tipo, e.Medio, e.Concepto, e.Detalle, e.Monto,
		nullableText(e.TerceroTipo), database.NullableID(e.TerceroID), e.Estado,
		nullableText(e.OrigenTipo), database.NullableID(e.OrigenID), fmt.Sprint(e.Cuenta))
	if err != nil {
		return 0, fmt.Errorf("failed to insert cash entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read cash entry id: %w", err)
	}
	logger.WriteDebug("Caja", fmt.Sprintf("entry %d: %s %.2f cuenta %d", id, e.Tipo, e.Monto, e.Cuenta))
	return id, nil
}

// SetOrigin stamps the document that owns the entry
func (s *Service) SetOrigin(ctx context.Context, id int64, origenTipo string, origenID int64) error {
	if _, err := s.db.GetConn().ExecContext(ctx,
		"UPDATE movimientos_caja SET origen_tipo = ?, origen_id = ? WHERE id = ?",
		nullableText(origenTipo), database.NullableID(origenID), id); err != nil {
		return fmt.Errorf("failed to set origin of cash entry %d: %w", id, err)
	}
	return nil
}

// Get loads one entry
func (s *Service) Get(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.GetConn().QueryRowContext(ctx, "SELECT "+selectColumns+" FROM movimientos_caja WHERE id = ?", id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cash entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cash entry %d: %w", id, err)
	}
	return &e, nil
}

// List returns entries newest first
func (s *Service) List(ctx context.Context, f Filter) ([]Entry, error) {
	where, args := f.clause()
	rows, err := s.db.GetConn().QueryContext(ctx,
		"SELECT "+selectColumns+" FROM movimientos_caja"+where+" ORDER BY date(fecha) DESC, id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cash entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cash entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (f Filter) clause() (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.Desde != "" {
		conds = append(conds, "date(fecha) >= date(?)")
		args = append(args, f.Desde)
	}
	if f.Hasta != "" {
		conds = append(conds, "date(fecha) <= date(?)")
		args = append(args, f.Hasta)
	}
	if f.Tipo != "" {
		conds = append(conds, "tipo = ?")
		args = append(args, strings.ToLower(f.Tipo))
	}
	if f.Medio != "" {
		conds = append(conds, "medio = ?")
		args = append(args, common.NormalizeMedium(f.Medio))
	}
	if f.Cuenta != 0 {
		conds = append(conds, "cuenta = ?")
		args = append(args, fmt.Sprint(f.Cuenta))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Balance returns ingresos minus egresos for one bucket, or both when cuenta is 0
func (s *Service) Balance(ctx context.Context, cuenta int) (currency.Currency, error) {
	query := `SELECT COALESCE(SUM(CASE WHEN tipo = 'ingreso' THEN monto ELSE -monto END), 0) FROM movimientos_caja`
	var args []interface{}
	if cuenta != 0 {
		query += " WHERE cuenta = ?"
		args = append(args, fmt.Sprint(cuenta))
	}
	var total float64
	if err := s.db.GetConn().QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return currency.Zero(), fmt.Errorf("failed to compute cash balance: %w", err)
	}
	return currency.NewFromFloat(total), nil
}

// UpdateManual rewrites a hand-typed entry
func (s *Service) UpdateManual(ctx context.Context, e Entry) error {
	cur, err := s.Get(ctx, e.ID)
	if err != nil {
		return err
	}
	if !cur.IsManual() {
		return fmt.Errorf("cash entry %d (%s): %w", e.ID, cur.OrigenTipo, ErrSystemGenerated)
	}
	if err := normalize(&e); err != nil {
		return err
	}

	if _, err := s.db.GetConn().ExecContext(ctx, `UPDATE movimientos_caja SET
		fecha = ?, tipo = ?, medio = ?, concepto = ?, detalle = ?, monto = ?, tercero_tipo = ?, tercero_id = ?, estado = ?, cuenta = ?
		WHERE id = ?`,
		e.Fecha, e.Tipo, e.Medio, e.Concepto, e.Detalle, e.Monto,
		nullableText(e.TerceroTipo), database.NullableID(e.TerceroID), e.Estado, fmt.Sprint(e.Cuenta), e.ID); err != nil {
		return fmt.Errorf("failed to update cash entry %d: %w", e.ID, err)
	}
	return nil
}

// DeleteManual removes a hand-typed entry
func (s *Service) DeleteManual(ctx context.Context, id int64) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !cur.IsManual() {
		return fmt.Errorf("cash entry %d (%s): %w", id, cur.OrigenTipo, ErrSystemGenerated)
	}
	return s.ForceDelete(ctx, id)
}

// ForceDelete removes an entry after clearing every reference to it from
// checks and running-balance tables.
func (s *Service) ForceDelete(ctx context.Context, id int64) error {
	var unlink []string
	if ok, _ := s.db.HasColumn(ctx, "cheques", "mov_caja_id"); ok {
		unlink = append(unlink, "UPDATE cheques SET mov_caja_id = NULL WHERE mov_caja_id = ?")
	}
	for _, table := range database.CCTables {
		if ok, _ := s.db.HasColumn(ctx, table, "caja_mov_id"); ok {
			unlink = append(unlink, fmt.Sprintf("UPDATE %s SET caja_mov_id = NULL WHERE caja_mov_id = ?", database.Quote(table)))
		}
	}

	tx, err := s.db.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range unlink {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to unlink cash entry %d: %w", id, err)
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM movimientos_caja WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete cash entry %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of cash entry %d: %w", id, err)
	}

	logger.WriteInfo("Caja", fmt.Sprintf("cash entry %d deleted", id))
	return nil
}

func nullableText(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
