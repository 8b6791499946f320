package cuentacorriente

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
)

var ErrNotFound = errors.New("running-balance line not found")

// Line is one running-balance row
type Line struct {
	ID        int64         `json:"id"`
	Kind      entities.Kind `json:"kind"`
	Cuenta    int           `json:"cuenta"`
	EntityID  int64         `json:"entity_id"`
	Fecha     string        `json:"fecha"`
	Doc       string        `json:"doc"`
	Numero    string        `json:"numero"`
	Concepto  string        `json:"concepto"`
	Medio     string        `json:"medio"`
	Debe      float64       `json:"debe"`
	Haber     float64       `json:"haber"`
	CajaMovID int64         `json:"caja_mov_id,omitempty"`
	ChequeID  int64         `json:"cheque_id,omitempty"`
	Obs       string        `json:"obs"`
}

// Amount is the non-zero side of the line
func (l Line) Amount() currency.Currency {
	return currency.Max(currency.NewFromFloat(l.Debe), currency.NewFromFloat(l.Haber))
}

// Query selects lines for List. Cuenta 0 means both buckets.
type Query struct {
	Kind      entities.Kind `json:"kind"`
	EntityID  int64         `json:"entity_id"`
	Cuenta    int           `json:"cuenta"`
	Desde     string        `json:"desde"`
	Hasta     string        `json:"hasta"`
	Ascending bool          `json:"ascending"`
}

// Service manages running accounts
type Service struct {
	db   *database.DB
	caja *caja.Service
}

// NewService creates a new running-account service
func NewService(db *database.DB, cajaSvc *caja.Service) *Service {
	return &Service{db: db, caja: cajaSvc}
}

func selectColumns(kind entities.Kind, cuenta int) string {
	return fmt.Sprintf(`id, %d AS cuenta, COALESCE(%s,0) AS entity_id, COALESCE(fecha,'') AS fecha,
		COALESCE(doc,'') AS doc, COALESCE(numero,'') AS numero, COALESCE(concepto,'') AS concepto,
		COALESCE(medio,'') AS medio, COALESCE(debe,0) AS debe, COALESCE(haber,0) AS haber,
		COALESCE(caja_mov_id,0) AS caja_mov_id, COALESCE(cheque_id,0) AS cheque_id, COALESCE(obs,'') AS obs`,
		cuenta, kind.IDColumn())
}

func scanLine(sc interface{ Scan(...interface{}) error }, kind entities.Kind) (Line, error) {
	l := Line{Kind: kind}
	err := sc.Scan(&l.ID, &l.Cuenta, &l.EntityID, &l.Fecha, &l.Doc, &l.Numero, &l.Concepto, &l.Medio,
		&l.Debe, &l.Haber, &l.CajaMovID, &l.ChequeID, &l.Obs)
	return l, err
}

func normalizeLine(l *Line) error {
	if l.Kind == "" {
		return errors.New("line kind is required")
	}
	if l.EntityID == 0 {
		return common.ValidationError{Field: "entity_id", Message: "owner is required"}
	}
	fecha, err := common.NormalizeDate(l.Fecha)
	if err != nil {
		return err
	}
	l.Fecha = fecha
	if l.Cuenta != 1 {
		l.Cuenta = 2
	}
	l.Doc = strings.ToUpper(strings.TrimSpace(l.Doc))
	if l.Doc == "" {
		l.Doc = DocMovimiento
	}
	if err := common.ValidateAmount(l.Debe); err != nil {
		return err
	}
	if err := common.ValidateAmount(l.Haber); err != nil {
		return err
	}
	l.Debe = currency.NewFromFloat(l.Debe).ToFloat64()
	l.Haber = currency.NewFromFloat(l.Haber).ToFloat64()
	if l.Medio != "" {
		l.Medio = common.NormalizeMedium(l.Medio)
	}
	return nil
}

// Add inserts a line and returns its id
func (s *Service) Add(ctx context.Context, l Line) (int64, error) {
	if err := normalizeLine(&l); err != nil {
		return 0, err
	}

	table := Table(l.Kind, l.Cuenta)
	res, err := s.db.GetConn().ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s
		(fecha, %s, doc, numero, concepto, medio, debe, haber, caja_mov_id, cheque_id, obs)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`, table, l.Kind.IDColumn()),
		l.Fecha, l.EntityID, l.Doc, strings.TrimSpace(l.Numero), l.Concepto, l.Medio, l.Debe, l.Haber,
		database.NullableID(l.CajaMovID), database.NullableID(l.ChequeID), l.Obs)
	if err != nil {
		return 0, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return res.LastInsertId()
}

// AddWithCaja books the line together with its cash movement. The cash entry
// is created first, the line links to it, and the entry is then stamped with
// the line as its origin.
func (s *Service) AddWithCaja(ctx context.Context, l Line) (lineID, cajaID int64, err error) {
	if err := normalizeLine(&l); err != nil {
		return 0, 0, err
	}

	entry := caja.Entry{
		Fecha:       l.Fecha,
		Medio:       l.Medio,
		Concepto:    l.Concepto,
		Detalle:     strings.TrimSpace(l.Doc + " " + l.Numero),
		TerceroTipo: string(l.Kind),
		TerceroID:   l.EntityID,
		Cuenta:      l.Cuenta,
	}
	// clients pay in, suppliers get paid
	inflow := l.Kind == entities.Cliente
	if l.Haber > 0 {
		entry.Monto = l.Haber
	} else {
		entry.Monto = l.Debe
		inflow = !inflow
	}
	entry.Tipo = caja.Egreso
	if inflow {
		entry.Tipo = caja.Ingreso
	}

	cajaID, err = s.caja.Add(ctx, entry)
	if err != nil {
		return 0, 0, err
	}
	l.CajaMovID = cajaID
	lineID, err = s.Add(ctx, l)
	if err != nil {
		return 0, cajaID, err
	}
	if err := s.caja.SetOrigin(ctx, cajaID, OriginType(l.Kind), lineID); err != nil {
		return lineID, cajaID, err
	}

	logger.WriteInfo("CuentaCorriente", fmt.Sprintf("%s %s %s for %s %d: line %d, caja %d",
		l.Doc, l.Numero, entry.Tipo, l.Kind, l.EntityID, lineID, cajaID))
	return lineID, cajaID, nil
}

// Get loads one line
func (s *Service) Get(ctx context.Context, kind entities.Kind, cuenta int, id int64) (*Line, error) {
	row := s.db.GetConn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectColumns(kind, cuenta), Table(kind, cuenta)), id)
	l, err := scanLine(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s line %d: %w", Table(kind, cuenta), id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s line %d: %w", Table(kind, cuenta), id, err)
	}
	return &l, nil
}

// List returns an entity's lines, newest first unless q.Ascending
func (s *Service) List(ctx context.Context, q Query) ([]Line, error) {
	buckets := []int{q.Cuenta}
	if q.Cuenta == 0 {
		buckets = []int{1, 2}
	}

	var parts []string
	var args []interface{}
	for _, b := range buckets {
		part := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", selectColumns(q.Kind, b), Table(q.Kind, b), q.Kind.IDColumn())
		args = append(args, q.EntityID)
		if q.Desde != "" {
			part += " AND date(fecha) >= date(?)"
			args = append(args, q.Desde)
		}
		if q.Hasta != "" {
			part += " AND date(fecha) <= date(?)"
			args = append(args, q.Hasta)
		}
		parts = append(parts, part)
	}

	order := " ORDER BY date(COALESCE(NULLIF(fecha,''),'0001-01-01')) DESC, id DESC"
	if q.Ascending {
		order = " ORDER BY date(COALESCE(NULLIF(fecha,''),'0001-01-01')) ASC, id ASC"
	}
	query := "SELECT * FROM (" + strings.Join(parts, " UNION ALL ") + ")" + order

	rows, err := s.db.GetConn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list running-balance lines: %w", err)
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		l, err := scanLine(rows, q.Kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan running-balance line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Balance returns SUM(debe)-SUM(haber): positive when the entity owes us.
// Cuenta 0 adds both buckets.
func (s *Service) Balance(ctx context.Context, kind entities.Kind, entityID int64, cuenta int) (currency.Currency, error) {
	buckets := []int{cuenta}
	if cuenta == 0 {
		buckets = []int{1, 2}
	}

	total := currency.Zero()
	for _, b := range buckets {
		var v float64
		err := s.db.GetConn().QueryRowContext(ctx,
			fmt.Sprintf("SELECT COALESCE(SUM(debe),0) - COALESCE(SUM(haber),0) FROM %s WHERE %s = ?", Table(kind, b), kind.IDColumn()),
			entityID).Scan(&v)
		if err != nil {
			return currency.Zero(), fmt.Errorf("failed to compute balance of %s %d: %w", kind, entityID, err)
		}
		total = total.Add(currency.NewFromFloat(v))
	}
	return total, nil
}

// Update rewrites the editable fields of a line
func (s *Service) Update(ctx context.Context, l Line) error {
	if err := normalizeLine(&l); err != nil {
		return err
	}
	res, err := s.db.GetConn().ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET
		fecha = ?, doc = ?, numero = ?, concepto = ?, medio = ?, debe = ?, haber = ?, obs = ?
		WHERE id = ?`, Table(l.Kind, l.Cuenta)),
		l.Fecha, l.Doc, strings.TrimSpace(l.Numero), l.Concepto, l.Medio, l.Debe, l.Haber, l.Obs, l.ID)
	if err != nil {
		return fmt.Errorf("failed to update %s line %d: %w", Table(l.Kind, l.Cuenta), l.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s line %d: %w", Table(l.Kind, l.Cuenta), l.ID, ErrNotFound)
	}
	return nil
}

// DeleteCascade removes a line with its linked cash entry and check. The
// cash entry goes first so that no check or line is left pointing at it.
func (s *Service) DeleteCascade(ctx context.Context, kind entities.Kind, cuenta int, id int64) error {
	l, err := s.Get(ctx, kind, cuenta, id)
	if err != nil {
		return err
	}

	if l.CajaMovID != 0 {
		if err := s.caja.ForceDelete(ctx, l.CajaMovID); err != nil {
			return err
		}
	}
	if l.ChequeID != 0 {
		if _, err := s.db.GetConn().ExecContext(ctx, "DELETE FROM cheques WHERE id = ?", l.ChequeID); err != nil {
			return fmt.Errorf("failed to delete check %d: %w", l.ChequeID, err)
		}
	}
	if _, err := s.db.GetConn().ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", Table(kind, cuenta)), id); err != nil {
		return fmt.Errorf("failed to delete %s line %d: %w", Table(kind, cuenta), id, err)
	}

	logger.WriteInfo("CuentaCorriente", fmt.Sprintf("deleted %s line %d (%s %s, caja %d, cheque %d)",
		Table(kind, cuenta), id, l.Doc, l.Numero, l.CajaMovID, l.ChequeID))
	return nil
}
