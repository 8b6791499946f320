package cheques

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
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

// Lifecycle states as stored
const (
	EstadoEnCartera  = "en_cartera"
	EstadoDepositado = "depositado"
	EstadoEndosado   = "endosado"
	EstadoRechazado  = "rechazado"
)

var (
	ErrNotFound       = errors.New("check not found")
	ErrNotInPortfolio = errors.New("check is not en cartera")
)

// Cheque is a postdated check held or passed on by the business
type Cheque struct {
	ID              int64   `json:"id"`
	Numero          string  `json:"numero"`
	Banco           string  `json:"banco"`
	Importe         float64 `json:"importe"`
	FechaRecibido   string  `json:"fecha_recibido"`
	FechaCobro      string  `json:"fecha_cobro"`
	ClienteID       int64   `json:"cliente_id,omitempty"`
	ProveedorID     int64   `json:"proveedor_id,omitempty"`
	FirmanteNombre  string  `json:"firmante_nombre"`
	FirmanteCUIT    string  `json:"firmante_cuit"`
	Estado          string  `json:"estado"`
	FechaEstado     string  `json:"fecha_estado"`
	Obs             string  `json:"obs"`
	MovCajaID       int64   `json:"mov_caja_id,omitempty"`
	CuentaBanco     string  `json:"cuenta_banco,omitempty"`
	GastosBancarios float64 `json:"gastos_bancarios,omitempty"`
	Cuenta          string  `json:"cuenta"`
	ReciboNro       string  `json:"recibo_nro,omitempty"`
}

// IsInPortfolio compares a stored state ignoring case, spaces, underscores
// and dashes, so "En Cartera", "en_cartera" and "cartera" all qualify.
func IsInPortfolio(estado string) bool {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(estado)))
	return norm == "encartera" || norm == "cartera"
}

// Service manages checks
type Service struct {
	db *database.DB
}

// NewService creates a new check service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

const selectColumns = `id, COALESCE(numero,''), COALESCE(banco,''), COALESCE(importe,0),
	COALESCE(fecha_recibido,''), COALESCE(fecha_cobro,''), COALESCE(cliente_id,0), COALESCE(proveedor_id,0),
	COALESCE(firmante_nombre,''), COALESCE(firmante_cuit,''), COALESCE(estado,''), COALESCE(fecha_estado,''),
	COALESCE(obs,''), COALESCE(mov_caja_id,0), COALESCE(cuenta_banco,''), COALESCE(gastos_bancarios,0),
	COALESCE(cuenta,''), COALESCE(recibo_nro,'')`

func scanCheque(sc interface{ Scan(...interface{}) error }) (Cheque, error) {
	var c Cheque
	err := sc.Scan(&c.ID, &c.Numero, &c.Banco, &c.Importe, &c.FechaRecibido, &c.FechaCobro,
		&c.ClienteID, &c.ProveedorID, &c.FirmanteNombre, &c.FirmanteCUIT, &c.Estado, &c.FechaEstado,
		&c.Obs, &c.MovCajaID, &c.CuentaBanco, &c.GastosBancarios, &c.Cuenta, &c.ReciboNro)
	return c, err
}

// Add stores a new check. It starts en cartera unless a state is given.
func (s *Service) Add(ctx context.Context, c Cheque) (int64, error) {
	if err := common.ValidateCheckNumber(c.Numero); err != nil {
		return 0, err
	}
	if err := common.ValidateAmount(c.Importe); err != nil {
		return 0, err
	}
	if c.Estado == "" {
		c.Estado = EstadoEnCartera
	}
	if c.FechaEstado == "" {
		c.FechaEstado = common.Today()
	}
	if c.FechaRecibido == "" {
		c.FechaRecibido = common.Today()
	}
	if c.Cuenta == "" {
		c.Cuenta = "1"
	}

	res, err := s.db.GetConn().ExecContext(ctx, `INSERT INTO cheques
		(numero, banco, importe, fecha_recibido, fecha_cobro, cliente_id, proveedor_id,
		 firmante_nombre, firmante_cuit, estado, fecha_estado, obs, mov_caja_id, cuenta, recibo_nro)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(c.Numero), strings.TrimSpace(c.Banco), currency.NewFromFloat(c.Importe).ToFloat64(),
		c.FechaRecibido, c.FechaCobro, database.NullableID(c.ClienteID), database.NullableID(c.ProveedorID),
		c.FirmanteNombre, c.FirmanteCUIT, c.Estado, c.FechaEstado, c.Obs, database.NullableID(c.MovCajaID),
		c.Cuenta, nullableText(c.ReciboNro))
	if err != nil {
		return 0, fmt.Errorf("failed to insert check: %w", err)
	}
	return res.LastInsertId()
}

// Get loads one check
func (s *Service) Get(ctx context.Context, id int64) (*Cheque, error) {
	row := s.db.GetConn().QueryRowContext(ctx, "SELECT "+selectColumns+" FROM cheques WHERE id = ?", id)
	c, err := scanCheque(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check %d: %w", id, err)
	}
	return &c, nil
}

// List returns checks in the given state (all when estado is empty), by due date
func (s *Service) List(ctx context.Context, estado string) ([]Cheque, error) {
	query := "SELECT " + selectColumns + " FROM cheques"
	var args []interface{}
	if estado = strings.TrimSpace(estado); estado != "" {
		query += " WHERE estado = ?"
		args = append(args, estado)
	}
	query += " ORDER BY date(fecha_cobro), id"
	return s.query(ctx, query, args...)
}

// ListInPortfolio returns every check still held, whatever spelling its state has
func (s *Service) ListInPortfolio(ctx context.Context) ([]Cheque, error) {
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	var out []Cheque
	for _, c := range all {
		if IsInPortfolio(c.Estado) {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListByCaja returns the checks linked to a cash-ledger entry
func (s *Service) ListByCaja(ctx context.Context, cajaID int64) ([]Cheque, error) {
	return s.query(ctx, "SELECT "+selectColumns+" FROM cheques WHERE mov_caja_id = ? ORDER BY id", cajaID)
}

func (s *Service) query(ctx context.Context, query string, args ...interface{}) ([]Cheque, error) {
	rows, err := s.db.GetConn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	defer rows.Close()

	var out []Cheque
	for rows.Next() {
		c, err := scanCheque(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Changes lists the editable fields; nil leaves a field as is
type Changes struct {
	Numero         *string  `json:"numero,omitempty"`
	Banco          *string  `json:"banco,omitempty"`
	Importe        *float64 `json:"importe,omitempty"`
	FechaCobro     *string  `json:"fecha_cobro,omitempty"`
	FirmanteNombre *string  `json:"firmante_nombre,omitempty"`
	FirmanteCUIT   *string  `json:"firmante_cuit,omitempty"`
	Obs            *string  `json:"obs,omitempty"`
}

// Edit applies changes to a check that is still en cartera
func (s *Service) Edit(ctx context.Context, id int64, ch Changes) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !IsInPortfolio(c.Estado) {
		return fmt.Errorf("check %d (%s): %w", id, c.Estado, ErrNotInPortfolio)
	}

	var sets []string
	var args []interface{}
	set := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if ch.Numero != nil {
		if err := common.ValidateCheckNumber(*ch.Numero); err != nil {
			return err
		}
		set("numero", strings.TrimSpace(*ch.Numero))
	}
	if ch.Banco != nil {
		set("banco", strings.TrimSpace(*ch.Banco))
	}
	if ch.Importe != nil {
		if err := common.ValidateAmount(*ch.Importe); err != nil {
			return err
		}
		set("importe", currency.NewFromFloat(*ch.Importe).ToFloat64())
	}
	if ch.FechaCobro != nil {
		fecha, err := common.NormalizeDate(*ch.FechaCobro)
		if err != nil {
			return err
		}
		set("fecha_cobro", fecha)
	}
	if ch.FirmanteNombre != nil {
		set("firmante_nombre", *ch.FirmanteNombre)
	}
	if ch.FirmanteCUIT != nil {
		set("firmante_cuit", *ch.FirmanteCUIT)
	}
	if ch.Obs != nil {
		set("obs", *ch.Obs)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	if _, err := s.db.GetConn().ExecContext(ctx,
		"UPDATE cheques SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
		return fmt.Errorf("failed to update check %d: %w", id, err)
	}
	logger.WriteInfo("Cheques", fmt.Sprintf("check %d edited (%d fields)", id, len(sets)))
	return nil
}

// StateChange carries the data recorded with a state transition
type StateChange struct {
	Estado          string  `json:"estado"`
	Fecha           string  `json:"fecha"`
	ProveedorID     int64   `json:"proveedor_id,omitempty"`
	CuentaBanco     string  `json:"cuenta_banco,omitempty"`
	GastosBancarios float64 `json:"gastos_bancarios,omitempty"`
}

// ChangeState records a deposit, endorsement or rejection
func (s *Service) ChangeState(ctx context.Context, id int64, sc StateChange) error {
	estado := strings.TrimSpace(sc.Estado)
	if estado == "" {
		return common.ValidationError{Field: "estado", Message: "state is required"}
	}
	fecha, err := common.NormalizeDate(sc.Fecha)
	if err != nil {
		return err
	}
	if estado == EstadoEndosado && sc.ProveedorID == 0 {
		return common.ValidationError{Field: "proveedor_id", Message: "endorsement needs a supplier"}
	}

	sets := []string{"estado = ?", "fecha_estado = ?"}
	args := []interface{}{estado, fecha}
	if sc.ProveedorID != 0 {
		sets = append(sets, "proveedor_id = ?")
		args = append(args, sc.ProveedorID)
	}
	if sc.CuentaBanco != "" {
		sets = append(sets, "cuenta_banco = ?")
		args = append(args, sc.CuentaBanco)
	}
	if sc.GastosBancarios != 0 {
		sets = append(sets, "gastos_bancarios = ?")
		args = append(args, sc.GastosBancarios)
	}
	args = append(args, id)

	res, err := s.db.GetConn().ExecContext(ctx,
		"UPDATE cheques SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to change state of check %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("check %d: %w", id, ErrNotFound)
	}
	logger.WriteInfo("Cheques", fmt.Sprintf("check %d -> %s", id, estado))
	return nil
}

// SetCajaLink points the check at a cash-ledger entry; 0 clears the link
func (s *Service) SetCajaLink(ctx context.Context, id, cajaID int64) error {
	if _, err := s.db.GetConn().ExecContext(ctx,
		"UPDATE cheques SET mov_caja_id = ? WHERE id = ?", database.NullableID(cajaID), id); err != nil {
		return fmt.Errorf("failed to link check %d to caja: %w", id, err)
	}
	return nil
}

// TagDocument appends "<MARKER> <number>" to the check's annotation unless it
// is already there. Receipt tags also fill recibo_nro when that column exists.
func (s *Service) TagDocument(ctx context.Context, id int64, r *receipts.Resolver, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil
	}

	var obs string
	err := s.db.GetConn().QueryRowContext(ctx, "SELECT COALESCE(obs,'') FROM cheques WHERE id = ?", id).Scan(&obs)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("check %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read check %d: %w", id, err)
	}

	tagged := receipts.AppendTag(obs, r.Tag(number))
	if tagged != obs {
		if _, err := s.db.GetConn().ExecContext(ctx, "UPDATE cheques SET obs = ? WHERE id = ?", tagged, id); err != nil {
			return fmt.Errorf("failed to tag check %d: %w", id, err)
		}
	}

	if r.Marker != receipts.Receipt.Marker {
		return nil
	}
	has, err := s.db.HasColumn(ctx, "cheques", "recibo_nro")
	if err != nil || !has {
		return err
	}
	if _, err := s.db.GetConn().ExecContext(ctx, "UPDATE cheques SET recibo_nro = ? WHERE id = ?", number, id); err != nil {
		return fmt.Errorf("failed to set recibo_nro of check %d: %w", id, err)
	}
	return nil
}

// Delete removes a check
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.GetConn().ExecContext(ctx, "DELETE FROM cheques WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete check %d: %w", id, err)
	}
	return nil
}

func nullableText(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.TrimSpace(s)
}
