package entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
)

// Kind tells clients and suppliers apart. Both live in tables with the same
// layout and own their own running-balance tables.
type Kind string

const (
	Cliente   Kind = "cliente"
	Proveedor Kind = "proveedor"
)

// ErrNotFound is returned when no entity has the given id
var ErrNotFound = errors.New("entity not found")

// ParseKind accepts the UI spellings ("clientes", "prov", ...)
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "cli"):
		return Cliente, nil
	case strings.HasPrefix(s, "prov"):
		return Proveedor, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Table returns the master table for the kind
func (k Kind) Table() string {
	if k == Proveedor {
		return "proveedores"
	}
	return "clientes"
}

// IDColumn is the owner column used by the kind's running-balance tables
func (k Kind) IDColumn() string {
	if k == Proveedor {
		return "proveedor_id"
	}
	return "cliente_id"
}

// Entity is a client or supplier record
type Entity struct {
	ID           int64  `json:"id"`
	Kind         Kind   `json:"kind"`
	RazonSocial  string `json:"razon_social"`
	CondicionIVA string `json:"condicion_iva"`
	CUITDNI      string `json:"cuit_dni"`
	Telefono     string `json:"telefono"`
	Email        string `json:"email"`
	Calle        string `json:"calle"`
	Nro          string `json:"nro"`
	Localidad    string `json:"localidad"`
	CP           string `json:"cp"`
	Provincia    string `json:"provincia"`
	Estado       string `json:"estado"`
}

// Snapshot is the counterparty block printed on documents
type Snapshot struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
}

// Address renders "calle nro, localidad" leaving out empty parts
func (e Entity) Address() string {
	street := strings.TrimSpace(strings.TrimSpace(e.Calle) + " " + strings.TrimSpace(e.Nro))
	loc := strings.TrimSpace(e.Localidad)
	switch {
	case street != "" && loc != "":
		return street + ", " + loc
	case street != "":
		return street
	}
	return loc
}

// Snapshot returns the printable counterparty block
func (e Entity) Snapshot() Snapshot {
	return Snapshot{ID: e.ID, Name: e.RazonSocial, TaxID: e.CUITDNI, Address: e.Address()}
}

// Service reads and writes clients and suppliers
type Service struct {
	db *database.DB
}

// NewService creates a new entity service
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

const selectColumns = `id, COALESCE(razon_social,''), COALESCE(condicion_iva,''), COALESCE(cuit_dni,''),
	COALESCE(tel1,''), COALESCE(email,''), COALESCE(calle,''), COALESCE(nro,''),
	COALESCE(localidad,''), COALESCE(cp,''), COALESCE(provincia,''), COALESCE(estado,'')`

func scanEntity(sc interface{ Scan(...interface{}) error }, kind Kind) (Entity, error) {
	e := Entity{Kind: kind}
	err := sc.Scan(&e.ID, &e.RazonSocial, &e.CondicionIVA, &e.CUITDNI, &e.Telefono, &e.Email,
		&e.Calle, &e.Nro, &e.Localidad, &e.CP, &e.Provincia, &e.Estado)
	return e, err
}

// Get loads one entity
func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Entity, error) {
	row := s.db.GetConn().QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", selectColumns, kind.Table()), id)
	e, err := scanEntity(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %d: %w", kind, id, err)
	}
	return &e, nil
}

// Name returns the razón social, or "" when the entity does not exist
func (s *Service) Name(ctx context.Context, kind Kind, id int64) string {
	e, err := s.Get(ctx, kind, id)
	if err != nil {
		return ""
	}
	return e.RazonSocial
}

// List returns every entity of the kind ordered by name
func (s *Service) List(ctx context.Context, kind Kind) ([]Entity, error) {
	rows, err := s.db.GetConn().QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s ORDER BY razon_social COLLATE NOCASE, id", selectColumns, kind.Table()))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind.Table(), err)
	}
	defer rows.Close()

	var out []Entity
	for rows.Next() {
		e, err := scanEntity(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Add validates and inserts an entity, returning its id
func (s *Service) Add(ctx context.Context, e Entity) (int64, error) {
	if e.Kind == "" {
		return 0, errors.New("entity kind is required")
	}
	e.RazonSocial = strings.TrimSpace(e.RazonSocial)
	if e.RazonSocial == "" {
		return 0, common.ValidationError{Field: "razon_social", Message: "razón social is required"}
	}
	if digits := common.DigitsOnly(e.CUITDNI); len(digits) == 11 {
		if err := common.ValidateCUIT(digits); err != nil {
			return 0, err
		}
	}
	if e.Estado == "" {
		e.Estado = "activo"
	}

	res, err := s.db.GetConn().ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (tipo, razon_social, condicion_iva, cuit_dni, tel1, email,
			calle, nro, localidad, cp, provincia, estado) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`, e.Kind.Table()),
		string(e.Kind), e.RazonSocial, e.CondicionIVA, e.CUITDNI, e.Telefono, e.Email,
		e.Calle, e.Nro, e.Localidad, e.CP, e.Provincia, e.Estado)
	if err != nil {
		return 0, fmt.Errorf("failed to insert %s: %w", e.Kind, err)
	}
	return res.LastInsertId()
}
