package cheques

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

var (
	ErrEmptyGroup   = errors.New("no checks found for receipt")
	ErrInvalidTotal = errors.New("receipt group total is not positive")
)

// Annotation and link columns seen across schema versions of the checks table
var (
	annotationColumns = []string{"obs", "observaciones", "detalle", "nota", "comentario"}
	referenceColumns  = []string{"recibo_nro", "nro_recibo"}
	amountColumns     = []string{"importe", "monto"}
	dueDateColumns    = []string{"fecha_cobro", "fecha", "fecha_recibido"}
)

// Member is one check of a receipt group
type Member struct {
	ID        int64             `json:"id"`
	Numero    string            `json:"numero"`
	Banco     string            `json:"banco"`
	Fecha     string            `json:"fecha"`
	Importe   currency.Currency `json:"-"`
	ClienteID int64             `json:"cliente_id,omitempty"`
	MovCajaID int64             `json:"mov_caja_id,omitempty"`
	Cuenta    int               `json:"cuenta,omitempty"`
}

// Group is the transient set of checks that share one receipt number
type Group struct {
	Receipt receipts.Identifier `json:"receipt"`
	Members []Member            `json:"members"`
	Total   currency.Currency   `json:"-"`

	// CajaRef and ClienteID are the first non-null values found, taking the
	// triggering check first. CajaRefs and ClienteIDs hold every distinct one.
	CajaRef    int64   `json:"caja_ref,omitempty"`
	ClienteID  int64   `json:"cliente_id,omitempty"`
	Cuenta     int     `json:"cuenta,omitempty"`
	CajaRefs   []int64 `json:"caja_refs,omitempty"`
	ClienteIDs []int64 `json:"cliente_ids,omitempty"`

	// FullForms holds the distinct branch-prefixed numbers found in the
	// members' tags for the group's canonical number
	FullForms []string `json:"full_forms,omitempty"`
}

// FullForm returns the branch-prefixed number when the tags agree on exactly one
func (g *Group) FullForm() string {
	if len(g.FullForms) != 1 {
		return ""
	}
	return g.FullForms[0]
}

// Warnings describes data that the group tolerates but should not exist
func (g *Group) Warnings() []string {
	var out []string
	if len(g.CajaRefs) > 1 {
		out = append(out, fmt.Sprintf("checks of REC %s point to %d cash entries %v; updating %d",
			g.Receipt.Display(), len(g.CajaRefs), g.CajaRefs, g.CajaRef))
	}
	if len(g.ClienteIDs) > 1 {
		out = append(out, fmt.Sprintf("checks of REC %s belong to %d clients %v; using %d",
			g.Receipt.Display(), len(g.ClienteIDs), g.ClienteIDs, g.ClienteID))
	}
	return out
}

// Ref is what the reconciliation needs to know about the check that was edited
type Ref struct {
	ID         int64
	Reference  string
	Annotation string
	MovCajaID  int64
	ClienteID  int64
	Cuenta     int
}

// LoadRef reads the link fields of one check from whatever columns exist
func (s *Service) LoadRef(ctx context.Context, id int64) (*Ref, error) {
	info, err := s.db.Describe(ctx, "cheques")
	if err != nil {
		return nil, err
	}
	if !info.Exists {
		return nil, fmt.Errorf("check %d: %w", id, ErrNotFound)
	}

	rows, err := s.db.GetConn().QueryContext(ctx, "SELECT * FROM cheques WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to read check %d: %w", id, err)
	}
	found, err := database.ScanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("check %d: %w", id, ErrNotFound)
	}
	row := found[0]

	ref := &Ref{
		ID:        id,
		MovCajaID: row.Int64("mov_caja_id"),
		ClienteID: row.Int64("cliente_id"),
		Cuenta:    ParseCuenta(row.String("cuenta")),
	}
	if col := info.Pick(referenceColumns...); col != "" {
		ref.Reference = row.String(col)
	}
	var notes []string
	for _, col := range info.PickAll(annotationColumns...) {
		if v := strings.TrimSpace(row.String(col)); v != "" {
			notes = append(notes, v)
		}
	}
	ref.Annotation = strings.Join(notes, " | ")
	return ref, nil
}

// Group collects every check tagged with the receipt, or, when id is zero or
// nothing is tagged, every check linked to fallbackCaja. It is read-only.
func (s *Service) Group(ctx context.Context, id receipts.Identifier, triggerID, fallbackCaja int64) (*Group, error) {
	info, err := s.db.Describe(ctx, "cheques")
	if err != nil {
		return nil, err
	}
	if !info.Exists {
		return nil, ErrEmptyGroup
	}

	var rows []database.Row
	if !id.IsZero() {
		rows, err = s.tagged(ctx, info, id)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 && fallbackCaja > 0 && info.Has("mov_caja_id") {
		rs, err := s.db.GetConn().QueryContext(ctx, "SELECT * FROM cheques WHERE mov_caja_id = ? ORDER BY id", fallbackCaja)
		if err != nil {
			return nil, fmt.Errorf("failed to read checks of caja %d: %w", fallbackCaja, err)
		}
		if rows, err = database.ScanRows(rs); err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyGroup
	}

	// trigger first, then by id, so "first found" is deterministic
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Int64("id"), rows[j].Int64("id")
		if (a == triggerID) != (b == triggerID) {
			return a == triggerID
		}
		return a < b
	})

	g := &Group{Receipt: id, Total: currency.Zero()}
	amountCol := info.Pick(amountColumns...)
	dateCol := info.Pick(dueDateColumns...)
	for _, row := range rows {
		m := Member{
			ID:        row.Int64("id"),
			Numero:    row.String("numero"),
			Banco:     row.String("banco"),
			Fecha:     row.String(dateCol),
			Importe:   currency.NewFromFloat(row.Float(amountCol)),
			ClienteID: row.Int64("cliente_id"),
			MovCajaID: row.Int64("mov_caja_id"),
			Cuenta:    ParseCuenta(row.String("cuenta")),
		}
		g.Members = append(g.Members, m)
		g.Total = g.Total.Add(m.Importe)

		if m.MovCajaID != 0 {
			if g.CajaRef == 0 {
				g.CajaRef = m.MovCajaID
			}
			g.CajaRefs = appendDistinct(g.CajaRefs, m.MovCajaID)
		}
		if m.ClienteID != 0 {
			if g.ClienteID == 0 {
				g.ClienteID = m.ClienteID
			}
			g.ClienteIDs = appendDistinct(g.ClienteIDs, m.ClienteID)
		}
		if g.Cuenta == 0 {
			g.Cuenta = m.Cuenta
		}
		if tag, ok := rowDocument(info, row); ok && tag.Full != "" && tag.Canonical == id.Canonical {
			g.FullForms = appendDistinctText(g.FullForms, tag.Full)
		}
	}

	if !g.Total.IsPositive() {
		return g, fmt.Errorf("REC %s: total = %s: %w", id.Display(), g.Total.ToString(), ErrInvalidTotal)
	}
	return g, nil
}

// tagged returns the rows whose reference column or annotation names id
func (s *Service) tagged(ctx context.Context, info database.TableInfo, id receipts.Identifier) ([]database.Row, error) {
	refCol := info.Pick(referenceColumns...)
	textCols := info.PickAll(annotationColumns...)

	var conds []string
	var args []interface{}
	if refCol != "" {
		conds = append(conds, fmt.Sprintf("TRIM(COALESCE(%s,'')) <> ''", database.Quote(refCol)))
	}
	for _, col := range textCols {
		for _, p := range receipts.Receipt.LikePatterns(id) {
			conds = append(conds, database.Quote(col)+" LIKE ?")
			args = append(args, p)
		}
	}
	if len(conds) == 0 {
		return nil, nil
	}

	rs, err := s.db.GetConn().QueryContext(ctx,
		"SELECT * FROM cheques WHERE "+strings.Join(conds, " OR ")+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to look up checks of REC %s: %w", id.Display(), err)
	}
	candidates, err := database.ScanRows(rs)
	if err != nil {
		return nil, err
	}

	var out []database.Row
	for _, row := range candidates {
		if got, ok := rowDocument(info, row); ok && sameDocument(got, id) {
			out = append(out, row)
		}
	}
	return out, nil
}

// rowDocument resolves the receipt a stored check is tagged with, from its
// reference column or its annotations
func rowDocument(info database.TableInfo, row database.Row) (receipts.Identifier, bool) {
	src := receipts.Source{}
	if refCol := info.Pick(referenceColumns...); refCol != "" {
		src.Reference = row.String(refCol)
	}
	var notes []string
	for _, col := range info.PickAll(annotationColumns...) {
		notes = append(notes, row.String(col))
	}
	src.Annotation = strings.Join(notes, " | ")
	return receipts.Receipt.Resolve(src)
}

// sameDocument compares canonical numbers, and branches only when both sides have one
func sameDocument(a, b receipts.Identifier) bool {
	if a.Canonical != b.Canonical {
		return false
	}
	return a.Full == "" || b.Full == "" || a.Full == b.Full
}

// ParseCuenta maps stored account buckets ("1", "cuenta1", "Cuenta 2") to 1 or 2; 0 if unknown
func ParseCuenta(v string) int {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return 0
	case strings.HasSuffix(v, "1"):
		return 1
	case strings.HasSuffix(v, "2"):
		return 2
	}
	return 0
}

func appendDistinct(ids []int64, id int64) []int64 {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

func appendDistinctText(values []string, v string) []string {
	for _, have := range values {
		if have == v {
			return values
		}
	}
	return append(values, v)
}
