package cuentacorriente

import (
	"context"
	"fmt"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

// Column spellings seen across the historical running-balance tables
var (
	docColumns    = []string{"doc", "documento", "tipo_doc"}
	numberColumns = []string{"numero", "nro", "num", "recibo"}
	creditColumns = []string{"haber", "monto", "importe", "credit", "credito"}
	debitColumns  = []string{"debe", "debito", "debit"}
)

func entityColumns(kind entities.Kind) []string {
	if kind == entities.Proveedor {
		return []string{"proveedor_id", "entidad_id", "ent_id", "id_proveedor", "proveedor"}
	}
	return []string{"cliente_id", "entidad_id", "ent_id", "id_cliente", "cliente"}
}

// candidateTables lists the tables that may hold the line, most specific
// first: the given bucket in every historical spelling, then the other
// bucket, then the unified tables.
func candidateTables(kind entities.Kind, cuenta int) []string {
	prefixes := []string{"cc_clientes", "cc_cli"}
	if kind == entities.Proveedor {
		prefixes = []string{"cc_proveedores", "cc_prov"}
	}
	bucket := func(n int) []string {
		return []string{
			fmt.Sprintf("%s_c%d", prefixes[0], n),
			fmt.Sprintf("%s_cuenta%d", prefixes[0], n),
			fmt.Sprintf("%s_cuenta%d", prefixes[1], n),
		}
	}

	order := []int{1, 2}
	if cuenta == 2 {
		order = []int{2, 1}
	}
	var out []string
	for _, n := range order {
		out = append(out, bucket(n)...)
	}
	return append(out, prefixes...)
}

// ReceiptUpdate identifies the document line whose amount follows a check group
type ReceiptUpdate struct {
	Kind     entities.Kind
	EntityID int64 // 0 when unknown; the owner filter is then skipped
	Cuenta   int   // 0 when unknown
	Document receipts.Identifier
	Amount   currency.Currency
}

// UpdateOutcome reports which variant took the write
type UpdateOutcome struct {
	OK           bool   `json:"ok"`
	Table        string `json:"table,omitempty"`
	NumberColumn string `json:"number_column,omitempty"`
	Rows         int64  `json:"rows,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

// UpdateReceiptAmount rewrites the credit amount of the document line and
// zeroes its debit. Table, column and number-spelling variants are tried in
// order and the first one that touches a row wins; later variants are left
// alone even if they would also match.
func (s *Service) UpdateReceiptAmount(ctx context.Context, u ReceiptUpdate) UpdateOutcome {
	if u.Document.IsZero() {
		return UpdateOutcome{Reason: "no document number"}
	}

	infos, err := s.db.DescribeExisting(ctx, candidateTables(u.Kind, u.Cuenta)...)
	if err != nil {
		return UpdateOutcome{Reason: err.Error()}
	}

	usable := 0
	var faults []string
	for _, info := range infos {
		out, tried, err := s.updateIn(ctx, info, u)
		if err != nil {
			logger.WriteWarning("CuentaCorriente", fmt.Sprintf("%s: %v", info.Name, err))
			faults = append(faults, fmt.Sprintf("%s: %v", info.Name, err))
			continue
		}
		if tried {
			usable++
		}
		if out.OK {
			return out
		}
	}

	switch {
	case len(faults) > 0 && usable == 0:
		return UpdateOutcome{Reason: strings.Join(faults, "; ")}
	case usable == 0:
		return UpdateOutcome{Reason: "no running-balance table with usable columns"}
	}
	return UpdateOutcome{Reason: fmt.Sprintf("no running-balance line matched %s %s", ReceiptDocCodes(u.Kind)[0], u.Document.Display())}
}

// updateIn tries every number column and spelling of one table. tried is
// false when the table lacks the columns needed to attempt a match.
func (s *Service) updateIn(ctx context.Context, info database.TableInfo, u ReceiptUpdate) (UpdateOutcome, bool, error) {
	creditCol := info.Pick(creditColumns...)
	numCols := info.PickAll(numberColumns...)
	if creditCol == "" || len(numCols) == 0 {
		return UpdateOutcome{}, false, nil
	}

	set := database.Quote(creditCol) + " = ?"
	setArgs := []interface{}{u.Amount.ToFloat64()}
	if debitCol := info.Pick(debitColumns...); debitCol != "" && !strings.EqualFold(debitCol, creditCol) {
		set += ", " + database.Quote(debitCol) + " = 0"
	}

	var filters []string
	var filterArgs []interface{}
	if entityCol := info.Pick(entityColumns(u.Kind)...); entityCol != "" && u.EntityID != 0 {
		filters = append(filters, database.Quote(entityCol)+" = ?")
		filterArgs = append(filterArgs, u.EntityID)
	} else if u.EntityID != 0 {
		// a table without an owner column cannot be narrowed to this entity
		return UpdateOutcome{}, false, nil
	}
	if docCol := info.Pick(docColumns...); docCol != "" {
		codes := ReceiptDocCodes(u.Kind)
		filters = append(filters, fmt.Sprintf("UPPER(TRIM(%s)) IN (?%s)", database.Quote(docCol), strings.Repeat(",?", len(codes)-1)))
		for _, c := range codes {
			filterArgs = append(filterArgs, c)
		}
	}

	type attempt struct {
		cond string
		arg  interface{}
	}
	for _, col := range numCols {
		q := database.Quote(col)
		var attempts []attempt
		for _, n := range u.Document.NumberCandidates() {
			attempts = append(attempts, attempt{"TRIM(CAST(" + q + " AS TEXT)) = ?", n})
		}
		if n, ok := u.Document.Number(); ok {
			// numeric match only for values without a branch prefix
			attempts = append(attempts, attempt{"CAST(" + q + " AS INTEGER) = ? AND CAST(" + q + " AS TEXT) NOT LIKE '%-%'", n})
		}

		for _, a := range attempts {
			where := append(append([]string{}, filters...), a.cond)
			args := append(append(append([]interface{}{}, setArgs...), filterArgs...), a.arg)
			stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s", database.Quote(info.Name), set, strings.Join(where, " AND "))

			res, err := s.db.GetConn().ExecContext(ctx, stmt, args...)
			if err != nil {
				return UpdateOutcome{}, true, fmt.Errorf("failed to update: %w", err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				return UpdateOutcome{OK: true, Table: info.Name, NumberColumn: col, Rows: n}, true, nil
			}
		}
	}
	return UpdateOutcome{}, true, nil
}
