package caja

import (
	"context"
	"fmt"

	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

// Outcome reports a best-effort ledger write. A miss is not an error.
type Outcome struct {
	OK      bool   `json:"ok"`
	EntryID int64  `json:"entry_id,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

var (
	entryAmountColumns = []string{"monto", "importe"}
	entryTextColumns   = []string{"detalle", "concepto", "obs"}
)

// UpdateAmountForReceipt sets the amount of the entry linked to a receipt.
// The direct reference is tried first; when it is missing or stale the entry
// is searched by the receipt tag in its detail/concept text.
func (s *Service) UpdateAmountForReceipt(ctx context.Context, ref int64, id receipts.Identifier, amount currency.Currency) Outcome {
	info, err := s.db.Describe(ctx, "movimientos_caja")
	if err != nil {
		return Outcome{Reason: err.Error()}
	}
	amountCol := info.Pick(entryAmountColumns...)
	if !info.Exists || amountCol == "" {
		return Outcome{Reason: "cash ledger has no amount column"}
	}
	update := fmt.Sprintf("UPDATE movimientos_caja SET %s = ? WHERE id = ?", database.Quote(amountCol))

	if ref > 0 {
		res, err := s.db.GetConn().ExecContext(ctx, update, amount.ToFloat64(), ref)
		if err != nil {
			return Outcome{Reason: fmt.Sprintf("failed to update cash entry %d: %v", ref, err)}
		}
		if n, _ := res.RowsAffected(); n > 0 {
			return Outcome{OK: true, EntryID: ref}
		}
	}

	if id.IsZero() {
		return Outcome{Reason: "no cash entry reference and no receipt number to search by"}
	}

	entryID, err := s.findByReceipt(ctx, info, id)
	if err != nil {
		return Outcome{Reason: err.Error()}
	}
	if entryID == 0 {
		return Outcome{Reason: fmt.Sprintf("no cash entry mentions REC %s", id.Display())}
	}
	if _, err := s.db.GetConn().ExecContext(ctx, update, amount.ToFloat64(), entryID); err != nil {
		return Outcome{Reason: fmt.Sprintf("failed to update cash entry %d: %v", entryID, err)}
	}
	return Outcome{OK: true, EntryID: entryID}
}

// findByReceipt returns the oldest entry whose text carries the receipt tag
func (s *Service) findByReceipt(ctx context.Context, info database.TableInfo, id receipts.Identifier) (int64, error) {
	for _, col := range info.PickAll(entryTextColumns...) {
		for _, pattern := range receipts.Receipt.LikePatterns(id) {
			q := fmt.Sprintf("SELECT id, %[1]s AS txt FROM movimientos_caja WHERE %[1]s LIKE ? ORDER BY id", database.Quote(col))
			rs, err := s.db.GetConn().QueryContext(ctx, q, pattern)
			if err != nil {
				return 0, fmt.Errorf("failed to search cash entries by %s: %w", col, err)
			}
			rows, err := database.ScanRows(rs)
			if err != nil {
				return 0, err
			}
			for _, row := range rows {
				if receipts.Receipt.Matches(row.String("txt"), id) {
					return row.Int64("id"), nil
				}
			}
		}
	}
	return 0, nil
}
