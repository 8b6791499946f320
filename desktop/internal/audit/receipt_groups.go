package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/textilsur/gestiontextil/desktop/internal/cheques"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

// ReceiptGroupAnomalies groups every tagged check by receipt and reports
// groups spread over several cash entries or clients, groups whose cash entry
// disagrees with the check total, and groups that do not add up to a
// positive amount.
func (s *Service) ReceiptGroupAnomalies(ctx context.Context) (*AuditResult, error) {
	var ids []int64
	rows, err := s.db.GetConn().QueryContext(ctx, "SELECT id FROM cheques ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to list checks: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}

	result := &AuditResult{Success: true, TotalChecks: len(ids)}
	visited := map[int64]bool{}
	groups, untagged := 0, 0

	for _, id := range ids {
		if visited[id] {
			continue
		}
		ref, err := s.cheques.LoadRef(ctx, id)
		if err != nil {
			return nil, err
		}
		rec, ok := receipts.Receipt.Resolve(receipts.Source{Reference: ref.Reference, Annotation: ref.Annotation})
		if !ok {
			untagged++
			continue
		}

		g, err := s.cheques.Group(ctx, rec, id, 0)
		if errors.Is(err, cheques.ErrEmptyGroup) {
			continue
		}
		if g == nil {
			return nil, err
		}
		groups++
		for _, m := range g.Members {
			visited[m.ID] = true
		}
		if errors.Is(err, cheques.ErrInvalidTotal) {
			result.Issues = append(result.Issues, groupIssue(IssueInvalidTotal, "error", g,
				fmt.Sprintf("REC %s adds up to %s", rec.Display(), g.Total.ToString())))
			continue
		}
		result.Issues = append(result.Issues, s.inspect(ctx, g)...)
	}

	result.Summary = countBySeverity(result.Issues)
	result.Summary["receiptGroups"] = groups
	result.Summary["untaggedChecks"] = untagged
	if len(result.Issues) == 0 {
		result.Message = fmt.Sprintf("No issues found in %d receipt groups", groups)
	} else {
		result.Message = fmt.Sprintf("Found %d issues in %d receipt groups", len(result.Issues), groups)
	}
	logger.WriteInfo("Audit", result.Message)
	return result, nil
}

func (s *Service) inspect(ctx context.Context, g *cheques.Group) []AuditIssue {
	var out []AuditIssue
	rec := g.Receipt.Display()
	if len(g.CajaRefs) > 1 {
		out = append(out, groupIssue(IssueMultipleCaja, "error", g,
			fmt.Sprintf("REC %s checks point to %d cash entries", rec, len(g.CajaRefs))))
	}
	if len(g.ClienteIDs) > 1 {
		out = append(out, groupIssue(IssueMultipleClients, "warning", g,
			fmt.Sprintf("REC %s checks belong to %d clients", rec, len(g.ClienteIDs))))
	}
	if g.CajaRef != 0 {
		e, err := s.caja.Get(ctx, g.CajaRef)
		if err == nil && !currency.NewFromFloat(e.Monto).Equal(g.Total) {
			issue := groupIssue(IssueAmountMismatch, "error", g,
				fmt.Sprintf("REC %s cash entry %d holds %.2f, checks add up to %s", rec, e.ID, e.Monto, g.Total.ToString()))
			issue.Details["cajaAmount"] = e.Monto
			out = append(out, issue)
		}
	}
	return out
}

func groupIssue(kind, severity string, g *cheques.Group, desc string) AuditIssue {
	var members []int64
	for _, m := range g.Members {
		members = append(members, m.ID)
	}
	return AuditIssue{
		Type:        kind,
		Severity:    severity,
		Description: desc,
		Details: map[string]interface{}{
			"receipt":    g.Receipt.Display(),
			"checks":     members,
			"total":      g.Total.ToFloat64(),
			"cajaRefs":   g.CajaRefs,
			"clienteIds": g.ClienteIDs,
		},
	}
}
