package audit

import (
	"context"
	"fmt"

	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
)

// DuplicateChecks reports checks sharing bank and number
func (s *Service) DuplicateChecks(ctx context.Context) (*AuditResult, error) {
	var total int
	if err := s.db.GetConn().QueryRowContext(ctx, "SELECT COUNT(*) FROM cheques").Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count checks: %w", err)
	}

	rs, err := s.db.GetConn().QueryContext(ctx, `
		SELECT id, COALESCE(numero,'') AS numero, COALESCE(banco,'') AS banco,
			COALESCE(importe,0) AS importe, COALESCE(estado,'') AS estado,
			UPPER(TRIM(COALESCE(banco,''))) || '|' || TRIM(COALESCE(numero,'')) AS k
		FROM cheques
		WHERE UPPER(TRIM(COALESCE(banco,''))) || '|' || TRIM(COALESCE(numero,'')) IN (
			SELECT UPPER(TRIM(COALESCE(banco,''))) || '|' || TRIM(COALESCE(numero,''))
			FROM cheques GROUP BY 1 HAVING COUNT(*) > 1)
		ORDER BY k, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to look up duplicate checks: %w", err)
	}
	rows, err := database.ScanRows(rs)
	if err != nil {
		return nil, err
	}

	var order []string
	byKey := map[string][]database.Row{}
	for _, r := range rows {
		k := r.String("k")
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], r)
	}

	result := &AuditResult{Success: true, TotalChecks: total}
	affected := 0
	for _, k := range order {
		group := byKey[k]
		affected += len(group)
		var list []map[string]interface{}
		for _, r := range group {
			list = append(list, map[string]interface{}{
				"id":      r.Int64("id"),
				"importe": r.Float("importe"),
				"estado":  r.String("estado"),
			})
		}
		first := group[0]
		result.Issues = append(result.Issues, AuditIssue{
			Type:     IssueDuplicateCheck,
			Severity: "warning",
			Description: fmt.Sprintf("check %s of %s appears %d times",
				first.String("numero"), first.String("banco"), len(group)),
			Details: map[string]interface{}{
				"numero": first.String("numero"),
				"banco":  first.String("banco"),
				"count":  len(group),
				"checks": list,
			},
		})
	}

	result.Summary = countBySeverity(result.Issues)
	result.Summary["duplicateGroups"] = len(order)
	result.Summary["checksAffectedByDuplicates"] = affected
	if len(order) > 0 {
		result.Message = fmt.Sprintf("Found %d duplicated checks affecting %d rows", len(order), affected)
	} else {
		result.Message = "No duplicated checks"
	}
	logger.WriteInfo("Audit", result.Message)
	return result, nil
}
