// Package audit looks for data the ledgers tolerate but should not contain
package audit

import (
	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/cheques"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
)

// Service runs audits
type Service struct {
	db      *database.DB
	cheques *cheques.Service
	caja    *caja.Service
}

// NewService creates a new audit service
func NewService(db *database.DB, ch *cheques.Service, cajaSvc *caja.Service) *Service {
	return &Service{db: db, cheques: ch, caja: cajaSvc}
}

// AuditResult represents the result of an audit operation
type AuditResult struct {
	Success     bool                   `json:"success"`
	Message     string                 `json:"message,omitempty"`
	TotalChecks int                    `json:"totalChecks"`
	Issues      []AuditIssue           `json:"issues,omitempty"`
	Summary     map[string]interface{} `json:"summary,omitempty"`
}

// AuditIssue represents a single issue found during an audit
type AuditIssue struct {
	Type        string                 `json:"type"`
	Severity    string                 `json:"severity"` // "error", "warning"
	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details"`
}

// Issue types
const (
	IssueMultipleCaja    = "multiple_caja"
	IssueMultipleClients = "multiple_clients"
	IssueAmountMismatch  = "amount_mismatch"
	IssueInvalidTotal    = "invalid_total"
	IssueDuplicateCheck  = "duplicate_check"
)

func countBySeverity(issues []AuditIssue) map[string]interface{} {
	out := map[string]interface{}{"errors": 0, "warnings": 0}
	for _, i := range issues {
		switch i.Severity {
		case "error":
			out["errors"] = out["errors"].(int) + 1
		case "warning":
			out["warnings"] = out["warnings"].(int) + 1
		}
	}
	return out
}
