package database

import (
	"context"
	"fmt"
	"strings"
)

// NextNumber increments the per-type counter and returns it formatted as
// BBBB-NNNNNNNN (branch, then the 8-digit sequence).
func (db *DB) NextNumber(ctx context.Context, tipo, branch string) (string, error) {
	tipo = strings.ToLower(strings.TrimSpace(tipo))
	if tipo == "" {
		return "", fmt.Errorf("numbering type is required")
	}
	if branch == "" {
		branch = "0001"
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin numbering transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO numeradores (tipo, valor) VALUES (?, 0)", tipo); err != nil {
		return "", fmt.Errorf("failed to seed numerator %s: %w", tipo, err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE numeradores SET valor = valor + 1 WHERE tipo = ?", tipo); err != nil {
		return "", fmt.Errorf("failed to bump numerator %s: %w", tipo, err)
	}
	var n int64
	if err := tx.QueryRowContext(ctx, "SELECT valor FROM numeradores WHERE tipo = ?", tipo).Scan(&n); err != nil {
		return "", fmt.Errorf("failed to read numerator %s: %w", tipo, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit numerator %s: %w", tipo, err)
	}

	return fmt.Sprintf("%s-%08d", branch, n), nil
}
