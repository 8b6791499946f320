package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Backup writes a consistent copy of the live database into destDir and
// returns the file path. VACUUM INTO is safe while WAL readers are active.
func (db *DB) Backup(ctx context.Context, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	ts := time.Now().Format("20060102_150405")
	dest := filepath.Join(destDir, fmt.Sprintf("backup_%s_%s", ts, filepath.Base(db.path)))
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("backup file already exists: %s", dest)
	}

	if _, err := db.conn.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return dest, nil
}
