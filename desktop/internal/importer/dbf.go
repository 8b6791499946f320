package importer

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Valentin-Kaiser/go-dbase/dbase"

	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
)

// ImportDBF reads a dBase/FoxPro table with the same field names as the CSV
// layout. Deleted records are skipped.
func (s *Service) ImportDBF(ctx context.Context, kind entities.Kind, cuenta int, path string, defaultEntity int64) (*Report, error) {
	table, err := dbase.OpenTable(&dbase.Config{
		Filename:   path,
		TrimSpaces: true,
		ReadOnly:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open DBF file: %w", err)
	}
	defer table.Close()

	var names []string
	for _, col := range table.Columns() {
		names = append(names, col.Name())
	}
	cols := columnMap(names)
	if _, ok := cols["fecha"]; !ok {
		return nil, fmt.Errorf("DBF table has no fecha field")
	}

	var records []record
	for !table.EOF() {
		row, err := table.Next()
		if err != nil {
			return nil, fmt.Errorf("failed to read DBF record: %w", err)
		}
		if row.Deleted {
			continue
		}
		rec := record{}
		for field, i := range cols {
			v, err := row.ValueByName(names[i])
			if err != nil {
				continue
			}
			rec[field] = dbfText(v)
		}
		records = append(records, rec)
	}
	return s.store(ctx, "DBF "+path, kind, cuenta, records, defaultEntity), nil
}

// dbfText renders a dBase value the way the CSV layout spells it
func dbfText(v interface{}) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(common.DateFormat)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return database.AsString(v)
}
