// Package export writes ledgers to XLSX workbooks with a running balance column
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
)

// Service exports ledgers
type Service struct {
	caja *caja.Service
	cc   *cuentacorriente.Service
}

// NewService creates a new export service
func NewService(cajaSvc *caja.Service, cc *cuentacorriente.Service) *Service {
	return &Service{caja: cajaSvc, cc: cc}
}

type sheet struct {
	f      *excelize.File
	name   string
	row    int
	amount int
}

func newSheet(name string, headers []string, widths []float64) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(name, "A1", toRow(headers)); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
		return nil, err
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, w); err != nil {
			return nil, err
		}
	}
	// #,##0.00
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	return &sheet{f: f, name: name, row: 1, amount: amount}, nil
}

func toRow(values []string) *[]interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return &row
}

// append writes values on the next row and formats columns from firstAmount on
func (s *sheet) append(firstAmount int, values ...interface{}) error {
	s.row++
	cell, _ := excelize.CoordinatesToCellName(1, s.row)
	if err := s.f.SetSheetRow(s.name, cell, &values); err != nil {
		return err
	}
	from, _ := excelize.CoordinatesToCellName(firstAmount, s.row)
	to, _ := excelize.CoordinatesToCellName(len(values), s.row)
	return s.f.SetCellStyle(s.name, from, to, s.amount)
}

func (s *sheet) save(path string) error {
	defer s.f.Close()
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := s.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Caja writes the filtered cash ledger oldest first. It returns the number of
// entries written.
func (s *Service) Caja(ctx context.Context, path string, filter caja.Filter) (int, error) {
	entries, err := s.caja.List(ctx, filter)
	if err != nil {
		return 0, err
	}

	sh, err := newSheet("Caja",
		[]string{"Fecha", "Tipo", "Medio", "Concepto", "Detalle", "Cuenta", "Ingreso", "Egreso", "Saldo parcial"},
		[]float64{12, 10, 10, 30, 30, 8, 14, 14, 16})
	if err != nil {
		return 0, fmt.Errorf("failed to create workbook: %w", err)
	}

	saldo := currency.Zero()
	// List is newest first
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		monto := currency.NewFromFloat(e.Monto)
		var ingreso, egreso interface{}
		if e.Tipo == caja.Ingreso {
			saldo = saldo.Add(monto)
			ingreso = monto.ToFloat64()
		} else {
			saldo = saldo.Sub(monto)
			egreso = monto.ToFloat64()
		}
		if err := sh.append(7, e.Fecha, e.Tipo, e.Medio, e.Concepto, e.Detalle, e.Cuenta, ingreso, egreso, saldo.ToFloat64()); err != nil {
			return 0, fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := sh.save(path); err != nil {
		return 0, err
	}
	logger.WriteInfo("Export", fmt.Sprintf("caja: %d entries -> %s", len(entries), path))
	return len(entries), nil
}

// CuentaCorriente writes one entity's running account. cuenta 0 exports both
// buckets merged by date.
func (s *Service) CuentaCorriente(ctx context.Context, path string, kind entities.Kind, id int64, cuenta int) (int, error) {
	lines, err := s.cc.List(ctx, cuentacorriente.Query{Kind: kind, EntityID: id, Cuenta: cuenta, Ascending: true})
	if err != nil {
		return 0, err
	}

	sh, err := newSheet("Cuenta corriente",
		[]string{"Fecha", "Cuenta", "Comprobante", "Concepto", "Medio", "Debe", "Haber", "Saldo parcial"},
		[]float64{12, 8, 20, 30, 10, 14, 14, 16})
	if err != nil {
		return 0, fmt.Errorf("failed to create workbook: %w", err)
	}

	saldo := currency.Zero()
	for _, l := range lines {
		debe, haber := currency.NewFromFloat(l.Debe), currency.NewFromFloat(l.Haber)
		saldo = saldo.Add(debe).Sub(haber)
		comprobante := l.Doc
		if l.Numero != "" {
			comprobante += " " + l.Numero
		}
		if err := sh.append(6, l.Fecha, l.Cuenta, comprobante, l.Concepto, l.Medio, debe.ToFloat64(), haber.ToFloat64(), saldo.ToFloat64()); err != nil {
			return 0, fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := sh.save(path); err != nil {
		return 0, err
	}
	logger.WriteInfo("Export", fmt.Sprintf("cc %s %d cuenta %d: %d lines -> %s", kind, id, cuenta, len(lines), path))
	return len(lines), nil
}
