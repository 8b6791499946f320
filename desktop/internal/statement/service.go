package statement

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/pdf"
)

// Service builds statement PDFs from running accounts
type Service struct {
	cc       *cuentacorriente.Service
	entities *entities.Service
	writer   *pdf.Writer
}

// NewService creates a new statement service
func NewService(cc *cuentacorriente.Service, ents *entities.Service, writer *pdf.Writer) *Service {
	return &Service{cc: cc, entities: ents, writer: writer}
}

// Emitted describes one written statement
type Emitted struct {
	Cuenta      int       `json:"cuenta"`
	FilePath    string    `json:"file_path"`
	Saldo       float64   `json:"saldo"`
	RowCount    int       `json:"row_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Emit writes one statement per bucket with an open balance into dir
func (s *Service) Emit(ctx context.Context, kind entities.Kind, id int64, dir string) ([]Emitted, error) {
	snap := s.snapshot(ctx, kind, id)
	today := common.Today()

	var out []Emitted
	for _, cuenta := range []int{1, 2} {
		saldo, err := s.cc.Balance(ctx, kind, id, cuenta)
		if err != nil {
			return out, err
		}
		if settled(saldo) {
			continue
		}

		lines, err := s.cc.List(ctx, cuentacorriente.Query{Kind: kind, EntityID: id, Cuenta: cuenta, Ascending: true})
		if err != nil {
			return out, err
		}
		start := Start(kind, lines, saldo)
		rows := runningRows(lines)[start:]

		header := []pdf.Field{{Label: "Entidad", Value: snap.Name}}
		if cuenta == 1 {
			header = append(header,
				pdf.Field{Label: "CUIT/DNI", Value: snap.TaxID},
				pdf.Field{Label: "Dirección", Value: snap.Address})
		}

		path := filepath.Join(dir, pdf.SanitizeFileName(fmt.Sprintf("resumen cc c%d %d %s.pdf", cuenta, id, today)))
		err = s.writer.WriteStatement(pdf.Statement{
			Path:   path,
			Title:  fmt.Sprintf("Resumen de cuenta %d - %s", id, snap.Name),
			Header: header,
			Rows:   rows,
			Saldo:  saldo,
		})
		if err != nil {
			return out, err
		}

		logger.WriteInfo("Statement", fmt.Sprintf("%s %d cuenta %d: %d of %d lines -> %s", kind, id, cuenta, len(rows), len(lines), path))
		out = append(out, Emitted{Cuenta: cuenta, FilePath: path, Saldo: saldo.ToFloat64(), RowCount: len(rows), GeneratedAt: time.Now()})
	}
	return out, nil
}

// EmitRange writes every line of one bucket between from and to (inclusive,
// ISO dates, empty for open ends) with the running balance carried in from
// earlier lines.
func (s *Service) EmitRange(ctx context.Context, kind entities.Kind, id int64, cuenta int, from, to, dir string) (*Emitted, error) {
	if cuenta != 1 && cuenta != 2 {
		return nil, errors.New("cuenta must be 1 or 2")
	}
	snap := s.snapshot(ctx, kind, id)

	lines, err := s.cc.List(ctx, cuentacorriente.Query{Kind: kind, EntityID: id, Cuenta: cuenta, Ascending: true})
	if err != nil {
		return nil, err
	}

	all := runningRows(lines)
	var rows []pdf.StatementRow
	saldo := currency.Zero()
	for _, r := range all {
		if to != "" && r.Fecha > to {
			break
		}
		saldo = r.Saldo
		if from != "" && r.Fecha < from {
			continue
		}
		rows = append(rows, r)
	}

	period := fmt.Sprintf("%s al %s", orDash(common.FormatDMY(from)), orDash(common.FormatDMY(to)))
	path := filepath.Join(dir, pdf.SanitizeFileName(fmt.Sprintf("cc c%d %d %s_%s.pdf", cuenta, id, orDash(from), orDash(to))))
	err = s.writer.WriteStatement(pdf.Statement{
		Path:  path,
		Title: fmt.Sprintf("Cuenta corriente %d - %s", id, snap.Name),
		Header: []pdf.Field{
			{Label: "Entidad", Value: snap.Name},
			{Label: "Cuenta", Value: fmt.Sprint(cuenta)},
			{Label: "Período", Value: period},
		},
		Rows:  rows,
		Saldo: saldo,
	})
	if err != nil {
		return nil, err
	}
	return &Emitted{Cuenta: cuenta, FilePath: path, Saldo: saldo.ToFloat64(), RowCount: len(rows), GeneratedAt: time.Now()}, nil
}

func (s *Service) snapshot(ctx context.Context, kind entities.Kind, id int64) entities.Snapshot {
	e, err := s.entities.Get(ctx, kind, id)
	if err != nil {
		logger.WriteWarning("Statement", fmt.Sprintf("%s %d: %v", kind, id, err))
		return entities.Snapshot{ID: id}
	}
	return e.Snapshot()
}

// runningRows converts chronological lines to printable rows with the
// balance after each one
func runningRows(lines []cuentacorriente.Line) []pdf.StatementRow {
	rows := make([]pdf.StatementRow, 0, len(lines))
	saldo := currency.Zero()
	for _, l := range lines {
		debe, haber := currency.NewFromFloat(l.Debe), currency.NewFromFloat(l.Haber)
		saldo = saldo.Add(debe).Sub(haber)
		detalle := l.Concepto
		if detalle == "" {
			detalle = l.Obs
		}
		rows = append(rows, pdf.StatementRow{
			Fecha:       l.Fecha,
			Comprobante: fmt.Sprintf("%s %s", l.Doc, l.Numero),
			Detalle:     detalle,
			Debe:        debe,
			Haber:       haber,
			Saldo:       saldo,
		})
	}
	return rows
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
