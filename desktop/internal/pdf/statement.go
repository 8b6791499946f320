package pdf

import (
	"errors"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/currency"
)

// StatementRow is one printed running-account line
type StatementRow struct {
	Fecha       string
	Comprobante string
	Detalle     string
	Debe        currency.Currency
	Haber       currency.Currency
	Saldo       currency.Currency
}

// Field is a label/value pair printed above the table
type Field struct {
	Label string
	Value string
}

// Statement is an account statement
type Statement struct {
	Path   string
	Title  string
	Header []Field
	Rows   []StatementRow
	Saldo  currency.Currency
}

// WriteStatement renders an account statement
func (w *Writer) WriteStatement(s Statement) error {
	if strings.TrimSpace(s.Path) == "" {
		return errors.New("statement path is required")
	}

	gen := NewGenerator(nil)
	gen.SetCompanyInfo(&w.Company)
	gen.SetReportTitle(s.Title)
	gen.AddPage()

	gen.AddTitle(s.Title, 14)
	for _, f := range s.Header {
		gen.AddField(f.Label, f.Value)
	}
	gen.AddSeparator()

	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{
			FormatDate(r.Fecha),
			r.Comprobante,
			TruncateText(r.Detalle, 38),
			amountOrBlank(r.Debe),
			amountOrBlank(r.Haber),
			FormatAmount(r.Saldo),
		})
	}
	gen.AddTable([]string{"Fecha", "Comprobante", "Detalle", "Debe", "Haber", "Saldo"}, rows,
		[]float64{20, 32, 58, 25, 25, 20}, []string{"C", "L", "L", "R", "R", "R"})

	gen.AddTotal("Saldo", FormatAmount(s.Saldo))
	return gen.OutputToFile(s.Path)
}

func amountOrBlank(c currency.Currency) string {
	if c.IsZero() {
		return ""
	}
	return FormatAmount(c)
}
