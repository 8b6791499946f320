package pdf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/currency"
)

// Party is the counterparty block of a document
type Party struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address"`
}

// Item is one check listed on a receipt or payment order
type Item struct {
	Numero  string            `json:"numero"`
	Banco   string            `json:"banco"`
	Fecha   string            `json:"fecha"`
	Importe currency.Currency `json:"-"`
}

// Document is everything printed on a receipt or payment order
type Document struct {
	Path    string
	Number  string
	Date    string
	Party   Party
	Concept string
	Medium  string
	Total   currency.Currency
	Items   []Item
}

// Writer renders business documents to files
type Writer struct {
	Company CompanyInfo
}

// NewWriter creates a writer that prints company in every header
func NewWriter(company CompanyInfo) *Writer {
	return &Writer{Company: company}
}

// WriteReceipt renders a client receipt
func (w *Writer) WriteReceipt(d Document) error {
	return w.writeDocument("Recibo", "Recibimos de", d)
}

// WritePaymentOrder renders a supplier payment order
func (w *Writer) WritePaymentOrder(d Document) error {
	return w.writeDocument("Orden de Pago", "Pagamos a", d)
}

func (w *Writer) writeDocument(title, partyLabel string, d Document) error {
	if strings.TrimSpace(d.Path) == "" {
		return errors.New("document path is required")
	}

	gen := NewGenerator(nil)
	gen.SetCompanyInfo(&w.Company)
	gen.SetReportTitle(fmt.Sprintf("%s N° %s", title, d.Number))
	gen.AddPage()

	gen.AddTitle(fmt.Sprintf("%s N° %s", strings.ToUpper(title), d.Number), 16)
	gen.AddField("Fecha", FormatDate(d.Date))
	gen.AddField(partyLabel, d.Party.Name)
	if d.Party.TaxID != "" {
		gen.AddField("CUIT/DNI", d.Party.TaxID)
	}
	if d.Party.Address != "" {
		gen.AddField("Dirección", d.Party.Address)
	}
	if d.Concept != "" {
		gen.AddField("Concepto", d.Concept)
	}
	if d.Medium != "" {
		gen.AddField("Medio de pago", d.Medium)
	}
	gen.AddSeparator()

	if len(d.Items) > 0 {
		var rows [][]string
		for _, it := range d.Items {
			rows = append(rows, []string{it.Numero, TruncateText(it.Banco, 40), FormatDate(it.Fecha), FormatAmount(it.Importe)})
		}
		gen.AddTable([]string{"Cheque N°", "Banco", "Fecha", "Importe"}, rows,
			[]float64{35, 75, 30, 40}, []string{"L", "L", "C", "R"})
	}

	gen.AddTotal("TOTAL", FormatAmount(d.Total))
	return gen.OutputToFile(d.Path)
}
