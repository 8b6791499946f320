package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
)

// Generator wraps gofpdf with the page furniture shared by every document
type Generator struct {
	pdf         *gofpdf.Fpdf
	config      *Config
	companyInfo *CompanyInfo
	reportTitle string
	tr          func(string) string
}

// Config holds PDF configuration
type Config struct {
	Orientation string  // "P" (portrait) or "L" (landscape)
	Unit        string  // "mm", "pt", "in"
	Size        string  // "A4", "Letter", "Legal"
	FontFamily  string  // Default font family
	FontSize    float64 // Default font size
	Margins     Margins
	HeaderStyle HeaderStyle
	FooterStyle FooterStyle
}

// Margins defines page margins
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// HeaderStyle defines header appearance
type HeaderStyle struct {
	Height          float64
	ShowCompanyName bool
	ShowDate        bool
	ShowReportTitle bool
	Alignment       string // "L", "C", "R"
	TextColor       RGB
}

// FooterStyle defines footer appearance
type FooterStyle struct {
	Height          float64
	ShowPageNumbers bool
	ShowCompanyName bool
	CustomText      string
	Alignment       string // "L", "C", "R"
	TextColor       RGB
}

// RGB represents a color
type RGB struct {
	R, G, B int
}

// CompanyInfo is printed in headers and footers
type CompanyInfo struct {
	Name    string
	TaxID   string
	Address string
	Phone   string
}

// DefaultConfig returns the A4 portrait layout used for receipts and statements
func DefaultConfig() *Config {
	return &Config{
		Orientation: "P",
		Unit:        "mm",
		Size:        "A4",
		FontFamily:  "Arial",
		FontSize:    10,
		Margins: Margins{
			Top:    28,
			Right:  15,
			Bottom: 20,
			Left:   15,
		},
		HeaderStyle: HeaderStyle{
			Height:          22,
			ShowCompanyName: true,
			ShowDate:        true,
			ShowReportTitle: true,
			Alignment:       "L",
			TextColor:       RGB{0, 0, 0},
		},
		FooterStyle: FooterStyle{
			Height:          12,
			ShowPageNumbers: true,
			ShowCompanyName: true,
			Alignment:       "C",
			TextColor:       RGB{128, 128, 128},
		},
	}
}

// NewGenerator creates a new PDF generator
func NewGenerator(config *Config) *Generator {
	if config == nil {
		config = DefaultConfig()
	}

	pdf := gofpdf.New(config.Orientation, config.Unit, config.Size, "")
	pdf.SetFont(config.FontFamily, "", config.FontSize)
	pdf.SetMargins(config.Margins.Left, config.Margins.Top, config.Margins.Right)
	pdf.SetAutoPageBreak(true, config.Margins.Bottom)

	gen := &Generator{
		pdf:    pdf,
		config: config,
		// core fonts are cp1252; accents and ñ need translating
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}

	pdf.SetHeaderFunc(gen.headerCallback)
	pdf.SetFooterFunc(gen.footerCallback)
	return gen
}

// SetCompanyInfo sets the company printed on every page
func (g *Generator) SetCompanyInfo(info *CompanyInfo) {
	g.companyInfo = info
}

// SetReportTitle sets the title that appears in the header
func (g *Generator) SetReportTitle(title string) {
	g.reportTitle = title
	g.pdf.SetTitle(title, true)
}

// AddPage adds a new page to the PDF
func (g *Generator) AddPage() {
	g.pdf.AddPage()
}

func (g *Generator) headerCallback() {
	style := g.config.HeaderStyle
	if style.Height == 0 {
		return
	}
	pdf := g.pdf
	x, y := pdf.GetXY()
	pdf.SetTextColor(style.TextColor.R, style.TextColor.G, style.TextColor.B)

	if style.ShowCompanyName && g.companyInfo != nil && g.companyInfo.Name != "" {
		pdf.SetFont(g.config.FontFamily, "B", 13)
		pdf.SetY(8)
		g.alignText(g.companyInfo.Name, style.Alignment)
		if g.companyInfo.TaxID != "" {
			pdf.SetFont(g.config.FontFamily, "", 8)
			pdf.Ln(5)
			g.alignText("CUIT "+g.companyInfo.TaxID, style.Alignment)
		}
	}

	if style.ShowReportTitle && g.reportTitle != "" {
		pdf.SetFont(g.config.FontFamily, "B", 11)
		pdf.SetY(style.Height - 6)
		g.alignText(g.reportTitle, style.Alignment)
	}

	if style.ShowDate {
		pdf.SetFont(g.config.FontFamily, "", 8)
		pdf.SetY(8)
		pdf.SetX(-40)
		pdf.Cell(25, 5, time.Now().Format("02/01/2006"))
	}

	pdf.SetXY(x, y)
	pdf.SetTextColor(0, 0, 0)
}

func (g *Generator) footerCallback() {
	style := g.config.FooterStyle
	if style.Height == 0 {
		return
	}
	pdf := g.pdf
	pdf.SetY(-style.Height)
	pdf.SetTextColor(style.TextColor.R, style.TextColor.G, style.TextColor.B)
	pdf.SetFont(g.config.FontFamily, "", 8)

	var text string
	if style.ShowPageNumbers {
		text = fmt.Sprintf("Página %d", pdf.PageNo())
	}
	if style.ShowCompanyName && g.companyInfo != nil && g.companyInfo.Name != "" {
		text = joinNonEmpty(" | ", text, g.companyInfo.Name)
	}
	if style.CustomText != "" {
		text = joinNonEmpty(" | ", text, style.CustomText)
	}

	g.alignText(text, style.Alignment)
	pdf.SetTextColor(0, 0, 0)
}

func (g *Generator) alignText(text, alignment string) {
	pdf := g.pdf
	text = g.tr(text)
	width, _ := pdf.GetPageSize()

	switch alignment {
	case "C":
		pdf.SetX((width - pdf.GetStringWidth(text)) / 2)
	case "R":
		pdf.SetX(width - pdf.GetStringWidth(text) - g.config.Margins.Right)
	default:
		pdf.SetX(g.config.Margins.Left)
	}
	pdf.Cell(pdf.GetStringWidth(text), 5, text)
}

// AddTitle adds a centered title
func (g *Generator) AddTitle(title string, fontSize float64) {
	g.pdf.SetFont(g.config.FontFamily, "B", fontSize)
	g.pdf.CellFormat(0, fontSize*0.5, g.tr(title), "", 1, "C", false, 0, "")
	g.pdf.Ln(fontSize * 0.3)
	g.pdf.SetFont(g.config.FontFamily, "", g.config.FontSize)
}

// AddSubtitle adds a line of smaller text
func (g *Generator) AddSubtitle(subtitle string) {
	g.pdf.SetFont(g.config.FontFamily, "", 10)
	g.pdf.Cell(0, 6, g.tr(subtitle))
	g.pdf.Ln(7)
}

// AddField prints a bold label followed by its value
func (g *Generator) AddField(label, value string) {
	g.pdf.SetFont(g.config.FontFamily, "B", 10)
	g.pdf.Cell(35, 6, g.tr(label+":"))
	g.pdf.SetFont(g.config.FontFamily, "", 10)
	g.pdf.Cell(0, 6, g.tr(value))
	g.pdf.Ln(6)
}

// AddTable adds a bordered table. aligns may be shorter than headers; missing
// entries default to left.
func (g *Generator) AddTable(headers []string, data [][]string, widths []float64, aligns []string) {
	pdf := g.pdf

	pdf.SetFont(g.config.FontFamily, "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, g.tr(header), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(g.config.FontFamily, "", 8)
	for _, row := range data {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			align := "L"
			if i < len(aligns) && aligns[i] != "" {
				align = aligns[i]
			}
			pdf.CellFormat(widths[i], 6, g.tr(cell), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// AddTotal prints a right-aligned bold total line
func (g *Generator) AddTotal(label, value string) {
	g.pdf.Ln(2)
	g.pdf.SetFont(g.config.FontFamily, "B", 11)
	g.pdf.CellFormat(0, 7, g.tr(label+"  "+value), "", 1, "R", false, 0, "")
	g.pdf.SetFont(g.config.FontFamily, "", g.config.FontSize)
}

// AddSeparator adds a horizontal rule
func (g *Generator) AddSeparator() {
	pdf := g.pdf
	width, _ := pdf.GetPageSize()
	y := pdf.GetY() + 1
	pdf.Line(g.config.Margins.Left, y, width-g.config.Margins.Right, y)
	pdf.Ln(4)
}

// Output renders the PDF into memory
func (g *Generator) Output() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// OutputToFile saves the PDF, creating the directory if needed
func (g *Generator) OutputToFile(filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := g.pdf.OutputFileAndClose(filename); err != nil {
		return fmt.Errorf("failed to write PDF %s: %w", filename, err)
	}
	return nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var out string
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += sep
		}
		out += p
	}
	return out
}
