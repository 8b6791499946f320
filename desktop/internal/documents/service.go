// Package documents issues receipts and payment orders: the running-balance
// line, its cash entry and the checks that travel with it.
package documents

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/cheques"
	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/database"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/pdf"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

var ErrNothingToPay = errors.New("document total must be positive")

// Service issues documents
type Service struct {
	db       *database.DB
	cc       *cuentacorriente.Service
	cheques  *cheques.Service
	entities *entities.Service
	writer   *pdf.Writer
	branch   string
}

// NewService creates a document service numbering under branch ("0001" when empty)
func NewService(db *database.DB, cc *cuentacorriente.Service, ch *cheques.Service, ents *entities.Service, writer *pdf.Writer, branch string) *Service {
	return &Service{db: db, cc: cc, cheques: ch, entities: ents, writer: writer, branch: branch}
}

// ReceiptRequest describes a client payment. With medio "cheque" the total is
// the sum of Cheques and Total is ignored.
type ReceiptRequest struct {
	ClienteID  int64            `json:"cliente_id"`
	Cuenta     int              `json:"cuenta"`
	Fecha      string           `json:"fecha"`
	Numero     string           `json:"numero,omitempty"`
	Concepto   string           `json:"concepto"`
	Medio      string           `json:"medio"`
	Total      float64          `json:"total"`
	Cheques    []cheques.Cheque `json:"cheques,omitempty"`
	OutputPath string           `json:"output_path,omitempty"`
	OutputDir  string           `json:"output_dir,omitempty"`
}

// PaymentOrderRequest describes a supplier payment: Importe in cash or
// transfer plus the portfolio checks passed on
type PaymentOrderRequest struct {
	ProveedorID int64   `json:"proveedor_id"`
	Cuenta      int     `json:"cuenta"`
	Fecha       string  `json:"fecha"`
	Numero      string  `json:"numero,omitempty"`
	Concepto    string  `json:"concepto"`
	Medio       string  `json:"medio"`
	Importe     float64 `json:"importe"`
	ChequeIDs   []int64 `json:"cheque_ids,omitempty"`
	OutputPath  string  `json:"output_path,omitempty"`
	OutputDir   string  `json:"output_dir,omitempty"`
}

// Issued is what a document wrote
type Issued struct {
	Numero    string  `json:"numero"`
	LineID    int64   `json:"line_id"`
	CajaID    int64   `json:"caja_id"`
	ChequeIDs []int64 `json:"cheque_ids,omitempty"`
	Total     float64 `json:"total"`
	PDFPath   string  `json:"pdf_path,omitempty"`
}

// IssueReceipt records a client payment
func (s *Service) IssueReceipt(ctx context.Context, req ReceiptRequest) (*Issued, error) {
	if req.ClienteID == 0 {
		return nil, common.ValidationError{Field: "cliente_id", Message: "client is required"}
	}
	medio := common.NormalizeMedium(req.Medio)
	fecha, err := common.NormalizeDate(req.Fecha)
	if err != nil {
		return nil, err
	}

	total := currency.NewFromFloat(req.Total)
	if len(req.Cheques) > 0 {
		total = currency.Zero()
		for _, c := range req.Cheques {
			if err := common.ValidateCheckNumber(c.Numero); err != nil {
				return nil, err
			}
			if err := common.ValidateAmount(c.Importe); err != nil {
				return nil, err
			}
			total = total.Add(currency.NewFromFloat(c.Importe))
		}
	}
	if !total.IsPositive() {
		return nil, ErrNothingToPay
	}
	if len(req.Cheques) > 0 && strings.TrimSpace(req.Medio) == "" {
		medio = "cheque"
	}
	cuenta := req.Cuenta
	if cuenta != 1 {
		cuenta = 2
	}

	numero, err := s.number(ctx, "recibo", req.Numero)
	if err != nil {
		return nil, err
	}

	lineID, cajaID, err := s.cc.AddWithCaja(ctx, cuentacorriente.Line{
		Kind:     entities.Cliente,
		Cuenta:   cuenta,
		EntityID: req.ClienteID,
		Fecha:    fecha,
		Doc:      cuentacorriente.DocRecibo,
		Numero:   numero,
		Concepto: req.Concepto,
		Medio:    medio,
		Haber:    total.ToFloat64(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record receipt %s: %w", numero, err)
	}
	out := &Issued{Numero: numero, LineID: lineID, CajaID: cajaID, Total: total.ToFloat64()}

	var items []pdf.Item
	for _, c := range req.Cheques {
		c.ClienteID = req.ClienteID
		c.MovCajaID = cajaID
		c.Estado = cheques.EstadoEnCartera
		c.Cuenta = fmt.Sprint(cuenta)
		if c.FechaRecibido == "" {
			c.FechaRecibido = fecha
		}
		id, err := s.cheques.Add(ctx, c)
		if err != nil {
			return out, fmt.Errorf("receipt %s: %w", numero, err)
		}
		if err := s.cheques.TagDocument(ctx, id, receipts.Receipt, numero); err != nil {
			return out, fmt.Errorf("receipt %s: %w", numero, err)
		}
		out.ChequeIDs = append(out.ChequeIDs, id)
		items = append(items, pdf.Item{Numero: c.Numero, Banco: c.Banco, Fecha: c.FechaCobro, Importe: currency.NewFromFloat(c.Importe)})
	}

	logger.WriteInfo("Documents", fmt.Sprintf("REC %s for client %d: %s, %d checks", numero, req.ClienteID, total.ToString(), len(out.ChequeIDs)))

	if path := outputFile(req.OutputPath, req.OutputDir, "REC", numero); path != "" {
		doc := s.document(ctx, entities.Cliente, req.ClienteID, path, numero, fecha, req.Concepto, medio, total, items)
		if err := s.writer.WriteReceipt(doc); err != nil {
			return out, err
		}
		out.PDFPath = path
	}
	return out, nil
}

// IssuePaymentOrder records a supplier payment and endorses the selected
// checks to the supplier. Every check must still be en cartera; nothing is
// written otherwise.
func (s *Service) IssuePaymentOrder(ctx context.Context, req PaymentOrderRequest) (*Issued, error) {
	if req.ProveedorID == 0 {
		return nil, common.ValidationError{Field: "proveedor_id", Message: "supplier is required"}
	}
	medio := common.NormalizeMedium(req.Medio)
	fecha, err := common.NormalizeDate(req.Fecha)
	if err != nil {
		return nil, err
	}

	total := currency.NewFromFloat(req.Importe)
	var selected []*cheques.Cheque
	for _, id := range req.ChequeIDs {
		c, err := s.cheques.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !cheques.IsInPortfolio(c.Estado) {
			return nil, fmt.Errorf("check %s (%s): %w", c.Numero, c.Estado, cheques.ErrNotInPortfolio)
		}
		selected = append(selected, c)
		total = total.Add(currency.NewFromFloat(c.Importe))
	}
	if !total.IsPositive() {
		return nil, ErrNothingToPay
	}
	if len(selected) > 0 && strings.TrimSpace(req.Medio) == "" {
		medio = "cheque"
	}

	numero, err := s.number(ctx, "op", req.Numero)
	if err != nil {
		return nil, err
	}

	lineID, cajaID, err := s.cc.AddWithCaja(ctx, cuentacorriente.Line{
		Kind:     entities.Proveedor,
		Cuenta:   req.Cuenta,
		EntityID: req.ProveedorID,
		Fecha:    fecha,
		Doc:      cuentacorriente.DocOrdenPago,
		Numero:   numero,
		Concepto: req.Concepto,
		Medio:    medio,
		Haber:    total.ToFloat64(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record payment order %s: %w", numero, err)
	}
	out := &Issued{Numero: numero, LineID: lineID, CajaID: cajaID, Total: total.ToFloat64()}

	// endorsed checks keep the cash entry of the receipt they came in with
	var items []pdf.Item
	for _, c := range selected {
		if err := s.cheques.ChangeState(ctx, c.ID, cheques.StateChange{Estado: cheques.EstadoEndosado, Fecha: fecha, ProveedorID: req.ProveedorID}); err != nil {
			return out, fmt.Errorf("payment order %s: %w", numero, err)
		}
		if err := s.cheques.TagDocument(ctx, c.ID, receipts.PaymentOrder, numero); err != nil {
			return out, fmt.Errorf("payment order %s: %w", numero, err)
		}
		out.ChequeIDs = append(out.ChequeIDs, c.ID)
		items = append(items, pdf.Item{Numero: c.Numero, Banco: c.Banco, Fecha: c.FechaCobro, Importe: currency.NewFromFloat(c.Importe)})
	}

	logger.WriteInfo("Documents", fmt.Sprintf("OP %s for supplier %d: %s, %d checks endorsed", numero, req.ProveedorID, total.ToString(), len(out.ChequeIDs)))

	if path := outputFile(req.OutputPath, req.OutputDir, "OP", numero); path != "" {
		doc := s.document(ctx, entities.Proveedor, req.ProveedorID, path, numero, fecha, req.Concepto, medio, total, items)
		if err := s.writer.WritePaymentOrder(doc); err != nil {
			return out, err
		}
		out.PDFPath = path
	}
	return out, nil
}

// outputFile returns path, or <dir>/<DOC>_<numero>.pdf when only a directory
// is given. Empty means no PDF.
func outputFile(path, dir, doc, numero string) string {
	if path != "" || dir == "" {
		return path
	}
	return filepath.Join(dir, pdf.SanitizeFileName(doc+"_"+numero+".pdf"))
}

func (s *Service) number(ctx context.Context, tipo, given string) (string, error) {
	if n := strings.TrimSpace(given); n != "" {
		return n, nil
	}
	return s.db.NextNumber(ctx, tipo, s.branch)
}

func (s *Service) document(ctx context.Context, kind entities.Kind, id int64, path, numero, fecha, concepto, medio string, total currency.Currency, items []pdf.Item) pdf.Document {
	party := pdf.Party{}
	if e, err := s.entities.Get(ctx, kind, id); err == nil {
		snap := e.Snapshot()
		party = pdf.Party{Name: snap.Name, TaxID: snap.TaxID, Address: snap.Address}
	} else {
		logger.WriteWarning("Documents", fmt.Sprintf("%s %d: %v", kind, id, err))
	}
	return pdf.Document{
		Path:    path,
		Number:  numero,
		Date:    fecha,
		Party:   party,
		Concept: concepto,
		Medium:  medio,
		Total:   total,
		Items:   items,
	}
}
