// Package reconciliation keeps the cash ledger and the running balance in
// step with the checks of a receipt after one of them is edited.
//
// Every step is best-effort and commits on its own. A run never returns a Go
// error: the Result says which ledgers were written and why the others were
// not, and running it again with no new edits changes nothing.
package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/textilsur/gestiontextil/desktop/internal/caja"
	"github.com/textilsur/gestiontextil/desktop/internal/cheques"
	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
	"github.com/textilsur/gestiontextil/desktop/internal/pdf"
	"github.com/textilsur/gestiontextil/desktop/internal/receipts"
)

// Ledger change events
const (
	EventCaja    = "caja"
	EventCheques = "cheques"
	EventCC      = "cc"
)

// Notifier is told when a ledger was written so open views can refresh
type Notifier interface {
	LedgerChanged(event string)
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) LedgerChanged(string) {}

// Emitter renders a receipt document
type Emitter interface {
	WriteReceipt(d pdf.Document) error
}

// Options control the optional document re-emission
type Options struct {
	ReissuePDF bool
	OutputDir  string
}

// Service runs reconciliations
type Service struct {
	cheques  *cheques.Service
	caja     *caja.Service
	cc       *cuentacorriente.Service
	entities *entities.Service
	emitter  Emitter
	notifier Notifier
	opts     Options
}

// NewService creates a reconciliation service. emitter may be nil.
func NewService(ch *cheques.Service, cj *caja.Service, cc *cuentacorriente.Service, ents *entities.Service, emitter Emitter, opts Options) *Service {
	return &Service{
		cheques:  ch,
		caja:     cj,
		cc:       cc,
		entities: ents,
		emitter:  emitter,
		notifier: NopNotifier{},
		opts:     opts,
	}
}

// SetNotifier replaces the ledger event sink
func (s *Service) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	s.notifier = n
}

// PayloadItem is one check of the reconciled receipt
type PayloadItem struct {
	Numero  string  `json:"numero"`
	Banco   string  `json:"banco"`
	Fecha   string  `json:"fecha"`
	Importe float64 `json:"importe"`
}

// Payload is what a reissued receipt prints
type Payload struct {
	Receipt string        `json:"receipt"`
	Fecha   string        `json:"fecha"`
	Party   pdf.Party     `json:"party"`
	Concept string        `json:"concept"`
	Medium  string        `json:"medium"`
	Items   []PayloadItem `json:"items"`
	Total   float64       `json:"total"`
}

// Result summarizes one run
type Result struct {
	RunID        string   `json:"run_id"`
	Success      bool     `json:"success"`
	CajaUpdated  bool     `json:"caja_updated"`
	CCUpdated    bool     `json:"cc_updated"`
	CajaReason   string   `json:"caja_reason,omitempty"`
	CCReason     string   `json:"cc_reason,omitempty"`
	Receipt      string   `json:"receipt,omitempty"`
	Total        float64  `json:"total"`
	Message      string   `json:"message"`
	Warnings     []string `json:"warnings,omitempty"`
	Payload      *Payload `json:"payload,omitempty"`
	ReissuedPath string   `json:"reissued_path,omitempty"`
}

// ReconcileCheck re-totals the receipt of an edited check. hint is the
// operator's reading of the receipt number and wins over the check's own
// reference and annotation.
func (s *Service) ReconcileCheck(ctx context.Context, chequeID int64, hint string) Result {
	runID := uuid.NewString()
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"module":    "Reconciliation",
		"run_id":    runID,
		"cheque_id": chequeID,
	})

	ref, err := s.cheques.LoadRef(ctx, chequeID)
	if err != nil {
		log.Warn().Err(err).Msg("check not loaded")
		if strings.TrimSpace(hint) == "" {
			return Result{RunID: runID, Message: err.Error()}
		}
		ref = &cheques.Ref{ID: chequeID}
	}

	id, ok := receipts.Receipt.Resolve(receipts.Source{
		Hint:       hint,
		Reference:  ref.Reference,
		Annotation: ref.Annotation,
	})
	if !ok {
		log.Debug().Msg("no receipt tag; grouping by cash entry")
	}
	return s.run(ctx, log, runID, id, chequeID, ref.MovCajaID)
}

// ReconcileReceipt re-totals a receipt given its number
func (s *Service) ReconcileReceipt(ctx context.Context, number string) Result {
	runID := uuid.NewString()
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"module": "Reconciliation",
		"run_id": runID,
	})
	id, ok := receipts.FromHint(number)
	if !ok {
		return Result{RunID: runID, Message: fmt.Sprintf("%q is not a receipt number", number)}
	}
	return s.run(ctx, log, runID, id, 0, 0)
}

func (s *Service) run(ctx context.Context, log zerolog.Logger, runID string, id receipts.Identifier, triggerID, fallbackCaja int64) Result {
	res := Result{RunID: runID, Receipt: id.Display()}

	group, err := s.cheques.Group(ctx, id, triggerID, fallbackCaja)
	switch {
	case errors.Is(err, cheques.ErrEmptyGroup):
		res.Message = cheques.ErrEmptyGroup.Error()
		log.Info().Str("receipt", id.Display()).Msg(res.Message)
		return res
	case err != nil:
		res.Message = err.Error()
		log.Warn().Err(err).Str("receipt", id.Display()).Msg("group not usable")
		return res
	}
	res.Total = group.Total.ToFloat64()
	res.Warnings = group.Warnings()
	for _, w := range res.Warnings {
		log.Warn().Msg(w)
	}

	cajaOut := s.caja.UpdateAmountForReceipt(ctx, group.CajaRef, id, group.Total)
	res.CajaUpdated, res.CajaReason = cajaOut.OK, cajaOut.Reason

	var entry *caja.Entry
	if cajaOut.OK {
		s.notifier.LedgerChanged(EventCaja)
		if entry, err = s.caja.Get(ctx, cajaOut.EntryID); err != nil {
			log.Warn().Err(err).Int64("caja_id", cajaOut.EntryID).Msg("cash entry not reloaded")
			entry = nil
		}
	}

	// a group found through its cash entry learns its number from the entry
	if id.IsZero() && entry != nil {
		if found, ok := receipts.Receipt.FromText(entry.Detalle + " " + entry.Concepto); ok {
			id = found
			res.Receipt = id.Display()
		}
	}

	// a short hint ("49") must not keep the cc step from matching "0001-00000049"
	if full := withBranch(id, group, entry); full != id {
		log.Debug().Str("hint", id.Display()).Str("receipt", full.Display()).Msg("branch taken from tags")
		id = full
		res.Receipt = id.Display()
	}

	clienteID, cuenta := group.ClienteID, group.Cuenta
	if entry != nil {
		if clienteID == 0 && entry.TerceroTipo == string(entities.Cliente) {
			clienteID = entry.TerceroID
		}
		if cuenta == 0 {
			cuenta = entry.Cuenta
		}
	}

	ccOut := s.cc.UpdateReceiptAmount(ctx, cuentacorriente.ReceiptUpdate{
		Kind:     entities.Cliente,
		EntityID: clienteID,
		Cuenta:   cuenta,
		Document: id,
		Amount:   group.Total,
	})
	res.CCUpdated, res.CCReason = ccOut.OK, ccOut.Reason
	if ccOut.OK {
		s.notifier.LedgerChanged(EventCC)
	}

	res.Success = res.CajaUpdated || res.CCUpdated
	res.Payload = s.payload(ctx, id, group, clienteID, entry)
	res.Message = fmt.Sprintf("REC %s: caja=%s; cc=%s; total=%.2f",
		orUnknown(id.Display()), okOrNo(res.CajaUpdated), okOrNo(res.CCUpdated), res.Total)

	if res.Success {
		res.ReissuedPath = s.reissue(id, group, res.Payload, log)
	}

	ev := log.Info()
	if !res.Success {
		ev = log.Warn().Str("caja_reason", res.CajaReason).Str("cc_reason", res.CCReason)
	}
	ev.Str("receipt", id.Display()).Int("checks", len(group.Members)).Msg(res.Message)
	return res
}

// withBranch fills a missing branch prefix from the group's tags, or from the
// cash entry's tag when the checks do not agree on one
func withBranch(id receipts.Identifier, g *cheques.Group, entry *caja.Entry) receipts.Identifier {
	if id.IsZero() || id.Full != "" {
		return id
	}
	if full := g.FullForm(); full != "" {
		id.Full = full
		return id
	}
	if entry != nil {
		found, ok := receipts.Receipt.FromText(entry.Detalle + " " + entry.Concepto)
		if ok && found.Canonical == id.Canonical && found.Full != "" {
			id.Full = found.Full
		}
	}
	return id
}

func (s *Service) payload(ctx context.Context, id receipts.Identifier, g *cheques.Group, clienteID int64, entry *caja.Entry) *Payload {
	p := &Payload{
		Receipt: id.Display(),
		Fecha:   common.Today(),
		Concept: "Cobranza",
		Medium:  "cheque",
		Total:   g.Total.ToFloat64(),
	}
	if entry != nil {
		if entry.Fecha != "" {
			p.Fecha = entry.Fecha
		}
		if entry.Concepto != "" {
			p.Concept = entry.Concepto
		}
	}
	if clienteID != 0 {
		if e, err := s.entities.Get(ctx, entities.Cliente, clienteID); err == nil {
			snap := e.Snapshot()
			p.Party = pdf.Party{Name: snap.Name, TaxID: snap.TaxID, Address: snap.Address}
		}
	}
	for _, m := range g.Members {
		p.Items = append(p.Items, PayloadItem{Numero: m.Numero, Banco: m.Banco, Fecha: m.Fecha, Importe: m.Importe.ToFloat64()})
	}
	return p
}

// reissue writes REC_<number>_ACT_<date>.pdf and returns its path, or "" when
// re-emission is off or failed
func (s *Service) reissue(id receipts.Identifier, g *cheques.Group, p *Payload, log zerolog.Logger) string {
	if !s.opts.ReissuePDF || s.emitter == nil || id.IsZero() {
		return ""
	}
	path := filepath.Join(s.opts.OutputDir, pdf.SanitizeFileName(fmt.Sprintf("REC_%s_ACT_%s.pdf", id.Pretty(), common.Today())))

	doc := pdf.Document{
		Path:    path,
		Number:  id.Display(),
		Date:    p.Fecha,
		Party:   p.Party,
		Concept: p.Concept,
		Medium:  p.Medium,
		Total:   g.Total,
	}
	for _, m := range g.Members {
		doc.Items = append(doc.Items, pdf.Item{Numero: m.Numero, Banco: m.Banco, Fecha: m.Fecha, Importe: m.Importe})
	}
	if err := s.emitter.WriteReceipt(doc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("receipt not reissued")
		return ""
	}
	return path
}

func okOrNo(ok bool) string {
	if ok {
		return "OK"
	}
	return "no"
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
