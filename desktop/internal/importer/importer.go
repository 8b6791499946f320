// Package importer loads running-balance lines from CSV and dBase exports
package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
	"github.com/textilsur/gestiontextil/desktop/internal/logger"
)

// field synonyms, matched after lower-casing and trimming the header
var synonyms = map[string][]string{
	"fecha":    {"fecha", "date", "fec"},
	"id":       {"id", "entidad", "entidad_id", "cliente", "cliente_id", "proveedor", "proveedor_id", "cod", "codigo"},
	"doc":      {"doc", "documento", "tipo", "tipo_doc", "comprob"},
	"numero":   {"numero", "número", "nro", "num", "comprobante"},
	"concepto": {"concepto", "detalle", "descripcion", "descripción"},
	"medio":    {"medio", "forma", "forma_pago"},
	"debe":     {"debe", "debito", "débito", "debit"},
	"haber":    {"haber", "credito", "crédito", "credit"},
	"importe":  {"importe", "monto", "amount"},
}

// Report summarizes an import
type Report struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// Service writes imported lines through the running-balance service
type Service struct {
	cc *cuentacorriente.Service
}

// NewService creates a new import service
func NewService(cc *cuentacorriente.Service) *Service {
	return &Service{cc: cc}
}

// columnMap resolves each known field to its position in header
func columnMap(header []string) map[string]int {
	out := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(common.StripBOM(h))
		for field, names := range synonyms {
			if _, taken := out[field]; taken {
				continue
			}
			for _, n := range names {
				if h == n {
					out[field] = i
					break
				}
			}
		}
	}
	return out
}

type record map[string]string

func (r record) get(field string) string {
	return strings.TrimSpace(r[field])
}

// line converts one record. An "importe" column is placed on the side the
// document belongs to; negative amounts move to the other side.
func line(kind entities.Kind, cuenta int, r record, defaultEntity int64) (cuentacorriente.Line, error) {
	l := cuentacorriente.Line{Kind: kind, Cuenta: cuenta, EntityID: defaultEntity}

	if v := r.get("id"); v != "" {
		id, err := strconv.ParseFloat(v, 64)
		if err != nil || id <= 0 {
			return l, fmt.Errorf("invalid entity id %q", v)
		}
		l.EntityID = int64(id)
	}
	if l.EntityID == 0 {
		return l, fmt.Errorf("no entity id and no default entity")
	}

	fecha, err := common.NormalizeDate(r.get("fecha"))
	if err != nil {
		return l, err
	}
	l.Fecha = fecha
	l.Doc = cuentacorriente.DocCode(r.get("doc"))
	l.Numero = r.get("numero")
	l.Concepto = r.get("concepto")
	l.Medio = r.get("medio")

	debe, err := common.ParseAmount(r.get("debe"))
	if err != nil {
		return l, err
	}
	haber, err := common.ParseAmount(r.get("haber"))
	if err != nil {
		return l, err
	}
	if debe.IsZero() && haber.IsZero() {
		importe, err := common.ParseAmount(r.get("importe"))
		if err != nil {
			return l, err
		}
		if cuentacorriente.AmountSide(kind, l.Doc) == cuentacorriente.Haber {
			haber = importe
		} else {
			debe = importe
		}
	}
	if debe.IsNegative() {
		haber, debe = haber.Add(debe.Abs()), currency.Zero()
	}
	if haber.IsNegative() {
		debe, haber = debe.Add(haber.Abs()), currency.Zero()
	}
	if debe.IsZero() && haber.IsZero() {
		return l, fmt.Errorf("line has no amount")
	}
	l.Debe, l.Haber = debe.ToFloat64(), haber.ToFloat64()
	return l, nil
}

// store writes every record, collecting per-row problems in the report
func (s *Service) store(ctx context.Context, source string, kind entities.Kind, cuenta int, records []record, defaultEntity int64) *Report {
	rep := &Report{}
	for i, r := range records {
		l, err := line(kind, cuenta, r, defaultEntity)
		if err == nil {
			_, err = s.cc.Add(ctx, l)
		}
		if err != nil {
			rep.Skipped++
			rep.Errors = append(rep.Errors, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		rep.Imported++
	}
	logger.WriteInfo("Importer", fmt.Sprintf("%s into %s cuenta %d: %d imported, %d skipped",
		source, kind, cuenta, rep.Imported, rep.Skipped))
	return rep
}
