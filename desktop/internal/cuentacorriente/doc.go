// Package cuentacorriente keeps the per-entity running accounts (cuenta
// corriente) of clients and suppliers. Every entity has two parallel
// buckets, cuenta 1 and cuenta 2, each stored in its own table.
package cuentacorriente

import (
	"fmt"
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/entities"
)

// Document codes stored in the doc column
const (
	DocRecibo      = "REC"
	DocOrdenPago   = "OP"
	DocFactura     = "FAC"
	DocRemito      = "REM"
	DocNotaCredito = "NC"
	DocNotaDebito  = "ND"
	DocAjusteMas   = "AJ+"
	DocAjusteMenos = "AJ-"
	DocMovimiento  = "MOV"
)

var docNames = map[string]string{
	"recibo":          DocRecibo,
	"rec":             DocRecibo,
	"orden de pago":   DocOrdenPago,
	"orden pago":      DocOrdenPago,
	"op":              DocOrdenPago,
	"factura":         DocFactura,
	"fac":             DocFactura,
	"remito":          DocRemito,
	"rem":             DocRemito,
	"nota de credito": DocNotaCredito,
	"nota de crédito": DocNotaCredito,
	"nc":              DocNotaCredito,
	"nota de debito":  DocNotaDebito,
	"nota de débito":  DocNotaDebito,
	"nd":              DocNotaDebito,
	"ajuste (+)":      DocAjusteMas,
	"ajuste +":        DocAjusteMas,
	"aj+":             DocAjusteMas,
	"ajuste (-)":      DocAjusteMenos,
	"ajuste (−)":      DocAjusteMenos,
	"ajuste -":        DocAjusteMenos,
	"aj-":             DocAjusteMenos,
}

// DocCode maps a UI document name to its stored code; unknown names are MOV
func DocCode(name string) string {
	if code, ok := docNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return code
	}
	return DocMovimiento
}

// Side is the column a document's amount goes to
type Side string

const (
	Debe  Side = "debe"
	Haber Side = "haber"
)

// AmountSide tells where a document's amount is booked. Receipts from clients
// and payment orders to suppliers reduce what is owed, as do credit notes and
// positive adjustments; everything else increases it.
func AmountSide(kind entities.Kind, doc string) Side {
	switch strings.ToUpper(strings.TrimSpace(doc)) {
	case DocNotaCredito, DocAjusteMas:
		return Haber
	case DocRecibo:
		if kind == entities.Cliente {
			return Haber
		}
	case DocOrdenPago:
		if kind == entities.Proveedor {
			return Haber
		}
	}
	return Debe
}

// ReceiptDocCodes lists the stored spellings of the document that carries a
// check group: receipts for clients, payment orders for suppliers.
func ReceiptDocCodes(kind entities.Kind) []string {
	if kind == entities.Proveedor {
		return []string{"OP", "ORDEN DE PAGO", "ORDEN_PAGO", "ORDENPAGO"}
	}
	return []string{"REC", "RECIBO"}
}

// Table returns the current-layout table for the kind and bucket
func Table(kind entities.Kind, cuenta int) string {
	if cuenta != 1 {
		cuenta = 2
	}
	if kind == entities.Proveedor {
		return fmt.Sprintf("cc_proveedores_c%d", cuenta)
	}
	return fmt.Sprintf("cc_clientes_c%d", cuenta)
}

// OriginType is the caja origen_tipo stamped on entries owned by CC lines
func OriginType(kind entities.Kind) string {
	if kind == entities.Proveedor {
		return "cc_prov"
	}
	return "cc_cli"
}
