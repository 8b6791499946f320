// Package statement selects and prints the part of a running account that
// explains its current balance.
package statement

import (
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/cuentacorriente"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
	"github.com/textilsur/gestiontextil/desktop/internal/entities"
)

// settled reports a zero balance at cent precision. Balances are rounded to
// cents when read, so legacy sub-cent residues (under 0.005) count as settled.
func settled(c currency.Currency) bool {
	return c.IsZero()
}

// Start returns the index of the first line to print from lines, which must
// be ordered oldest first. len(lines) means print nothing. The selection is
// always a suffix of the history.
//
// Clients that owe us see the charges that built the debt: debits are added
// from the oldest line until they cover the balance, and printing starts at
// the line that got there. Clients we owe see everything since their last
// receipt. Suppliers see the newest lines whose amounts add up to the
// balance.
func Start(kind entities.Kind, lines []cuentacorriente.Line, saldo currency.Currency) int {
	if settled(saldo) {
		return len(lines)
	}
	if kind == entities.Cliente {
		if saldo.IsPositive() {
			return debtorStart(lines, saldo)
		}
		return creditorStart(lines)
	}
	return coveringStart(lines, saldo.Abs())
}

// Slice returns the lines to print
func Slice(kind entities.Kind, lines []cuentacorriente.Line, saldo currency.Currency) []cuentacorriente.Line {
	return lines[Start(kind, lines, saldo):]
}

func debtorStart(lines []cuentacorriente.Line, saldo currency.Currency) int {
	acc := currency.Zero()
	for i, l := range lines {
		debe := currency.NewFromFloat(l.Debe)
		if !debe.IsPositive() {
			continue
		}
		acc = acc.Add(debe)
		if acc.GreaterThanOrEqual(saldo) {
			return i
		}
	}
	return 0
}

func creditorStart(lines []cuentacorriente.Line) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if isReceipt(lines[i].Doc) {
			return i
		}
	}
	return 0
}

func coveringStart(lines []cuentacorriente.Line, target currency.Currency) int {
	acc := currency.Zero()
	for i := len(lines) - 1; i >= 0; i-- {
		acc = acc.Add(lineAmount(lines[i]))
		if acc.GreaterThanOrEqual(target) {
			return i
		}
	}
	return 0
}

func lineAmount(l cuentacorriente.Line) currency.Currency {
	debe, haber := currency.NewFromFloat(l.Debe), currency.NewFromFloat(l.Haber)
	amt := currency.Max(debe, haber)
	if amt.IsZero() {
		amt = haber.Sub(debe).Abs()
	}
	return amt
}

func isReceipt(doc string) bool {
	switch strings.ToUpper(strings.TrimSpace(doc)) {
	case cuentacorriente.DocRecibo, "RECIBO":
		return true
	}
	return false
}
