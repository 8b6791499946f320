package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/textilsur/gestiontextil/desktop/internal/currency"
)

// StripBOM removes a leading UTF-8 byte order mark and surrounding spaces
func StripBOM(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

// ParseAmount parses amounts typed by operators or found in imports:
// "$ 1.234,56", "1,234.56", "1234,5", "(100,00)" (negative).
// When both separators appear the rightmost one is the decimal mark; a lone
// comma is a decimal mark.
func ParseAmount(s string) (currency.Currency, error) {
	s = StripBOM(s)
	if s == "" {
		return currency.Zero(), nil
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", " ", "", "\u00a0", "").Replace(s)

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	c, err := currency.NewFromString(s)
	if err != nil {
		return currency.Zero(), fmt.Errorf("invalid amount %q", s)
	}
	if neg {
		c = c.Neg()
	}
	return c, nil
}

// NormalizeDate converts YYYY-MM-DD, YYYY/MM/DD, DD/MM/YYYY or DD-MM-YYYY to
// YYYY-MM-DD. Empty input yields today.
func NormalizeDate(s string) (string, error) {
	s = StripBOM(s)
	if s == "" {
		return time.Now().Format(DateFormat), nil
	}

	parts := strings.Split(strings.ReplaceAll(s, "/", "-"), "-")
	if len(parts) != 3 {
		return "", fmt.Errorf("unable to parse date: %s", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", fmt.Errorf("unable to parse date: %s", s)
		}
		nums[i] = n
	}

	y, m, d := nums[2], nums[1], nums[0]
	if len(strings.TrimSpace(parts[0])) == 4 {
		y, m, d = nums[0], nums[1], nums[2]
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", fmt.Errorf("invalid calendar date: %s", s)
	}
	return t.Format(DateFormat), nil
}

// FormatDMY renders a stored ISO date as DD/MM/YYYY; other input is returned as is
func FormatDMY(iso string) string {
	t, err := time.Parse(DateFormat, strings.TrimSpace(iso))
	if err != nil {
		return iso
	}
	return t.Format(DisplayDateFormat)
}

// Today returns the current date as YYYY-MM-DD
func Today() string {
	return time.Now().Format(DateFormat)
}

// NormalizeMedium maps free-typed payment media to efectivo/cheque/banco/otro
func NormalizeMedium(v string) string {
	v = strings.ToLower(StripBOM(v))
	switch v {
	case "efectivo", "cheque", "banco", "otro":
		return v
	case "transferencia", "depósito", "deposito", "transf", "bank", "cta cte", "ctacte", "cbu", "cvu":
		return "banco"
	case "cheques", "ch", "chq":
		return "cheque"
	}
	return "otro"
}
