package common

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError reports a field-level problem
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// DigitsOnly strips everything but ASCII digits
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateCUIT checks an 11-digit CUIT/CUIL (dashes allowed) against its
// mod-11 verifier digit.
func ValidateCUIT(cuit string) error {
	d := DigitsOnly(cuit)
	if len(d) != 11 {
		return ValidationError{Field: "cuit", Message: "must have 11 digits"}
	}

	sum := 0
	for i, w := range cuitWeights {
		sum += int(d[i]-'0') * w
	}
	check := 11 - sum%11
	switch check {
	case 11:
		check = 0
	case 10:
		check = 9
	}

	if int(d[10]-'0') != check {
		return ValidationError{Field: "cuit", Message: "invalid verifier digit"}
	}
	return nil
}

// ValidateTaxID accepts a DNI (7-8 digits) or a valid CUIT. Empty is allowed.
func ValidateTaxID(id string) error {
	d := DigitsOnly(id)
	switch {
	case d == "":
		return nil
	case len(d) == 7 || len(d) == 8:
		return nil
	case len(d) == 11:
		return ValidateCUIT(d)
	}
	return ValidationError{Field: "cuit_dni", Message: fmt.Sprintf("unexpected length %d", len(d))}
}

// ValidateAmount validates a monetary amount typed by the operator
func ValidateAmount(amount float64) error {
	if amount < 0 {
		return ValidationError{Field: "importe", Message: "cannot be negative"}
	}
	if amount > 999999999.99 {
		return ValidationError{Field: "importe", Message: "exceeds maximum allowed value"}
	}
	return nil
}

// ValidateCheckNumber validates a check number
func ValidateCheckNumber(checkNumber string) error {
	checkNumber = strings.TrimSpace(checkNumber)
	if checkNumber == "" {
		return ValidationError{Field: "numero", Message: "cannot be empty"}
	}
	for _, r := range checkNumber {
		if !unicode.IsDigit(r) && !unicode.IsLetter(r) && r != '-' {
			return ValidationError{Field: "numero", Message: "contains invalid characters"}
		}
	}
	return nil
}
