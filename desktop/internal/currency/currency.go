package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a peso amount with fixed two-decimal precision
type Currency struct {
	value decimal.Decimal
}

// NewFromFloat creates a Currency from a float64 read from sqlite REAL columns.
// The value is rounded to cents.
func NewFromFloat(f float64) Currency {
	return Currency{value: decimal.NewFromFloat(f).Round(2)}
}

// NewFromString creates a Currency from a plain decimal string ("1234.5")
func NewFromString(s string) (Currency, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Currency{}, err
	}
	return Currency{value: d.Round(2)}, nil
}

// NewFromCents creates a Currency from an integer number of cents
func NewFromCents(cents int64) Currency {
	return Currency{value: decimal.New(cents, -2)}
}

// Zero returns a zero Currency value
func Zero() Currency {
	return Currency{value: decimal.Zero}
}

func (c Currency) Add(other Currency) Currency {
	return Currency{value: c.value.Add(other.value)}
}

func (c Currency) Sub(other Currency) Currency {
	return Currency{value: c.value.Sub(other.value)}
}

// Mul multiplies a Currency by a number, rounding to cents
func (c Currency) Mul(multiplier decimal.Decimal) Currency {
	return Currency{value: c.value.Mul(multiplier).Round(2)}
}

func (c Currency) Neg() Currency {
	return Currency{value: c.value.Neg()}
}

func (c Currency) Abs() Currency {
	return Currency{value: c.value.Abs()}
}

func (c Currency) IsPositive() bool {
	return c.value.IsPositive()
}

func (c Currency) IsNegative() bool {
	return c.value.IsNegative()
}

func (c Currency) IsZero() bool {
	return c.value.IsZero()
}

// GreaterThan returns true if c > other
func (c Currency) GreaterThan(other Currency) bool {
	return c.value.GreaterThan(other.value)
}

// GreaterThanOrEqual returns true if c >= other
func (c Currency) GreaterThanOrEqual(other Currency) bool {
	return c.value.GreaterThanOrEqual(other.value)
}

// LessThan returns true if c < other
func (c Currency) LessThan(other Currency) bool {
	return c.value.LessThan(other.value)
}

func (c Currency) Equal(other Currency) bool {
	return c.value.Equal(other.value)
}

// Max returns the larger of two values
func Max(a, b Currency) Currency {
	if a.GreaterThanOrEqual(b) {
		return a
	}
	return b
}

// ToCents returns the Currency value as integer cents
func (c Currency) ToCents() int64 {
	return c.value.Shift(2).IntPart()
}

// ToFloat64 returns the value for REAL columns and JSON payloads
func (c Currency) ToFloat64() float64 {
	f, _ := c.value.Float64()
	return f
}

// ToString returns the value with 2 decimal places and no grouping ("1234.50")
func (c Currency) ToString() string {
	return c.value.StringFixed(2)
}

// Grouped returns the value with thousands separators ("1,234.50")
func (c Currency) Grouped() string {
	s := c.value.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac
	if c.value.IsNegative() {
		return "-" + out
	}
	return out
}

// String implements the Stringer interface
func (c Currency) String() string {
	return fmt.Sprintf("$%s", c.Grouped())
}

// ParseFromDBF parses a value from a DBF or CSV source into Currency
func ParseFromDBF(value interface{}) Currency {
	if value == nil {
		return Zero()
	}

	switch v := value.(type) {
	case float64:
		return NewFromFloat(v)
	case float32:
		return NewFromFloat(float64(v))
	case int:
		return NewFromCents(int64(v) * 100)
	case int32:
		return NewFromCents(int64(v) * 100)
	case int64:
		return NewFromCents(v * 100)
	case string:
		if c, err := NewFromString(v); err == nil {
			return c
		}
		return Zero()
	default:
		return Zero()
	}
}

// Sum sums a slice of Currency values
func Sum(values []Currency) Currency {
	sum := Zero()
	for _, v := range values {
		sum = sum.Add(v)
	}
	return sum
}
