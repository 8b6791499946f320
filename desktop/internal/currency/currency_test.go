package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrouped(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{12.5, "12.50"},
		{1234.56, "1,234.56"},
		{1234567.891, "1,234,567.89"},
		{-250000, "-250,000.00"},
		{999.999, "1,000.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NewFromFloat(tt.in).Grouped(), "input %v", tt.in)
	}
}

func TestArithmeticKeepsCents(t *testing.T) {
	a := NewFromFloat(0.1)
	b := NewFromFloat(0.2)
	assert.True(t, a.Add(b).Equal(NewFromCents(30)))
	assert.Equal(t, int64(30), a.Add(b).ToCents())
	assert.Equal(t, 0.3, a.Add(b).ToFloat64())
}

func TestMax(t *testing.T) {
	assert.True(t, Max(NewFromFloat(5), NewFromFloat(7)).Equal(NewFromFloat(7)))
	assert.True(t, Max(NewFromFloat(9), NewFromFloat(7)).Equal(NewFromFloat(9)))
}

func TestParseFromDBF(t *testing.T) {
	assert.Equal(t, "15.25", ParseFromDBF(15.25).ToString())
	assert.Equal(t, "300.00", ParseFromDBF(int64(300)).ToString())
	assert.Equal(t, "42.10", ParseFromDBF(" 42.1 ").ToString())
	assert.True(t, ParseFromDBF("abc").IsZero())
	assert.True(t, ParseFromDBF(nil).IsZero())
}

func TestSum(t *testing.T) {
	got := Sum([]Currency{NewFromFloat(100), NewFromFloat(200.5), NewFromFloat(-0.5)})
	assert.Equal(t, "300.00", got.ToString())
}
