package pdf

import (
	"strings"

	"github.com/textilsur/gestiontextil/desktop/internal/common"
	"github.com/textilsur/gestiontextil/desktop/internal/currency"
)

// FormatAmount renders money as "$ 1.234,56", negatives in parentheses
func FormatAmount(c currency.Currency) string {
	s := c.Abs().Grouped()
	// swap separators to the local style
	s = strings.NewReplacer(",", ".", ".", ",").Replace(s)
	if c.IsNegative() {
		return "($ " + s + ")"
	}
	return "$ " + s
}

// FormatDate renders a stored ISO date as DD/MM/YYYY
func FormatDate(iso string) string {
	return common.FormatDMY(iso)
}

// TruncateText shortens text to maxLen runes, ending with "..."
func TruncateText(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// SanitizeFileName replaces characters that are invalid in file names
func SanitizeFileName(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	return strings.TrimSpace(result)
}
