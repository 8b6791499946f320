// Package receipts extracts receipt and payment-order numbers from the free
// text that links checks to the document they were received or paid with.
//
// Checks carry no foreign key to their receipt. The link lives in the check
// annotation as a tag such as "REC 0001-00000049", or in the recibo_nro column
// on databases that have it. Everything that reads or writes that link goes
// through this package.
package receipts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Identifier is a resolved document number. Canonical holds the digits with
// leading zeros stripped ("49"). Full is the branch-prefixed form
// ("0001-00000049") when the source carried a branch.
type Identifier struct {
	Canonical string `json:"canonical"`
	Full      string `json:"full,omitempty"`
}

// IsZero reports whether nothing was resolved
func (id Identifier) IsZero() bool {
	return id.Canonical == ""
}

// Display is the form shown to operators: Full when known, else Canonical
func (id Identifier) Display() string {
	if id.Full != "" {
		return id.Full
	}
	return id.Canonical
}

// Pretty is used in file names: Full when known, else Canonical padded to 5
func (id Identifier) Pretty() string {
	if id.Full != "" {
		return id.Full
	}
	if len(id.Canonical) >= 5 {
		return id.Canonical
	}
	return strings.Repeat("0", 5-len(id.Canonical)) + id.Canonical
}

// Number returns Canonical as an integer
func (id Identifier) Number() (int64, bool) {
	n, err := strconv.ParseInt(id.Canonical, 10, 64)
	return n, err == nil
}

// NumberCandidates lists the stored-number spellings worth trying, in order:
// the full text form, the canonical text form.
func (id Identifier) NumberCandidates() []string {
	var out []string
	if id.Full != "" {
		out = append(out, id.Full)
	}
	if id.Canonical != "" {
		out = append(out, id.Canonical)
	}
	return out
}

func (id Identifier) String() string {
	return id.Display()
}

// fromGroups builds an Identifier from one or two captured digit groups
func fromGroups(first, second string) (Identifier, bool) {
	a, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return Identifier{}, false
	}
	if second == "" {
		return Identifier{Canonical: strconv.FormatInt(a, 10)}, true
	}
	b, err := strconv.ParseInt(second, 10, 64)
	if err != nil {
		return Identifier{}, false
	}
	return Identifier{
		Canonical: strconv.FormatInt(b, 10),
		Full:      fmt.Sprintf("%04d-%08d", a, b),
	}, true
}

// numberPattern is a branch of at most four digits joined to its number by
// "-", "/" or ".", the printed "BBBB NNNNNNNN" layout, or else a bare number.
// Other digits after a space are never taken as the number, so
// "REC 00000049 12/03/2026" stays 49.
const numberPattern = `(?:(\d{1,4})\s*[-/.]\s*0*(\d+)|(\d{4})\s+(\d{8})\b|0*(\d+))`

var hintPattern = regexp.MustCompile(numberPattern)

// fromMatch builds an Identifier from a numberPattern submatch
func fromMatch(m []string) (Identifier, bool) {
	switch {
	case m[1] != "":
		return fromGroups(m[1], m[2])
	case m[3] != "":
		return fromGroups(m[3], m[4])
	}
	return fromGroups(m[5], "")
}

// FromHint parses an operator-typed number such as "49", "00049" or
// "1-49". No marker is required.
func FromHint(hint string) (Identifier, bool) {
	m := hintPattern.FindStringSubmatch(hint)
	if m == nil {
		return Identifier{}, false
	}
	return fromMatch(m)
}

// Resolver finds tags for one document marker ("REC" or "OP")
type Resolver struct {
	Marker  string
	pattern *regexp.Regexp
}

// NewResolver builds a resolver for the given marker
func NewResolver(marker string) *Resolver {
	marker = strings.ToUpper(strings.TrimSpace(marker))
	return &Resolver{
		Marker:  marker,
		pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(marker) + `[\s:#\-]*` + numberPattern),
	}
}

// Receipt resolves "REC" tags, PaymentOrder resolves "OP" tags
var (
	Receipt      = NewResolver("REC")
	PaymentOrder = NewResolver("OP")
)

// FromText extracts the identifier from an annotation. When the text holds
// several tags the last one wins, since tags are only ever appended.
func (r *Resolver) FromText(text string) (Identifier, bool) {
	all := r.pattern.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return Identifier{}, false
	}
	return fromMatch(all[len(all)-1])
}

// Source holds every place a check's document number can come from
type Source struct {
	Hint       string // operator-supplied disambiguation
	Reference  string // dedicated column (recibo_nro)
	Annotation string // free text (obs)
}

// Resolve tries the hint, then the dedicated reference, then the annotation
// text. The bool is false when no rule matched, which is distinct from a
// resolved number of zero.
func (r *Resolver) Resolve(src Source) (Identifier, bool) {
	if strings.TrimSpace(src.Hint) != "" {
		if id, ok := FromHint(src.Hint); ok {
			return id, true
		}
	}
	if strings.TrimSpace(src.Reference) != "" {
		if id, ok := FromHint(src.Reference); ok {
			return id, true
		}
	}
	return r.FromText(src.Annotation)
}

// Matches reports whether the annotation's tag names the same document as id.
// A branch mismatch is only detected when both sides carry a full form.
func (r *Resolver) Matches(annotation string, id Identifier) bool {
	got, ok := r.FromText(annotation)
	if !ok || got.Canonical != id.Canonical {
		return false
	}
	if got.Full != "" && id.Full != "" && got.Full != id.Full {
		return false
	}
	return true
}

// Tag renders the annotation tag for a document number, e.g. "REC 0001-00000049"
func (r *Resolver) Tag(number string) string {
	return strings.TrimSpace(r.Marker + " " + strings.TrimSpace(number))
}

// LikePatterns returns the SQL LIKE patterns that prefilter rows whose
// annotation may carry id's tag. Results still need Matches.
func (r *Resolver) LikePatterns(id Identifier) []string {
	var out []string
	for _, n := range id.NumberCandidates() {
		out = append(out, "%"+r.Marker+"%"+n+"%")
	}
	return out
}

// AppendTag appends tag to an annotation as " | TAG", leaving the text
// untouched when the tag is already present.
func AppendTag(annotation, tag string) string {
	annotation = strings.TrimSpace(annotation)
	if tag == "" || strings.Contains(annotation, tag) {
		return annotation
	}
	if annotation == "" {
		return tag
	}
	return annotation + " | " + tag
}
