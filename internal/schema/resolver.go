package schema

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes to NFD, drops combining marks and recomposes.
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s, strips accents and collapses runs of whitespace.
// Header comparison happens exclusively on normalized forms.
func Normalize(s string) string {
	stripped, _, err := transform.String(accentStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(strings.Join(strings.Fields(stripped), " "))
}

// Column describes one logical column to locate: its canonical header name
// plus progressively looser token sets tried in order when no header matches
// the name exactly.
type Column struct {
	Name      string
	Fallbacks [][]string
}

// The two columns every report dataset must provide.
var (
	ColumnDocumentType = Column{
		Name:      "TYPE DE DOCUMENT",
		Fallbacks: [][]string{{"type", "document"}},
	}
	ColumnProcessDate = Column{
		Name:      "DATE TRAITEMENT PND",
		Fallbacks: [][]string{{"date", "traitement", "pnd"}, {"date", "pnd"}},
	}
)

// NotFoundError reports which logical columns were wanted and what the
// dataset actually offered.
type NotFoundError struct {
	Wanted    []string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("columns not found: wanted %q, available %q", e.Wanted, e.Available)
}

// Resolve locates the physical header matching col among headers. Exact
// normalized match wins; otherwise the first header containing every token
// of a fallback set, sets tried loosest-last.
func Resolve(headers []string, col Column) (string, bool) {
	want := Normalize(col.Name)
	for _, h := range headers {
		if Normalize(h) == want {
			return h, true
		}
	}
	for _, tokens := range col.Fallbacks {
		for _, h := range headers {
			hn := Normalize(h)
			all := true
			for _, tok := range tokens {
				if !strings.Contains(hn, tok) {
					all = false
					break
				}
			}
			if all {
				return h, true
			}
		}
	}
	return "", false
}

// ResolveAll resolves every column or fails with a single NotFoundError
// listing all required names and the available headers.
func ResolveAll(headers []string, cols ...Column) ([]string, error) {
	resolved := make([]string, len(cols))
	for i, col := range cols {
		name, ok := Resolve(headers, col)
		if !ok {
			wanted := make([]string, len(cols))
			for j, c := range cols {
				wanted[j] = c.Name
			}
			return nil, &NotFoundError{Wanted: wanted, Available: headers}
		}
		resolved[i] = name
	}
	return resolved, nil
}

// ResolveSheet scans a workbook for the first non-empty sheet whose header
// row resolves every required column, returning that sheet's name and rows.
// When no sheet qualifies the error wraps the last per-sheet failure.
func ResolveSheet(f *excelize.File, cols ...Column) (string, [][]string, error) {
	var lastErr error
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			lastErr = err
			continue
		}
		// Header-only sheets count as empty.
		if len(rows) < 2 {
			continue
		}
		if _, err := ResolveAll(rows[0], cols...); err != nil {
			lastErr = err
			continue
		}
		return name, rows, nil
	}
	if lastErr == nil {
		return "", nil, fmt.Errorf("workbook has no non-empty sheet")
	}
	return "", nil, fmt.Errorf("no sheet contains the required columns: %w", lastErr)
}
