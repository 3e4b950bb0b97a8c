// Package tabular reads delimited text exports with a header row. Files
// arrive from several generations of the upstream extraction tool, so the
// delimiter is sniffed and the encoding falls back to Latin-1 when the bytes
// are not valid UTF-8.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Table is an in-memory tabular dataset: a header row plus data rows. Rows
// are padded to the header width on read so cell access never bounds-checks.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ReadFile parses a delimited text file. UTF-8 is attempted first; invalid
// UTF-8 input is re-decoded as Latin-1.
func ReadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode file as latin-1: %w", err)
		}
		data = decoded
	}
	return Parse(data)
}

// Parse parses delimited text with delimiter auto-detection.
func Parse(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("file contains no data")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse delimited text: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file contains no rows")
	}

	headers := records[0]
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]string, len(headers))
		copy(row, rec)
		rows = append(rows, row)
	}
	return &Table{Headers: headers, Rows: rows}, nil
}

// detectDelimiter picks the candidate occurring most often in the header
// line. Comma wins ties, matching the most common export format.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, cand := range []byte{';', '\t'} {
		if n := bytes.Count(line, []byte{cand}); n > bestCount {
			best, bestCount = rune(cand), n
		}
	}
	return best
}

// ColumnIndex returns the position of an exact header name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Project restricts the table to the named columns, silently dropping names
// the table does not have. Column order follows the request.
func (t *Table) Project(columns []string) *Table {
	var keep []int
	var headers []string
	for _, name := range columns {
		if i := t.ColumnIndex(name); i >= 0 {
			keep = append(keep, i)
			headers = append(headers, name)
		}
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for c, i := range keep {
			out[c] = row[i]
		}
		rows[r] = out
	}
	return &Table{Headers: headers, Rows: rows}
}

// Concat unions tables by column name. Columns keep first-seen order;
// cells absent from a contributing table are empty.
func Concat(tables ...*Table) *Table {
	var headers []string
	index := map[string]int{}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, h := range t.Headers {
			if _, ok := index[h]; !ok {
				index[h] = len(headers)
				headers = append(headers, h)
			}
		}
	}

	var rows [][]string
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, row := range t.Rows {
			out := make([]string, len(headers))
			for c, h := range t.Headers {
				out[index[h]] = row[c]
			}
			rows = append(rows, out)
		}
	}
	return &Table{Headers: headers, Rows: rows}
}

// DedupRows removes exact duplicate rows, keeping first occurrences in
// input order.
func (t *Table) DedupRows() *Table {
	seen := make(map[string]struct{}, len(t.Rows))
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, row)
	}
	return &Table{Headers: t.Headers, Rows: rows}
}

// dateLayouts are tried in order; day-first forms come before ISO because
// the upstream exports are French.
var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/06",
}

// ParseDate parses a cell as a day-first date. The second return reports
// whether any layout matched; callers drop records with unparseable dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
