package tabular

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDelimiterDetection(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		headers []string
		rows    int
	}{
		{
			name:    "semicolon",
			input:   "ENTITÉ;TYPE DE DOCUMENT;SCS-CONTRAT\nB2C;FACTURE;C1\n",
			headers: []string{"ENTITÉ", "TYPE DE DOCUMENT", "SCS-CONTRAT"},
			rows:    1,
		},
		{
			name:    "comma",
			input:   "A,B,C\n1,2,3\n4,5,6\n",
			headers: []string{"A", "B", "C"},
			rows:    2,
		},
		{
			name:    "tab",
			input:   "A\tB\tC\n1\t2\t3\n",
			headers: []string{"A", "B", "C"},
			rows:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.headers, table.Headers)
			assert.Len(t, table.Rows, tt.rows)
		})
	}
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse([]byte("  \n"))
	assert.Error(t, err)
}

func TestParsePadsShortRows(t *testing.T) {
	table, err := Parse([]byte("A;B;C\n1;2;3\n"))
	require.NoError(t, err)
	// The csv reader is lenient; every row must still have header width.
	for _, row := range table.Rows {
		assert.Len(t, row, len(table.Headers))
	}
}

func TestReadFileLatin1Fallback(t *testing.T) {
	// "ENTITÉ" encoded as Latin-1: É is byte 0xC9, invalid in UTF-8 here.
	data := []byte("ENTIT\xc9;TYPE\nB2C;FACTURE\n")
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	table, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ENTITÉ", "TYPE"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"B2C", "FACTURE"}, table.Rows[0])
}

func TestReadFileUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("ENTITÉ,TYPE\nB2C,RELANCE\n"), 0o644))

	table, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ENTITÉ", "TYPE"}, table.Headers)
}

func TestProject(t *testing.T) {
	table := &Table{
		Headers: []string{"A", "B", "C"},
		Rows:    [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
	}

	t.Run("keeps requested order", func(t *testing.T) {
		got := table.Project([]string{"C", "A"})
		assert.Equal(t, []string{"C", "A"}, got.Headers)
		assert.Equal(t, [][]string{{"3", "1"}, {"6", "4"}}, got.Rows)
	})

	t.Run("missing columns are dropped not an error", func(t *testing.T) {
		got := table.Project([]string{"A", "MISSING", "B"})
		assert.Equal(t, []string{"A", "B"}, got.Headers)
	})
}

func TestConcatAlignsByName(t *testing.T) {
	a := &Table{Headers: []string{"A", "B"}, Rows: [][]string{{"1", "2"}}}
	b := &Table{Headers: []string{"B", "C"}, Rows: [][]string{{"x", "y"}}}

	got := Concat(a, b)
	assert.Equal(t, []string{"A", "B", "C"}, got.Headers)
	assert.Equal(t, [][]string{
		{"1", "2", ""},
		{"", "x", "y"},
	}, got.Rows)
}

func TestDedupRows(t *testing.T) {
	table := &Table{
		Headers: []string{"A", "B"},
		Rows: [][]string{
			{"1", "2"},
			{"3", "4"},
			{"1", "2"},
			{"3", "4"},
			{"5", "6"},
		},
	}
	got := table.DedupRows()
	assert.Equal(t, [][]string{{"1", "2"}, {"3", "4"}, {"5", "6"}}, got.Rows)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{
			name:     "day first slash",
			input:    "05/01/2024",
			expected: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "day first with time",
			input:    "30/12/2024 14:30:00",
			expected: time.Date(2024, 12, 30, 14, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "iso",
			input:    "2025-02-01",
			expected: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:  "garbage",
			input: "pas une date",
			ok:    false,
		},
		{
			name:  "empty",
			input: "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
