package schema

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases",
			input:    "TYPE DE DOCUMENT",
			expected: "type de document",
		},
		{
			name:     "strips accents",
			input:    "ENTITÉ",
			expected: "entite",
		},
		{
			name:     "collapses whitespace",
			input:    "  Date   Traitement\tPND ",
			expected: "date traitement pnd",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"ENTITÉ", "Date  Réception", "déjà  normalisé", "SCS-CONTRAT"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalize should be idempotent for %q", in)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		col      Column
		expected string
		found    bool
	}{
		{
			name:     "exact match",
			headers:  []string{"ENTITÉ", "TYPE DE DOCUMENT"},
			col:      ColumnDocumentType,
			expected: "TYPE DE DOCUMENT",
			found:    true,
		},
		{
			name:     "case and accent variant",
			headers:  []string{"Type de Document"},
			col:      ColumnDocumentType,
			expected: "Type de Document",
			found:    true,
		},
		{
			name:     "extra whitespace variant",
			headers:  []string{"  type  de  document "},
			col:      ColumnDocumentType,
			expected: "  type  de  document ",
			found:    true,
		},
		{
			name:     "token fallback",
			headers:  []string{"Type du document envoyé"},
			col:      ColumnDocumentType,
			expected: "Type du document envoyé",
			found:    true,
		},
		{
			name:     "date fallback tight tokens",
			headers:  []string{"Date de traitement PND"},
			col:      ColumnProcessDate,
			expected: "Date de traitement PND",
			found:    true,
		},
		{
			name:     "date fallback loose tokens",
			headers:  []string{"Date PND"},
			col:      ColumnProcessDate,
			expected: "Date PND",
			found:    true,
		},
		{
			name:    "no candidate",
			headers: []string{"Montant", "Libellé"},
			col:     ColumnProcessDate,
			found:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.headers, tt.col)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}

func TestResolveVariantsAgree(t *testing.T) {
	// All spellings of the same header resolve to the same physical column.
	variants := []string{"TYPE DE DOCUMENT", "type de document", "Type De Document", "TYPE  DE  DOCUMENT"}
	for _, v := range variants {
		headers := []string{"ENTITÉ", v, "SCS-CONTRAT"}
		got, ok := Resolve(headers, ColumnDocumentType)
		require.True(t, ok, "variant %q should resolve", v)
		assert.Equal(t, v, got)
	}
}

func TestResolveAll(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		resolved, err := ResolveAll([]string{"Type de document", "Date traitement PND"},
			ColumnDocumentType, ColumnProcessDate)
		require.NoError(t, err)
		assert.Equal(t, []string{"Type de document", "Date traitement PND"}, resolved)
	})

	t.Run("missing column reports wanted and available", func(t *testing.T) {
		_, err := ResolveAll([]string{"Montant"}, ColumnDocumentType, ColumnProcessDate)
		require.Error(t, err)

		var nfe *NotFoundError
		require.True(t, errors.As(err, &nfe))
		assert.Equal(t, []string{"TYPE DE DOCUMENT", "DATE TRAITEMENT PND"}, nfe.Wanted)
		assert.Equal(t, []string{"Montant"}, nfe.Available)
	})
}

func TestResolveSheet(t *testing.T) {
	newWorkbook := func(t *testing.T, sheets map[string][][]string) *excelize.File {
		t.Helper()
		f := excelize.NewFile()
		first := true
		for name, rows := range sheets {
			if first {
				require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
				first = false
			} else {
				_, err := f.NewSheet(name)
				require.NoError(t, err)
			}
			for i, row := range rows {
				cells := make([]interface{}, len(row))
				for j, v := range row {
					cells[j] = v
				}
				cell, err := excelize.CoordinatesToCellName(1, i+1)
				require.NoError(t, err)
				require.NoError(t, f.SetSheetRow(name, cell, &cells))
			}
		}
		return f
	}

	t.Run("skips empty sheets and finds match", func(t *testing.T) {
		f := excelize.NewFile()
		_, err := f.NewSheet("Données")
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Données", "A1",
			&[]interface{}{"TYPE DE DOCUMENT", "DATE TRAITEMENT PND"}))
		require.NoError(t, f.SetSheetRow("Données", "A2",
			&[]interface{}{"FACTURE", "05/01/2024"}))

		sheet, rows, err := ResolveSheet(f, ColumnDocumentType, ColumnProcessDate)
		require.NoError(t, err)
		assert.Equal(t, "Données", sheet)
		require.Len(t, rows, 2)
	})

	t.Run("no matching sheet wraps last failure", func(t *testing.T) {
		f := newWorkbook(t, map[string][][]string{
			"Feuil1": {{"Montant", "Libellé"}, {"1", "a"}},
		})
		_, _, err := ResolveSheet(f, ColumnDocumentType, ColumnProcessDate)
		require.Error(t, err)

		var nfe *NotFoundError
		assert.True(t, errors.As(err, &nfe))
	})

	t.Run("survives save and reload", func(t *testing.T) {
		f := newWorkbook(t, map[string][][]string{
			"Synthèse": {{"Montant"}, {"1"}},
			"Export":   {{"Type document", "Date PND"}, {"RELANCE", "01/02/2025"}},
		})
		path := filepath.Join(t.TempDir(), "source.xlsx")
		require.NoError(t, f.SaveAs(path))

		reopened, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer reopened.Close()

		sheet, rows, err := ResolveSheet(reopened, ColumnDocumentType, ColumnProcessDate)
		require.NoError(t, err)
		assert.Equal(t, "Export", sheet)
		assert.Len(t, rows, 2)
	})
}
