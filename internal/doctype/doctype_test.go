package doctype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"npaicli/pkg/contracts/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected domain.DocType
	}{
		{
			name:     "plain facture",
			input:    "FACTURE",
			expected: domain.DocTypeFacture,
		},
		{
			name:     "facture with suffix",
			input:    "Facture PDF",
			expected: domain.DocTypeFacture,
		},
		{
			name:     "accented relance",
			input:    "Relançe",
			expected: domain.DocTypeRelance,
		},
		{
			name:     "courrier simple",
			input:    "Courrier simple",
			expected: domain.DocTypeCourrier,
		},
		{
			name:     "abbreviated duplicata",
			input:    "dupli.",
			expected: domain.DocTypeDuplicata,
		},
		{
			name:     "duplicata wins over facture",
			input:    "Duplicata de facture",
			expected: domain.DocTypeDuplicata,
		},
		{
			name:     "unknown passes through uppercased",
			input:    "Avoir émis",
			expected: domain.DocType("AVOIR EMIS"),
		},
		{
			name:     "empty label",
			input:    "",
			expected: domain.DocType(""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"Facture PDF", "Relançe", "dupli.", "Avoir émis", "COURRIER", ""}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(string(once)), "normalize(normalize(%q))", in)
	}
}
