// Package doctype maps free-text document labels onto the closed NPAI
// taxonomy. Matching is case- and accent-insensitive so "Relançe", "facture
// PDF" or "Dupli." land on the expected type.
package doctype

import (
	"strings"

	"npaicli/internal/schema"
	"npaicli/pkg/contracts/domain"
)

// rules are checked in order; first substring hit wins.
var rules = []struct {
	substr string
	typ    domain.DocType
}{
	{"DUPLI", domain.DocTypeDuplicata},
	{"FACT", domain.DocTypeFacture},
	{"RELAN", domain.DocTypeRelance},
	{"COURR", domain.DocTypeCourrier},
}

// Normalize maps a raw label to its document type. Labels matching no rule
// pass through uppercased and accent-stripped; callers exclude such values
// from tariff math but keep them in volume counts. Normalize is idempotent.
func Normalize(raw string) domain.DocType {
	t := strings.ToUpper(strings.TrimSpace(schema.Normalize(raw)))
	for _, r := range rules {
		if strings.Contains(t, r.substr) {
			return r.typ
		}
	}
	return domain.DocType(t)
}
