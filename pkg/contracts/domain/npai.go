package domain

import "time"

// DocType is a normalized NPAI document type. The closed taxonomy below is
// what the tariff table knows about; normalization may still produce other
// values (uppercased, accent-stripped passthrough of the raw label), which
// are counted in volumes but never priced.
type DocType string

const (
	DocTypeFacture   DocType = "FACTURE"
	DocTypeRelance   DocType = "RELANCE"
	DocTypeCourrier  DocType = "COURRIER"
	DocTypeDuplicata DocType = "DUPLICATA"
)

// DisplayOrder is the fixed row order of the cost tables.
var DisplayOrder = []DocType{
	DocTypeFacture,
	DocTypeRelance,
	DocTypeCourrier,
	DocTypeDuplicata,
}

// MailedTypes are the document types summed into the "TOTAL (3 types)" row.
var MailedTypes = []DocType{DocTypeFacture, DocTypeRelance, DocTypeCourrier}

// Tariffs maps a document type to its unit handling cost in euro.
type Tariffs map[DocType]float64

// NormalizedRecord is one postal-return line after schema resolution and
// type normalization. Year and Month always come from Date, never from the
// source file the record was found in.
type NormalizedRecord struct {
	RawType  string     `json:"raw_type"`
	TypeNorm DocType    `json:"type_norm"`
	Date     time.Time  `json:"date"`
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
}

// LedgerEntry records one ingested source file.
type LedgerEntry struct {
	Date   time.Time `json:"date"`
	File   string    `json:"file"`
	Status string    `json:"status"`
}

// StatusProcessed is the ledger marker for a fully ingested file.
const StatusProcessed = "X"
