// Package report turns the two consolidated year datasets into the monthly
// cost tables and the volume evolution table, and renders them to a
// workbook plus a chart image.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"npaicli/internal/doctype"
	"npaicli/internal/schema"
	"npaicli/internal/tabular"
	"npaicli/pkg/contracts/domain"
)

// LoadDataset reads one year workbook and returns its normalized records.
// With sheetName set that sheet is read and must not be empty; with
// sheetName empty the first sheet resolving both required columns is used.
//
// Records keep the year and month of their own processing date: a December
// record found in the next year's workbook still counts in December.
func LoadDataset(path, sheetName string) ([]domain.NormalizedRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &SourceMissingError{Path: path}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var rows [][]string
	if sheetName != "" {
		rows, err = f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q in %s: %w", sheetName, path, err)
		}
		if len(rows) < 2 {
			return nil, &EmptySheetError{File: path, Sheet: sheetName}
		}
	} else {
		sheetName, rows, err = schema.ResolveSheet(f, schema.ColumnDocumentType, schema.ColumnProcessDate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	resolved, err := schema.ResolveAll(rows[0], schema.ColumnDocumentType, schema.ColumnProcessDate)
	if err != nil {
		return nil, fmt.Errorf("%s sheet %q: %w", path, sheetName, err)
	}
	typeIdx := indexOf(rows[0], resolved[0])
	dateIdx := indexOf(rows[0], resolved[1])

	var records []domain.NormalizedRecord
	for _, row := range rows[1:] {
		rawType := ""
		if typeIdx < len(row) {
			rawType = strings.TrimSpace(row[typeIdx])
		}
		dateCell := ""
		if dateIdx < len(row) {
			dateCell = row[dateIdx]
		}
		date, ok := tabular.ParseDate(dateCell)
		if !ok {
			continue
		}
		records = append(records, domain.NormalizedRecord{
			RawType:  rawType,
			TypeNorm: doctype.Normalize(rawType),
			Date:     date,
			Year:     date.Year(),
			Month:    date.Month(),
		})
	}
	return records, nil
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}
