// Package ledger persists which source files have already been folded into
// the master projections. The workbook on disk is the only durable state;
// every run loads it, appends and saves it back.
package ledger

import (
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"npaicli/pkg/contracts/domain"
)

// Column headers of the persisted workbook.
var headers = []string{"Date", "Fichier", "Statut"}

const dateLayout = "2006-01-02"

// Ledger tracks processed source files by name.
type Ledger struct {
	path    string
	entries []domain.LedgerEntry
	index   map[string]int
}

// Load reads the ledger workbook. A missing file is not an error: the first
// run starts from an empty ledger.
func Load(path string) (*Ledger, error) {
	l := &Ledger{path: path, index: map[string]int{}}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return l, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return l, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger sheet: %w", err)
	}
	if len(rows) < 2 {
		return l, nil
	}

	for _, row := range rows[1:] {
		entry := domain.LedgerEntry{}
		if len(row) > 0 {
			if d, err := time.Parse(dateLayout, row[0]); err == nil {
				entry.Date = d
			}
		}
		if len(row) > 1 {
			entry.File = row[1]
		}
		if len(row) > 2 {
			entry.Status = row[2]
		}
		if entry.File == "" {
			continue
		}
		l.append(entry)
	}
	return l, nil
}

// IsPending reports whether fileName still needs processing. A full rebuild
// treats every file as pending regardless of ledger state.
func (l *Ledger) IsPending(fileName string, forceFull bool) bool {
	if forceFull {
		return true
	}
	_, known := l.index[fileName]
	return !known
}

// MarkProcessed appends an entry for fileName. Later entries for the same
// name shadow earlier ones, which is how a forced rebuild overwrites dates.
func (l *Ledger) MarkProcessed(fileName string, date time.Time, status string) {
	l.append(domain.LedgerEntry{Date: date, File: fileName, Status: status})
}

func (l *Ledger) append(entry domain.LedgerEntry) {
	l.entries = append(l.entries, entry)
	l.index[entry.File] = len(l.entries) - 1
}

// Entries returns the deduplicated ledger content: one entry per file name,
// last write wins, first-appearance order preserved.
func (l *Ledger) Entries() []domain.LedgerEntry {
	seen := map[string]struct{}{}
	out := make([]domain.LedgerEntry, 0, len(l.index))
	for _, entry := range l.entries {
		if _, ok := seen[entry.File]; ok {
			continue
		}
		seen[entry.File] = struct{}{}
		out = append(out, l.entries[l.index[entry.File]])
	}
	return out
}

// Len returns the number of distinct files recorded.
func (l *Ledger) Len() int {
	return len(l.index)
}

// Save persists the deduplicated ledger, replacing the previous workbook.
func (l *Ledger) Save() error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cells); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}

	for i, entry := range l.Entries() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{entry.Date.Format(dateLayout), entry.File, entry.Status}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}

	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("failed to save ledger %s: %w", l.path, err)
	}
	return nil
}
