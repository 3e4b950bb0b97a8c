// Package aggregate folds newly extracted CSV exports into the master
// workbooks: the restricted-column projection (with its one-row-per-contract
// companion sheet) and the full unrestricted union. The ingestion ledger
// decides which files are new; the whole pass is a no-op when nothing is
// pending, which makes re-runs safe.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"npaicli/internal/config"
	"npaicli/internal/ledger"
	"npaicli/internal/tabular"
	"npaicli/pkg/contracts/domain"
)

// Sheet names of the restricted-columns workbook.
const (
	SheetComplete = "Complet"
	SheetDeduped  = "Sans doublons"
)

// Engine consolidates pending source files into the master projections.
type Engine struct {
	paths  config.PathsConfig
	cfg    config.AggregateConfig
	logger *slog.Logger
}

// New builds an aggregation engine. All paths, required columns and the
// reference date come from configuration.
func New(paths config.PathsConfig, cfg config.AggregateConfig, logger *slog.Logger) *Engine {
	return &Engine{paths: paths, cfg: cfg, logger: logger}
}

// Run ingests every pending CSV in the processed directory, recomputes the
// master projections from them and updates the ledger. With forceFull set
// the ledger is ignored and everything is rebuilt from scratch.
//
// A file that cannot be read is logged and skipped; it stays out of the
// ledger and is retried on the next run.
func (e *Engine) Run(ctx context.Context, forceFull bool) error {
	led, err := ledger.Load(e.paths.LedgerFile)
	if err != nil {
		return err
	}

	pending, err := e.pendingFiles(led, forceFull)
	if err != nil {
		return err
	}
	e.logger.Info("aggregation starting",
		slog.Int("pending_files", len(pending)),
		slog.Bool("force_full", forceFull))

	var restricted, full []*tabular.Table
	processed := 0
	for _, name := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(e.paths.ProcessedDir, name)
		e.logger.Info("reading source file", slog.String("file", name))

		t, err := tabular.ReadFile(path)
		if err != nil {
			e.logger.Warn("skipping unreadable source file",
				slog.String("file", name),
				slog.String("error", err.Error()))
			continue
		}

		restricted = append(restricted, t.Project(e.cfg.RequiredColumns))
		full = append(full, t)
		led.MarkProcessed(name, time.Now(), domain.StatusProcessed)
		processed++
	}

	if processed == 0 {
		e.logger.Info("no new source files, masters unchanged")
		return nil
	}

	union := tabular.Concat(restricted...)
	if err := e.writeMasterColumns(union.DedupRows(), e.dedupByContract(union)); err != nil {
		return err
	}
	if err := e.writeMasterFull(tabular.Concat(full...).DedupRows()); err != nil {
		return err
	}
	if err := led.Save(); err != nil {
		return err
	}

	e.logger.Info("aggregation complete",
		slog.Int("files_ingested", processed),
		slog.Int("ledger_entries", led.Len()))
	return nil
}

// pendingFiles lists the CSV files still to ingest, sorted by name so runs
// are deterministic.
func (e *Engine) pendingFiles(led *ledger.Ledger, forceFull bool) ([]string, error) {
	entries, err := os.ReadDir(e.paths.ProcessedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", e.paths.ProcessedDir, err)
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		if led.IsPending(entry.Name(), forceFull) {
			pending = append(pending, entry.Name())
		}
	}
	sort.Strings(pending)
	return pending, nil
}

// dedupByContract keeps one row per contract identifier: the row whose
// processing date lies closest to the reference date. Rows without a
// contract or a parseable date do not participate. Ties keep the earlier
// row; survivors keep their input order.
func (e *Engine) dedupByContract(t *tabular.Table) *tabular.Table {
	ci := t.ColumnIndex(e.cfg.ContractColumn)
	di := t.ColumnIndex(e.cfg.ProcessDateColumn)
	if ci < 0 || di < 0 {
		return &tabular.Table{Headers: t.Headers}
	}

	ref := e.cfg.ReferenceDateTime()
	type candidate struct {
		row  int
		diff time.Duration
	}
	best := map[string]candidate{}
	var order []string

	for i, row := range t.Rows {
		contract := strings.TrimSpace(row[ci])
		if contract == "" {
			continue
		}
		date, ok := tabular.ParseDate(row[di])
		if !ok {
			continue
		}
		diff := date.Sub(ref)
		if diff < 0 {
			diff = -diff
		}
		prev, seen := best[contract]
		if !seen {
			best[contract] = candidate{row: i, diff: diff}
			order = append(order, contract)
			continue
		}
		if diff < prev.diff {
			best[contract] = candidate{row: i, diff: diff}
		}
	}

	winners := make([]int, 0, len(best))
	for _, contract := range order {
		winners = append(winners, best[contract].row)
	}
	sort.Ints(winners)

	rows := make([][]string, len(winners))
	for i, r := range winners {
		rows[i] = t.Rows[r]
	}
	return &tabular.Table{Headers: t.Headers, Rows: rows}
}

func (e *Engine) writeMasterColumns(complete, deduped *tabular.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), SheetComplete)
	if err := writeSheet(f, SheetComplete, complete); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetDeduped); err != nil {
		return err
	}
	if err := writeSheet(f, SheetDeduped, deduped); err != nil {
		return err
	}

	if err := f.SaveAs(e.paths.MasterColumns); err != nil {
		return fmt.Errorf("failed to save %s: %w", e.paths.MasterColumns, err)
	}
	e.logger.Info("restricted master updated",
		slog.String("file", e.paths.MasterColumns),
		slog.Int("rows_complete", len(complete.Rows)),
		slog.Int("rows_deduped", len(deduped.Rows)))
	return nil
}

func (e *Engine) writeMasterFull(t *tabular.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := writeSheet(f, sheet, t); err != nil {
		return err
	}
	if err := f.SaveAs(e.paths.MasterFull); err != nil {
		return fmt.Errorf("failed to save %s: %w", e.paths.MasterFull, err)
	}
	e.logger.Info("full master updated",
		slog.String("file", e.paths.MasterFull),
		slog.Int("rows", len(t.Rows)))
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *tabular.Table) error {
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header on %s: %w", sheet, err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row on %s: %w", sheet, err)
		}
	}
	return nil
}
