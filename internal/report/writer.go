package report

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// EvolutionSheet names the volume sheet of the cost report workbook.
const EvolutionSheet = "Évolution traitements"

// currencyFormat is applied to every cost cell; zeroes render as € 0,00
// rather than staying blank.
const currencyFormat = "€ #,##0.00"

// WriteWorkbook writes one "Frais <year>" sheet per cost table and the
// evolution sheet, with a line chart of the volumes embedded below them.
// The previous workbook is replaced whole.
func WriteWorkbook(path string, costs []CostTable, volumes VolumeTable, monthLabels []string, logger *slog.Logger) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, table := range costs {
		sheet := fmt.Sprintf("Frais %d", table.Year)
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), sheet)
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeCostSheet(f, sheet, table, monthLabels); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(EvolutionSheet); err != nil {
		return err
	}
	if err := writeEvolutionSheet(f, volumes, monthLabels); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", path, err)
	}
	logger.Info("cost report written",
		slog.String("file", path),
		slog.Int("cost_sheets", len(costs)))
	return nil
}

func writeCostSheet(f *excelize.File, sheet string, table CostTable, monthLabels []string) error {
	header := make([]interface{}, 0, 14)
	header = append(header, "")
	for _, label := range monthLabels {
		header = append(header, label)
	}
	header = append(header, "Total annuel")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range table.Rows {
		cells := make([]interface{}, 0, 14)
		cells = append(cells, row.Label)
		for _, v := range row.Months {
			cells = append(cells, v)
		}
		cells = append(cells, row.Total)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}

	if len(table.Rows) == 0 {
		return nil
	}
	fmtStr := currencyFormat
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &fmtStr})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(14, len(table.Rows)+1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "B2", last, style)
}

func writeEvolutionSheet(f *excelize.File, volumes VolumeTable, monthLabels []string) error {
	header := make([]interface{}, 0, 13)
	header = append(header, "Année")
	for _, label := range monthLabels {
		header = append(header, label)
	}
	if err := f.SetSheetRow(EvolutionSheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range volumes.Rows {
		cells := make([]interface{}, 0, 13)
		cells = append(cells, row.Year)
		for _, n := range row.Months {
			cells = append(cells, n)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(EvolutionSheet, cell, &cells); err != nil {
			return err
		}
	}

	return addEvolutionChart(f, volumes)
}

// addEvolutionChart embeds a line chart, one series per year, months as
// categories.
func addEvolutionChart(f *excelize.File, volumes VolumeTable) error {
	series := make([]excelize.ChartSeries, 0, len(volumes.Rows))
	for i := range volumes.Rows {
		row := i + 2
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("'%s'!$A$%d", EvolutionSheet, row),
			Categories: fmt.Sprintf("'%s'!$B$1:$M$1", EvolutionSheet),
			Values:     fmt.Sprintf("'%s'!$B$%d:$M$%d", EvolutionSheet, row, row),
			Marker:     excelize.ChartMarker{Symbol: "circle"},
		})
	}

	anchor, err := excelize.CoordinatesToCellName(1, len(volumes.Rows)+4)
	if err != nil {
		return err
	}
	return f.AddChart(EvolutionSheet, anchor, &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Évolution mensuelle du nombre de traitements"}},
	})
}
