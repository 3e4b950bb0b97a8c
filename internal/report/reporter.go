package report

import (
	"context"
	"log/slog"

	"npaicli/internal/config"
	"npaicli/pkg/contracts/domain"
)

// Reporter produces the cost & volume report from the two year datasets.
type Reporter struct {
	cfg    config.ReportConfig
	paths  config.PathsConfig
	logger *slog.Logger
}

// New builds a reporter from configuration.
func New(cfg config.ReportConfig, paths config.PathsConfig, logger *slog.Logger) *Reporter {
	return &Reporter{cfg: cfg, paths: paths, logger: logger}
}

// Run loads both year datasets, builds the per-year cost tables and the
// volume table, writes the report workbook and, when a chart path is
// configured, the PNG chart.
func (r *Reporter) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	one, err := LoadDataset(r.cfg.YearOneFile, r.cfg.YearOneSheet)
	if err != nil {
		return err
	}
	two, err := LoadDataset(r.cfg.YearTwoFile, r.cfg.YearTwoSheet)
	if err != nil {
		return err
	}
	r.logger.Info("datasets loaded",
		slog.Int("records_year_one_file", len(one)),
		slog.Int("records_year_two_file", len(two)))

	// Each record classifies by its own date, so both files feed one pool.
	records := append(one, two...)

	tariffs := domain.Tariffs{}
	for typ, price := range r.cfg.Tariffs {
		tariffs[domain.DocType(typ)] = price
	}

	costs := []CostTable{
		BuildCostTable(records, r.cfg.YearOne, tariffs),
		BuildCostTable(records, r.cfg.YearTwo, tariffs),
	}
	volumes := BuildVolumeTable(records, []int{r.cfg.YearOne, r.cfg.YearTwo})

	if err := WriteWorkbook(r.paths.CostReportFile, costs, volumes, r.cfg.MonthLabels, r.logger); err != nil {
		return err
	}

	if r.paths.ChartImage != "" {
		if err := SaveChart(r.paths.ChartImage, volumes, r.cfg.MonthLabels); err != nil {
			return err
		}
		r.logger.Info("volume chart written", slog.String("file", r.paths.ChartImage))
	}
	return nil
}
