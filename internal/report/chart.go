package report

import (
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveChart renders the volume table as a PNG line chart, one line per
// year across the 12 month labels.
func SaveChart(path string, volumes VolumeTable, monthLabels []string) error {
	p := plot.New()
	p.Title.Text = "Évolution mensuelle du nombre de traitements"
	p.X.Label.Text = "Mois"
	p.Y.Label.Text = "Nombre de traitements"
	p.NominalX(monthLabels...)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	args := make([]interface{}, 0, 2*len(volumes.Rows))
	for _, row := range volumes.Rows {
		pts := make(plotter.XYs, len(row.Months))
		for m, n := range row.Months {
			pts[m].X = float64(m)
			pts[m].Y = float64(n)
		}
		args = append(args, strconv.Itoa(row.Year), pts)
	}
	if err := plotutil.AddLinePoints(p, args...); err != nil {
		return fmt.Errorf("failed to build chart: %w", err)
	}

	if err := p.Save(11*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}
