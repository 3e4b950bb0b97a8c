package report

import (
	"math"

	"npaicli/pkg/contracts/domain"
)

// TotalRowLabel names the synthetic row summing mailed document types.
const TotalRowLabel = "TOTAL (3 types)"

// CostRow is one line of a cost table: a document type (or the synthetic
// total) with a cost per month and the annual total.
type CostRow struct {
	Label  string
	Months [12]float64
	Total  float64
}

// CostTable is the type × month cost breakdown for one year.
type CostTable struct {
	Year int
	Rows []CostRow
}

// VolumeRow counts all records of one year per month, regardless of type.
type VolumeRow struct {
	Year   int
	Months [12]int
}

// VolumeTable is the year × month processing volume.
type VolumeTable struct {
	Rows []VolumeRow
}

// BuildCostTable prices the records of one year. Only tariffed types get a
// row, in the fixed display order and only when the year has at least one
// such record. Each monthly cell is count × tariff rounded to 2 decimals;
// the annual total sums the 12 rounded cells and is rounded again. The
// closing TOTAL row adds up the mailed types.
func BuildCostTable(records []domain.NormalizedRecord, year int, tariffs domain.Tariffs) CostTable {
	counts := map[domain.DocType][12]int{}
	for _, rec := range records {
		if rec.Year != year {
			continue
		}
		if _, priced := tariffs[rec.TypeNorm]; !priced {
			continue
		}
		months := counts[rec.TypeNorm]
		months[rec.Month-1]++
		counts[rec.TypeNorm] = months
	}

	table := CostTable{Year: year}
	for _, typ := range domain.DisplayOrder {
		months, ok := counts[typ]
		if !ok {
			continue
		}
		row := CostRow{Label: string(typ)}
		for m := 0; m < 12; m++ {
			row.Months[m] = round2(float64(months[m]) * tariffs[typ])
			row.Total += row.Months[m]
		}
		row.Total = round2(row.Total)
		table.Rows = append(table.Rows, row)
	}

	total := CostRow{Label: TotalRowLabel}
	found := false
	for _, row := range table.Rows {
		for _, typ := range domain.MailedTypes {
			if row.Label == string(typ) {
				for m := 0; m < 12; m++ {
					total.Months[m] += row.Months[m]
				}
				total.Total += row.Total
				found = true
			}
		}
	}
	if found {
		total.Total = round2(total.Total)
		table.Rows = append(table.Rows, total)
	}
	return table
}

// BuildVolumeTable counts every record per year and month, one row per
// requested year, zero-filled where nothing happened.
func BuildVolumeTable(records []domain.NormalizedRecord, years []int) VolumeTable {
	byYear := map[int]*VolumeRow{}
	table := VolumeTable{Rows: make([]VolumeRow, len(years))}
	for i, y := range years {
		table.Rows[i] = VolumeRow{Year: y}
		byYear[y] = &table.Rows[i]
	}
	for _, rec := range records {
		if row, ok := byYear[rec.Year]; ok {
			row.Months[rec.Month-1]++
		}
	}
	return table
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
