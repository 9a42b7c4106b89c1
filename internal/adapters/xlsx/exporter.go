package xlsx

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"park_reviews/internal/domain"
)

const FileName = "park_reviews_report.xlsx"

const (
	sheetSummary  = "Summary"
	sheetBranch   = "By Park"
	sheetYear     = "By Park and Year"
	sheetLocation = "By Park and Location"
	sheetCounts   = "Counts by Park and Location"
)

// Exporter writes aggregate reports as Excel workbooks.
type Exporter struct{ dir string }

func New(dir string) *Exporter { return &Exporter{dir: dir} }

func (e *Exporter) Export(r domain.Report) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return "", err
	}
	for _, name := range []string{sheetBranch, sheetYear, sheetLocation, sheetCounts} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	if err := writeRows(f, sheetSummary, []string{"Metric", "Value"}, summaryRows(r.Summary)); err != nil {
		return "", err
	}
	if err := writeRows(f, sheetBranch, []string{"Park", "Average Rating", "Reviews"}, branchRows(r.ByBranch)); err != nil {
		return "", err
	}
	if err := writeRows(f, sheetYear, []string{"Park", "Year", "Average Rating", "Reviews"}, yearRows(r.ByBranchYear)); err != nil {
		return "", err
	}
	if err := writeRows(f, sheetLocation, []string{"Park", "Location", "Average Rating", "Reviews"}, locationRows(r)); err != nil {
		return "", err
	}
	if err := writeRows(f, sheetCounts, []string{"Park", "Location", "Reviews"}, countRows(r.CountsByBranchLocation)); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("export dir: %w", err)
	}
	path := filepath.Join(e.dir, FileName)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	log.Info().Str("path", path).Msg("report exported")
	return path, nil
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]any) error {
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func summaryRows(s domain.Summary) [][]any {
	rows := [][]any{
		{"Total reviews", s.TotalReviews},
		{"Parks", strings.Join(s.Branches, ", ")},
		{"Lowest rating", s.MinRating},
		{"Highest rating", s.MaxRating},
	}
	if s.FirstYear != 0 {
		rows = append(rows, []any{"Years covered", fmt.Sprintf("%d - %d", s.FirstYear, s.LastYear)})
	}
	return rows
}

func branchRows(in []domain.BranchAverage) [][]any {
	out := make([][]any, 0, len(in))
	for _, b := range in {
		out = append(out, []any{b.Branch, round2(b.Average), b.Count})
	}
	return out
}

func yearRows(in []domain.BranchYearAverages) [][]any {
	var out [][]any
	for _, b := range in {
		for _, y := range b.Years {
			out = append(out, []any{b.Branch, y.Year, round2(y.Average), y.Count})
		}
	}
	return out
}

func locationRows(r domain.Report) [][]any {
	out := make([][]any, 0, len(r.ByBranchLocation))
	for _, l := range r.ByBranchLocation {
		out = append(out, []any{l.Branch, l.Location, round2(l.Average), l.Count})
	}
	return out
}

func countRows(in []domain.BranchLocationCounts) [][]any {
	var out [][]any
	for _, b := range in {
		for _, l := range b.Locations {
			out = append(out, []any{b.Branch, l.Location, l.Count})
		}
	}
	return out
}
