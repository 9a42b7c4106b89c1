package tui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"park_reviews/internal/domain"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	titleColor   = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
)

func avg(v float64) string { return fmt.Sprintf("%.2f", v) }

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w)
	titleColor.Fprintln(w, s)
}

func ShowError(w io.Writer, msg string) {
	errorColor.Fprintf(w, "\n[ERROR] %s\n", msg)
}

func ShowWarning(w io.Writer, msg string) {
	warnColor.Fprintf(w, "\n[WARNING] %s\n", msg)
}

func showInfo(w io.Writer, msg string) {
	okColor.Fprintln(w, msg)
}

func printWelcome(w io.Writer) {
	line := strings.Repeat("=", 60)
	headingColor.Fprintln(w, line)
	headingColor.Fprintln(w, "        Theme Park Reviews Explorer")
	headingColor.Fprintln(w, line)
	fmt.Fprintln(w, "Explore park reviews: summaries, averages and charts.")
}

func printGoodbye(w io.Writer) {
	fmt.Fprintln(w)
	okColor.Fprintln(w, "Thank you for using the Theme Park Reviews Explorer. Goodbye!")
}

// ShowLoadReport prints how many rows were read, kept and skipped.
func ShowLoadReport(w io.Writer, rep domain.LoadReport) {
	fmt.Fprintf(w, "Loaded %d reviews from %s (%d rows read).\n", len(rep.Reviews), rep.Source, rep.RowsRead)
	if rep.SkippedTotal() == 0 {
		return
	}
	parts := make([]string, 0, len(rep.Skipped))
	for _, r := range []domain.SkipReason{domain.SkipBadRating, domain.SkipMissingBranch, domain.SkipShortRow, domain.SkipParseError} {
		if n := rep.Skipped[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", r, n))
		}
	}
	ShowWarning(w, fmt.Sprintf("%d malformed rows skipped (%s).", rep.SkippedTotal(), strings.Join(parts, ", ")))
}

func showSummary(w io.Writer, s domain.Summary) {
	title(w, "Dataset summary")
	t := newTable(w, "Metric", "Value")
	t.Append([]string{"Total reviews", strconv.Itoa(s.TotalReviews)})
	t.Append([]string{"Parks", strconv.Itoa(len(s.Branches))})
	for _, b := range s.Branches {
		t.Append([]string{"", b})
	}
	if s.TotalReviews > 0 {
		t.Append([]string{"Rating range", fmt.Sprintf("%d - %d", s.MinRating, s.MaxRating)})
	}
	if s.FirstYear != 0 {
		t.Append([]string{"Years covered", fmt.Sprintf("%d - %d", s.FirstYear, s.LastYear)})
	}
	t.Render()
}

func showAverageByBranch(w io.Writer, rows []domain.BranchAverage) {
	title(w, "Average rating by park")
	if len(rows) == 0 {
		fmt.Fprintln(w, "No rating information available.")
		return
	}
	t := newTable(w, "Park", "Average Rating", "Reviews")
	for _, r := range rows {
		t.Append([]string{r.Branch, avg(r.Average), strconv.Itoa(r.Count)})
	}
	t.Render()
}

func showAverageByMonth(w io.Writer, branch string, rows []domain.MonthAverage) {
	title(w, "Average rating by month for "+branch)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No monthly rating information available.")
		return
	}
	t := newTable(w, "Month", "Average Rating", "Reviews")
	for _, r := range rows {
		t.Append([]string{r.Month.String(), avg(r.Average), strconv.Itoa(r.Count)})
	}
	t.Render()
}

func showTopLocations(w io.Writer, branch string, rows []domain.LocationCount) {
	title(w, "Top reviewer locations for "+branch)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No location data available.")
		return
	}
	t := newTable(w, "#", "Location", "Reviews")
	for i, r := range rows {
		t.Append([]string{strconv.Itoa(i + 1), r.Location, strconv.Itoa(r.Count)})
	}
	t.Render()
}

func showCountsByBranchAndLocation(w io.Writer, rows []domain.BranchLocationCounts) {
	title(w, "Number of reviews by park and reviewer location")
	if len(rows) == 0 {
		fmt.Fprintln(w, "No review counts available.")
		return
	}
	for _, b := range rows {
		headingColor.Fprintf(w, "\nPark: %s\n", b.Branch)
		t := newTable(w, "Location", "Reviews")
		for _, l := range b.Locations {
			t.Append([]string{l.Location, strconv.Itoa(l.Count)})
		}
		t.Render()
	}
}

func showAverageByBranchAndYear(w io.Writer, rows []domain.BranchYearAverages) {
	title(w, "Average score per year by park")
	if len(rows) == 0 {
		fmt.Fprintln(w, "No average score data available.")
		return
	}
	for _, b := range rows {
		headingColor.Fprintf(w, "\nPark: %s\n", b.Branch)
		if len(b.Years) == 0 {
			fmt.Fprintln(w, "No dated reviews.")
			continue
		}
		t := newTable(w, "Year", "Average Rating", "Reviews")
		for _, y := range b.Years {
			t.Append([]string{strconv.Itoa(y.Year), avg(y.Average), strconv.Itoa(y.Count)})
		}
		t.Render()
	}
}

func showAverageByBranchAndLocation(w io.Writer, rows []domain.BranchLocationAverage) {
	title(w, "Average score per park by reviewer location")
	if len(rows) == 0 {
		fmt.Fprintln(w, "No data available.")
		return
	}
	t := newTable(w, "Park", "Location", "Average Rating", "Reviews")
	for _, r := range rows {
		t.Append([]string{r.Branch, r.Location, avg(r.Average), strconv.Itoa(r.Count)})
	}
	t.Render()
}
