// Package tui is the interactive text menu. It owns all terminal input and
// output; aggregation lives in app and rendering of files in the adapters.
package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"park_reviews/internal/adapters/observability"
	"park_reviews/internal/app"
	"park_reviews/internal/domain"
)

var errExit = errors.New("exit requested")

type option struct {
	key   string
	label string
	run   func(*Menu) error
}

var options = []option{
	{"1", "Dataset summary", (*Menu).summary},
	{"2", "Average rating by park", (*Menu).averageByBranch},
	{"3", "Average rating by month for a park", (*Menu).averageByMonth},
	{"4", "Top reviewer locations for a park", (*Menu).topLocations},
	{"5", "Number of reviews by park and reviewer location", (*Menu).countsByBranchAndLocation},
	{"6", "Average score per year by park", (*Menu).averageByBranchAndYear},
	{"7", "Average score per park by reviewer location", (*Menu).averageByBranchAndLocation},
	{"8", "Chart: average rating by park", (*Menu).chartByBranch},
	{"9", "Chart: average rating by month for a park", (*Menu).chartByMonth},
	{"10", "Chart: top reviewer locations for a park", (*Menu).chartTopLocations},
	{"11", "Chart: reviewer locations by average rating", (*Menu).chartLocationsByAverage},
	{"12", "Chart: average rating by calendar month", (*Menu).chartCalendarMonth},
	{"13", "Export report workbook (.xlsx)", (*Menu).exportReport},
	{"0", "Exit", func(*Menu) error { return errExit }},
}

func isExit(choice string) bool {
	switch strings.ToLower(choice) {
	case "0", "x", "q", "exit":
		return true
	}
	return false
}

type Menu struct {
	in       *bufio.Reader
	out      io.Writer
	q        *app.QueryService
	charts   domain.ChartRenderer
	exporter domain.ReportExporter
	topN     int
	eof      bool
}

func New(in io.Reader, out io.Writer, q *app.QueryService, charts domain.ChartRenderer, exp domain.ReportExporter, topN int) *Menu {
	if topN <= 0 {
		topN = 10
	}
	return &Menu{
		in:       bufio.NewReader(in),
		out:      out,
		q:        q,
		charts:   charts,
		exporter: exp,
		topN:     topN,
	}
}

// Run blocks on input until the user exits or input ends.
func (m *Menu) Run() error {
	printWelcome(m.out)
	for {
		m.printOptions()
		choice, ok := m.readLine("Enter your choice: ")
		if !ok || isExit(choice) {
			printGoodbye(m.out)
			return nil
		}

		opt, found := lookup(choice)
		if !found {
			ShowError(m.out, fmt.Sprintf("%q is not a valid menu option.", choice))
			observability.ObserveMenu("invalid", 0)
			continue
		}

		start := time.Now()
		err := opt.run(m)
		observability.ObserveMenu(opt.key, time.Since(start))
		if err != nil {
			log.Error().Str("option", opt.key).Err(err).Msg("menu option failed")
			ShowError(m.out, err.Error())
		}
		if m.eof {
			printGoodbye(m.out)
			return nil
		}
	}
}

func lookup(choice string) (option, bool) {
	for _, o := range options {
		if o.key == choice {
			return o, true
		}
	}
	return option{}, false
}

func (m *Menu) printOptions() {
	fmt.Fprintln(m.out)
	headingColor.Fprintln(m.out, "Please choose an option:")
	for _, o := range options {
		fmt.Fprintf(m.out, "[%2s] %s\n", o.key, o.label)
	}
}

func (m *Menu) summary() error {
	showSummary(m.out, m.q.Summary())
	return nil
}

func (m *Menu) averageByBranch() error {
	showAverageByBranch(m.out, m.q.AverageByBranch())
	return nil
}

func (m *Menu) averageByMonth() error {
	branch, ok := m.chooseBranch()
	if !ok {
		return nil
	}
	showAverageByMonth(m.out, branch, m.q.AverageByMonth(branch))
	return nil
}

func (m *Menu) topLocations() error {
	branch, ok := m.chooseBranch()
	if !ok {
		return nil
	}
	n, ok := m.chooseTopN()
	if !ok {
		return nil
	}
	showTopLocations(m.out, branch, m.q.TopLocations(branch, n))
	return nil
}

func (m *Menu) countsByBranchAndLocation() error {
	showCountsByBranchAndLocation(m.out, m.q.CountsByBranchAndLocation())
	return nil
}

func (m *Menu) averageByBranchAndYear() error {
	showAverageByBranchAndYear(m.out, m.q.AverageByBranchAndYear())
	return nil
}

func (m *Menu) averageByBranchAndLocation() error {
	showAverageByBranchAndLocation(m.out, m.q.AverageByBranchAndLocation())
	return nil
}

// plotted reports the outcome of a chart. Chart failures never fail the
// option; they are shown as warnings.
func (m *Menu) plotted(path string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNoChartData):
		ShowWarning(m.out, "No data available to plot for that selection.")
	case err != nil:
		log.Warn().Err(err).Msg("chart failed")
		ShowWarning(m.out, "Chart could not be created: "+err.Error())
	default:
		showInfo(m.out, "Chart saved to "+path)
	}
	return nil
}

func (m *Menu) chartByBranch() error {
	rows := m.q.AverageByBranch()
	s := domain.Series{Title: "Average rating by park", XLabel: "Park", YLabel: "Average rating"}
	for _, r := range rows {
		s.Labels = append(s.Labels, r.Branch)
		s.Values = append(s.Values, r.Average)
	}
	return m.plotted(m.charts.Bar("average_rating_by_park", s))
}

func (m *Menu) chartByMonth() error {
	branch, ok := m.chooseBranch()
	if !ok {
		return nil
	}
	s := domain.Series{Title: "Average rating by month: " + branch, XLabel: "Month", YLabel: "Average rating"}
	for _, r := range m.q.AverageByMonth(branch) {
		s.Labels = append(s.Labels, r.Month.String())
		s.Values = append(s.Values, r.Average)
	}
	return m.plotted(m.charts.Line("average_rating_by_month_"+branch, s))
}

func (m *Menu) chartTopLocations() error {
	branch, ok := m.chooseBranch()
	if !ok {
		return nil
	}
	n, ok := m.chooseTopN()
	if !ok {
		return nil
	}
	s := domain.Series{Title: fmt.Sprintf("Top %d reviewer locations: %s", n, branch), XLabel: "Location", YLabel: "Reviews"}
	for _, r := range m.q.TopLocations(branch, n) {
		s.Labels = append(s.Labels, r.Location)
		s.Values = append(s.Values, float64(r.Count))
	}
	return m.plotted(m.charts.Bar("top_locations_"+branch, s))
}

func (m *Menu) chartLocationsByAverage() error {
	branch, ok := m.chooseBranch()
	if !ok {
		return nil
	}
	n, ok := m.chooseTopN()
	if !ok {
		return nil
	}
	s := domain.Series{Title: fmt.Sprintf("Top %d locations by average rating: %s", n, branch), XLabel: "Location", YLabel: "Average rating"}
	for _, r := range m.q.AverageByLocation(branch, n) {
		s.Labels = append(s.Labels, r.Location)
		s.Values = append(s.Values, r.Average)
	}
	return m.plotted(m.charts.Bar("locations_by_average_"+branch, s))
}

func (m *Menu) chartCalendarMonth() error {
	branch, ok := m.chooseBranch()
	if !ok {
		return nil
	}
	s := domain.Series{Title: "Average rating by calendar month: " + branch, XLabel: "Month", YLabel: "Average rating"}
	for _, r := range m.q.AverageByCalendarMonth(branch) {
		s.Labels = append(s.Labels, r.Month.String()[:3])
		s.Values = append(s.Values, r.Average)
	}
	return m.plotted(m.charts.Bar("calendar_month_"+branch, s))
}

func (m *Menu) exportReport() error {
	path, err := m.exporter.Export(m.q.Report())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	showInfo(m.out, "Report written to "+path)
	return nil
}
