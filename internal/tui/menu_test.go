package tui_test

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"park_reviews/internal/app"
	"park_reviews/internal/domain"
	"park_reviews/internal/tui"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type chartCall struct {
	kind string
	name string
	s    domain.Series
}

type fakeCharts struct {
	calls []chartCall
	err   error
}

func (f *fakeCharts) Bar(name string, s domain.Series) (string, error) {
	f.calls = append(f.calls, chartCall{"bar", name, s})
	if f.err != nil {
		return "", f.err
	}
	if len(s.Values) == 0 {
		return "", domain.ErrNoChartData
	}
	return "charts/" + name + ".png", nil
}

func (f *fakeCharts) Line(name string, s domain.Series) (string, error) {
	f.calls = append(f.calls, chartCall{"line", name, s})
	if len(s.Values) == 0 {
		return "", domain.ErrNoChartData
	}
	return "charts/" + name + ".png", f.err
}

type fakeExporter struct {
	got *domain.Report
	err error
}

func (f *fakeExporter) Export(r domain.Report) (string, error) {
	f.got = &r
	return "out/report.xlsx", f.err
}

func ym(y int, m time.Month) domain.YearMonth { return domain.YearMonth{Year: y, Month: m} }

func queries() *app.QueryService {
	return app.NewQueryService([]domain.Review{
		{Rating: 5, YearMonth: ym(2019, 4), Location: "France", Branch: "Paris"},
		{Rating: 3, YearMonth: ym(2019, 5), Location: "France", Branch: "Paris"},
		{Rating: 4, YearMonth: ym(2018, 1), Location: "Belgium", Branch: "Paris"},
		{Rating: 2, Location: "United States", Branch: "California"},
	})
}

type harness struct {
	out    *bytes.Buffer
	charts *fakeCharts
	export *fakeExporter
}

func run(t *testing.T, input string) harness {
	t.Helper()
	h := harness{out: &bytes.Buffer{}, charts: &fakeCharts{}, export: &fakeExporter{}}
	return runWith(t, h, input)
}

func runWith(t *testing.T, h harness, input string) harness {
	t.Helper()
	m := tui.New(strings.NewReader(input), h.out, queries(), h.charts, h.export, 2)
	if err := m.Run(); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	return h
}

func TestMenu_ExitWords(t *testing.T) {
	for _, in := range []string{"0\n", "x\n", "Q\n", "exit\n", ""} {
		h := run(t, in)
		if !strings.Contains(h.out.String(), "Goodbye") {
			t.Fatalf("input %q: expected goodbye, got:\n%s", in, h.out.String())
		}
	}
}

func TestMenu_InvalidChoiceReprompts(t *testing.T) {
	h := run(t, "99\n2\n0\n")
	out := h.out.String()
	if !strings.Contains(out, `"99" is not a valid menu option`) {
		t.Fatalf("missing invalid-choice message:\n%s", out)
	}
	if !strings.Contains(out, "4.00") {
		t.Fatalf("second choice was not served:\n%s", out)
	}
}

func TestMenu_OverlongLineIsReported(t *testing.T) {
	out := run(t, strings.Repeat("a", 70*1024)+"\n2\n0\n").out.String()
	if !strings.Contains(out, "[ERROR] Input too long") {
		t.Fatalf("missing too-long message:\n%s", out[len(out)-min(len(out), 2000):])
	}
	if !strings.Contains(out, "4.00") {
		t.Fatalf("menu should continue after a long line")
	}
}

func TestMenu_OverlongLineInPromptReprompts(t *testing.T) {
	out := run(t, "3\n"+strings.Repeat("p", 5000)+"\n2\n0\n").out.String()
	if !strings.Contains(out, "Input too long") || !strings.Contains(out, "2019-04") {
		t.Fatalf("expected reprompt then result")
	}
}

func TestMenu_LastLineWithoutNewline(t *testing.T) {
	out := run(t, "2").out.String()
	if !strings.Contains(out, "4.00") || !strings.Contains(out, "Goodbye") {
		t.Fatalf("unterminated final choice should be served:\n%s", out)
	}
}

func TestMenu_AverageByMonthByNumber(t *testing.T) {
	// parks are listed sorted: 1. California 2. Paris
	out := run(t, "3\n2\n0\n").out.String()
	i, j := strings.Index(out, "2018-01"), strings.Index(out, "2019-05")
	if i < 0 || j < 0 || i > j {
		t.Fatalf("months missing or out of order:\n%s", out)
	}
}

func TestMenu_BranchOutOfRangeReprompts(t *testing.T) {
	out := run(t, "3\n7\n2\n0\n").out.String()
	if !strings.Contains(out, "not in the list of parks") || !strings.Contains(out, "2019-04") {
		t.Fatalf("expected reprompt then result:\n%s", out)
	}
}

func TestMenu_TopLocationsFreeTextAndDefaultN(t *testing.T) {
	out := run(t, "4\nparis\n\n0\n").out.String()
	if !strings.Contains(out, "Top reviewer locations for Paris") {
		t.Fatalf("case-insensitive park name not resolved:\n%s", out)
	}
	if !strings.Contains(out, "France") || !strings.Contains(out, "Belgium") {
		t.Fatalf("expected both locations:\n%s", out)
	}
}

func TestMenu_TopLocationsUnknownBranchIsEmpty(t *testing.T) {
	out := run(t, "4\nAtlantis\n3\n0\n").out.String()
	if !strings.Contains(out, "No location data available.") {
		t.Fatalf("expected empty result:\n%s", out)
	}
}

func TestMenu_TopNInvalidCancels(t *testing.T) {
	for _, n := range []string{"abc", "0", "-2"} {
		out := run(t, "4\n2\n"+n+"\n0\n").out.String()
		if !strings.Contains(out, "[ERROR]") || strings.Contains(out, "Top reviewer locations for Paris") {
			t.Fatalf("n=%q: expected cancelled prompt:\n%s", n, out)
		}
	}
}

func TestMenu_EmptyBranchCancels(t *testing.T) {
	h := run(t, "9\n\n0\n")
	if len(h.charts.calls) != 0 {
		t.Fatalf("cancelled prompt should not draw, got %+v", h.charts.calls)
	}
}

func TestMenu_Charts(t *testing.T) {
	h := run(t, "8\n9\n2\n10\n2\n1\n11\n2\n\n12\n2\n0\n")
	if len(h.charts.calls) != 5 {
		t.Fatalf("expected 5 charts, got %d", len(h.charts.calls))
	}
	byPark := h.charts.calls[0]
	if byPark.kind != "bar" || len(byPark.s.Labels) != 2 || byPark.s.Labels[0] != "California" {
		t.Fatalf("unexpected by-park chart %+v", byPark)
	}
	if h.charts.calls[1].kind != "line" || len(h.charts.calls[1].s.Values) != 3 {
		t.Fatalf("unexpected month chart %+v", h.charts.calls[1])
	}
	if top := h.charts.calls[2]; len(top.s.Values) != 1 || top.s.Labels[0] != "France" || top.s.Values[0] != 2 {
		t.Fatalf("unexpected top locations chart %+v", top)
	}
	if cal := h.charts.calls[4]; cal.s.Labels[0] != "Jan" {
		t.Fatalf("unexpected calendar chart %+v", cal)
	}
	if !strings.Contains(h.out.String(), "Chart saved to charts/average_rating_by_park.png") {
		t.Fatalf("missing chart path:\n%s", h.out.String())
	}
}

func TestMenu_ChartFailureIsWarning(t *testing.T) {
	h := harness{out: &bytes.Buffer{}, charts: &fakeCharts{err: errors.New("disk full")}, export: &fakeExporter{}}
	out := runWith(t, h, "8\n2\n0\n").out.String()
	if !strings.Contains(out, "[WARNING] Chart could not be created: disk full") {
		t.Fatalf("expected warning:\n%s", out)
	}
	if strings.Contains(out, "[ERROR]") {
		t.Fatalf("chart failure must not be an error:\n%s", out)
	}
	if !strings.Contains(out, "4.00") {
		t.Fatalf("loop should continue after chart failure:\n%s", out)
	}
}

func TestMenu_ChartNoData(t *testing.T) {
	// California has no dated reviews
	out := run(t, "9\n1\n0\n").out.String()
	if !strings.Contains(out, "No data available to plot") {
		t.Fatalf("expected no-data warning:\n%s", out)
	}
}

func TestMenu_Export(t *testing.T) {
	h := run(t, "13\n0\n")
	if h.export.got == nil || h.export.got.Summary.TotalReviews != 4 || len(h.export.got.ByBranch) != 2 {
		t.Fatalf("unexpected exported report %+v", h.export.got)
	}
	if !strings.Contains(h.out.String(), "Report written to out/report.xlsx") {
		t.Fatalf("missing export path:\n%s", h.out.String())
	}
}

func TestMenu_ExportFailureIsReported(t *testing.T) {
	h := harness{out: &bytes.Buffer{}, charts: &fakeCharts{}, export: &fakeExporter{err: errors.New("read-only")}}
	out := runWith(t, h, "13\n1\n0\n").out.String()
	if !strings.Contains(out, "[ERROR] export failed: read-only") || !strings.Contains(out, "Total reviews") {
		t.Fatalf("expected error then summary:\n%s", out)
	}
}

func TestMenu_TablesForWholeDataset(t *testing.T) {
	out := run(t, "1\n5\n6\n7\n0\n").out.String()
	for _, want := range []string{"Total reviews", "Park: Paris", "2019", "United States", "2.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestShowLoadReport(t *testing.T) {
	var buf bytes.Buffer
	tui.ShowLoadReport(&buf, domain.LoadReport{
		Source:   "csv",
		Reviews:  make([]domain.Review, 9),
		RowsRead: 10,
		Skipped:  map[domain.SkipReason]int{domain.SkipBadRating: 1},
	})
	if !strings.Contains(buf.String(), "Loaded 9 reviews from csv (10 rows read)") || !strings.Contains(buf.String(), "bad_rating=1") {
		t.Fatalf("unexpected load report:\n%s", buf.String())
	}
}
