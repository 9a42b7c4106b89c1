package charts

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"park_reviews/internal/adapters/observability"
	"park_reviews/internal/domain"
)

var (
	barColor  = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	lineColor = color.RGBA{R: 46, G: 139, B: 87, A: 255}
)

// Renderer writes PNG charts into a directory.
type Renderer struct {
	dir    string
	height vg.Length
}

func New(dir string) *Renderer {
	return &Renderer{dir: dir, height: 5 * vg.Inch}
}

func (r *Renderer) Bar(name string, s domain.Series) (string, error) {
	path, err := r.bar(name, s)
	observability.ObserveChart("bar", err)
	return path, err
}

func (r *Renderer) Line(name string, s domain.Series) (string, error) {
	path, err := r.line(name, s)
	observability.ObserveChart("line", err)
	return path, err
}

func (r *Renderer) bar(name string, s domain.Series) (string, error) {
	if err := check(s); err != nil {
		return "", err
	}
	p := newPlot(s)

	bars, err := plotter.NewBarChart(plotter.Values(s.Values), vg.Points(24))
	if err != nil {
		return "", fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(s.Labels...)

	return r.save(p, name, len(s.Values))
}

func (r *Renderer) line(name string, s domain.Series) (string, error) {
	if err := check(s); err != nil {
		return "", err
	}
	p := newPlot(s)

	pts := make(plotter.XYs, len(s.Values))
	for i, v := range s.Values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	l, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return "", fmt.Errorf("line chart: %w", err)
	}
	l.Color = lineColor
	l.Width = vg.Points(2)
	points.Shape = draw.CircleGlyph{}
	points.Color = lineColor
	points.Radius = vg.Points(2.5)

	p.Add(plotter.NewGrid(), l, points)
	p.NominalX(s.Labels...)

	return r.save(p, name, len(s.Values))
}

func check(s domain.Series) error {
	if len(s.Values) == 0 {
		return domain.ErrNoChartData
	}
	if len(s.Labels) != len(s.Values) {
		return fmt.Errorf("chart %q: %d labels for %d values", s.Title, len(s.Labels), len(s.Values))
	}
	return nil
}

func newPlot(s domain.Series) *plot.Plot {
	p := plot.New()
	p.Title.Text = s.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
	p.Y.Min = 0

	// long category names
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p
}

func (r *Renderer) save(p *plot.Plot, name string, n int) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("chart dir: %w", err)
	}
	width := vg.Length(math.Max(8, 0.35*float64(n))) * vg.Inch
	path := filepath.Join(r.dir, fileName(name)+".png")
	if err := p.Save(width, r.height, path); err != nil {
		return "", fmt.Errorf("save chart: %w", err)
	}
	log.Info().Str("path", path).Int("points", n).Msg("chart written")
	return path, nil
}

func fileName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		return "chart"
	}
	return name
}
