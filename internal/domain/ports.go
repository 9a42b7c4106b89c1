package domain

import (
	"context"
	"errors"
)

var (
	ErrSourceNotFound = errors.New("review source not found")
	ErrBadHeader      = errors.New("review source header is missing required columns")
	ErrNoReviews      = errors.New("no reviews were loaded")
	ErrNoChartData    = errors.New("no data available to plot")
)

// ReviewSource produces the full review collection once at startup.
type ReviewSource interface {
	LoadReviews(ctx context.Context) (LoadReport, error)
}

// ReviewSink persists reviews; used by the importer.
type ReviewSink interface {
	UpsertReviews(ctx context.Context, rs []Review) error
}

// Series is one labelled chart input.
type Series struct {
	Title  string
	XLabel string
	YLabel string
	Labels []string
	Values []float64
}

type ChartRenderer interface {
	// Bar and Line return the path of the written chart.
	Bar(name string, s Series) (string, error)
	Line(name string, s Series) (string, error)
}

type ReportExporter interface {
	Export(r Report) (string, error)
}
