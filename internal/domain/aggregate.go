package domain

import "time"

// Aggregate read models. Every slice is returned already in display order.

type BranchAverage struct {
	Branch  string
	Average float64
	Count   int
}

type MonthAverage struct {
	Month   YearMonth
	Average float64
	Count   int
}

type CalendarMonthAverage struct {
	Month   time.Month
	Average float64
	Count   int
}

type YearAverage struct {
	Year    int
	Average float64
	Count   int
}

type LocationCount struct {
	Location string
	Count    int
}

type LocationAverage struct {
	Location string
	Average  float64
	Count    int
}

type BranchYearAverages struct {
	Branch string
	Years  []YearAverage
}

type BranchLocationCounts struct {
	Branch    string
	Locations []LocationCount
}

type BranchLocationAverage struct {
	Branch   string
	Location string
	Average  float64
	Count    int
}

type Summary struct {
	TotalReviews int
	Branches     []string
	MinRating    int
	MaxRating    int
	FirstYear    int // 0 when no review carries a year-month
	LastYear     int
}

// Report bundles the aggregates written by an exporter.
type Report struct {
	Summary                Summary
	ByBranch               []BranchAverage
	ByBranchYear           []BranchYearAverages
	ByBranchLocation       []BranchLocationAverage
	CountsByBranchLocation []BranchLocationCounts
}
