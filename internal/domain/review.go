package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnknownLocation replaces an empty Reviewer_Location.
const UnknownLocation = "Unknown"

type Review struct {
	ID        int64 // 0 when the source row had no usable Review_ID
	Rating    int   // 1..5
	YearMonth YearMonth
	Location  string
	Branch    string
	Seq       int64 // 1-based position in the source file; 0 when unknown
}

// YearMonth is a calendar month. The zero value means "missing".
type YearMonth struct {
	Year  int
	Month time.Month
}

func (ym YearMonth) IsZero() bool { return ym.Year == 0 && ym.Month == 0 }

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

func (ym YearMonth) String() string {
	if ym.IsZero() {
		return "missing"
	}
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// ParseYearMonth accepts "YYYY-M" and "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	y, m, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return YearMonth{}, fmt.Errorf("year-month %q: missing separator", s)
	}
	year, err := strconv.Atoi(y)
	if err != nil || year <= 0 {
		return YearMonth{}, fmt.Errorf("year-month %q: bad year", s)
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("year-month %q: bad month", s)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

// SkipReason labels why a source row was not turned into a Review.
type SkipReason string

const (
	SkipBadRating     SkipReason = "bad_rating"
	SkipMissingBranch SkipReason = "missing_branch"
	SkipShortRow      SkipReason = "short_row"
	SkipParseError    SkipReason = "parse_error"
)

// LoadReport is the outcome of reading a review source once.
type LoadReport struct {
	Source   string
	Reviews  []Review
	RowsRead int
	Skipped  map[SkipReason]int
}

func (r LoadReport) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}
