package csvsource

import (
	"strconv"
	"strings"

	"park_reviews/internal/domain"
)

/********** header alias registry (single source of truth) **********/

var columnAliases = map[string][]string{
	"id":        {"review_id", "id", "reviewid"},
	"rating":    {"rating", "score", "stars"},
	"yearmonth": {"year_month", "yearmonth", "date", "review_date"},
	"location":  {"reviewer_location", "location", "country"},
	"branch":    {"branch", "park"},
}

var requiredColumns = []string{"rating", "branch"}

// columnIndex maps logical column names to record positions; -1 means absent.
type columnIndex map[string]int

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func indexHeader(header []string) (columnIndex, []string) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := pos[normalizeHeader(h)]; !dup {
			pos[normalizeHeader(h)] = i
		}
	}
	idx := make(columnIndex, len(columnAliases))
	for logical, aliases := range columnAliases {
		idx[logical] = -1
		for _, a := range aliases {
			if i, ok := pos[a]; ok {
				idx[logical] = i
				break
			}
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if idx[c] < 0 {
			missing = append(missing, c)
		}
	}
	return idx, missing
}

// width is the minimum record length that covers every present column.
func (c columnIndex) width() int {
	w := 0
	for _, i := range c {
		if i+1 > w {
			w = i + 1
		}
	}
	return w
}

func (c columnIndex) field(rec []string, logical string) string {
	i := c[logical]
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

/********** record mapper **********/

// mapRecord turns one CSV record into a Review, or reports why it cannot.
func mapRecord(cols columnIndex, rec []string) (domain.Review, domain.SkipReason, bool) {
	if len(rec) < cols.width() {
		return domain.Review{}, domain.SkipShortRow, false
	}

	rating, err := strconv.Atoi(cols.field(rec, "rating"))
	if err != nil || rating < 1 || rating > 5 {
		return domain.Review{}, domain.SkipBadRating, false
	}

	branch := cols.field(rec, "branch")
	if branch == "" {
		return domain.Review{}, domain.SkipMissingBranch, false
	}

	rv := domain.Review{Rating: rating, Branch: branch}

	// Review_ID is informational; a bad one does not drop the row.
	if id, err := strconv.ParseInt(cols.field(rec, "id"), 10, 64); err == nil && id > 0 {
		rv.ID = id
	}

	// "missing" and other junk leave the zero month; the review is still kept.
	if ym, err := domain.ParseYearMonth(cols.field(rec, "yearmonth")); err == nil {
		rv.YearMonth = ym
	}

	rv.Location = cols.field(rec, "location")
	if rv.Location == "" {
		rv.Location = domain.UnknownLocation
	}
	return rv, "", true
}
