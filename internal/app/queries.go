package app

import (
	"sort"
	"time"

	"park_reviews/internal/domain"
)

// QueryService answers aggregate questions over the loaded review collection.
// The collection is never modified; every call regroups it from scratch.
type QueryService struct {
	reviews []domain.Review
}

func NewQueryService(reviews []domain.Review) *QueryService {
	return &QueryService{reviews: reviews}
}

func (s *QueryService) Len() int { return len(s.reviews) }

/********** grouping helpers **********/

type ratingAcc struct {
	sum int
	n   int
}

func (a *ratingAcc) add(rating int) {
	a.sum += rating
	a.n++
}

func (a *ratingAcc) mean() float64 {
	if a.n == 0 {
		return 0
	}
	return float64(a.sum) / float64(a.n)
}

// groupRatings accumulates ratings per key and returns the keys in first-seen order.
// Reviews for which key reports false are left out.
func groupRatings[K comparable](rs []domain.Review, key func(domain.Review) (K, bool)) ([]K, map[K]*ratingAcc) {
	var order []K
	acc := make(map[K]*ratingAcc)
	for _, r := range rs {
		k, ok := key(r)
		if !ok {
			continue
		}
		a, seen := acc[k]
		if !seen {
			a = &ratingAcc{}
			acc[k] = a
			order = append(order, k)
		}
		a.add(r.Rating)
	}
	return order, acc
}

func (s *QueryService) forBranch(branch string) []domain.Review {
	var out []domain.Review
	for _, r := range s.reviews {
		if r.Branch == branch {
			out = append(out, r)
		}
	}
	return out
}

func countLocations(rs []domain.Review) []domain.LocationCount {
	keys, acc := groupRatings(rs, func(r domain.Review) (string, bool) { return r.Location, true })
	out := make([]domain.LocationCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.LocationCount{Location: k, Count: acc[k].n})
	}
	return out
}

/********** core aggregates **********/

// AverageByBranch returns the mean rating per branch ordered by branch name.
func (s *QueryService) AverageByBranch() []domain.BranchAverage {
	keys, acc := groupRatings(s.reviews, func(r domain.Review) (string, bool) { return r.Branch, true })
	sort.Strings(keys)
	out := make([]domain.BranchAverage, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.BranchAverage{Branch: k, Average: acc[k].mean(), Count: acc[k].n})
	}
	return out
}

// AverageByMonth returns the mean rating per year-month for one branch in
// chronological order. Reviews without a year-month are left out.
func (s *QueryService) AverageByMonth(branch string) []domain.MonthAverage {
	keys, acc := groupRatings(s.forBranch(branch), func(r domain.Review) (domain.YearMonth, bool) {
		return r.YearMonth, !r.YearMonth.IsZero()
	})
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	out := make([]domain.MonthAverage, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.MonthAverage{Month: k, Average: acc[k].mean(), Count: acc[k].n})
	}
	return out
}

// TopLocations returns up to n reviewer locations for branch, most frequent first.
// Equal counts keep the order in which the locations first appear.
func (s *QueryService) TopLocations(branch string, n int) []domain.LocationCount {
	if n <= 0 {
		return nil
	}
	counts := countLocations(s.forBranch(branch))
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

/********** supplementary aggregates **********/

func (s *QueryService) Branches() []string {
	keys, _ := groupRatings(s.reviews, func(r domain.Review) (string, bool) { return r.Branch, true })
	sort.Strings(keys)
	return keys
}

func (s *QueryService) Summary() domain.Summary {
	sum := domain.Summary{TotalReviews: len(s.reviews), Branches: s.Branches()}
	for i, r := range s.reviews {
		if i == 0 || r.Rating < sum.MinRating {
			sum.MinRating = r.Rating
		}
		if i == 0 || r.Rating > sum.MaxRating {
			sum.MaxRating = r.Rating
		}
		if r.YearMonth.IsZero() {
			continue
		}
		y := r.YearMonth.Year
		if sum.FirstYear == 0 || y < sum.FirstYear {
			sum.FirstYear = y
		}
		if y > sum.LastYear {
			sum.LastYear = y
		}
	}
	return sum
}

// CountsByBranchAndLocation lists, per branch, how many reviews came from each
// reviewer location (most frequent first, then by name).
func (s *QueryService) CountsByBranchAndLocation() []domain.BranchLocationCounts {
	branches := s.Branches()
	out := make([]domain.BranchLocationCounts, 0, len(branches))
	for _, b := range branches {
		counts := countLocations(s.forBranch(b))
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].Count != counts[j].Count {
				return counts[i].Count > counts[j].Count
			}
			return counts[i].Location < counts[j].Location
		})
		out = append(out, domain.BranchLocationCounts{Branch: b, Locations: counts})
	}
	return out
}

func (s *QueryService) AverageByBranchAndYear() []domain.BranchYearAverages {
	branches := s.Branches()
	out := make([]domain.BranchYearAverages, 0, len(branches))
	for _, b := range branches {
		years, acc := groupRatings(s.forBranch(b), func(r domain.Review) (int, bool) {
			return r.YearMonth.Year, !r.YearMonth.IsZero()
		})
		sort.Ints(years)
		ya := make([]domain.YearAverage, 0, len(years))
		for _, y := range years {
			ya = append(ya, domain.YearAverage{Year: y, Average: acc[y].mean(), Count: acc[y].n})
		}
		out = append(out, domain.BranchYearAverages{Branch: b, Years: ya})
	}
	return out
}

// AverageByBranchAndLocation returns one row per (branch, location), sorted by
// branch then location.
func (s *QueryService) AverageByBranchAndLocation() []domain.BranchLocationAverage {
	type bl struct{ branch, location string }
	keys, acc := groupRatings(s.reviews, func(r domain.Review) (bl, bool) { return bl{r.Branch, r.Location}, true })
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].branch != keys[j].branch {
			return keys[i].branch < keys[j].branch
		}
		return keys[i].location < keys[j].location
	})
	out := make([]domain.BranchLocationAverage, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.BranchLocationAverage{
			Branch: k.branch, Location: k.location, Average: acc[k].mean(), Count: acc[k].n,
		})
	}
	return out
}

// AverageByLocation ranks reviewer locations of one branch by mean rating
// (highest first, then by name) and keeps the first n.
func (s *QueryService) AverageByLocation(branch string, n int) []domain.LocationAverage {
	if n <= 0 {
		return nil
	}
	keys, acc := groupRatings(s.forBranch(branch), func(r domain.Review) (string, bool) { return r.Location, true })
	out := make([]domain.LocationAverage, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.LocationAverage{Location: k, Average: acc[k].mean(), Count: acc[k].n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Location < out[j].Location
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// AverageByCalendarMonth combines all years: January..December, months without
// reviews omitted.
func (s *QueryService) AverageByCalendarMonth(branch string) []domain.CalendarMonthAverage {
	_, acc := groupRatings(s.forBranch(branch), func(r domain.Review) (time.Month, bool) {
		return r.YearMonth.Month, !r.YearMonth.IsZero()
	})
	var out []domain.CalendarMonthAverage
	for m := time.January; m <= time.December; m++ {
		if a, ok := acc[m]; ok {
			out = append(out, domain.CalendarMonthAverage{Month: m, Average: a.mean(), Count: a.n})
		}
	}
	return out
}

func (s *QueryService) Report() domain.Report {
	return domain.Report{
		Summary:                s.Summary(),
		ByBranch:               s.AverageByBranch(),
		ByBranchYear:           s.AverageByBranchAndYear(),
		ByBranchLocation:       s.AverageByBranchAndLocation(),
		CountsByBranchLocation: s.CountsByBranchAndLocation(),
	}
}
