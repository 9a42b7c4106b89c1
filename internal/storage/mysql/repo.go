package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"park_reviews/internal/adapters/observability"
	"park_reviews/internal/domain"
)

func valID(id int64) any {
	if id <= 0 {
		return nil
	}
	return id
}

func valSeq(seq int64) any {
	if seq <= 0 {
		return nil
	}
	return seq
}

func valYear(ym domain.YearMonth) any {
	if ym.IsZero() {
		return nil
	}
	return ym.Year
}

func valMonth(ym domain.YearMonth) any {
	if ym.IsZero() {
		return nil
	}
	return int(ym.Month)
}

// Repo stores reviews in MySQL. It is the importer's sink and the explorer's
// alternative source.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*7) // 7 params per row
	for _, rv := range rs {
		values = append(values, "(?,?,?,?,?,?,?)")
		args = append(args,
			valID(rv.ID),          // review_id
			valSeq(rv.Seq),        // source_seq
			rv.Rating,             // rating
			valYear(rv.YearMonth), // year
			valMonth(rv.YearMonth),
			rv.Location,
			rv.Branch,
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	observability.ObserveImportBatch(err)
	return err
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countReviewsSQL).Scan(&n)
	return n, err
}

// LoadReviews reads the whole table. Rows that would not survive the CSV
// loader (rating outside 1..5, empty branch) are skipped the same way.
func (r *Repo) LoadReviews(ctx context.Context) (domain.LoadReport, error) {
	rep := domain.LoadReport{Source: "mysql", Skipped: map[domain.SkipReason]int{}}

	rows, err := r.db.QueryContext(ctx, listReviewsSQL)
	if err != nil {
		return rep, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reviewID    sql.NullInt64
			seq         sql.NullInt64
			rating      int
			year, month sql.NullInt64
			location    string
			branch      string
		)
		if err := rows.Scan(&reviewID, &seq, &rating, &year, &month, &location, &branch); err != nil {
			return rep, fmt.Errorf("scan review: %w", err)
		}
		rep.RowsRead++

		if rating < 1 || rating > 5 {
			rep.Skipped[domain.SkipBadRating]++
			continue
		}
		branch = strings.TrimSpace(branch)
		if branch == "" {
			rep.Skipped[domain.SkipMissingBranch]++
			continue
		}

		rv := domain.Review{Rating: rating, Branch: branch, Location: strings.TrimSpace(location)}
		if reviewID.Valid {
			rv.ID = reviewID.Int64
		}
		if seq.Valid {
			rv.Seq = seq.Int64
		}
		if year.Valid && month.Valid && month.Int64 >= 1 && month.Int64 <= 12 {
			rv.YearMonth = domain.YearMonth{Year: int(year.Int64), Month: time.Month(month.Int64)}
		}
		if rv.Location == "" {
			rv.Location = domain.UnknownLocation
		}
		rep.Reviews = append(rep.Reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return rep, fmt.Errorf("iterate reviews: %w", err)
	}

	observability.ObserveLoad("mysql", rep)
	log.Info().Int("reviews", len(rep.Reviews)).Int("skipped", rep.SkippedTotal()).Msg("mysql loaded")
	return rep, nil
}
