package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"park_reviews/internal/domain"
)

// ImportService copies a loaded review collection into a ReviewSink in
// batches, with bounded parallelism and an optional batch rate limit.
type ImportService struct {
	sink    domain.ReviewSink
	workers int
	batch   int
	rl      *rate.Limiter // nil: unlimited
}

type ImportResult struct {
	Batches int
	Reviews int
	Unkeyed int // reviews without a review id, not written
}

func NewImportService(sink domain.ReviewSink, workers, batch, rps int) *ImportService {
	if workers <= 0 {
		workers = 1
	}
	if batch <= 0 {
		batch = 500
	}
	s := &ImportService{sink: sink, workers: workers, batch: batch}
	if rps > 0 {
		s.rl = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return s
}

// Import writes every review that has a review id. Reviews without one are
// counted and left out: the upsert key is the review id, so writing them would
// duplicate them on every run. The first failing batch cancels the remaining
// ones and is returned; the result counts only batches that were written.
func (s *ImportService) Import(ctx context.Context, reviews []domain.Review) (ImportResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	keyed, unkeyed := withReviewID(reviews)
	if unkeyed > 0 {
		log.Warn().Int("reviews", unkeyed).Msg("reviews without review id skipped")
	}

	sem := semaphore.NewWeighted(int64(s.workers))
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		res      ImportResult
		firstErr error
	)
	res.Unkeyed = unkeyed

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for i, b := range chunk(keyed, s.batch) {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			fail(err)
			break
		}

		wg.Add(1)
		go func(n int, b []domain.Review) {
			defer wg.Done()
			defer sem.Release(1)

			if err := s.write(ctx, b); err != nil {
				log.Warn().Int("batch", n).Int("size", len(b)).Err(err).Msg("import batch failed")
				fail(fmt.Errorf("batch %d: %w", n, err))
				return
			}
			mu.Lock()
			res.Batches++
			res.Reviews += len(b)
			mu.Unlock()
			log.Debug().Int("batch", n).Int("size", len(b)).Msg("import batch ok")
		}(i, b)
	}

	wg.Wait()
	return res, firstErr
}

func (s *ImportService) write(ctx context.Context, b []domain.Review) error {
	if s.rl != nil {
		if err := s.rl.Wait(ctx); err != nil {
			return err
		}
	}
	return s.sink.UpsertReviews(ctx, b)
}

func withReviewID(rs []domain.Review) ([]domain.Review, int) {
	out := make([]domain.Review, 0, len(rs))
	for _, r := range rs {
		if r.ID > 0 {
			out = append(out, r)
		}
	}
	return out, len(rs) - len(out)
}

func chunk(rs []domain.Review, size int) [][]domain.Review {
	var out [][]domain.Review
	for start := 0; start < len(rs); start += size {
		end := start + size
		if end > len(rs) {
			end = len(rs)
		}
		out = append(out, rs[start:end])
	}
	return out
}
