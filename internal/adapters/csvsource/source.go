package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/charmap"

	"park_reviews/internal/adapters/observability"
	"park_reviews/internal/domain"
)

// Source reads reviews from a CSV file on disk.
type Source struct {
	path     string
	encoding string
}

func New(path, encoding string) *Source { return &Source{path: path, encoding: encoding} }

func (s *Source) LoadReviews(ctx context.Context) (domain.LoadReport, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.LoadReport{}, fmt.Errorf("%w: %s", domain.ErrSourceNotFound, s.path)
		}
		return domain.LoadReport{}, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r, err := decoder(f, s.encoding)
	if err != nil {
		return domain.LoadReport{}, err
	}
	rep, err := Read(ctx, r)
	rep.Source = s.path
	if err != nil {
		return rep, fmt.Errorf("load %s: %w", s.path, err)
	}

	observability.ObserveLoad("csv", rep)
	log.Info().
		Str("path", s.path).
		Int("rows", rep.RowsRead).
		Int("reviews", len(rep.Reviews)).
		Int("skipped", rep.SkippedTotal()).
		Msg("csv loaded")
	return rep, nil
}

// Read parses a review CSV. Malformed rows are skipped and counted; only a bad
// header or an I/O failure is an error.
func Read(ctx context.Context, r io.Reader) (domain.LoadReport, error) {
	rep := domain.LoadReport{Skipped: map[domain.SkipReason]int{}}

	// Quotes are strict: a stray quote is a parse_error for that row instead of
	// a field that silently runs on into the following rows.
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return rep, fmt.Errorf("%w: empty file", domain.ErrBadHeader)
	}
	if err != nil {
		return rep, fmt.Errorf("read header: %w", err)
	}
	cols, missing := indexHeader(header)
	if len(missing) > 0 {
		return rep, fmt.Errorf("%w: %s", domain.ErrBadHeader, strings.Join(missing, ", "))
	}

	for {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		rep.RowsRead++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rep.Skipped[domain.SkipParseError]++
				// an open quoted field swallows every line up to pe.Line
				log.Warn().Err(err).Int("start_line", pe.StartLine).Int("line", pe.Line).Msg("csv row skipped")
				continue
			}
			return rep, fmt.Errorf("read row %d: %w", rep.RowsRead, err)
		}

		rv, reason, ok := mapRecord(cols, rec)
		if !ok {
			rep.Skipped[reason]++
			line, _ := cr.FieldPos(0)
			log.Debug().Str("reason", string(reason)).Int("line", line).Msg("csv row skipped")
			continue
		}
		rv.Seq = int64(rep.RowsRead)
		rep.Reviews = append(rep.Reviews, rv)
	}
	return rep, nil
}

func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(encoding), "_", "-")) {
	case "", "utf-8", "utf8":
		return r, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(r), nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder().Reader(r), nil
	default:
		return nil, fmt.Errorf("unsupported DATA_ENCODING %q", encoding)
	}
}
