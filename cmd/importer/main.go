package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"park_reviews/internal/adapters/csvsource"
	"park_reviews/internal/adapters/observability"
	"park_reviews/internal/app"
	"park_reviews/internal/domain"
	"park_reviews/internal/shared"
	mysqlrepo "park_reviews/internal/storage/mysql"
)

var args struct {
	file     string
	encoding string
	dsn      string
	batch    int
	workers  int
	rps      int
	push     string
}

const longHelp = `Reads a park reviews CSV with the explorer's loader and upserts every
valid review into the MySQL reviews table, keyed by review id.

Rows without a Review_ID are reported and not imported: they could not be
matched on a later run and would be duplicated.`

func newCmd(cfg shared.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "importer",
		Short:        "Load a park reviews CSV into MySQL",
		Long:         longHelp,
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.StringVar(&args.file, "file", cfg.DataPath, "reviews CSV to import")
	flags.StringVar(&args.encoding, "encoding", cfg.DataEncoding, "CSV encoding (utf-8, windows-1252, latin1)")
	flags.StringVar(&args.dsn, "dsn", cfg.MySQLDSN, "MySQL DSN")
	flags.IntVar(&args.batch, "batch", cfg.ImportBatch, "reviews per INSERT statement")
	flags.IntVar(&args.workers, "workers", cfg.ImportWorkers, "batches written in parallel")
	flags.IntVar(&args.rps, "rps", cfg.ImportRPS, "max batches per second, 0 for unlimited")
	flags.StringVar(&args.push, "pushgateway", cfg.PushgateURL, "Pushgateway URL for run metrics, empty to skip")
	return cmd
}

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCmd(cfg).ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "import failed:", err)
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// registered up front so failed runs are pushed too
	reg := observability.InitRegistry()
	if args.push != "" {
		defer func() {
			if err := observability.PushMetrics(args.push, "park_reviews_importer", reg); err != nil {
				log.Warn().Err(err).Str("url", args.push).Msg("metrics push failed")
			}
		}()
	}

	rep, err := csvsource.New(args.file, args.encoding).LoadReviews(ctx)
	if err != nil {
		return err
	}
	if len(rep.Reviews) == 0 {
		return domain.ErrNoReviews
	}

	db, err := sql.Open("mysql", args.dsn)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(args.workers)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	svc := app.NewImportService(repo, args.workers, args.batch, args.rps)

	start := time.Now()
	res, err := svc.Import(ctx, rep.Reviews)
	if err != nil {
		return err
	}

	total, err := repo.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("count reviews failed")
	}

	out := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(out, "Imported %d reviews in %d batches (%s).\n",
		res.Reviews, res.Batches, time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(out, "Rows read: %d, skipped: %d, without review id: %d, reviews in table: %d\n",
		rep.RowsRead, rep.SkippedTotal(), res.Unkeyed, total)
	return nil
}
