package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"park_reviews/internal/adapters/charts"
	"park_reviews/internal/adapters/csvsource"
	server "park_reviews/internal/adapters/http_server"
	"park_reviews/internal/adapters/observability"
	"park_reviews/internal/adapters/xlsx"
	"park_reviews/internal/app"
	"park_reviews/internal/domain"
	"park_reviews/internal/shared"
	"park_reviews/internal/tui"
	mysqlrepo "park_reviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// console logger in dev, JSON otherwise; always stderr
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if cfg.MetricsAddr != "" {
		srv := server.New()
		srv.Mount("/metrics", observability.MetricsHandler(observability.InitRegistry()))
		go srv.ListenAndServe(cfg.MetricsAddr)
	}

	src, closeSrc, err := openSource(cfg)
	if err != nil {
		fatal(cfg, err)
	}
	defer closeSrc()

	rep, err := src.LoadReviews(context.Background())
	if err == nil && len(rep.Reviews) == 0 {
		err = domain.ErrNoReviews
	}
	if err != nil {
		closeSrc()
		fatal(cfg, err)
	}
	tui.ShowLoadReport(os.Stdout, rep)

	menu := tui.New(os.Stdin, os.Stdout,
		app.NewQueryService(rep.Reviews),
		charts.New(cfg.ChartDir),
		xlsx.New(cfg.ExportDir),
		cfg.TopN,
	)
	if err := menu.Run(); err != nil {
		log.Error().Err(err).Msg("menu stopped")
	}
}

func openSource(cfg shared.Config) (domain.ReviewSource, func(), error) {
	if cfg.ReviewSource != shared.SourceMySQL {
		return csvsource.New(cfg.DataPath, cfg.DataEncoding), func() {}, nil
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql unreachable: %w", err)
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db), func() { db.Close() }, nil
}

// fatal reports an unrecoverable startup error on the terminal and exits 1.
func fatal(cfg shared.Config, err error) {
	msg := err.Error()
	switch {
	case errors.Is(err, domain.ErrSourceNotFound):
		msg = fmt.Sprintf("Could not find data file at %s", cfg.DataPath)
	case errors.Is(err, domain.ErrBadHeader):
		msg = fmt.Sprintf("%s does not look like a reviews file: %v", cfg.DataPath, err)
	case errors.Is(err, domain.ErrNoReviews):
		msg = "No reviews were loaded from the data source."
	}
	tui.ShowError(os.Stdout, msg)
	log.Error().Err(err).Str("source", cfg.ReviewSource).Msg("startup failed")
	os.Exit(1)
}
