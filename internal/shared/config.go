package shared

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	SourceCSV   = "csv"
	SourceMySQL = "mysql"
)

type Config struct {
	AppEnv        string
	LogLevel      string
	DataPath      string
	DataEncoding  string
	ReviewSource  string
	MySQLDSN      string
	ChartDir      string
	ExportDir     string
	TopN          int
	MetricsAddr   string
	PushgateURL   string
	ImportWorkers int
	ImportBatch   int
	ImportRPS     int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; real environment variables win over it.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be parsed")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "dev"),
		LogLevel:      env("LOG_LEVEL", "warn"),
		DataPath:      env("DATA_PATH", "data/disneyland_reviews.csv"),
		DataEncoding:  env("DATA_ENCODING", "utf-8"),
		ReviewSource:  strings.ToLower(env("REVIEW_SOURCE", SourceCSV)),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/park_reviews?parseTime=true&charset=utf8mb4&loc=UTC"),
		ChartDir:      env("CHART_DIR", "charts"),
		ExportDir:     env("EXPORT_DIR", "."),
		TopN:          atoi("TOP_N", 10),
		MetricsAddr:   env("METRICS_ADDR", ""),
		PushgateURL:   env("PUSHGATEWAY_URL", ""),
		ImportWorkers: atoi("IMPORT_WORKERS", 4),
		ImportBatch:   atoi("IMPORT_BATCH", 500),
		ImportRPS:     atoi("IMPORT_RPS", 0),
	}
	if c.TopN <= 0 {
		c.TopN = 10
	}
	if c.ReviewSource != SourceCSV && c.ReviewSource != SourceMySQL {
		log.Warn().Str("REVIEW_SOURCE", c.ReviewSource).Msg("unknown review source, using csv")
		c.ReviewSource = SourceCSV
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
