//go:build integration

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"

	"park_reviews/internal/adapters/csvsource"
	"park_reviews/internal/app"
	mysqlrepo "park_reviews/internal/storage/mysql"
)

const reviewsCSV = `Review_ID,Rating,Year_Month,Reviewer_Location,Branch,Review_Text
1,5,2019-4,France,Disneyland_Paris,great
2,3,2019-5,France,Disneyland_Paris,ok
3,4,missing,Belgium,Disneyland_Paris,nice
4,2,2018-12,United States,Disneyland_California,meh
5,six,2018-12,United States,Disneyland_California,bad row
6,4,2018-11,,Disneyland_California,no location
`

// mysqlDSN uses IT_MYSQL_DSN when set, otherwise a throwaway container.
func mysqlDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("IT_MYSQL_DSN"); dsn != "" {
		return dsn
	}
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	res, err := pool.Run("mysql", "8.0.36", []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=park_reviews"})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(res) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/park_reviews?parseTime=true&multiStatements=true", res.GetPort("3306/tcp"))
	if err := pool.Retry(func() error {
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Ping()
	}); err != nil {
		t.Fatalf("mysql never became ready: %v", err)
	}
	return dsn
}

func TestImportThenExplore(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("mysql", mysqlDSN(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_reviews.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := db.Exec("DELETE FROM reviews"); err != nil {
		t.Fatalf("reset table: %v", err)
	}

	rep, err := csvsource.Read(ctx, strings.NewReader(reviewsCSV))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rep.Reviews) != 5 || rep.SkippedTotal() != 1 {
		t.Fatalf("unexpected load report: %d reviews, %d skipped", len(rep.Reviews), rep.SkippedTotal())
	}

	repo := mysqlrepo.New(db)
	svc := app.NewImportService(repo, 2, 2, 0)
	res, err := svc.Import(ctx, rep.Reviews)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Batches != 3 || res.Reviews != 5 {
		t.Fatalf("unexpected import result %+v", res)
	}

	// second run must not duplicate rows
	if _, err := svc.Import(ctx, rep.Reviews); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if n, err := repo.Count(ctx); err != nil || n != 5 {
		t.Fatalf("expected 5 rows after re-import, got %d (%v)", n, err)
	}

	loaded, err := repo.LoadReviews(ctx)
	if err != nil {
		t.Fatalf("load from mysql: %v", err)
	}
	q := app.NewQueryService(loaded.Reviews)

	avg := q.AverageByBranch()
	if len(avg) != 2 || avg[0].Branch != "Disneyland_California" || avg[0].Average != 3 || avg[1].Average != 4 {
		t.Fatalf("unexpected averages %+v", avg)
	}
	months := q.AverageByMonth("Disneyland_Paris")
	if len(months) != 2 || months[0].Month.String() != "2019-04" {
		t.Fatalf("undated review should be excluded, got %+v", months)
	}
	top := q.TopLocations("Disneyland_California", 5)
	if len(top) != 2 {
		t.Fatalf("expected United States and Unknown, got %+v", top)
	}
}

// Ties in TopLocations follow file order, so a MySQL round trip through
// parallel batches must hand reviews back in the order the CSV had them.
func TestParallelImportKeepsFileOrder(t *testing.T) {
	ctx := context.Background()

	db, err := sql.Open("mysql", mysqlDSN(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_reviews.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := db.Exec("DELETE FROM reviews"); err != nil {
		t.Fatalf("reset table: %v", err)
	}

	var b strings.Builder
	b.WriteString("Review_ID,Rating,Year_Month,Reviewer_Location,Branch\n")
	locations := []string{"Japan", "Korea", "Chile", "Peru", "Kenya", "Egypt", "Italy", "Malta"}
	for i, loc := range locations {
		fmt.Fprintf(&b, "%d,4,2019-1,%s,Disneyland_Tokyo\n", 100+i, loc)
	}

	rep, err := csvsource.Read(ctx, strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := app.NewQueryService(rep.Reviews).TopLocations("Disneyland_Tokyo", 3)

	repo := mysqlrepo.New(db)
	if _, err := app.NewImportService(repo, 4, 1, 0).Import(ctx, rep.Reviews); err != nil {
		t.Fatalf("import: %v", err)
	}
	loaded, err := repo.LoadReviews(ctx)
	if err != nil {
		t.Fatalf("load from mysql: %v", err)
	}
	got := app.NewQueryService(loaded.Reviews).TopLocations("Disneyland_Tokyo", 3)

	if len(got) != len(want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie order differs from csv: got %+v want %+v", got, want)
		}
	}
}
