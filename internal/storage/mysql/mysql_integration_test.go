//go:build integration

package mysql_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"reviewdesk/internal/adapters/discovery"
	"reviewdesk/internal/domain"
	mysqlrepo "reviewdesk/internal/storage/mysql"
)

func migrationsDir(t *testing.T) string {
	t.Helper()
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir(t)

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) (*sql.DB, string) {
	t.Helper()
	// Start isolated MySQL; let Docker pick a free host port.
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env:        []string{"MYSQL_ROOT_PASSWORD=root", "MYSQL_DATABASE=reviewdesk"},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/reviewdesk?parseTime=true&multiStatements=true&charset=utf8mb4&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db, dsn
}

func TestRepo_MySQL_Lifecycle(t *testing.T) {
	db, dsn := startMySQL(t)
	repo := mysqlrepo.New(db, dsn, discovery.Sample{})
	ctx := context.Background()

	snap, err := repo.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(snap.Reviews) != 4 || len(snap.Businesses) != 2 {
		t.Fatalf("seed: %d reviews, %d businesses", len(snap.Reviews), len(snap.Businesses))
	}
	bob := snap.Reviews[3]
	if bob.Author != "Bob Brown" || bob.Analysis == nil || bob.Analysis.Sentiment != domain.SentimentNegative {
		t.Fatalf("bob %+v", bob)
	}

	p := domain.Patch{
		Status:   domain.Set(domain.StatusPendingResponse),
		Analysis: domain.Set(&domain.Analysis{Sentiment: domain.SentimentPositive, Intent: "Praise"}),
	}
	if err := repo.UpdateAt(ctx, 2, p); err != nil {
		t.Fatalf("UpdateAt: %v", err)
	}
	if err := repo.UpdateAt(ctx, 999, p); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("UpdateAt missing row: %v", err)
	}

	b, rs, err := repo.CreateBusinessAndDiscover(ctx, "Corner Bakery", snap)
	if err != nil {
		t.Fatalf("CreateBusinessAndDiscover: %v", err)
	}
	if *b.RowIndex != 4 || len(rs) != 3 || *rs[0].RowIndex != 6 {
		t.Fatalf("created %+v %+v", b, rs)
	}
	if _, _, err := repo.CreateBusinessAndDiscover(ctx, "corner bakery", snap); !errors.Is(err, domain.ErrDuplicateBusiness) {
		t.Fatalf("duplicate: %v", err)
	}

	again, err := repo.FetchAll(ctx)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if again.Reviews[0].Status != domain.StatusPendingResponse || again.Reviews[0].Analysis.Intent != "Praise" {
		t.Fatalf("update not persisted: %+v", again.Reviews[0])
	}
	if len(again.Reviews) != 7 || len(again.Businesses) != 3 {
		t.Fatalf("refetch: %d reviews, %d businesses", len(again.Reviews), len(again.Businesses))
	}
}
