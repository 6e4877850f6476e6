// Package testdb creates a throwaway database per test and applies the
// migrations. Tests using it are skipped unless POSTGRES_DSN is set.
package testdb

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	baseDSN := os.Getenv("POSTGRES_DSN")
	if baseDSN == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	adminDSN := os.Getenv("POSTGRES_ADMIN_DSN")
	if adminDSN == "" {
		adminDSN = withDatabase(baseDSN, "postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	adminConn, err := pgx.Connect(ctx, adminDSN)
	if err != nil {
		t.Fatalf("connect admin db: %v", err)
	}

	dbName := "custody_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := adminConn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		t.Fatalf("create database: %v", err)
	}

	pool, err := pgxpool.New(ctx, withDatabase(baseDSN, dbName))
	if err != nil {
		_ = dropDatabase(ctx, adminConn, dbName)
		t.Fatalf("connect test db: %v", err)
	}

	applyMigrations(t, pool)

	cleanup := func() {
		pool.Close()
		_ = dropDatabase(context.Background(), adminConn, dbName)
		_ = adminConn.Close(context.Background())
	}
	return pool, cleanup
}

func applyMigrations(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	dir := migrationsDir(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, file := range files {
		payload, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("read migration %s: %v", file, err)
		}
		if len(strings.TrimSpace(string(payload))) == 0 {
			continue
		}
		if _, err := pool.Exec(ctx, string(payload)); err != nil {
			t.Fatalf("apply migration %s: %v", file, err)
		}
	}
}

func migrationsDir(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("resolve testdb path")
	}
	base := filepath.Dir(filename)
	path := filepath.Clean(filepath.Join(base, "..", "..", "..", "..", "migrations"))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("migrations dir not found: %v", err)
	}
	return path
}

func withDatabase(dsn string, dbName string) string {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	parsed.Path = "/" + dbName
	return parsed.String()
}

func dropDatabase(ctx context.Context, conn *pgx.Conn, name string) error {
	_, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize())
	return err
}
