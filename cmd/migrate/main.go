// Command migrate applies the SQL files in a migrations directory to the
// database behind DATABASE_URL. Applied files are recorded in
// schema_migrations and skipped on later runs.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/anaypant/acs-next-js-dev-sub002/internal/config"
)

func main() {
	cfg, err := config.LoadFromEnv(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("[migrate] failed to load config: %v", err)
	}
	dsn := cfg.Source.Postgres.DatabaseURL
	if dsn == "" {
		log.Fatal("[migrate] DATABASE_URL is required")
	}

	dir := "migrations"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("[migrate] connect: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("[migrate] ping: %v", err)
	}
	log.Println("[migrate] connected to database")

	if listOnly {
		if err := listApplied(ctx, db, os.Stdout); err != nil {
			log.Fatalf("[migrate] %v", err)
		}
		return
	}

	files, err := migrationFiles(dir)
	if err != nil {
		log.Fatalf("[migrate] %v", err)
	}
	ok, failed, err := apply(ctx, db, dir, files, os.Stdout)
	if err != nil {
		log.Fatalf("[migrate] %v", err)
	}
	log.Printf("[migrate] done: %d applied, %d errors", ok, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// migrationFiles returns the .sql files in dir in lexical order.
func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// apply runs each pending file in its own transaction. A failing file is
// rolled back and reported; later files still run.
func apply(ctx context.Context, db *sql.DB, dir string, files []string, out io.Writer) (int, int, error) {
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return 0, 0, err
	}

	var okCount, errCount int
	for _, f := range files {
		if applied[f] {
			fmt.Fprintf(out, "  %s ... already applied\n", f)
			continue
		}
		path := filepath.Join(dir, f)
		data, err := os.ReadFile(path)
		if err != nil {
			return okCount, errCount, fmt.Errorf("read %s: %w", path, err)
		}
		content := string(data)
		if strings.TrimSpace(content) == "" {
			continue
		}
		fmt.Fprintf(out, "  %s ... ", f)

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			fmt.Fprintf(out, "BEGIN ERROR: %v\n", err)
			errCount++
			continue
		}
		if _, err := tx.ExecContext(ctx, content); err != nil {
			tx.Rollback()
			fmt.Fprintf(out, "ERROR: %v\n", err)
			errCount++
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, f); err != nil {
			tx.Rollback()
			fmt.Fprintf(out, "ERROR recording version: %v\n", err)
			errCount++
			continue
		}
		if err := tx.Commit(); err != nil {
			fmt.Fprintf(out, "COMMIT ERROR: %v\n", err)
			errCount++
			continue
		}
		fmt.Fprintln(out, "OK")
		okCount++
	}
	return okCount, errCount, nil
}

func listApplied(ctx context.Context, db *sql.DB, out io.Writer) error {
	rows, err := db.QueryContext(ctx, `SELECT version, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var version string
		var at sql.NullTime
		if err := rows.Scan(&version, &at); err != nil {
			return err
		}
		fmt.Fprintf(out, "  %s  %s\n", version, at.Time.UTC().Format("2006-01-02 15:04:05"))
		n++
	}
	fmt.Fprintf(out, "Total: %d migrations\n", n)
	return rows.Err()
}
