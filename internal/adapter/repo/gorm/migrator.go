package gormrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"gorm.io/gorm"
)

const migrationsTable = "schema_migrations"

type migration struct {
	version string
	path    string
}

// ApplyMigrations runs every *.sql file in dir not yet recorded in
// schema_migrations, in file name order, each in its own transaction.
func ApplyMigrations(ctx context.Context, db *gorm.DB, dir string) error {
	db = db.WithContext(ctx)
	if err := db.Exec(`CREATE TABLE IF NOT EXISTS ` + migrationsTable + ` (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`).Error; err != nil {
		return fmt.Errorf("migrations: create %s: %w", migrationsTable, err)
	}

	all, err := listMigrations(dir)
	if err != nil {
		return err
	}
	var done []string
	if err := db.Table(migrationsTable).Pluck("version", &done).Error; err != nil {
		return fmt.Errorf("migrations: load applied versions: %w", err)
	}
	applied := make(map[string]bool, len(done))
	for _, v := range done {
		applied[v] = true
	}

	for _, m := range all {
		if applied[m.version] {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		hlog.Infof("applied migration %s", m.version)
	}
	return nil
}

func listMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations: read %s: %w", dir, err)
	}
	out := make([]migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		out = append(out, migration{
			version: strings.TrimSuffix(e.Name(), ".sql"),
			path:    filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func applyMigration(db *gorm.DB, m migration) error {
	body, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("migrations: read %s: %w", m.version, err)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(string(body)).Error; err != nil {
			return fmt.Errorf("migrations: apply %s: %w", m.version, err)
		}
		if err := tx.Exec(`INSERT INTO `+migrationsTable+` (version, applied_at) VALUES (?, ?)`, m.version, time.Now()).Error; err != nil {
			return fmt.Errorf("migrations: record %s: %w", m.version, err)
		}
		return nil
	})
}
