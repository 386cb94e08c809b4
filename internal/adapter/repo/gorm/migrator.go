package gormrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gorm.io/gorm"
)

// ApplyMigrations runs every *.sql file in dir that is not recorded in
// schema_migrations yet, in lexical order, each inside its own transaction.
func ApplyMigrations(ctx context.Context, db *gorm.DB, dir string) error {
	metaSQL := `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`
	if err := db.WithContext(ctx).Exec(metaSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("scan migration dir: %w", err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		name := filepath.Base(path)
		version := name[:len(name)-len(".sql")]

		var count int64
		if err := db.WithContext(ctx).Table("schema_migrations").Where("version = ?", version).Count(&count).Error; err != nil {
			return fmt.Errorf("check migration %s: %w", version, err)
		}
		if count > 0 {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("apply migration %s: %w", name, err)
			}
			return tx.Exec(
				`INSERT INTO schema_migrations(version, applied_at) VALUES (?, ?)`,
				version, time.Now(),
			).Error
		})
		if err != nil {
			return err
		}
	}

	return nil
}
