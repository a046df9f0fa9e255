package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// IsSQLite checks if the database is SQLite
func IsSQLite(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.SQLite
}

// IsPostgreSQL checks if the database is PostgreSQL
func IsPostgreSQL(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.PG
}

// IsMySQL checks if the database is MySQL
func IsMySQL(db *bun.DB) bool {
	return db.Dialect().Name() == dialect.MySQL
}

// createIndex creates a secondary index. MySQL lacks CREATE INDEX IF NOT EXISTS.
func createIndex(ctx context.Context, db *bun.DB, model any, name string, columns ...string) error {
	q := db.NewCreateIndex().Model(model).Index(name).Column(columns...)
	if !IsMySQL(db) {
		q = q.IfNotExists()
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create index %s: %w", name, err)
	}
	return nil
}
