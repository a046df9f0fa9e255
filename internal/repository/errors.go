package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/uptrace/bun"
)

// readErr wraps a select error, translating sql.ErrNoRows into ErrNotFound.
func readErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// writeErr wraps an insert/update error, translating unique violations into ErrConflict.
func writeErr(op string, err error) error {
	if bunx.IsUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// mustAffect returns ErrNotFound when a write touched no rows.
func mustAffect(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func applyPage(q *bun.SelectQuery, p Page) *bun.SelectQuery {
	if p.Skip > 0 {
		q = q.Offset(p.Skip)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	return q
}
