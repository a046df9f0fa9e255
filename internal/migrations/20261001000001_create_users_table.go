package migrations

import (
	"context"
	"fmt"

	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20261001000001, down_20261001000001)
}

// up_20261001000001 creates the users table. The unique index on email is the
// real guard against concurrent duplicate registrations.
func up_20261001000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [up] creating users table...")

	_, err := db.NewCreateTable().
		Model((*models.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	if err := createIndex(ctx, db, (*models.User)(nil), "idx_users_created_at", "created_at"); err != nil {
		return err
	}
	fmt.Println(" OK")

	return nil
}

// down_20261001000001 drops the users table
func down_20261001000001(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping users table...")

	_, err := db.NewDropTable().
		Model((*models.User)(nil)).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop users table: %w", err)
	}
	fmt.Println(" OK")

	return nil
}
