package migrations

import (
	"context"
	"fmt"

	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20261001000003, down_20261001000003)
}

// up_20261001000003 creates chat_messages and the global ai_configs table
func up_20261001000003(ctx context.Context, db *bun.DB) error {
	err := createOwnedTable(ctx, db, ownedTable{
		name:  "chat_messages",
		model: (*models.ChatMessage)(nil),
		indexes: [][]string{
			{"idx_chat_messages_session", "user_id", "session_id", "created_at"},
		},
	})
	if err != nil {
		return err
	}

	fmt.Print(" [up] creating ai_configs table...")
	_, err = db.NewCreateTable().
		Model((*models.AIConfig)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create ai_configs table: %w", err)
	}
	if err := createIndex(ctx, db, (*models.AIConfig)(nil), "idx_ai_configs_priority", "is_active", "priority"); err != nil {
		return err
	}
	fmt.Println(" OK")

	return nil
}

// down_20261001000003 drops chat_messages and ai_configs
func down_20261001000003(ctx context.Context, db *bun.DB) error {
	fmt.Print(" [down] dropping ai_configs table...")
	_, err := db.NewDropTable().
		Model((*models.AIConfig)(nil)).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop ai_configs table: %w", err)
	}
	fmt.Println(" OK")

	return dropOwnedTable(ctx, db, ownedTable{name: "chat_messages", model: (*models.ChatMessage)(nil)})
}
