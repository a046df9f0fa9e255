package migrations

import (
	"context"
	"fmt"

	"github.com/focusflow/focusapi/internal/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(up_20261001000002, down_20261001000002)
}

const userFK = `("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`

type ownedTable struct {
	name    string
	model   any
	indexes [][]string // first element is the index name
}

func planningTables() []ownedTable {
	return []ownedTable{
		{
			name:  "tasks",
			model: (*models.Task)(nil),
			indexes: [][]string{
				{"idx_tasks_user_start", "user_id", "start_time"},
				{"idx_tasks_created_at", "created_at"},
			},
		},
		{
			name:    "goals",
			model:   (*models.Goal)(nil),
			indexes: [][]string{{"idx_goals_user", "user_id"}},
		},
		{
			name:    "habits",
			model:   (*models.Habit)(nil),
			indexes: [][]string{{"idx_habits_user", "user_id"}},
		},
		{
			name:    "insights",
			model:   (*models.Insight)(nil),
			indexes: [][]string{{"idx_insights_user_created", "user_id", "created_at"}},
		},
	}
}

// up_20261001000002 creates the per-user planning tables
func up_20261001000002(ctx context.Context, db *bun.DB) error {
	for _, tbl := range planningTables() {
		if err := createOwnedTable(ctx, db, tbl); err != nil {
			return err
		}
	}
	return nil
}

// down_20261001000002 drops the per-user planning tables
func down_20261001000002(ctx context.Context, db *bun.DB) error {
	tables := planningTables()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := dropOwnedTable(ctx, db, tables[i]); err != nil {
			return err
		}
	}
	return nil
}

func createOwnedTable(ctx context.Context, db *bun.DB, tbl ownedTable) error {
	fmt.Printf(" [up] creating %s table...", tbl.name)

	_, err := db.NewCreateTable().
		Model(tbl.model).
		IfNotExists().
		ForeignKey(userFK).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create %s table: %w", tbl.name, err)
	}

	for _, idx := range tbl.indexes {
		if err := createIndex(ctx, db, tbl.model, idx[0], idx[1:]...); err != nil {
			return err
		}
	}
	fmt.Println(" OK")
	return nil
}

func dropOwnedTable(ctx context.Context, db *bun.DB, tbl ownedTable) error {
	fmt.Printf(" [down] dropping %s table...", tbl.name)

	_, err := db.NewDropTable().
		Model(tbl.model).
		IfExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to drop %s table: %w", tbl.name, err)
	}
	fmt.Println(" OK")
	return nil
}
