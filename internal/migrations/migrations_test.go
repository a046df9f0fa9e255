package migrations

import (
	"context"
	"testing"

	"github.com/focusflow/focusapi/internal/db/bunx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_SQLite(t *testing.T) {
	db, err := bunx.NewDB("file:migrations-apply?mode=memory&cache=shared")
	require.NoError(t, err)
	defer bunx.Close(db)

	ctx := context.Background()
	group, err := Apply(ctx, db)
	require.NoError(t, err)
	assert.NotZero(t, group.ID)

	for _, table := range []string{"users", "tasks", "goals", "habits", "insights", "chat_messages", "ai_configs"} {
		_, err := db.NewSelect().Table(table).Limit(1).Exec(ctx)
		assert.NoError(t, err, "table %s should exist", table)
	}

	// Second run is a no-op.
	group, err = Apply(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, group.ID)
}
