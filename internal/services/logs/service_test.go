package logs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/focusflow/focusapi/internal/apperr"
	"github.com/focusflow/focusapi/internal/logging"
)

func writeLogs(t *testing.T) (string, context.Context) {
	t.Helper()
	dir := t.TempDir()
	logger, err := logging.Setup(logging.Config{Level: "debug", Dir: dir, Stdout: io.Discard})
	require.NoError(t, err)

	logger.Info().Str("method", "GET").Msg("response sent")
	logger.Warn().Msg("slow query")
	logger.Error().Err(io.ErrUnexpectedEOF).Str("method", "POST").Msg("error")
	logger.Debug().Msg("Token resolved")
	ctx := logger.WithContext(context.Background())

	t.Cleanup(func() { _ = logger.Close() })
	return dir, ctx
}

func TestService_RecordClientError(t *testing.T) {
	dir, ctx := writeLogs(t)
	svc := NewService(dir, false)

	stack := "at App.tsx:10"
	url := "http://localhost:5173/tasks"
	require.NoError(t, svc.RecordClientError(ctx, ClientError{Message: "boom", Stack: &stack, URL: &url}))

	err := svc.RecordClientError(ctx, ClientError{Message: "  "})
	assert.Equal(t, apperr.KindMalformed, apperr.KindOf(err))

	res, err := svc.Query(ctx, Query{Filter: `source == "frontend"`})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	entry := res.Logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "Frontend Error: boom", entry.Message)
	assert.Equal(t, "focusapi", entry.Logger)
	assert.Equal(t, stack, entry.Fields["stack"])
	assert.Equal(t, url, entry.Fields["url"])
}

func TestService_QueryFilters(t *testing.T) {
	dir, ctx := writeLogs(t)
	svc := NewService(dir, false)

	tests := []struct {
		name     string
		query    Query
		messages []string
	}{
		{"all", Query{}, []string{"response sent", "slow query", "error", "Token resolved"}},
		{"level", Query{Level: "error"}, []string{"error"}},
		{"warning alias", Query{Level: "WARNING"}, []string{"slow query"}},
		{"search is case-insensitive", Query{Search: "TOKEN"}, []string{"Token resolved"}},
		{"filter", Query{Filter: `method == "POST"`}, []string{"error"}},
		{"filter on missing field", Query{Filter: `component == "x"`}, []string{}},
		{"filter combined", Query{Filter: `method == "GET" and level == "info"`}, []string{"response sent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Query(ctx, tt.query)
			require.NoError(t, err)
			got := make([]string, 0, len(res.Logs))
			for _, e := range res.Logs {
				got = append(got, e.Message)
			}
			assert.Equal(t, tt.messages, got)
			assert.Equal(t, len(tt.messages), res.Total)
		})
	}
}

func TestService_QueryException(t *testing.T) {
	dir, ctx := writeLogs(t)
	res, err := NewService(dir, false).Query(ctx, Query{Level: "error"})
	require.NoError(t, err)
	require.Len(t, res.Logs, 1)
	require.NotNil(t, res.Logs[0].Exception)
	assert.Equal(t, io.ErrUnexpectedEOF.Error(), *res.Logs[0].Exception)
}

func TestService_QueryDates(t *testing.T) {
	dir, ctx := writeLogs(t)
	svc := NewService(dir, false)
	today := time.Now().UTC().Format(dateLayout)
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format(dateLayout)
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(dateLayout)

	res, err := svc.Query(ctx, Query{StartDate: today, EndDate: today})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)

	res, err = svc.Query(ctx, Query{StartDate: tomorrow})
	require.NoError(t, err)
	assert.Zero(t, res.Total)

	res, err = svc.Query(ctx, Query{EndDate: yesterday})
	require.NoError(t, err)
	assert.Zero(t, res.Total)

	res, err = svc.Query(ctx, Query{StartDate: time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
}

func TestService_QueryPaging(t *testing.T) {
	dir, ctx := writeLogs(t)
	svc := NewService(dir, false)

	res, err := svc.Query(ctx, Query{Page: 2, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, "Token resolved", res.Logs[0].Message)

	res, err = svc.Query(ctx, Query{Page: 5, PageSize: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Empty(t, res.Logs)
	assert.NotNil(t, res.Logs)
}

func TestService_QueryRejectsBadInput(t *testing.T) {
	svc := NewService(t.TempDir(), false)
	ctx := context.Background()

	for name, q := range map[string]Query{
		"page":       {Page: -1},
		"page size":  {PageSize: MaxPageSize + 1},
		"start date": {StartDate: "yesterday"},
		"end date":   {EndDate: "2026-13-40"},
		"filter":     {Filter: `level ==`},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Query(ctx, q)
			assert.Equal(t, apperr.KindMalformed, apperr.KindOf(err))
		})
	}
}

func TestService_MissingFiles(t *testing.T) {
	ctx := context.Background()
	for name, svc := range map[string]*Service{
		"missing files": NewService(t.TempDir(), false),
		"disabled":      NewService("", false),
	} {
		t.Run(name, func(t *testing.T) {
			res, err := svc.Query(ctx, Query{})
			require.NoError(t, err)
			assert.Zero(t, res.Total)
			assert.Equal(t, 1, res.Page)
			assert.Equal(t, DefaultPageSize, res.PageSize)

			st, err := svc.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, Stats{}, *st)

			assert.NoError(t, svc.Clear(ctx))
		})
	}
}

func TestService_StatsAndClear(t *testing.T) {
	dir, ctx := writeLogs(t)
	svc := NewService(dir, false)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TotalLogs)
	assert.Equal(t, 1, st.ErrorLogs)
	assert.Positive(t, st.LogFileSize)
	assert.Positive(t, st.ErrorLogFileSize)
	require.NotNil(t, st.LastUpdated)

	require.NoError(t, svc.Clear(zerolog.Nop().WithContext(context.Background())))

	for _, name := range []string{logging.AppLogFile, logging.ErrorLogFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Zero(t, info.Size(), name)
	}

	// the logger keeps appending after truncation
	zerolog.Ctx(ctx).Info().Msg("after clear")
	res, err := svc.Query(ctx, Query{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, "after clear", res.Logs[0].Message)
}

func TestService_ClearForbiddenInProduction(t *testing.T) {
	dir, ctx := writeLogs(t)
	err := NewService(dir, true).Clear(ctx)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, "Cannot clear logs in production", apperr.MessageOf(err))

	info, err := os.Stat(filepath.Join(dir, logging.AppLogFile))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestCompiledFilters_Cache(t *testing.T) {
	c := newCompiledFilters(2)
	first, err := c.compile(`level == "info"`)
	require.NoError(t, err)
	second, err := c.compile(` level == "info" `)
	require.NoError(t, err)
	assert.Same(t, first, second)

	none, err := c.compile("   ")
	require.NoError(t, err)
	assert.Nil(t, none)
	assert.True(t, matches(none, map[string]any{}))
}
