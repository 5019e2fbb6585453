package datastore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aleister1102/webwatch/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistoryStore(t *testing.T, maxContent int) *HistoryStore {
	t.Helper()
	store, err := NewHistoryStore(filepath.Join(t.TempDir(), "db", "history.db"), maxContent, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHistoryStore_RecordAndEntries(t *testing.T) {
	ctx := context.Background()
	store := newTestHistoryStore(t, 0)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	_, err := store.Record(ctx, CheckEntry{SiteID: "a", Kind: models.EventChangeDetected, Status: 200, Size: 10, Hash: "h1", Changed: true, Excerpt: "x", LinesAdded: 1, CheckedAt: base})
	require.NoError(t, err)
	_, err = store.Record(ctx, CheckEntry{SiteID: "b", Kind: models.EventError, Status: -1, Error: "timeout", CheckedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = store.Record(ctx, CheckEntry{SiteID: "a", Kind: models.EventStatus, Status: 200, Size: 10, Hash: "h1", CheckedAt: base.Add(2 * time.Minute)})
	require.NoError(t, err)

	all, err := store.Entries(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[1].SiteID)
	assert.Equal(t, models.EventError, all[1].Kind)
	assert.Equal(t, "timeout", all[1].Error)

	onlyA, err := store.Entries(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.True(t, onlyA[0].Changed)
	assert.Equal(t, 1, onlyA[0].LinesAdded)
	assert.True(t, onlyA[0].CheckedAt.Equal(base))
	assert.False(t, onlyA[1].Changed)

	limited, err := store.Entries(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestHistoryStore_Content(t *testing.T) {
	ctx := context.Background()
	store := newTestHistoryStore(t, 5)
	now := time.Now()

	_, ok, err := store.LastContent(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.SaveContent(ctx, "a", "h1", "first", now))
	require.NoError(t, store.SaveContent(ctx, "a", "h2", "second version", now))

	content, ok, err := store.LastContent(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secon", content)

	require.NoError(t, store.ForgetSite(ctx, "a"))
	_, ok, err = store.LastContent(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistoryStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := newTestHistoryStore(t, 0)
	cutoff := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := store.Record(ctx, CheckEntry{SiteID: "a", Kind: models.EventStatus, CheckedAt: cutoff.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = store.Record(ctx, CheckEntry{SiteID: "a", Kind: models.EventStatus, CheckedAt: cutoff.Add(time.Hour)})
	require.NoError(t, err)

	n, err := store.Prune(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := store.Entries(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestHistoryExporter_Export(t *testing.T) {
	entries := []CheckEntry{
		{SiteID: "a", Kind: models.EventChangeDetected, Status: 200, Size: 42, Hash: "h", Changed: true, Excerpt: "hello", CheckedAt: time.UnixMilli(1000)},
		{SiteID: "b", Kind: models.EventError, Status: -1, Error: "timeout", CheckedAt: time.UnixMilli(2000)},
	}

	for _, codec := range []string{"zstd", "snappy", "gzip", "none"} {
		t.Run(codec, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "history.parquet")
			result, err := NewHistoryExporter(codec, zerolog.Nop()).Export(context.Background(), entries, path)
			require.NoError(t, err)
			assert.Equal(t, 2, result.RecordsWritten)
			assert.Positive(t, result.FileSize)

			rows, err := parquet.ReadFile[HistoryRow](path)
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "a", rows[0].SiteID)
			require.NotNil(t, rows[0].Hash)
			assert.Equal(t, "h", *rows[0].Hash)
			assert.Nil(t, rows[0].Error)
			assert.Equal(t, int32(-1), rows[1].Status)
			assert.Equal(t, int64(2000), rows[1].CheckedAt)
		})
	}
}

func TestHistoryExporter_EmptyPath(t *testing.T) {
	_, err := NewHistoryExporter("zstd", zerolog.Nop()).Export(context.Background(), nil, "")
	assert.Error(t, err)
}
