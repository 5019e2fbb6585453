package datastore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteStore_LoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	store := NewSiteStore(path, zerolog.Nop())
	assert.Equal(t, path, store.Path())

	records, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSiteStore_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	records, err := NewSiteStore(path, zerolog.Nop()).Load()
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSiteStore_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewSiteStore(path, zerolog.Nop()).Load()
	var persistErr *errorwrapper.PersistenceError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "decode", persistErr.Op)
}

func TestSiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sites.json")
	store := NewSiteStore(path, zerolog.Nop())

	want := []models.SiteRecord{
		{
			SiteConfig: models.SiteConfig{
				ID: "price", URL: "https://shop.example/p/1", IntervalSeconds: 600,
				Mode: models.ModeSelector, SelectorCSS: "#price",
				Headers: map[string]string{"Accept-Language": "es"},
			},
			State: models.SiteState{LastHash: "abc", LastStatus: 200, LastSize: 1024, LastChanged: true},
		},
		{
			SiteConfig: models.SiteConfig{
				ID: "news", URL: "https://news.example", IntervalSeconds: 900,
				Mode: models.ModeMarkers, StartMarker: "<main>", EndMarker: "</main>",
				Headers: map[string]string{}, Paused: true,
			},
			State: models.SiteState{LastStatus: models.FetchFailureStatus},
		},
	}

	require.NoError(t, store.Save(want))
	got, err := store.Load()
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSiteStore_LoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	content := `[{"id":"a","url":"https://a.example"},{"url":"https://no-id.example"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	records, err := NewSiteStore(path, zerolog.Nop()).Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, uint32(models.DefaultIntervalSeconds), records[0].IntervalSeconds)
	assert.Equal(t, models.ModeSelector, records[0].Mode)
}

func TestSiteStore_SaveIsDeterministic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sites.json")
	store := NewSiteStore(path, zerolog.Nop())
	records := []models.SiteRecord{{SiteConfig: models.SiteConfig{
		ID: "a", URL: "u", Headers: map[string]string{"b": "2", "a": "1", "c": "3"},
	}}}

	require.NoError(t, store.Save(records))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Save(records))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".sites.json.*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
