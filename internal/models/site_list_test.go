package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSiteList_DropsDuplicateIDs(t *testing.T) {
	list := NewSiteList([]SiteRecord{
		{SiteConfig: SiteConfig{ID: "a", URL: "u1"}},
		{SiteConfig: SiteConfig{ID: "b", URL: "u2"}},
		{SiteConfig: SiteConfig{ID: "a", URL: "u3"}},
	})

	require.Equal(t, 2, list.Len())
	assert.Equal(t, "u1", list.Find("a").URL)
}

func TestSiteList_UpsertKeepsState(t *testing.T) {
	list := NewSiteList(nil)

	added := list.Upsert(SiteConfig{ID: "a", URL: "https://one"})
	assert.True(t, added)

	list.Find("a").State = SiteState{LastHash: "h1", LastStatus: 200}

	added = list.Upsert(SiteConfig{ID: "a", URL: "https://two"})
	assert.False(t, added)

	rec := list.Find("a")
	require.NotNil(t, rec)
	assert.Equal(t, "https://two", rec.URL)
	assert.Equal(t, "h1", rec.State.LastHash)
	assert.Equal(t, 1, list.Len())
}

func TestSiteList_UpsertPreservesOrder(t *testing.T) {
	list := NewSiteList(nil)
	list.Upsert(SiteConfig{ID: "c"})
	list.Upsert(SiteConfig{ID: "a"})
	list.Upsert(SiteConfig{ID: "b"})
	list.Upsert(SiteConfig{ID: "a", URL: "changed"})

	var ids []string
	for _, rec := range list.Records() {
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestSiteList_Remove(t *testing.T) {
	list := NewSiteList([]SiteRecord{
		{SiteConfig: SiteConfig{ID: "a"}},
		{SiteConfig: SiteConfig{ID: "b"}},
	})

	assert.Equal(t, 0, list.Remove("missing"))
	assert.Equal(t, 2, list.Len())

	assert.Equal(t, 1, list.Remove("a"))
	assert.Nil(t, list.Find("a"))
	assert.NotNil(t, list.Find("b"))
	assert.Equal(t, 1, list.Len())
}

func TestSiteList_RecordsIsACopy(t *testing.T) {
	list := NewSiteList([]SiteRecord{{SiteConfig: SiteConfig{ID: "a", URL: "x"}}})

	records := list.Records()
	records[0].URL = "mutated"

	assert.Equal(t, "x", list.Find("a").URL)
}
