package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/webwatch/internal/command"
	"github.com/aleister1102/webwatch/internal/datastore"
	"github.com/aleister1102/webwatch/internal/fetcher"
	"github.com/aleister1102/webwatch/internal/messaging"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDevice = "device-demo"
	testSecret = "secret-demo"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type serviceFixture struct {
	service   *Service
	transport *messaging.MemoryTransport
	store     *datastore.SiteStore
	topics    messaging.Topics
	clock     *fakeClock
	hits      *atomic.Int32
}

func newServiceFixture(t *testing.T, records ...models.SiteRecord) *serviceFixture {
	t.Helper()

	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`<html><p id="v">version 1</p></html>`))
	}))
	t.Cleanup(srv.Close)

	for i := range records {
		records[i].URL = srv.URL
	}

	store := datastore.NewSiteStore(filepath.Join(t.TempDir(), "sites.json"), zerolog.Nop())
	transport := messaging.NewMemoryTransport()
	topics := messaging.NewTopics(testDevice, testSecret)
	clock := &fakeClock{now: time.Unix(1700000000, 0)}

	checker := NewChecker(fetcher.NewFetcher(fetcher.Config{Timeout: 2 * time.Second}, zerolog.Nop()), nil, nil, nil, zerolog.Nop())
	s, err := NewServiceBuilder(zerolog.Nop()).
		WithConfig(ServiceConfig{DeviceSecret: testSecret, TickInterval: 10 * time.Millisecond, QoS: 1}).
		WithSites(models.NewSiteList(records), store).
		WithChecker(checker).
		WithTransport(transport, topics).
		WithClock(clock.Now).
		Build()
	require.NoError(t, err)

	return &serviceFixture{service: s, transport: transport, store: store, topics: topics, clock: clock, hits: hits}
}

func (f *serviceFixture) events(t *testing.T) []models.Event {
	t.Helper()
	var out []models.Event
	for _, msg := range f.transport.Published() {
		if msg.Topic != f.topics.Events {
			continue
		}
		var ev models.Event
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		out = append(out, ev)
	}
	return out
}

func signed(t *testing.T, typ command.CommandType, payload any) []byte {
	t.Helper()
	signer, err := command.NewSigner(testSecret)
	require.NoError(t, err)
	env, err := signer.Sign(typ, payload, 1)
	require.NoError(t, err)
	raw, err := env.Bytes()
	require.NoError(t, err)
	return raw
}

func site(id string, interval uint32) models.SiteRecord {
	return models.SiteRecord{SiteConfig: models.SiteConfig{
		ID: id, IntervalSeconds: interval, Mode: models.ModeSelector, SelectorCSS: "#v",
	}}
}

func TestServiceBuilder_Validation(t *testing.T) {
	_, err := NewServiceBuilder(zerolog.Nop()).Build()
	assert.Error(t, err)
}

func TestService_TickChecksDueSitesAndPersists(t *testing.T) {
	f := newServiceFixture(t, site("a", 60), site("b", 60))
	ctx := context.Background()

	f.service.tick(ctx)

	events := f.events(t)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventChangeDetected, events[0].Type)
	assert.Equal(t, "a", events[0].Payload.ID)
	assert.Equal(t, "version 1", events[0].Payload.Excerpt)
	assert.Equal(t, int64(1700000000), events[0].TS)

	stored, err := f.store.Load()
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.NotEmpty(t, stored[0].State.LastHash)
	assert.Equal(t, 200, stored[0].State.LastStatus)

	f.clock.Advance(30 * time.Second)
	f.service.tick(ctx)
	assert.Equal(t, int32(2), f.hits.Load())

	f.clock.Advance(30 * time.Second)
	f.service.tick(ctx)
	events = f.events(t)
	require.Len(t, events, 4)
	assert.Equal(t, models.EventStatus, events[2].Type)
}

func TestService_PausedSiteIsSkipped(t *testing.T) {
	paused := site("a", 60)
	paused.Paused = true
	f := newServiceFixture(t, paused)

	f.service.tick(context.Background())

	assert.Zero(t, f.hits.Load())
	assert.Empty(t, f.events(t))
}

func TestService_CommandsArriveThroughInbox(t *testing.T) {
	f := newServiceFixture(t, site("a", 3600))
	ctx := context.Background()
	f.service.tick(ctx)
	require.True(t, f.transport.IsConnected())

	require.NoError(t, f.transport.Publish(f.topics.Commands, 1, false, signed(t, command.TypePauseSite, command.IDPayload{ID: "a"})))
	require.Len(t, f.service.inbox, 1)
	f.service.handleCommand(ctx, <-f.service.inbox)
	assert.True(t, f.service.Sites()[0].Paused)

	require.NoError(t, f.transport.Publish(f.topics.Commands, 1, false, signed(t, command.TypeCheckNow, command.IDPayload{ID: "a"})))
	f.service.handleCommand(ctx, <-f.service.inbox)
	assert.Equal(t, int32(2), f.hits.Load())
	assert.Len(t, f.events(t), 2)
}

func TestService_UnsignedCommandIsDropped(t *testing.T) {
	f := newServiceFixture(t, site("a", 3600))
	ctx := context.Background()
	f.service.tick(ctx)

	raw := []byte(`{"type":"DELETE_SITE","payload":{"id":"a"},"ts":1}`)
	require.NoError(t, f.transport.Publish(f.topics.Commands, 1, false, raw))
	f.service.handleCommand(ctx, <-f.service.inbox)

	assert.Len(t, f.service.Sites(), 1)
}

func TestService_DeleteForgetsSchedule(t *testing.T) {
	f := newServiceFixture(t, site("a", 3600))
	ctx := context.Background()
	f.service.tick(ctx)

	f.service.handleCommand(ctx, signed(t, command.TypeDeleteSite, command.IDPayload{ID: "a"}))
	assert.Empty(t, f.service.Sites())

	stored, err := f.store.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)

	upsert := command.SitePayload{ID: "a", URL: "http://127.0.0.1:1", Mode: "full"}
	f.service.handleCommand(ctx, signed(t, command.TypeUpsertSite, upsert))
	require.Len(t, f.service.Sites(), 1)

	f.service.tick(ctx)
	events := f.events(t)
	last := events[len(events)-1]
	assert.Equal(t, models.EventError, last.Type)
	assert.Equal(t, -1, last.Payload.HTTP)
}

func TestService_ReconnectIsRateLimited(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	f.service.tick(ctx)
	require.Equal(t, 1, f.transport.Connects())

	f.transport.Drop()
	f.clock.Advance(time.Second)
	f.service.tick(ctx)
	assert.Equal(t, 1, f.transport.Connects())

	f.clock.Advance(time.Second)
	f.service.tick(ctx)
	assert.Equal(t, 2, f.transport.Connects())
	assert.True(t, f.transport.IsConnected())
}

func TestService_CommandBufferDropsWhenFull(t *testing.T) {
	f := newServiceFixture(t)
	for i := 0; i < DefaultCommandBuffer+3; i++ {
		f.service.enqueue([]byte("{}"))
	}
	assert.Len(t, f.service.inbox, DefaultCommandBuffer)
}

func TestService_RunStopsOnCancel(t *testing.T) {
	f := newServiceFixture(t, site("a", 3600))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.service.Run(ctx) }()

	require.Eventually(t, func() bool {
		for _, msg := range f.transport.Published() {
			if msg.Topic == f.topics.Events {
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, f.transport.IsConnected())
}

func TestMergeInitialSites(t *testing.T) {
	list := models.NewSiteList([]models.SiteRecord{site("a", 60)})

	added := MergeInitialSites(list, []models.SiteConfig{
		{ID: "a", URL: "https://ignored.test"},
		{ID: "b", URL: "https://b.test"},
		{URL: "https://no-id.test"},
	})

	assert.Equal(t, 1, added)
	require.Equal(t, 2, list.Len())
	b := list.Find("b")
	assert.Equal(t, uint32(models.DefaultIntervalSeconds), b.IntervalSeconds)
	assert.Equal(t, models.ModeSelector, b.Mode)
}
