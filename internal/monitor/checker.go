package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/webwatch/internal/datastore"
	"github.com/aleister1102/webwatch/internal/differ"
	"github.com/aleister1102/webwatch/internal/extractor"
	"github.com/aleister1102/webwatch/internal/fetcher"
	"github.com/aleister1102/webwatch/internal/metrics"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/rs/zerolog"
)

// PageFetcher performs one blocking GET.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (*fetcher.Result, error)
}

// EventSink receives the event produced by every check.
type EventSink interface {
	Notify(event models.Event) error
}

// History is the optional check journal.
type History interface {
	Record(ctx context.Context, entry datastore.CheckEntry) (int64, error)
	LastContent(ctx context.Context, siteID string) (string, bool, error)
	SaveContent(ctx context.Context, siteID, hash, content string, at time.Time) error
	ForgetSite(ctx context.Context, siteID string) error
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// CheckReport describes one finished check cycle.
type CheckReport struct {
	Event models.Event
	Diff  differ.Stats
}

// Checker runs the fetch, extract and compare cycle for a single site.
type Checker struct {
	fetcher PageFetcher
	sink    EventSink
	history History
	differ  *differ.ContentDiffer
	metrics *metrics.Metrics
	now     func() time.Time
	logger  zerolog.Logger
}

// NewChecker creates a Checker. history and contentDiffer may be nil.
func NewChecker(f PageFetcher, history History, contentDiffer *differ.ContentDiffer, m *metrics.Metrics, logger zerolog.Logger) *Checker {
	return &Checker{
		fetcher: f,
		history: history,
		differ:  contentDiffer,
		metrics: m,
		now:     time.Now,
		logger:  logger.With().Str("component", "Checker").Logger(),
	}
}

// WithSink sets where events are reported.
func (c *Checker) WithSink(sink EventSink) *Checker {
	c.sink = sink
	return c
}

// Check runs one cycle for rec and replaces rec.State with the result.
// Persisting the record is left to the caller.
func (c *Checker) Check(ctx context.Context, rec *models.SiteRecord) CheckReport {
	fetch := c.fetch(ctx, rec)

	var ext *extractor.Outcome
	if fetch.OK {
		outcome := extractor.Extract(rec.SiteConfig, fetch.Body)
		ext = &outcome
	}

	prev := rec.State
	next, kind := Transition(prev, fetch, ext)
	rec.State = next

	payload := models.EventPayload{
		ID:   rec.ID,
		HTTP: next.LastStatus,
		Size: next.LastSize,
		Hash: next.LastHash,
	}
	var checkErr error
	switch {
	case !fetch.OK:
		checkErr = fetch.Err
		payload.Error = "fetch failed: " + fetch.Err.Error()
	case !ext.OK:
		checkErr = ext.Err()
		payload.Error = ext.Error
		payload.Excerpt = extractor.Excerpt(fetch.Body)
	default:
		payload.Changed = next.LastChanged
		payload.Excerpt = extractor.Excerpt(ext.Content)
	}

	checkedAt := c.now()
	report := CheckReport{Event: models.Event{Type: kind, Payload: payload, TS: checkedAt.Unix()}}
	if ext != nil && ext.OK {
		report.Diff = c.trackContent(ctx, rec.ID, next, ext.Content, checkedAt)
	}
	c.journal(ctx, report, checkedAt)

	c.log(rec, report, checkErr)
	c.metrics.ObserveCheck(kind)
	if c.sink != nil {
		_ = c.sink.Notify(report.Event)
	}
	return report
}

func (c *Checker) fetch(ctx context.Context, rec *models.SiteRecord) FetchOutcome {
	res, err := c.fetcher.Fetch(ctx, rec.URL, rec.Headers)
	if err != nil {
		return FetchOutcome{Status: models.FetchFailureStatus, Err: err}
	}
	c.metrics.ObserveFetch(res.Duration)
	if res.Truncated {
		c.logger.Debug().Str("site_id", rec.ID).Int("size", res.Size).Msg("Body truncated to limit")
	}
	return FetchOutcome{OK: true, Status: res.StatusCode, Body: res.Body, Size: res.Size}
}

// trackContent diffs a changed fragment against the stored one and stores
// the new fragment.
func (c *Checker) trackContent(ctx context.Context, siteID string, state models.SiteState, content string, at time.Time) differ.Stats {
	if c.history == nil {
		return differ.Stats{}
	}

	previous, found, err := c.history.LastContent(ctx, siteID)
	if err != nil {
		c.logger.Warn().Err(err).Str("site_id", siteID).Msg("Could not load previous content")
		return differ.Stats{}
	}
	if found && !state.LastChanged {
		return differ.Stats{Identical: true}
	}

	var stats differ.Stats
	if found && c.differ != nil {
		stats = c.differ.Compare(previous, content)
	}
	if err := c.history.SaveContent(ctx, siteID, state.LastHash, content, at); err != nil {
		c.logger.Warn().Err(err).Str("site_id", siteID).Msg("Could not store content")
	}
	return stats
}

func (c *Checker) journal(ctx context.Context, report CheckReport, at time.Time) {
	if c.history == nil {
		return
	}
	p := report.Event.Payload
	entry := datastore.CheckEntry{
		SiteID:       p.ID,
		Kind:         report.Event.Type,
		Status:       p.HTTP,
		Size:         p.Size,
		Hash:         p.Hash,
		Changed:      p.Changed,
		Excerpt:      p.Excerpt,
		Error:        p.Error,
		LinesAdded:   report.Diff.LinesAdded,
		LinesDeleted: report.Diff.LinesDeleted,
		CheckedAt:    at,
	}
	if _, err := c.history.Record(ctx, entry); err != nil {
		c.logger.Warn().Err(err).Str("site_id", p.ID).Msg("Could not journal check")
	}
}

func (c *Checker) log(rec *models.SiteRecord, report CheckReport, checkErr error) {
	p := report.Event.Payload
	switch report.Event.Type {
	case models.EventChangeDetected:
		c.logger.Info().
			Str("site_id", rec.ID).
			Int("http", p.HTTP).
			Str("hash", p.Hash).
			Int("lines_added", report.Diff.LinesAdded).
			Int("lines_deleted", report.Diff.LinesDeleted).
			Msg("Change detected")
	case models.EventError:
		c.logger.Warn().Err(checkErr).Str("site_id", rec.ID).Int("http", p.HTTP).Msg("Check failed")
	default:
		c.logger.Debug().Str("site_id", rec.ID).Int("http", p.HTTP).Msg("No change")
	}
}
