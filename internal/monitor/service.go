// Package monitor runs the device control loop: scheduled check cycles and
// command handling on a single goroutine that owns the site list.
package monitor

import (
	"context"
	"time"

	"github.com/aleister1102/webwatch/internal/command"
	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/messaging"
	"github.com/aleister1102/webwatch/internal/metrics"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/aleister1102/webwatch/internal/notifier"
	"github.com/aleister1102/webwatch/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	DefaultTickInterval  = time.Second
	DefaultCommandBuffer = 16
	pruneInterval        = 24 * time.Hour
)

// SiteStore persists the site list.
type SiteStore interface {
	Save(records []models.SiteRecord) error
}

// ServiceConfig holds the loop settings.
type ServiceConfig struct {
	DeviceSecret      string
	TickInterval      time.Duration
	CommandBuffer     int
	QoS               byte
	ReconnectInterval time.Duration
	HistoryRetention  time.Duration
}

// Service is the device agent. Run must be called at most once.
type Service struct {
	cfg       ServiceConfig
	sites     *models.SiteList
	store     SiteStore
	checker   *Checker
	handler   *command.Handler
	session   *messaging.Session
	due       *scheduler.DueTracker
	cycles    *CycleTracker
	history   History
	inbox     chan []byte
	lastPrune time.Time
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    zerolog.Logger
}

// ServiceBuilder provides a fluent interface for creating Service
type ServiceBuilder struct {
	cfg       ServiceConfig
	sites     *models.SiteList
	store     SiteStore
	checker   *Checker
	transport messaging.Transport
	topics    messaging.Topics
	history   History
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    zerolog.Logger
}

// NewServiceBuilder creates a new builder
func NewServiceBuilder(logger zerolog.Logger) *ServiceBuilder {
	return &ServiceBuilder{logger: logger, now: time.Now}
}

// WithConfig sets the loop settings
func (b *ServiceBuilder) WithConfig(cfg ServiceConfig) *ServiceBuilder {
	b.cfg = cfg
	return b
}

// WithSites sets the site list the service owns
func (b *ServiceBuilder) WithSites(sites *models.SiteList, store SiteStore) *ServiceBuilder {
	b.sites = sites
	b.store = store
	return b
}

// WithChecker sets the check runner
func (b *ServiceBuilder) WithChecker(checker *Checker) *ServiceBuilder {
	b.checker = checker
	return b
}

// WithTransport sets the broker connection and device topics
func (b *ServiceBuilder) WithTransport(transport messaging.Transport, topics messaging.Topics) *ServiceBuilder {
	b.transport = transport
	b.topics = topics
	return b
}

// WithHistory sets the optional check journal
func (b *ServiceBuilder) WithHistory(history History) *ServiceBuilder {
	b.history = history
	return b
}

// WithMetrics sets the metrics sink
func (b *ServiceBuilder) WithMetrics(m *metrics.Metrics) *ServiceBuilder {
	b.metrics = m
	return b
}

// WithClock overrides the time source
func (b *ServiceBuilder) WithClock(now func() time.Time) *ServiceBuilder {
	b.now = now
	return b
}

// Build creates a new Service instance
func (b *ServiceBuilder) Build() (*Service, error) {
	if b.sites == nil || b.store == nil {
		return nil, errorwrapper.NewValidationError("sites", nil, "site list and store are required")
	}
	if b.checker == nil {
		return nil, errorwrapper.NewValidationError("checker", nil, "checker is required")
	}
	if b.transport == nil {
		return nil, errorwrapper.NewValidationError("transport", nil, "transport is required")
	}

	cfg := b.cfg
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.CommandBuffer <= 0 {
		cfg.CommandBuffer = DefaultCommandBuffer
	}
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = messaging.DefaultReconnectInterval
	}

	s := &Service{
		cfg:     cfg,
		sites:   b.sites,
		store:   b.store,
		checker: b.checker,
		due:     scheduler.NewDueTracker(),
		cycles:  NewCycleTracker(),
		history: b.history,
		inbox:   make(chan []byte, cfg.CommandBuffer),
		metrics: b.metrics,
		now:     b.now,
		logger:  b.logger.With().Str("component", "MonitorService").Logger(),
	}
	s.checker.now = b.now

	handler, err := command.NewHandlerBuilder(b.logger).
		WithSecret(cfg.DeviceSecret).
		WithSites(s.sites).
		WithStore(s.store).
		WithChecker(s).
		WithMetrics(b.metrics).
		OnRemoved(s.forget).
		Build()
	if err != nil {
		return nil, err
	}
	s.handler = handler

	s.session = messaging.NewSession(b.transport, b.topics, cfg.QoS, messaging.NewReconnector(cfg.ReconnectInterval), s.enqueue, b.logger)
	s.session.OnAttempt(func(ok bool) {
		s.metrics.IncReconnect()
		s.metrics.SetBrokerConnected(ok)
	})
	if s.checker.sink == nil {
		s.checker.WithSink(notifier.NewEventPublisher(s.session, b.metrics, b.logger))
	}
	return s, nil
}

// Run drives the loop until ctx is cancelled. Commands are handled between
// checks, never concurrently with one.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info().
		Int("sites", s.sites.Len()).
		Str("commands_topic", s.session.Topics().Commands).
		Dur("tick", s.cfg.TickInterval).
		Msg("Starting monitor service")
	s.metrics.SetSites(s.sites.Len())
	defer s.session.Close()

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Monitor service stopping")
			return nil
		case raw := <-s.inbox:
			s.handleCommand(ctx, raw)
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// CheckNow runs one check for id immediately and reports whether the site exists.
func (s *Service) CheckNow(ctx context.Context, id string) bool {
	_, ok := s.runCheck(ctx, id)
	return ok
}

// Sites returns a copy of the site list. Only safe while Run is not executing.
func (s *Service) Sites() []models.SiteRecord {
	return s.sites.Records()
}

// Topics returns the device topics.
func (s *Service) Topics() messaging.Topics {
	return s.session.Topics()
}

// enqueue is called from transport callbacks and never blocks.
func (s *Service) enqueue(payload []byte) {
	raw := make([]byte, len(payload))
	copy(raw, payload)
	select {
	case s.inbox <- raw:
	default:
		s.logger.Warn().Int("bytes", len(raw)).Msg("Command buffer full, message dropped")
	}
}

func (s *Service) handleCommand(ctx context.Context, raw []byte) {
	res := s.handler.Handle(ctx, raw)
	s.logger.Debug().Str("type", string(res.Type)).Str("result", res.Outcome).Msg("Command handled")
	s.metrics.SetSites(s.sites.Len())
}

func (s *Service) tick(ctx context.Context) {
	now := s.now()
	connected := s.session.Ensure(ctx, now)
	s.metrics.SetBrokerConnected(connected)

	records := s.sites.Records()
	if wait, ok := s.due.NextDue(records, now); !ok || wait > 0 {
		s.prune(ctx, now)
		return
	}
	due := s.due.Due(records, now)

	s.cycles.StartCycle(now)
	for _, id := range due {
		if ctx.Err() != nil {
			return
		}
		if kind, ok := s.runCheck(ctx, id); ok {
			s.cycles.Add(id, kind)
		}
	}
	s.logger.Info().
		Str("cycle_id", s.cycles.CurrentCycleID()).
		Int("checked", s.cycles.Checked()).
		Int("changed", s.cycles.Count(models.EventChangeDetected)).
		Int("errors", s.cycles.Count(models.EventError)).
		Strs("changed_sites", s.cycles.ChangedSites()).
		Msg("Check cycle complete")
	s.prune(ctx, now)
}

// runCheck checks one site and persists the whole list afterwards.
func (s *Service) runCheck(ctx context.Context, id string) (models.EventKind, bool) {
	rec := s.sites.Find(id)
	if rec == nil {
		return "", false
	}
	report := s.checker.Check(ctx, rec)
	s.due.MarkChecked(id, s.now())
	s.persist()
	return report.Event.Type, true
}

func (s *Service) persist() {
	if err := s.store.Save(s.sites.Records()); err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist sites")
	}
}

func (s *Service) forget(id string) {
	s.due.Forget(id)
	if s.history == nil {
		return
	}
	if err := s.history.ForgetSite(context.Background(), id); err != nil {
		s.logger.Warn().Err(err).Str("site_id", id).Msg("Could not drop stored content")
	}
}

func (s *Service) prune(ctx context.Context, now time.Time) {
	if s.history == nil || s.cfg.HistoryRetention <= 0 || now.Sub(s.lastPrune) < pruneInterval {
		return
	}
	s.lastPrune = now
	if _, err := s.history.Prune(ctx, now.Add(-s.cfg.HistoryRetention)); err != nil {
		s.logger.Warn().Err(err).Msg("History prune failed")
	}
}

// MergeInitialSites appends configured sites whose id is not yet present and
// reports how many were added.
func MergeInitialSites(sites *models.SiteList, initial []models.SiteConfig) int {
	added := 0
	for _, cfg := range initial {
		if cfg.ID == "" || sites.Find(cfg.ID) != nil {
			continue
		}
		cfg.ApplyDefaults()
		sites.Upsert(cfg)
		added++
	}
	return added
}
