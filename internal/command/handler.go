package command

import (
	"context"
	"errors"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/metrics"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SiteSaver persists the full site collection.
type SiteSaver interface {
	Save(records []models.SiteRecord) error
}

// CheckRunner runs one check cycle for a site and reports whether it exists.
type CheckRunner interface {
	CheckNow(ctx context.Context, id string) bool
}

// Result describes what Handle did with a message.
type Result struct {
	Type    CommandType
	Outcome string
	Err     error
}

// Handler applies authenticated commands to the site collection. It must
// only be used from the goroutine that owns the collection.
type Handler struct {
	secret    []byte
	sites     *models.SiteList
	store     SiteSaver
	checker   CheckRunner
	onRemoved func(id string)
	metrics   *metrics.Metrics
	validate  *validator.Validate
	logger    zerolog.Logger
}

// HandlerBuilder provides a fluent interface for creating Handler
type HandlerBuilder struct {
	handler Handler
}

// NewHandlerBuilder creates a new builder
func NewHandlerBuilder(logger zerolog.Logger) *HandlerBuilder {
	return &HandlerBuilder{handler: Handler{
		logger:   logger.With().Str("component", "CommandHandler").Logger(),
		validate: newValidator(),
	}}
}

// WithSecret sets the shared device secret
func (b *HandlerBuilder) WithSecret(secret string) *HandlerBuilder {
	b.handler.secret = []byte(secret)
	return b
}

// WithSites sets the collection commands operate on
func (b *HandlerBuilder) WithSites(sites *models.SiteList) *HandlerBuilder {
	b.handler.sites = sites
	return b
}

// WithStore sets where the collection is persisted after a mutation
func (b *HandlerBuilder) WithStore(store SiteSaver) *HandlerBuilder {
	b.handler.store = store
	return b
}

// WithChecker sets the runner used by CHECK_NOW
func (b *HandlerBuilder) WithChecker(checker CheckRunner) *HandlerBuilder {
	b.handler.checker = checker
	return b
}

// OnRemoved registers a callback invoked for each deleted site id
func (b *HandlerBuilder) OnRemoved(fn func(id string)) *HandlerBuilder {
	b.handler.onRemoved = fn
	return b
}

// WithMetrics sets the metrics sink
func (b *HandlerBuilder) WithMetrics(m *metrics.Metrics) *HandlerBuilder {
	b.handler.metrics = m
	return b
}

// Build creates a new Handler instance
func (b *HandlerBuilder) Build() (*Handler, error) {
	h := b.handler
	if len(h.secret) == 0 {
		return nil, errorwrapper.NewValidationError("secret", "", "device secret cannot be empty")
	}
	if h.sites == nil {
		return nil, errorwrapper.NewValidationError("sites", nil, "site list cannot be nil")
	}
	if h.store == nil {
		return nil, errorwrapper.NewValidationError("store", nil, "site store cannot be nil")
	}
	if h.checker == nil {
		return nil, errorwrapper.NewValidationError("checker", nil, "check runner cannot be nil")
	}
	return &h, nil
}

// Handle authenticates and applies one raw message. Rejected messages cause
// no mutation and no reply.
func (h *Handler) Handle(ctx context.Context, raw []byte) Result {
	if err := Verify(raw, h.secret); err != nil {
		outcome := metrics.ResultRejected
		var validationErr *errorwrapper.ValidationError
		if errors.As(err, &validationErr) {
			outcome = metrics.ResultMalformed
		}
		h.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("Command dropped")
		h.metrics.ObserveCommand("unauthenticated", outcome)
		return Result{Outcome: outcome, Err: err}
	}

	cmd := Decode(raw)
	var res Result
	switch c := cmd.(type) {
	case UpsertSite:
		res = h.upsert(c)
	case DeleteSite:
		res = h.remove(c)
	case PauseSite:
		res = h.setPaused(c.Type(), c.ID, true)
	case ResumeSite:
		res = h.setPaused(c.Type(), c.ID, false)
	case CheckNow:
		res = h.checkNow(ctx, c)
	default:
		h.logger.Info().Str("type", string(cmd.Type())).Msg("Unknown command ignored")
		res = Result{Type: cmd.Type(), Outcome: metrics.ResultIgnored}
	}

	label := string(res.Type)
	if _, known := ParseCommandType(label); !known {
		label = "UNKNOWN"
	}
	h.metrics.ObserveCommand(label, res.Outcome)
	return res
}

func (h *Handler) upsert(c UpsertSite) Result {
	cfg := c.Site.ToConfig()
	if err := h.validate.Struct(cfg); err != nil {
		err = formatValidationError(err)
		h.logger.Warn().Err(err).Str("site_id", cfg.ID).Msg("Incomplete UPSERT_SITE ignored")
		return Result{Type: TypeUpsertSite, Outcome: metrics.ResultRejected, Err: err}
	}

	added := h.sites.Upsert(cfg)
	h.persist()
	h.logger.Info().Str("site_id", cfg.ID).Bool("added", added).Msg("Site upserted")
	return Result{Type: TypeUpsertSite, Outcome: metrics.ResultApplied}
}

func (h *Handler) remove(c DeleteSite) Result {
	if h.sites.Remove(c.ID) == 0 {
		h.logger.Debug().Str("site_id", c.ID).Msg("DELETE_SITE for unknown site")
		return Result{Type: TypeDeleteSite, Outcome: metrics.ResultNotFound}
	}
	h.persist()
	if h.onRemoved != nil {
		h.onRemoved(c.ID)
	}
	h.logger.Info().Str("site_id", c.ID).Msg("Site deleted")
	return Result{Type: TypeDeleteSite, Outcome: metrics.ResultApplied}
}

func (h *Handler) setPaused(t CommandType, id string, paused bool) Result {
	rec := h.sites.Find(id)
	if rec == nil {
		h.logger.Warn().Str("site_id", id).Str("type", string(t)).Msg("Site not found")
		return Result{Type: t, Outcome: metrics.ResultNotFound}
	}
	rec.Paused = paused
	h.persist()
	h.logger.Info().Str("site_id", id).Bool("paused", paused).Msg("Site pause state changed")
	return Result{Type: t, Outcome: metrics.ResultApplied}
}

func (h *Handler) checkNow(ctx context.Context, c CheckNow) Result {
	if !h.checker.CheckNow(ctx, c.ID) {
		h.logger.Warn().Str("site_id", c.ID).Msg("CHECK_NOW for unknown site")
		return Result{Type: TypeCheckNow, Outcome: metrics.ResultNotFound}
	}
	return Result{Type: TypeCheckNow, Outcome: metrics.ResultApplied}
}

func (h *Handler) persist() {
	if err := h.store.Save(h.sites.Records()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to persist sites")
	}
}
