// Package notifier publishes check events.
package notifier

import (
	"encoding/json"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/aleister1102/webwatch/internal/metrics"
	"github.com/aleister1102/webwatch/internal/models"
	"github.com/rs/zerolog"
)

// Channel carries encoded events to the broker.
type Channel interface {
	Publish(payload []byte) error
}

// EventPublisher reports check outcomes on the device events topic.
type EventPublisher struct {
	channel Channel
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(channel Channel, m *metrics.Metrics, logger zerolog.Logger) *EventPublisher {
	return &EventPublisher{
		channel: channel,
		metrics: m,
		logger:  logger.With().Str("component", "EventPublisher").Logger(),
	}
}

// Notify encodes and publishes one event. A failed publish is logged and
// counted but the event is not retried.
func (p *EventPublisher) Notify(event models.Event) error {
	payload, err := EncodeEvent(event)
	if err != nil {
		p.logger.Error().Err(err).Str("site_id", event.Payload.ID).Msg("Failed to encode event")
		return err
	}

	if err := p.channel.Publish(payload); err != nil {
		p.metrics.IncPublishFailure()
		p.logger.Warn().Err(err).Str("site_id", event.Payload.ID).Str("type", string(event.Type)).Msg("Event publish failed")
		return errorwrapper.WrapError(err, "publish event")
	}

	p.logger.Debug().
		Str("site_id", event.Payload.ID).
		Str("type", string(event.Type)).
		Int("http", event.Payload.HTTP).
		Int("bytes", len(payload)).
		Msg("Event published")
	return nil
}

// EncodeEvent returns the wire form of an event.
func EncodeEvent(event models.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errorwrapper.WrapError(err, "encode event")
	}
	return data, nil
}
