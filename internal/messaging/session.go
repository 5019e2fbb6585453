package messaging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Session keeps the device subscribed to its command topic across
// connection losses.
type Session struct {
	transport   Transport
	topics      Topics
	qos         byte
	reconnector *Reconnector
	onCommand   MessageHandler
	onAttempt   func(ok bool)
	logger      zerolog.Logger
}

// NewSession wires a transport to the device topics. onCommand receives raw
// command payloads and must not block.
func NewSession(transport Transport, topics Topics, qos byte, reconnector *Reconnector, onCommand MessageHandler, logger zerolog.Logger) *Session {
	return &Session{
		transport:   transport,
		topics:      topics,
		qos:         qos,
		reconnector: reconnector,
		onCommand:   onCommand,
		logger:      logger.With().Str("component", "Session").Logger(),
	}
}

// OnAttempt registers a callback invoked after every connection attempt.
func (s *Session) OnAttempt(fn func(ok bool)) {
	s.onAttempt = fn
}

// Topics returns the device topics.
func (s *Session) Topics() Topics {
	return s.topics
}

// Ensure connects and subscribes when the session is down and the
// reconnector allows an attempt. It reports whether the session is up.
func (s *Session) Ensure(ctx context.Context, now time.Time) bool {
	if s.transport.IsConnected() {
		return true
	}
	if !s.reconnector.Allow(now) {
		return false
	}

	ok := s.connect(ctx)
	if s.onAttempt != nil {
		s.onAttempt(ok)
	}
	return ok
}

func (s *Session) connect(ctx context.Context) bool {
	if err := s.transport.Connect(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Broker connection failed")
		return false
	}
	if err := s.transport.Subscribe(s.topics.Commands, s.qos, s.onCommand); err != nil {
		s.logger.Warn().Err(err).Str("topic", s.topics.Commands).Msg("Subscribe failed")
		s.transport.Disconnect()
		return false
	}
	s.logger.Info().Str("topic", s.topics.Commands).Msg("Subscribed to commands")
	return true
}

// Publish sends an event payload on the events topic, never retained.
func (s *Session) Publish(payload []byte) error {
	return s.transport.Publish(s.topics.Events, s.qos, false, payload)
}

// Close disconnects the transport.
func (s *Session) Close() {
	s.transport.Disconnect()
}
