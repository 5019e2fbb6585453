package messaging

import (
	"context"
	"strings"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CommandQoS is the delivery level used for administrative commands.
const CommandQoS byte = 1

// TransportFactory builds a transport for a one-shot connection.
type TransportFactory func(cfg ClientConfig, logger zerolog.Logger) Transport

// Publisher sends signed commands to a device from an operator machine.
type Publisher struct {
	cfg     ClientConfig
	factory TransportFactory
	logger  zerolog.Logger
}

// NewPublisher creates a Publisher. A nil factory uses NewTransport.
func NewPublisher(cfg ClientConfig, factory TransportFactory, logger zerolog.Logger) *Publisher {
	if factory == nil {
		factory = NewTransport
	}
	return &Publisher{
		cfg:     cfg,
		factory: factory,
		logger:  logger.With().Str("component", "Publisher").Logger(),
	}
}

// AdminClientID returns a fresh "admin-xxxxxxxx" client id.
func AdminClientID() string {
	return "admin-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// PublishCommand connects under a fresh admin client id, publishes payload
// once at QoS 1 without retain, and disconnects.
func (p *Publisher) PublishCommand(ctx context.Context, topic string, payload []byte) error {
	cfg := p.cfg
	cfg.ClientID = AdminClientID()

	transport := p.factory(cfg, p.logger)
	if err := transport.Connect(ctx); err != nil {
		return errorwrapper.WrapError(err, "connect to broker")
	}
	defer transport.Disconnect()

	if err := transport.Publish(topic, CommandQoS, false, payload); err != nil {
		return errorwrapper.WrapError(err, "publish command")
	}

	p.logger.Info().Str("topic", topic).Str("client_id", cfg.ClientID).Int("bytes", len(payload)).Msg("Command published")
	return nil
}
