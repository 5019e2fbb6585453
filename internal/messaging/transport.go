package messaging

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// MessageHandler receives the payload of an inbound message.
type MessageHandler func(payload []byte)

// Transport is a publish/subscribe session.
type Transport interface {
	Connect(ctx context.Context) error
	IsConnected() bool
	Subscribe(topic string, qos byte, handler MessageHandler) error
	Publish(topic string, qos byte, retained bool, payload []byte) error
	Disconnect()
}

// ClientConfig configures a broker connection.
type ClientConfig struct {
	BrokerURL          string
	ClientID           string
	Username           string
	Password           string
	InsecureSkipVerify bool
	KeepAlive          time.Duration
	OperationTimeout   time.Duration
}

const defaultOperationTimeout = 10 * time.Second

// MemoryScheme selects the in-process transport instead of a broker.
const MemoryScheme = "memory://"

// NewTransport returns a MemoryTransport for memory:// URLs and a
// PahoTransport otherwise.
func NewTransport(cfg ClientConfig, logger zerolog.Logger) Transport {
	if strings.HasPrefix(cfg.BrokerURL, MemoryScheme) {
		return NewMemoryTransport()
	}
	return NewPahoTransport(cfg, logger)
}

// PahoTransport is a Transport over an MQTT broker. Automatic reconnection
// is disabled; callers decide when to reconnect.
type PahoTransport struct {
	cfg    ClientConfig
	client mqtt.Client
	logger zerolog.Logger
}

// NewPahoTransport creates an unconnected transport.
func NewPahoTransport(cfg ClientConfig, logger zerolog.Logger) *PahoTransport {
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = defaultOperationTimeout
	}
	return &PahoTransport{
		cfg:    cfg,
		logger: logger.With().Str("component", "MQTT").Str("client_id", cfg.ClientID).Logger(),
	}
}

func (p *PahoTransport) options() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(p.cfg.OperationTimeout).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			p.logger.Warn().Err(err).Msg("Connection lost")
		})
	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}
	if p.cfg.KeepAlive > 0 {
		opts.SetKeepAlive(p.cfg.KeepAlive)
	}
	if p.cfg.InsecureSkipVerify {
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true}) //nolint:gosec
	}
	return opts
}

// Connect opens a new session, replacing any previous client.
func (p *PahoTransport) Connect(ctx context.Context) error {
	if p.client != nil && p.client.IsConnected() {
		return nil
	}
	p.client = mqtt.NewClient(p.options())

	if err := p.wait(ctx, p.client.Connect()); err != nil {
		return errorwrapper.NewNetworkError(p.cfg.BrokerURL, "mqtt connect failed", err)
	}
	p.logger.Info().Str("broker", p.cfg.BrokerURL).Msg("Connected")
	return nil
}

// IsConnected reports whether the session is currently open.
func (p *PahoTransport) IsConnected() bool {
	return p.client != nil && p.client.IsConnectionOpen()
}

// Subscribe registers handler for topic. The handler runs on a paho goroutine.
func (p *PahoTransport) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if !p.IsConnected() {
		return errorwrapper.ErrNotConnected
	}
	token := p.client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	if err := p.wait(context.Background(), token); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	return nil
}

// Publish sends payload and waits for the broker acknowledgement.
func (p *PahoTransport) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.IsConnected() {
		return errorwrapper.ErrNotConnected
	}
	if err := p.wait(context.Background(), p.client.Publish(topic, qos, retained, payload)); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Disconnect closes the session.
func (p *PahoTransport) Disconnect() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
		p.logger.Info().Msg("Disconnected")
	}
}

func (p *PahoTransport) wait(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.cfg.OperationTimeout):
		return errorwrapper.ErrTimeout
	}
}
