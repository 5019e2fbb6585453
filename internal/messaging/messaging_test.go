package messaging

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTopics(t *testing.T) {
	topics := NewTopics("device-demo", "secret-demo")

	assert.True(t, strings.HasPrefix(topics.Base, "devices/device-demo-49dbd99f86"), topics.Base)
	assert.Equal(t, topics.Base+"/commands", topics.Commands)
	assert.Equal(t, topics.Base+"/events", topics.Events)
	assert.Len(t, strings.TrimPrefix(topics.Base, "devices/device-demo-"), 10)
}

func TestReconnector_Allow(t *testing.T) {
	r := NewReconnector(2 * time.Second)
	start := time.Unix(100, 0)

	assert.True(t, r.Allow(start))
	assert.False(t, r.Allow(start.Add(time.Second)))
	assert.False(t, r.Allow(start.Add(1999*time.Millisecond)))
	assert.True(t, r.Allow(start.Add(2*time.Second)))
	assert.False(t, r.Allow(start.Add(3*time.Second)))
}

func TestNewReconnector_Default(t *testing.T) {
	assert.Equal(t, DefaultReconnectInterval, NewReconnector(0).interval)
}

func TestSession_EnsureSubscribesAndRateLimits(t *testing.T) {
	transport := NewMemoryTransport()
	transport.FailConnect(errors.New("refused"))
	topics := NewTopics("dev", "s")

	var received [][]byte
	var attempts []bool
	session := NewSession(transport, topics, 0, NewReconnector(2*time.Second),
		func(p []byte) { received = append(received, p) }, zerolog.Nop())
	session.OnAttempt(func(ok bool) { attempts = append(attempts, ok) })

	now := time.Unix(0, 0)
	ctx := context.Background()

	assert.False(t, session.Ensure(ctx, now))
	assert.False(t, session.Ensure(ctx, now.Add(time.Second)))
	assert.Equal(t, 1, transport.Connects())

	transport.FailConnect(nil)
	assert.True(t, session.Ensure(ctx, now.Add(2*time.Second)))
	assert.Equal(t, []bool{false, true}, attempts)

	require.NoError(t, transport.Publish(topics.Commands, 1, false, []byte("cmd")))
	require.Len(t, received, 1)
	assert.Equal(t, "cmd", string(received[0]))

	transport.Drop()
	assert.True(t, session.Ensure(ctx, now.Add(4*time.Second)))
	require.NoError(t, transport.Publish(topics.Commands, 1, false, []byte("again")))
	assert.Len(t, received, 2)
}

func TestSession_PublishUsesEventsTopic(t *testing.T) {
	transport := NewMemoryTransport()
	topics := NewTopics("dev", "s")
	session := NewSession(transport, topics, 1, NewReconnector(0), func([]byte) {}, zerolog.Nop())

	assert.ErrorIs(t, session.Publish([]byte("x")), errorwrapper.ErrNotConnected)

	require.True(t, session.Ensure(context.Background(), time.Now()))
	require.NoError(t, session.Publish([]byte(`{"type":"STATUS"}`)))

	published := transport.Published()
	require.Len(t, published, 1)
	assert.Equal(t, topics.Events, published[0].Topic)
	assert.False(t, published[0].Retained)
}

func TestPublisher_PublishCommand(t *testing.T) {
	transport := NewMemoryTransport()
	var usedID string
	factory := func(cfg ClientConfig, _ zerolog.Logger) Transport {
		usedID = cfg.ClientID
		return transport
	}

	p := NewPublisher(ClientConfig{BrokerURL: "memory://"}, factory, zerolog.Nop())
	require.NoError(t, p.PublishCommand(context.Background(), "devices/x/commands", []byte("signed")))

	assert.Regexp(t, regexp.MustCompile(`^admin-[0-9a-f]{8}$`), usedID)
	published := transport.Published()
	require.Len(t, published, 1)
	assert.Equal(t, CommandQoS, published[0].QoS)
	assert.False(t, published[0].Retained)
	assert.False(t, transport.IsConnected())
}

func TestPublisher_ConnectFailure(t *testing.T) {
	transport := NewMemoryTransport()
	transport.FailConnect(errors.New("refused"))
	p := NewPublisher(ClientConfig{}, func(ClientConfig, zerolog.Logger) Transport { return transport }, zerolog.Nop())

	err := p.PublishCommand(context.Background(), "t", []byte("x"))
	assert.ErrorContains(t, err, "connect to broker")
}

func TestNewTransport_MemoryScheme(t *testing.T) {
	_, ok := NewTransport(ClientConfig{BrokerURL: "memory://local"}, zerolog.Nop()).(*MemoryTransport)
	assert.True(t, ok)

	_, ok = NewTransport(ClientConfig{BrokerURL: "tcp://localhost:1883"}, zerolog.Nop()).(*PahoTransport)
	assert.True(t, ok)
}
