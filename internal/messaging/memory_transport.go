package messaging

import (
	"context"
	"sync"

	"github.com/aleister1102/webwatch/internal/common/errorwrapper"
)

// Message is a publication captured by MemoryTransport.
type Message struct {
	Topic    string
	QoS      byte
	Retained bool
	Payload  []byte
}

// MemoryTransport is an in-process Transport. Publications are recorded and
// delivered synchronously to subscribers of the exact topic.
type MemoryTransport struct {
	mu          sync.Mutex
	connected   bool
	failConnect error
	connects    int
	handlers    map[string]MessageHandler
	published   []Message
}

// NewMemoryTransport creates a disconnected MemoryTransport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{handlers: make(map[string]MessageHandler)}
}

// FailConnect makes subsequent Connect calls return err. Nil restores success.
func (m *MemoryTransport) FailConnect(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failConnect = err
}

// Drop simulates a lost session. Subscriptions are discarded.
func (m *MemoryTransport) Drop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	m.handlers = make(map[string]MessageHandler)
}

func (m *MemoryTransport) Connect(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connects++
	if m.failConnect != nil {
		return m.failConnect
	}
	m.connected = true
	return nil
}

// Connects returns how many times Connect was called.
func (m *MemoryTransport) Connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

func (m *MemoryTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MemoryTransport) Subscribe(topic string, _ byte, handler MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return errorwrapper.ErrNotConnected
	}
	m.handlers[topic] = handler
	return nil
}

func (m *MemoryTransport) Publish(topic string, qos byte, retained bool, payload []byte) error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return errorwrapper.ErrNotConnected
	}
	m.published = append(m.published, Message{
		Topic:    topic,
		QoS:      qos,
		Retained: retained,
		Payload:  append([]byte(nil), payload...),
	})
	handler := m.handlers[topic]
	m.mu.Unlock()

	if handler != nil {
		handler(payload)
	}
	return nil
}

func (m *MemoryTransport) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
}

// Published returns a copy of every recorded publication.
func (m *MemoryTransport) Published() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.published...)
}
