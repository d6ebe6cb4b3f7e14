package push

import (
	"context"
	"errors"
	"log"
	"sync"
)

var ErrNotConnected = errors.New("push channel is not connected")

// Handler receives the raw payload of one message on a subscribed
// topic. Handlers run outside the manager's lock and may call back
// into Subscribe and Unsubscribe.
type Handler func(payload []byte)

// MessageFunc delivers an inbound message from the transport.
type MessageFunc func(topic string, payload []byte)

// StateFunc reports transport connectivity transitions.
type StateFunc func(connected bool, err error)

// Transport is the wire-level half of the push channel. Reconnection is
// the transport's problem; it flips the state flag and does not replay
// subscriptions, the owner re-issues them through the manager's
// idempotent keys.
type Transport interface {
	Connect(ctx context.Context, recv MessageFunc, state StateFunc) error
	Subscribe(ctx context.Context, topic string) error
	Unsubscribe(ctx context.Context, topic string) error
	Close() error
}

// Manager owns the push channel lifecycle and the per-key subscription
// table. Dispatch runs handlers outside the lock; Disconnect waits out
// any handler already in flight, so once it returns no handler fires.
type Manager struct {
	mu        sync.Mutex
	transport Transport
	handlers  map[Key]Handler
	connected bool

	inflight    sync.WaitGroup
	onReconnect func()
}

type Option func(*Manager)

// WithReconnectObserver is invoked after the transport re-establishes
// a dropped channel. Subscriptions do not survive a drop, so the owner
// re-issues them from this callback.
func WithReconnectObserver(fn func()) Option {
	return func(m *Manager) { m.onReconnect = fn }
}

func NewManager(transport Transport, opts ...Option) *Manager {
	m := &Manager{
		transport: transport,
		handlers:  make(map[Key]Handler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect establishes the channel exactly once; calling it while
// already connected is a no-op.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connected {
		return nil
	}
	if err := m.transport.Connect(ctx, m.dispatch, m.setState); err != nil {
		return err
	}
	m.connected = true
	return nil
}

func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Subscribe registers a handler for one key. Repeat calls for the same
// key keep the first registration and are no-ops. While disconnected it
// fails fast instead of queueing.
func (m *Manager) Subscribe(ctx context.Context, kind TopicKind, entityID string, handler Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	key := Key{Kind: kind, EntityID: entityID}
	if _, exists := m.handlers[key]; exists {
		return nil
	}
	if err := m.transport.Subscribe(ctx, key.Topic()); err != nil {
		return err
	}
	m.handlers[key] = handler
	return nil
}

// Unsubscribe tears down one subscription. Unknown keys are ignored.
func (m *Manager) Unsubscribe(ctx context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.handlers[key]; !exists {
		return nil
	}
	delete(m.handlers, key)
	return m.transport.Unsubscribe(ctx, key.Topic())
}

// Disconnect unsubscribes every live key, waits for handlers already
// dispatched to finish and closes the transport. No handler runs past
// its return.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	ctx := context.Background()
	for key := range m.handlers {
		if err := m.transport.Unsubscribe(ctx, key.Topic()); err != nil {
			log.Printf("push: unsubscribe %s on disconnect: %v", key.Topic(), err)
		}
	}
	m.handlers = make(map[Key]Handler)
	m.connected = false
	m.mu.Unlock()

	m.inflight.Wait()
	return m.transport.Close()
}

func (m *Manager) dispatch(topic string, payload []byte) {
	m.mu.Lock()
	key, ok := keyFromTopic(topic)
	if !ok {
		m.mu.Unlock()
		log.Printf("push: message on unparsable topic %q dropped", topic)
		return
	}
	handler, exists := m.handlers[key]
	if !exists {
		m.mu.Unlock()
		return
	}
	m.inflight.Add(1)
	m.mu.Unlock()
	defer m.inflight.Done()

	handler(payload)
}

// setState tracks transport connectivity. A drop kills the
// transport-level subscriptions with it, so the key table is cleared;
// coming back up fires the reconnect observer, whose job is to re-issue
// subscribe with the same keys.
func (m *Manager) setState(connected bool, err error) {
	m.mu.Lock()
	wasConnected := m.connected
	m.connected = connected
	if !connected {
		m.handlers = make(map[Key]Handler)
	}
	m.mu.Unlock()
	if err != nil {
		log.Printf("push: transport state change (connected=%v): %v", connected, err)
	}
	if connected && !wasConnected && m.onReconnect != nil {
		m.onReconnect()
	}
}
