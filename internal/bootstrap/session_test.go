package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Domenick1991/seatsync/config"
	"github.com/Domenick1991/seatsync/internal/domain"
	"github.com/Domenick1991/seatsync/internal/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flightJSON = `{
	"id": "FL-42",
	"flightNumber": "SU100",
	"seats": [
		{"seatNumber": "12A", "seatClass": "Economy", "status": "Available", "basePrice": 50},
		{"seatNumber": "12B", "seatClass": "Economy", "status": "Available", "basePrice": 70}
	]
}`

// fakeTransport records subscription traffic and lets tests inject
// inbound messages and connectivity transitions.
type fakeTransport struct {
	mu         sync.Mutex
	subscribes []string
	closed     bool
	recv       push.MessageFunc
	state      push.StateFunc
}

func (f *fakeTransport) Connect(ctx context.Context, recv push.MessageFunc, state push.StateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recv = recv
	f.state = state
	return nil
}

func (f *fakeTransport) Subscribe(ctx context.Context, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribes = append(f.subscribes, topic)
	return nil
}

func (f *fakeTransport) Unsubscribe(ctx context.Context, topic string) error {
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) deliver(topic string, payload []byte) {
	f.mu.Lock()
	recv := f.recv
	f.mu.Unlock()
	recv(topic, payload)
}

func (f *fakeTransport) flipState(connected bool, err error) {
	f.mu.Lock()
	state := f.state
	f.mu.Unlock()
	state(connected, err)
}

func (f *fakeTransport) subscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribes)
}

func (f *fakeTransport) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestSession(t *testing.T) (*Session, *fakeTransport) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(flightJSON))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	transport := &fakeTransport{}
	cfg := &config.Config{
		Inventory: config.InventoryConfig{BaseURL: srv.URL, TimeoutSeconds: 5},
		Push:      config.PushConfig{Transport: "websocket"},
	}
	session, err := NewSession(cfg, "FL-42", WithTransport(transport))
	require.NoError(t, err)
	return session, transport
}

func TestSession_StartSubscribesFlightTopics(t *testing.T) {
	session, transport := newTestSession(t)
	require.NoError(t, session.Start(context.Background()))
	defer session.Close()

	assert.Len(t, session.Seats(), 2)
	assert.ElementsMatch(t,
		[]string{"seat-updates/FL-42", "flight-price-updates/FL-42"},
		transport.subscribes)

	transport.deliver("seat-updates/FL-42", []byte(`{"seatNumber":"12A","status":"Booked"}`))
	seat, ok := session.model.Get("12A")
	require.True(t, ok)
	assert.Equal(t, domain.SeatStatusBooked, seat.Status)
}

func TestSession_ReconnectRestoresSubscriptions(t *testing.T) {
	session, transport := newTestSession(t)
	require.NoError(t, session.Start(context.Background()))
	defer session.Close()

	transport.flipState(false, assert.AnError)
	transport.flipState(true, nil)

	assert.Equal(t, 4, transport.subscribeCount(), "both topics re-issued after the drop")

	transport.deliver("seat-updates/FL-42", []byte(`{"seatNumber":"12A","status":"Booked"}`))
	seat, _ := session.model.Get("12A")
	assert.Equal(t, domain.SeatStatusBooked, seat.Status, "pushes keep flowing after the reconnect")
}

func TestSession_CloseTearsDownTimersThenTransport(t *testing.T) {
	session, transport := newTestSession(t)
	require.NoError(t, session.Start(context.Background()))

	require.NoError(t, session.Selection().Toggle(context.Background(), "12A"))
	require.Equal(t, 1, session.timers.Active())

	require.NoError(t, session.Close())

	assert.Equal(t, 0, session.timers.Active())
	assert.True(t, transport.isClosed())
	assert.Equal(t, 0, session.model.Len())
	assert.False(t, session.Connected())

	// A late delivery after teardown has no observable effect.
	transport.deliver("seat-updates/FL-42", []byte(`{"seatNumber":"12A","status":"Booked"}`))
	assert.Equal(t, 0, session.model.Len())
}
