package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Domenick1991/seatsync/config"
	"github.com/gorilla/websocket"
)

// wsFrame is the message envelope on the websocket channel. Outbound
// frames carry an action ("subscribe"/"unsubscribe") and a topic;
// inbound frames carry the topic and the event payload.
type wsFrame struct {
	Action string          `json:"action,omitempty"`
	Topic  string          `json:"topic"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// WebsocketTransport is the primary push transport. On a read error it
// flips the connected state and redials with a fixed backoff; it never
// replays subscriptions, the owning session re-issues them.
type WebsocketTransport struct {
	url     string
	backoff time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
	done   chan struct{}
}

func NewWebsocketTransport(cfg config.WebsocketConfig) *WebsocketTransport {
	return &WebsocketTransport{
		url:     cfg.URL,
		backoff: cfg.ReconnectBackoff(),
		done:    make(chan struct{}),
	}
}

func (t *WebsocketTransport) Connect(ctx context.Context, recv MessageFunc, state StateFunc) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("dial websocket %s: %w", t.url, err)
	}

	t.mu.Lock()
	t.conn = conn
	t.mu.Unlock()

	go t.readLoop(ctx, recv, state)
	return nil
}

func (t *WebsocketTransport) Subscribe(ctx context.Context, topic string) error {
	return t.writeFrame(wsFrame{Action: "subscribe", Topic: topic})
}

func (t *WebsocketTransport) Unsubscribe(ctx context.Context, topic string) error {
	return t.writeFrame(wsFrame{Action: "unsubscribe", Topic: topic})
}

func (t *WebsocketTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.done)
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}

func (t *WebsocketTransport) writeFrame(f wsFrame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.conn == nil {
		return ErrNotConnected
	}
	return t.conn.WriteJSON(f)
}

func (t *WebsocketTransport) currentConn() *websocket.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn
}

func (t *WebsocketTransport) readLoop(ctx context.Context, recv MessageFunc, state StateFunc) {
	for {
		conn := t.currentConn()
		if conn == nil {
			return
		}

		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.mu.Lock()
			closed := t.closed
			t.mu.Unlock()
			if closed {
				return
			}
			state(false, err)
			if !t.redial(ctx, state) {
				return
			}
			continue
		}

		var f wsFrame
		if err := json.Unmarshal(payload, &f); err != nil {
			log.Printf("push: dropping unparsable websocket frame: %v", err)
			continue
		}
		recv(f.Topic, f.Data)
	}
}

// redial retries the dial on a fixed interval until it succeeds or the
// transport is torn down.
func (t *WebsocketTransport) redial(ctx context.Context, state StateFunc) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-t.done:
			return false
		case <-time.After(t.backoff):
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, t.url, nil)
		if err != nil {
			log.Printf("push: websocket redial failed, retrying in %s: %v", t.backoff, err)
			continue
		}

		t.mu.Lock()
		if t.closed {
			t.mu.Unlock()
			_ = conn.Close()
			return false
		}
		t.conn = conn
		t.mu.Unlock()

		state(true, nil)
		return true
	}
}
