package linera

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const notificationsQuery = `subscription Notifications($chainId: ID!) {
  notifications(chainId: $chainId)
}`

// subscriberBuffer bounds how far a slow consumer may lag before
// notifications are dropped.
const subscriberBuffer = 32

// handshakeTimeout caps the init/ack exchange so a node that accepts the
// socket but never acks cannot hang Subscribe (and with it the client lock).
const handshakeTimeout = 10 * time.Second

// Subscribe opens a notification stream for the given chain. The first call
// dials the shared websocket; later calls reuse it. The returned channel is
// closed when the subscription completes, the socket dies, or the client is
// closed. There is no automatic reconnect.
func (c *Client) Subscribe(ctx context.Context, chainID string) (<-chan Notification, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("linera: client is closed")
	}
	if c.sock == nil {
		sock, err := dialSocket(ctx, c.config.Dialer, c.wsURL())
		if err != nil {
			return nil, err
		}
		c.sock = sock
	}

	return c.sock.subscribe(&Request{
		OperationName: "Notifications",
		Variables:     map[string]any{"chainId": chainID},
		Query:         notificationsQuery,
	})
}

// socket is the shared websocket carrying every subscription of a client.
type socket struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[string]chan Notification
	nextID int
	dead   bool
}

// dialSocket connects to the node and performs the graphql-transport-ws
// handshake before any subscription is registered.
func dialSocket(ctx context.Context, dialer *websocket.Dialer, url string) (*socket, error) {
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("linera: dial websocket: %w", err)
	}

	deadline := time.Now().Add(handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	if err := conn.WriteJSON(wsMessage{Type: msgConnectionInit}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("linera: websocket handshake: %w", err)
	}
	var ack wsMessage
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("linera: websocket handshake: %w", err)
	}
	if ack.Type != msgConnectionAck {
		conn.Close()
		return nil, fmt.Errorf("linera: websocket handshake: expected %s, got %s", msgConnectionAck, ack.Type)
	}

	conn.SetWriteDeadline(time.Time{})
	conn.SetReadDeadline(time.Time{})

	s := &socket{
		conn: conn,
		subs: make(map[string]chan Notification),
	}
	go s.readPump()
	return s, nil
}

// subscribe registers a new operation on the shared socket.
func (s *socket) subscribe(req *Request) (<-chan Notification, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("linera: marshal subscribe payload: %w", err)
	}

	s.mu.Lock()
	if s.dead {
		s.mu.Unlock()
		return nil, fmt.Errorf("linera: websocket is closed")
	}
	s.nextID++
	id := strconv.Itoa(s.nextID)
	ch := make(chan Notification, subscriberBuffer)
	s.subs[id] = ch
	s.mu.Unlock()

	s.writeMu.Lock()
	err = s.conn.WriteJSON(wsMessage{ID: id, Type: msgSubscribe, Payload: payload})
	s.writeMu.Unlock()
	if err != nil {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		return nil, fmt.Errorf("linera: send subscribe: %w", err)
	}
	return ch, nil
}

// readPump owns the read side of the socket and fans frames out to
// subscribers until the connection dies.
func (s *socket) readPump() {
	defer s.closeAll()

	for {
		var msg wsMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case msgNext:
			n, ok := decodeNotification(msg.Payload)
			if !ok {
				continue
			}
			s.mu.Lock()
			ch := s.subs[msg.ID]
			s.mu.Unlock()
			if ch == nil {
				continue
			}
			select {
			case ch <- n:
			default:
				// Slow consumer: drop rather than stall the socket.
			}
		case msgComplete, msgError:
			s.mu.Lock()
			if ch, ok := s.subs[msg.ID]; ok {
				close(ch)
				delete(s.subs, msg.ID)
			}
			s.mu.Unlock()
		}
	}
}

// decodeNotification extracts the notifications field of a "next" frame,
// structurally probing for the NewBlock reason.
func decodeNotification(payload json.RawMessage) (Notification, bool) {
	var frame struct {
		Data struct {
			Notifications json.RawMessage `json:"notifications"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &frame); err != nil || len(frame.Data.Notifications) == 0 {
		return Notification{}, false
	}

	var n Notification
	// The payload is opaque: a shape mismatch still yields a notification,
	// just one without a decoded block reason.
	_ = json.Unmarshal(frame.Data.Notifications, &n)
	n.Raw = frame.Data.Notifications
	return n, true
}

// closeAll closes every subscriber channel and marks the socket dead.
func (s *socket) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dead {
		return
	}
	s.dead = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.conn.Close()
}

func (s *socket) close() error {
	s.closeAll()
	return nil
}
