// Package channel implements the client side of the storefront messaging
// channel: one websocket connection carrying JSON event frames with optional
// acknowledgements.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrClosed is returned by emits after the connection has gone away.
var ErrClosed = errors.New("channel closed")

// Disconnected is the synthetic terminal event handed to the sink when the
// read loop exits. Its data is a ChannelError with the close reason.
const Disconnected = "_disconnected"

// Event is a decoded server push.
type Event struct {
	Name string
	Data json.RawMessage
}

// Sink receives every server push, one at a time, on the read loop goroutine.
// Ack callbacks are invoked on the same goroutine, so a sink never runs
// concurrently with an ack.
type Sink func(Event)

type envelope struct {
	Event string          `json:"event"`
	AckID string          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Channel is a live connection to the messaging backend. All methods are safe
// for concurrent use; delivery of inbound events is serialized.
type Channel struct {
	conn *websocket.Conn
	sink Sink

	mu     sync.Mutex // guards writes, acks and closed
	acks   map[string]func(json.RawMessage)
	closed bool
}

// Dial opens the websocket connection and starts the read loop. The header
// carries the ambient session cookie; the backend rejects the handshake
// without it.
func Dial(ctx context.Context, url string, header http.Header, sink Sink) (*Channel, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial channel: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial channel: %w", err)
	}

	c := &Channel{
		conn: conn,
		sink: sink,
		acks: make(map[string]func(json.RawMessage)),
	}
	go c.readLoop()
	return c, nil
}

// Emit sends a fire-and-forget event.
func (c *Channel) Emit(event string, data any) error {
	return c.write(envelope{Event: event}, data)
}

// EmitWithAck sends an event and registers fn for the server's acknowledgement.
// fn runs on the read loop goroutine. There is no timeout: an ack that never
// arrives is dropped with the connection.
func (c *Channel) EmitWithAck(event string, data any, fn func(json.RawMessage)) error {
	ackID := uuid.NewString()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.acks[ackID] = fn
	c.mu.Unlock()

	if err := c.write(envelope{Event: event, AckID: ackID}, data); err != nil {
		c.mu.Lock()
		delete(c.acks, ackID)
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *Channel) write(env envelope, data any) error {
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode %s: %w", env.Event, err)
		}
		env.Data = raw
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := c.conn.WriteJSON(env); err != nil {
		return fmt.Errorf("emit %s: %w", env.Event, err)
	}
	return nil
}

// Close tears the connection down. The sink still receives the Disconnected
// event from the read loop.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *Channel) readLoop() {
	defer func() {
		c.mu.Lock()
		c.closed = true
		c.acks = map[string]func(json.RawMessage){}
		c.mu.Unlock()
		c.conn.Close()
	}()

	for {
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("channel read error: %v", err)
			}
			reason, _ := json.Marshal(map[string]string{"message": err.Error()})
			c.sink(Event{Name: Disconnected, Data: reason})
			return
		}

		if env.Event == "ack" {
			c.mu.Lock()
			fn := c.acks[env.AckID]
			delete(c.acks, env.AckID)
			c.mu.Unlock()
			if fn != nil {
				fn(env.Data)
			}
			continue
		}

		c.sink(Event{Name: env.Event, Data: env.Data})
	}
}
