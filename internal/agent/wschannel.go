package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// WSChannel is a DataChannel over a WebSocket connection to the UI gateway.
// Writes are serialized; gorilla permits only one concurrent writer.
type WSChannel struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// DialObserver connects to the gateway's observer endpoint.
func DialObserver(ctx context.Context, url string) (*WSChannel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &WSChannel{conn: conn}, nil
}

func (c *WSChannel) Publish(ctx context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *WSChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// NoopChannel is the DataChannel used when no observer gateway is configured.
// Messages are logged at debug level and discarded.
type NoopChannel struct {
	Logger *slog.Logger
}

func (n NoopChannel) Publish(_ context.Context, payload []byte) error {
	if n.Logger != nil {
		n.Logger.Debug("Observer message discarded", "payload", string(payload))
	}
	return nil
}
