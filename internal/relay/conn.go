package relay

import (
	"context"

	"github.com/coder/websocket"
)

// Conn is one bidirectional message stream to the relay service. The
// production implementation is a websocket; tests substitute an in-memory
// pair via Dialer.
type Conn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Dialer opens a Conn to the relay at url.
type Dialer func(ctx context.Context, url string) (Conn, error)

// WebsocketDialer dials the real relay service.
func WebsocketDialer() Dialer {
	return func(ctx context.Context, url string) (Conn, error) {
		c, _, err := websocket.Dial(ctx, url, nil)
		if err != nil {
			return nil, err
		}
		return &wsConn{c: c}, nil
	}
}

type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := w.c.Read(ctx)
	return data, err
}

func (w *wsConn) Write(ctx context.Context, data []byte) error {
	return w.c.Write(ctx, websocket.MessageText, data)
}

func (w *wsConn) Close() error {
	return w.c.Close(websocket.StatusNormalClosure, "bye")
}
