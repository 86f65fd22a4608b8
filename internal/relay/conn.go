package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"cipherlink/internal/domain"
)

// Conn is a websocket connection to the relay.
type Conn struct {
	ws  *websocket.Conn
	url string
	log *logrus.Entry
}

// Dial connects to the relay at rawURL (see ChatURL).
func Dial(ctx context.Context, rawURL string, log *logrus.Entry) (*Conn, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	ws, resp, err := websocket.Dial(ctx, rawURL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", rawURL, err)
	}
	ws.SetReadLimit(1 << 20)
	log = log.WithFields(logrus.Fields{"component": "relay", "url": rawURL})
	log.Debug("connected to relay")
	return &Conn{ws: ws, url: rawURL, log: log}, nil
}

// Send writes one text frame.
func (c *Conn) Send(ctx context.Context, text string) error {
	if err := c.ws.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		return classify(ctx, "send", err)
	}
	return nil
}

// Receive blocks for the next text frame. Cancelling ctx abandons the read
// and closes the connection.
func (c *Conn) Receive(ctx context.Context) (string, error) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return "", classify(ctx, "receive", err)
		}
		if typ != websocket.MessageText {
			c.log.WithField("type", typ).Debug("ignoring non-text frame")
			continue
		}
		return string(data), nil
	}
}

// Close sends a normal closure to the relay.
func (c *Conn) Close() error {
	err := c.ws.Close(websocket.StatusNormalClosure, "bye")
	if err != nil && websocket.CloseStatus(err) == -1 && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func classify(ctx context.Context, op string, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case websocket.CloseStatus(err) != -1,
		errors.Is(err, io.EOF),
		errors.Is(err, net.ErrClosed):
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrConnectionClosed)
	case op == "receive":
		// A failed read leaves the websocket unusable.
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrConnectionClosed)
	default:
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrTransport)
	}
}

var _ domain.Transport = (*Conn)(nil)
