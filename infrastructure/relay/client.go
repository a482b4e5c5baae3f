package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"web_controller/domain/entities"
)

// Client exchanges one message with the agent per connection.
type Client struct {
	url    string
	dialer *websocket.Dialer
	logger logrus.FieldLogger
}

// NewClient creates a client for the bridge at addr and path.
func NewClient(addr, path string, dialTimeout time.Duration, logger logrus.FieldLogger) *Client {
	u := url.URL{Scheme: "ws", Host: addr, Path: path}
	return &Client{
		url: u.String(),
		dialer: &websocket.Dialer{
			HandshakeTimeout: dialTimeout,
			Proxy:            nil,
		},
		logger: logger,
	}
}

// URL returns the bridge endpoint.
func (c *Client) URL() string {
	return c.url
}

// Exchange sends msg and waits for exactly one reply. The connection is
// closed before returning.
func (c *Client) Exchange(ctx context.Context, msg entities.RelayMessage) (string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("%w: encode message: %v", entities.ErrRelaySend, err)
	}

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", entities.ErrRelayUnavailable, c.url, err)
	}
	defer conn.Close()

	// a cancelled ctx unblocks the pending read by closing the connection
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return "", fmt.Errorf("%w: %v", entities.ErrRelaySend, err)
	}
	c.logger.WithField("bytes", len(payload)).Debug("Relay message sent")

	_, reply, err := conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", entities.ErrRelayRecv, err)
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second)); err != nil {
		c.logger.WithError(err).Debug("Close handshake failed")
	}

	return string(reply), nil
}
