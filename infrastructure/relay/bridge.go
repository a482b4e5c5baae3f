// Package relay carries prompts to the agent and replies back over WebSocket.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// writeWait bounds a single write to a peer.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type peer struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (p *peer) send(messageType int, data []byte, timeout time.Duration) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return p.conn.WriteMessage(messageType, data)
}

// Bridge relays every message received from one peer to all other peers.
type Bridge struct {
	mu     sync.RWMutex
	peers  map[*peer]struct{}
	closed bool
	logger logrus.FieldLogger

	writeTimeout time.Duration
}

// NewBridge creates a bridge with no connected peers.
func NewBridge(logger logrus.FieldLogger) *Bridge {
	return &Bridge{
		peers:  make(map[*peer]struct{}),
		logger: logger,

		writeTimeout: writeWait,
	}
}

// ServeHTTP upgrades the request and relays the peer's messages until it disconnects.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.WithError(err).Warn("Failed to upgrade connection")
		return
	}

	p := &peer{conn: conn}
	if !b.add(p) {
		conn.Close()
		return
	}
	defer b.remove(p)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.logger.WithError(err).Debug("Peer read failed")
			}
			return
		}
		b.broadcast(p, messageType, message)
	}
}

// Count returns the number of connected peers.
func (b *Bridge) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.peers)
}

// add registers p unless the bridge has been shut down.
func (b *Bridge) add(p *peer) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.peers[p] = struct{}{}
	total := len(b.peers)
	b.mu.Unlock()

	b.logger.WithField("clients", total).Info("Relay client connected")
	return true
}

func (b *Bridge) remove(p *peer) {
	b.mu.Lock()
	delete(b.peers, p)
	total := len(b.peers)
	b.mu.Unlock()

	p.conn.Close()
	b.logger.WithField("clients", total).Info("Relay client disconnected")
}

// broadcast delivers to every peer except from. A failed send only affects
// that peer.
func (b *Bridge) broadcast(from *peer, messageType int, data []byte) {
	b.mu.RLock()
	targets := make([]*peer, 0, len(b.peers))
	for p := range b.peers {
		if p != from {
			targets = append(targets, p)
		}
	}
	b.mu.RUnlock()

	for _, p := range targets {
		if err := p.send(messageType, data, b.writeTimeout); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) && !errors.Is(err, net.ErrClosed) {
				b.logger.WithError(err).Warn("Error sending to relay client")
			}
		}
	}
}

// closeAll drops every connected peer and refuses new ones. The handlers
// unregister the dropped peers.
func (b *Bridge) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for p := range b.peers {
		p.conn.Close()
	}
}

// Server hosts a Bridge on a TCP address.
type Server struct {
	bridge   *Bridge
	listener net.Listener
	srv      *http.Server
	logger   logrus.FieldLogger
}

// Listen binds addr and mounts the bridge at path.
func Listen(addr, path string, bridge *Bridge, logger logrus.FieldLogger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(path, bridge)

	return &Server{
		bridge:   bridge,
		listener: ln,
		srv: &http.Server{
			Handler:     mux,
			IdleTimeout: 60 * time.Second,
		},
		logger: logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs until ctx is cancelled, then shuts the server down and drops
// all peers.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", "ws://"+s.listener.Addr().String()).Info("Relay bridge listening")
		errCh <- s.srv.Serve(s.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.bridge.closeAll()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay bridge shutdown: %w", err)
	}
	<-errCh

	s.logger.Info("Relay bridge stopped")
	return nil
}
