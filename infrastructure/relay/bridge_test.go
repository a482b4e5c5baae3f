package relay

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestBridge(t *testing.T) (*Bridge, *httptest.Server) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	bridge := NewBridge(logger)
	srv := httptest.NewServer(bridge)
	t.Cleanup(srv.Close)
	return bridge, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWithin(conn *websocket.Conn, d time.Duration) (string, error) {
	conn.SetReadDeadline(time.Now().Add(d))
	_, data, err := conn.ReadMessage()
	return string(data), err
}

func TestBridge_BroadcastsToOtherPeersOnly(t *testing.T) {
	bridge, srv := newTestBridge(t)

	sender := dial(t, srv)
	second := dial(t, srv)
	third := dial(t, srv)
	require.Eventually(t, func() bool { return bridge.Count() == 3 }, time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(`{"prompt":"hi"}`)))

	for _, peer := range []*websocket.Conn{second, third} {
		msg, err := readWithin(peer, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, `{"prompt":"hi"}`, msg)

		_, err = readWithin(peer, 100*time.Millisecond)
		assert.Error(t, err, "message must be delivered exactly once")
	}

	_, err := readWithin(sender, 100*time.Millisecond)
	assert.Error(t, err, "sender must not receive its own message")
}

func TestBridge_PreservesOrderPerSender(t *testing.T) {
	bridge, srv := newTestBridge(t)

	sender := dial(t, srv)
	receiver := dial(t, srv)
	require.Eventually(t, func() bool { return bridge.Count() == 2 }, time.Second, 10*time.Millisecond)

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte(msg)))
	}

	for _, want := range []string{"one", "two", "three"} {
		got, err := readWithin(receiver, 2*time.Second)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestBridge_DisconnectRemovesPeer(t *testing.T) {
	bridge, srv := newTestBridge(t)

	sender := dial(t, srv)
	gone := dial(t, srv)
	stays := dial(t, srv)
	require.Eventually(t, func() bool { return bridge.Count() == 3 }, time.Second, 10*time.Millisecond)

	require.NoError(t, gone.Close())
	require.Eventually(t, func() bool { return bridge.Count() == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, sender.WriteMessage(websocket.TextMessage, []byte("still here")))
	msg, err := readWithin(stays, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "still here", msg)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bridge := NewBridge(logger)

	server, err := Listen("127.0.0.1:0", "/", bridge, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+server.Addr().String()+"/", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return bridge.Count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	_, err = readWithin(conn, time.Second)
	assert.Error(t, err, "peers are dropped on shutdown")
	require.Eventually(t, func() bool { return bridge.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestListen_AddressInUse(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bridge := NewBridge(logger)

	first, err := Listen("127.0.0.1:0", "/", bridge, logger)
	require.NoError(t, err)
	defer first.listener.Close()

	_, err = Listen(first.Addr().String(), "/", bridge, logger)
	assert.Error(t, err)
}

func TestBridge_StalledPeerDoesNotBlockOthers(t *testing.T) {
	bridge, srv := newTestBridge(t)
	bridge.writeTimeout = 200 * time.Millisecond

	sender := dial(t, srv)
	dial(t, srv) // connected but never reads
	receiver := dial(t, srv)
	require.Eventually(t, func() bool { return bridge.Count() == 3 }, time.Second, 10*time.Millisecond)

	const total = 32
	payload := strings.Repeat("x", 1<<20)

	sendErr := make(chan error, 1)
	go func() {
		for i := 0; i < total; i++ {
			if err := sender.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				sendErr <- err
				return
			}
		}
		sendErr <- nil
	}()

	for i := 0; i < total; i++ {
		msg, err := readWithin(receiver, 5*time.Second)
		require.NoError(t, err, "message %d", i)
		assert.Len(t, msg, len(payload))
	}

	select {
	case err := <-sendErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("sender still blocked")
	}
}

func TestBridge_RefusesPeersAfterShutdown(t *testing.T) {
	bridge, srv := newTestBridge(t)

	first := dial(t, srv)
	require.Eventually(t, func() bool { return bridge.Count() == 1 }, time.Second, 10*time.Millisecond)

	bridge.closeAll()
	_, err := readWithin(first, time.Second)
	assert.Error(t, err)

	late := dial(t, srv)
	_, err = readWithin(late, time.Second)
	assert.Error(t, err, "late peer must be dropped")
	require.Eventually(t, func() bool { return bridge.Count() == 0 }, time.Second, 10*time.Millisecond)
}
