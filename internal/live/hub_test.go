package live

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	h := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	return h, cancel, stopped
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http"), nil)
	require.NoError(t, err)
	return conn
}

func TestPublishReachesClient(t *testing.T) {
	h, cancel, stopped := startHub(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv.URL)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	h.Publish(WhatCatalog)

	var ev Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "reload", ev.Type)
	assert.Equal(t, WhatCatalog, ev.What)
	assert.False(t, ev.At.IsZero())

	cancel()
	<-stopped

	// The hub closes the connection on shutdown.
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h, cancel, stopped := startHub(t)
	defer func() {
		cancel()
		<-stopped
	}()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv.URL)
	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	require.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
}

func TestSlowClientDropsEvents(t *testing.T) {
	h, cancel, stopped := startHub(t)

	c := &client{send: make(chan Event, 2)}
	h.register <- c

	for i := 0; i < 10; i++ {
		h.Publish(WhatGuides)
	}
	require.Eventually(t, func() bool { return len(c.send) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	n := 0
	for range c.send {
		n++
	}
	assert.Equal(t, 2, n)
}

func TestPublishAfterStopDoesNotBlock(t *testing.T) {
	h, cancel, stopped := startHub(t)
	cancel()
	<-stopped

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3*clientBuffer; i++ {
			h.Publish(WhatCatalog)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after the hub stopped")
	}
	assert.Zero(t, h.Clients())
}
