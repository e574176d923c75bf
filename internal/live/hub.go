// Package live pushes reload notifications to browsers over websockets.
package live

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	WhatCatalog = "catalog"
	WhatGuides  = "guides"

	clientBuffer = 16
	writeWait    = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is the message sent to clients.
type Event struct {
	Type string    `json:"type"`
	What string    `json:"what"`
	At   time.Time `json:"at"`
}

type client struct {
	send chan Event
}

// Hub fans events out to connected clients. A single goroutine, Run, owns
// the client set.
type Hub struct {
	register   chan *client
	unregister chan *client
	broadcast  chan Event
	done       chan struct{}
	clients    atomic.Int32
	log        *zap.Logger
	now        func() time.Time
}

// NewHub returns a hub. Start it with Run.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan Event, clientBuffer),
		done:       make(chan struct{}),
		log:        log,
		now:        time.Now,
	}
}

// Run delivers events until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	clients := map[*client]bool{}
	defer func() {
		for c := range clients {
			close(c.send)
		}
		h.clients.Store(0)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			clients[c] = true
			h.clients.Store(int32(len(clients)))

		case c := <-h.unregister:
			if clients[c] {
				delete(clients, c)
				close(c.send)
				h.clients.Store(int32(len(clients)))
			}

		case ev := <-h.broadcast:
			for c := range clients {
				select {
				case c.send <- ev:
				default:
					h.log.Debug("dropping live event for slow client", zap.String("what", ev.What))
				}
			}
		}
	}
}

// Publish queues a reload event. It never blocks: when the hub is
// stopped or its queue is full the event is dropped.
func (h *Hub) Publish(what string) {
	ev := Event{Type: "reload", What: what, At: h.now().UTC()}
	select {
	case h.broadcast <- ev:
	case <-h.done:
	default:
		h.log.Warn("live event queue full", zap.String("what", what))
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int { return int(h.clients.Load()) }

// ServeHTTP upgrades the request and streams events until either side
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("live upgrade failed", zap.Error(err))
		return
	}

	c := &client{send: make(chan Event, clientBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(conn, c)

	// Clients never send anything meaningful; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("live read", zap.Error(err))
			}
			break
		}
	}
	select {
	case h.unregister <- c:
	case <-h.done:
	}
	conn.Close()
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	for ev := range c.send {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Debug("live write", zap.Error(err))
			conn.Close()
			for range c.send {
			}
			return
		}
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(writeWait))
	conn.Close()
}
