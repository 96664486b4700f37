package stream

import (
	"net/http"
	"sync"
	"time"

	"FraudSight/internal/domain/models"
	xlogger "FraudSight/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	clientBacklog  = 16
	defaultBacklog = 256
)

// Hub broadcasts fraud-classified scorings to connected WebSocket clients.
// A slow client is dropped rather than allowed to block the scoring path.
type Hub struct {
	logger *xlogger.Logger

	upgrader websocket.Upgrader
	events   chan *models.ScoredTransaction

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan *models.ScoredTransaction
}

// NewHub creates an alert hub. bufferSize caps pending broadcasts before
// new events are dropped.
func NewHub(logger *xlogger.Logger, bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBacklog
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		events:  make(chan *models.ScoredTransaction, bufferSize),
		clients: make(map[*client]struct{}),
	}
}

// Run dispatches broadcast events to clients until Close.
func (h *Hub) Run() {
	for st := range h.events {
		h.mu.Lock()
		for c := range h.clients {
			select {
			case c.send <- st:
			default:
				// Slow consumer: disconnect instead of backing up the hub.
				delete(h.clients, c)
				close(c.send)
			}
		}
		h.mu.Unlock()
	}
}

// Broadcast queues a scored transaction for delivery. Non-blocking: when the
// backlog is full the event is dropped, scoring is never delayed.
func (h *Hub) Broadcast(st *models.ScoredTransaction) {
	select {
	case h.events <- st:
	default:
		h.logger.Debug("alert backlog full, dropping event",
			xlogger.String("trans_num", st.TransNum))
	}
}

// Close disconnects all clients and stops the dispatch loop.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.events)
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// ServeWS upgrades an HTTP request and streams alerts until the client
// disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		conn: conn,
		send: make(chan *models.ScoredTransaction, clientBacklog),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	go h.readLoop(c)
	return nil
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case st, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(st); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readLoop discards inbound frames; the stream is one-way. It exists to
// surface disconnects and process control frames.
func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	_ = c.conn.Close()
}
