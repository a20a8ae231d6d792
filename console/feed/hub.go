package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// The feed carries mock data only.
		return true
	},
}

// client is one connected dashboard.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans feed messages out to connected websocket clients. Run drives
// the register/unregister/broadcast loop; Handler upgrades incoming
// connections.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	log        zerolog.Logger
}

// NewHub creates a hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		log:        log,
	}
}

// Run processes hub events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			h.log.Info().Str("client", c.id).Msg("feed client connected")

		case c := <-h.unregister:
			h.drop(c)

		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()

			for _, c := range targets {
				select {
				case c.send <- msg:
				default:
					// Slow consumer: drop it rather than block the feed.
					h.drop(c)
				}
			}
		}
	}
}

// Broadcast queues one message for every connected client. Messages are
// dropped when the hub's buffer is full; the feed is best-effort.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Warn().Err(err).Msg("drop unencodable feed message")
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn().Msg("feed backlog full, dropping message")
	}
}

// Handler returns the websocket upgrade endpoint. It is served on the
// feed's own net/http listener, separate from the API.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &client{
			id:   uuid.NewString(),
			conn: conn,
			send: make(chan []byte, 64),
		}
		h.register <- c

		go c.writeLoop(h)
		go c.readLoop(h)
	})
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		c.conn.Close()
		h.log.Info().Str("client", c.id).Msg("feed client disconnected")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
}

func (c *client) writeLoop(h *Hub) {
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readLoop(h *Hub) {
	defer func() {
		h.unregister <- c
	}()

	c.conn.SetReadLimit(1024)
	for {
		// Clients never send application data; the read loop exists to
		// notice disconnects.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
