package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/avrkit/internal/logging"
	"go.uber.org/zap"
)

// EventsEndpoint serves the WebSocket monitor feed
const EventsEndpoint = "/ws/events"

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; monitors are read-only
	maxMessageSize = 512

	// Per-client send queue; clients that fall this far behind are dropped
	sendQueueSize = 16
)

// Event describes one handled request. Every command the simulator
// processes is broadcast to connected monitor clients as JSON.
type Event struct {
	Time       time.Time         `json:"time"`
	RemoteAddr string            `json:"remote_addr"`
	Kind       string            `json:"kind"`
	Name       string            `json:"name"`
	Params     map[string]string `json:"params,omitempty"`
	Result     string            `json:"result"`
}

// hub fans events out to connected monitor clients. All client map
// access happens on the run goroutine.
type hub struct {
	clients    map[*wsClient]bool
	broadcast  chan Event
	register   chan *wsClient
	unregister chan *wsClient
	quit       chan struct{}
}

func newHub() *hub {
	return &hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan Event, 64),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		quit:       make(chan struct{}),
	}
}

func (h *hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			logging.LogConnection(client.remoteAddr, "monitor_connected")
			// Greet the new monitor so it knows the feed is live
			select {
			case client.send <- Event{
				Time:       time.Now(),
				RemoteAddr: client.remoteAddr,
				Kind:       "monitor",
				Name:       "connected",
				Result:     "ok",
			}:
			default:
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				logging.LogConnection(client.remoteAddr, "monitor_disconnected")
			}

		case ev := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- ev:
				default:
					// Slow consumer, drop it
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.quit:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}

// publish queues an event without blocking the HTTP handler. Events are
// dropped when the buffer is full.
func (h *hub) publish(ev Event) {
	select {
	case h.broadcast <- ev:
	default:
	}
}

// add and remove guard against the run goroutine having already exited
// during shutdown

func (h *hub) add(c *wsClient) {
	select {
	case h.register <- c:
	case <-h.quit:
	}
}

func (h *hub) remove(c *wsClient) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

func (h *hub) stop() {
	close(h.quit)
}

// wsClient is one connected monitor
type wsClient struct {
	hub        *hub
	conn       *websocket.Conn
	send       chan Event
	remoteAddr string
}

// upgrader accepts any origin; the event feed is a local debugging aid
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleEvents upgrades the connection and attaches it to the hub
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	client := &wsClient{
		hub:        s.hub,
		conn:       conn,
		send:       make(chan Event, sendQueueSize),
		remoteAddr: r.RemoteAddr,
	}
	s.hub.add(client)

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so close frames and pongs are
// processed. Inbound payloads are discarded.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("Monitor read error",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
	}
}

// writePump sends queued events and keeps the connection alive with
// pings
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
