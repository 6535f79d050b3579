package mockapi

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jwtpizza/pizza-e2e/internal/scenario"
)

// Event is one line of the live feed served on /__mock/events.
type Event struct {
	Type      string        `json:"type"` // served, miss (no route), swap
	Scenario  string        `json:"scenario"`
	Hit       *scenario.Hit `json:"hit,omitempty"`
	Violation string        `json:"violation,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the mock is a local dev tool; any page may watch it
	CheckOrigin: func(r *http.Request) bool { return true },
}

type feedClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *eventHub
}

// eventHub fans events out to connected websocket clients. Slow clients are
// dropped rather than blocking request handling.
type eventHub struct {
	mu      sync.RWMutex
	clients map[*feedClient]bool
}

func newEventHub() *eventHub {
	return &eventHub{clients: make(map[*feedClient]bool)}
}

func (h *eventHub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *eventHub) publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	message, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[pizzamock] failed to marshal event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *eventHub) register(c *feedClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	log.Printf("[pizzamock] event client %s connected", c.id)
}

func (h *eventHub) unregister(c *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	log.Printf("[pizzamock] event client %s disconnected", c.id)
}

func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[pizzamock] websocket upgrade failed: %v", err)
		return
	}
	client := &feedClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 64),
		hub:  s.events,
	}
	s.events.register(client)

	go client.writePump()
	go client.readPump()
}

// readPump only drains control frames so close and pong are noticed.
func (c *feedClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
