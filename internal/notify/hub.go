// internal/notify/hub.go
package notify

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"librakeep/internal/web"
)

var marshal = jsoniter.ConfigFastest

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one notification pushed to a connected student.
type Message struct {
	StudentID uuid.UUID `json:"student_id"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

type client struct {
	studentID uuid.UUID
	conn      *websocket.Conn
	send      chan []byte
}

// Hub routes notifications to connected students over websockets. A student
// who is not connected simply misses the push; the notification is
// best-effort and carries no state the stores do not already hold.
type Hub struct {
	mu         sync.Mutex
	clients    map[uuid.UUID]*client
	register   chan *client
	unregister chan *client
	outbound   chan Message
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*client),
		register:   make(chan *client),
		unregister: make(chan *client),
		outbound:   make(chan Message, 64),
	}
}

// Run owns the client map. Start it once as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.studentID]; ok {
				close(old.send)
			}
			h.clients[c.studentID] = c
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[c.studentID]; ok && current == c {
				delete(h.clients, c.studentID)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.outbound:
			data, err := marshal.Marshal(msg)
			if err != nil {
				log.Printf("marshal notification: %v", err)
				continue
			}
			h.mu.Lock()
			if c, ok := h.clients[msg.StudentID]; ok {
				select {
				case c.send <- data:
				default:
					close(c.send)
					delete(h.clients, msg.StudentID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Notify implements the circulation engine's Notifier port. It never blocks
// the caller; if the hub is saturated the message is dropped.
func (h *Hub) Notify(studentID uuid.UUID, message string) {
	select {
	case h.outbound <- Message{StudentID: studentID, Content: message, SentAt: time.Now().UTC()}:
	default:
	}
}

// HandleWS upgrades the connection for the authenticated student and streams
// notifications until the peer goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	actor, ok := web.ActorFrom(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade: %v", err)
		return
	}

	c := &client{
		studentID: actor.ID,
		conn:      conn,
		send:      make(chan []byte, 16),
	}
	h.register <- c

	go c.writePump()
	c.readPump(h)
}

func (c *client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// readPump discards inbound frames; it exists to detect the close.
func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
