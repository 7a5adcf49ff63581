package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/superslide/game/machine"
	"github.com/wricardo/superslide/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	// Snapshots queued for the hub loop before new ones are dropped.
	broadcastBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Event names sent to clients.
const (
	EventSnapshot   = "snapshot"
	EventDragResult = "drag_result"
	EventError      = "error"
)

// Message is an outbound WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	Event     string            `json:"event"`
	Snapshot  *machine.Snapshot `json:"snapshot,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
}

// Gesture is an inbound client message. Type is one of drag, press,
// release or tap; drags carry the DragRequest fields, the others a button.
type Gesture struct {
	Type   string `json:"type"`
	Button string `json:"button,omitempty"`
	service.DragRequest
}

// GestureHandler applies client gestures to a session.
type GestureHandler interface {
	Drag(ctx context.Context, sessionID string, req service.DragRequest) (*service.DragResult, error)
	Button(ctx context.Context, sessionID, button string, action service.ButtonAction) (*machine.Snapshot, error)
	GetSnapshot(ctx context.Context, sessionID string) (*machine.Snapshot, error)
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	handler   GestureHandler
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Outbound messages for every client of a session
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades the request and attaches the connection to a session.
// The client gets the current snapshot right away and may send gestures.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, handler GestureHandler) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		handler:   handler,
	}

	if snap, err := handler.GetSnapshot(r.Context(), sessionID); err == nil {
		client.queue(&Message{SessionID: sessionID, Event: EventSnapshot, Snapshot: snap})
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// PublishSnapshot queues a snapshot for every client of a session. It never
// blocks; when the hub falls behind the snapshot is dropped.
func (h *Hub) PublishSnapshot(sessionID string, snap machine.Snapshot) {
	h.enqueue(&Message{SessionID: sessionID, Event: EventSnapshot, Snapshot: &snap})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.enqueue(&Message{SessionID: sessionID, Event: event, Data: data})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		log.Printf("Warning: WebSocket hub is behind, dropping %s for session %s", message.Event, message.SessionID)
	}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Printf("Client registered for session %s (total clients: %d)",
		client.sessionID, len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			if len(clients) == 0 {
				delete(h.sessions, client.sessionID)
			}

			log.Printf("Client unregistered from session %s (remaining clients: %d)",
				client.sessionID, len(clients))
		}
	}
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.sessions[message.SessionID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				h.unregisterClient(client)
			}
		}
	}
}

// queue sends a message to this client only.
func (c *Client) queue(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal WebSocket message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("Warning: client send buffer full for session %s", c.sessionID)
	}
}

// handle applies one inbound gesture.
func (c *Client) handle(ctx context.Context, raw []byte) {
	var g Gesture
	if err := json.Unmarshal(raw, &g); err != nil {
		c.queue(&Message{SessionID: c.sessionID, Event: EventError, Data: map[string]string{"error": "invalid message"}})
		return
	}

	var err error
	switch g.Type {
	case "drag":
		var result *service.DragResult
		result, err = c.handler.Drag(ctx, c.sessionID, g.DragRequest)
		if err == nil {
			c.queue(&Message{SessionID: c.sessionID, Event: EventDragResult, Data: result.DragOutcome})
		}
	case string(service.ActionPress), string(service.ActionRelease), string(service.ActionTap):
		_, err = c.handler.Button(ctx, c.sessionID, g.Button, service.ButtonAction(g.Type))
	default:
		err = fmt.Errorf("unknown message type %q", g.Type)
	}

	if err != nil {
		c.queue(&Message{SessionID: c.sessionID, Event: EventError, Data: map[string]string{"error": err.Error()}})
	}
}

// readPump pumps gestures from the WebSocket connection to the handler
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		c.handle(context.Background(), raw)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
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
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame so clients can parse each message.
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
