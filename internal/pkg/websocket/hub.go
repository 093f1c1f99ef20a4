package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Room names used for notification fan-out
const (
	RoomAdmins   = "admins"
	RoomStudents = "students"
)

// UserRoom returns the private room name for a single user
func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// Message represents a notification pushed over WebSocket
type Message struct {
	// Notification type, e.g. "request_created", "donor_assigned"
	Type string `json:"type"`

	// Room the message is delivered to
	Room string `json:"room"`

	// Human readable title and body
	Title   string `json:"title"`
	Content string `json:"content"`

	// Extra structured data for the client
	Payload map[string]interface{} `json:"payload,omitempty"`

	// Timestamp when the message was produced
	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of active clients and pushes notifications to
// the rooms they have joined. A client may be in several rooms at once,
// e.g. its private user room plus the shared role room.
type Hub struct {
	// Registered clients organized by room name
	rooms map[string]map[*Client]bool

	// Channel for outbound notifications
	broadcast chan *Message

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for concurrent access to the rooms map
	mu sync.RWMutex

	// Logger for Hub operations
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run starts the hub, handling client registrations and broadcasts
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

// registerClient adds a client to every room it joined
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, room := range client.rooms {
		if _, ok := h.rooms[room]; !ok {
			h.rooms[room] = make(map[*Client]bool)
		}
		h.rooms[room][client] = true
	}

	h.logger.Info().
		Str("userID", client.userID.String()).
		Strs("rooms", client.rooms).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

// unregisterClient removes a client from all of its rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := false
	for _, room := range client.rooms {
		if clients, ok := h.rooms[room]; ok {
			if _, ok := clients[client]; ok {
				delete(clients, client)
				removed = true
				if len(clients) == 0 {
					delete(h.rooms, room)
				}
			}
		}
	}

	if removed {
		close(client.send)
		h.logger.Info().
			Str("userID", client.userID.String()).
			Strs("rooms", client.rooms).
			Msg("Client unregistered")
	}
}

// broadcastMessage delivers a message to every client in its room
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[message.Room]
	if !ok {
		h.logger.Debug().
			Str("room", message.Room).
			Msg("No clients in room for broadcast")
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("room", message.Room).
			Msg("Failed to marshal message for broadcast")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
			// Message queued for delivery
		default:
			// Client's send buffer is full, they might be slow or
			// disconnected. Unregister and close their connection.
			h.mu.RUnlock()
			h.unregister <- client
			h.mu.RLock()
		}
	}

	h.logger.Debug().
		Str("room", message.Room).
		Int("clientCount", len(clients)).
		Msg("Message broadcasted to room")
}

// BroadcastToRoom queues a message for delivery to all clients in a room
func (h *Hub) BroadcastToRoom(message *Message) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	h.broadcast <- message
}

// GetClientsCount returns the number of connected clients in a room
func (h *Hub) GetClientsCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.rooms[room]; ok {
		return len(clients)
	}
	return 0
}
