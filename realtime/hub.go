package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event is the wire format pushed to connected storefront clients. Events are
// advisory: clients refetch the cart over HTTP, the payload carries no cart
// state.
type Event struct {
	Type   string    `json:"type"`
	UserID uuid.UUID `json:"user_id"`
}

const EventCartChanged = "cart_changed"

// Hub tracks active websocket clients and routes per-user events to every
// open connection of that user.
type Hub struct {
	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	clients map[*Client]bool

	// Index to find all connections of a user (a user may have several
	// tabs open).
	userClients map[uuid.UUID][]*Client
	mu          sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		clients:     make(map[*Client]bool),
		userClients: make(map[uuid.UUID][]*Client),
	}
}

// Run processes register and unregister requests. Call it once in its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			h.addUserClient(client)
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.removeUserClient(client)
			}
		}
	}
}

func (h *Hub) addUserClient(client *Client) {
	h.mu.Lock()
	h.userClients[client.userID] = append(h.userClients[client.userID], client)
	count := len(h.userClients[client.userID])
	h.mu.Unlock()

	log.Printf("User %s connected, %d active connection(s)", client.userID, count)
}

// removeUserClient drops the connection from the index and closes its send
// channel. The close happens under mu, after the client is out of the index,
// so PublishCartChanged can never send on a closed channel.
func (h *Hub) removeUserClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.userClients[client.userID]
	for i, conn := range conns {
		if conn == client {
			h.userClients[client.userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.userClients[client.userID]) == 0 {
		delete(h.userClients, client.userID)
	}

	close(client.send)
}

// PublishCartChanged notifies every open connection of the user that their
// cart was mutated. Delivery is at most once: if a client's send buffer is
// full the event is dropped, the client refetches on its next event anyway.
func (h *Hub) PublishCartChanged(userID uuid.UUID) {
	payload, _ := json.Marshal(Event{Type: EventCartChanged, UserID: userID})

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.userClients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}

// ConnectionCount reports the number of open connections for a user.
func (h *Hub) ConnectionCount(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.userClients[userID])
}
