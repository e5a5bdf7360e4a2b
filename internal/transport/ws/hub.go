package ws

import "log"

// Hub tracks active WebSocket clients. Fan-out happens through each
// client's own live subscriptions; the hub only owns connection lifecycle
// so a closed connection reliably cancels everything it was watching.
type Hub struct {
	// clients maps userID → client.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the Hub's main event loop. Call this in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if old, ok := h.clients[client.userID]; ok {
				old.teardown()
			}
			h.clients[client.userID] = client
			log.Printf("ws hub: user %s connected (%d total)", client.userID, len(h.clients))

		case client := <-h.unregister:
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
			}
			client.teardown()
			log.Printf("ws hub: user %s disconnected (%d total)", client.userID, len(h.clients))
		}
	}
}
