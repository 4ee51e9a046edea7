// Package ws pushes session and message deltas to subscribed clients so
// readers never poll. Each client subscribes to the chat sessions it is
// viewing; services publish events on every relevant mutation.
package ws

import (
	"encoding/json"
	"log"
)

// Event types published by the services.
const (
	EventMatched      = "matched"
	EventMessage      = "message"
	EventTyping       = "typing"
	EventDecision     = "decision"
	EventSkip         = "skip"
	EventSessionEnded = "session_ended"
	EventMatchCut     = "match_cut"
	EventChatRequest  = "chat_request"
)

// Event is one delta pushed to subscribers of a session, or directly to
// a user for out-of-session notifications (e.g. a connection cut).
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	UserID    string      `json:"userId,omitempty"` // direct recipient, bypasses session routing
	Payload   interface{} `json:"payload,omitempty"`
}

type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Events published by the services.
	events chan Event

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		events:     make(chan Event, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.events:
			h.dispatch(event)
		}
	}
}

func (h *Hub) dispatch(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: failed to marshal event: %v", err)
		return
	}
	for client := range h.clients {
		if !client.wants(event) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			// Slow consumer: drop the client rather than block the hub.
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// Publish hands an event to the hub. Safe to call from any goroutine;
// nil hubs (tests) are a no-op.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	select {
	case h.events <- event:
	default:
		log.Printf("ws: event buffer full, dropping %s event", event.Type)
	}
}
