package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The HTTP layer already applies CORS; origin is not re-checked here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection. It tracks the set of sessions the
// connection has joined plus the authenticated user for direct events.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string

	mu       sync.Mutex
	sessions map[string]bool
}

// subscribeRequest is the only inbound frame clients send.
type subscribeRequest struct {
	Action    string `json:"action"` // join | leave
	SessionID string `json:"sessionId"`
}

func (c *Client) wants(event Event) bool {
	if event.UserID != "" {
		return c.userID == event.UserID
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[event.SessionID]
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws: read error: %v", err)
			}
			return
		}
		var req subscribeRequest
		if err := json.Unmarshal(raw, &req); err != nil || req.SessionID == "" {
			continue
		}
		c.mu.Lock()
		switch req.Action {
		case "join":
			c.sessions[req.SessionID] = true
		case "leave":
			delete(c.sessions, req.SessionID)
		}
		c.mu.Unlock()
	}
}

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

// ServeWS upgrades an authenticated HTTP request to a websocket and
// registers the client with the hub.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}
	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 16),
		userID:   userID,
		sessions: make(map[string]bool),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}
