package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"ember_server/middleware"
	"ember_server/services"
)

// ChatController handles HTTP requests for in-session messaging
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController creates a new ChatController instance
func NewChatController(chatService *services.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// SendMessage stores one outgoing message
func (cc *ChatController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var in services.SendInput
	if !decodeBody(w, r, &in) {
		return
	}
	in.SessionID = mux.Vars(r)["sessionId"]
	msg, err := cc.ChatService.Send(r.Context(), middleware.Identity(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// GetChat returns the full chat screen state for a session
func (cc *ChatController) GetChat(w http.ResponseWriter, r *http.Request) {
	view, err := cc.ChatService.View(r.Context(), middleware.Identity(r), mux.Vars(r)["sessionId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetTyping updates the caller's typing indicator
func (cc *ChatController) SetTyping(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Typing bool `json:"typing"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if err := cc.ChatService.SetTyping(r.Context(), middleware.Identity(r), mux.Vars(r)["sessionId"], in.Typing); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// LeaveChat handles the caller walking away from a chat screen
func (cc *ChatController) LeaveChat(w http.ResponseWriter, r *http.Request) {
	if err := cc.ChatService.LeaveChat(r.Context(), middleware.Identity(r), mux.Vars(r)["sessionId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"left": true})
}
