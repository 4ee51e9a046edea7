package controllers

import (
	"net/http"

	"ember_server/middleware"
	"ember_server/services"
	"ember_server/ws"
)

// HealthCheckHandler reports server liveness
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// WSController upgrades authenticated requests to websocket connections
type WSController struct {
	Hub         *ws.Hub
	UserService *services.UserService
}

// NewWSController creates a new WSController instance
func NewWSController(hub *ws.Hub, userService *services.UserService) *WSController {
	return &WSController{Hub: hub, UserService: userService}
}

// Connect resolves the caller and hands the connection to the hub
func (wc *WSController) Connect(w http.ResponseWriter, r *http.Request) {
	user, err := wc.UserService.Current(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	ws.ServeWS(wc.Hub, w, r, user.UserID)
}
