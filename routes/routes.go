package routes

import (
	"ember_server/controllers"
	"ember_server/services"
	"ember_server/ws"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the unauthenticated routes for the application
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
}

// RegisterWSRoutes sets up the websocket endpoint under /ws
func RegisterWSRoutes(r *mux.Router, hub *ws.Hub, userService *services.UserService) {
	controller := controllers.NewWSController(hub, userService)
	r.HandleFunc("/ws", controller.Connect).Methods("GET")
}
