package routes

import (
	"ember_server/controllers"
	"ember_server/services"

	"github.com/gorilla/mux"
)

// RegisterQueueRoutes sets up routes for matchmaking under /api/queue
func RegisterQueueRoutes(r *mux.Router, queueService *services.QueueService) {
	controller := controllers.NewQueueController(queueService)

	queueRouter := r.PathPrefix("/api/queue").Subrouter()
	queueRouter.HandleFunc("/join", controller.Join).Methods("POST")
	queueRouter.HandleFunc("/leave", controller.Leave).Methods("POST")
	queueRouter.HandleFunc("/status", controller.Status).Methods("GET")
}
