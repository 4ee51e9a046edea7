package routes

import (
	"ember_server/controllers"
	"ember_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for connections under /api/matches
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService) {
	controller := controllers.NewMatchController(matchService)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()
	matchRouter.HandleFunc("", controller.ListMatches).Methods("GET")
	matchRouter.HandleFunc("/kicked", controller.CheckKicked).Methods("GET")
	matchRouter.HandleFunc("/requests", controller.PendingRequests).Methods("GET")
	matchRouter.HandleFunc("/requests/{requestId}/respond", controller.RespondRequest).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/cut", controller.CutConnection).Methods("POST")
	matchRouter.HandleFunc("/{matchId}/kicked", controller.ClearKicked).Methods("DELETE")
	matchRouter.HandleFunc("/{matchId}", controller.PurgeMatch).Methods("DELETE")
	matchRouter.HandleFunc("/{matchId}/reconnect", controller.RequestReconnect).Methods("POST")
}
