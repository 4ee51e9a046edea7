package routes

import (
	"ember_server/controllers"
	"ember_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for messaging and votes under /api/chats
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, decisionService *services.DecisionService) {
	chatController := controllers.NewChatController(chatService)
	decisionController := controllers.NewDecisionController(decisionService)

	chatRouter := r.PathPrefix("/api/chats/{sessionId}").Subrouter()
	chatRouter.HandleFunc("", chatController.GetChat).Methods("GET")
	chatRouter.HandleFunc("/messages", chatController.SendMessage).Methods("POST")
	chatRouter.HandleFunc("/typing", chatController.SetTyping).Methods("POST")
	chatRouter.HandleFunc("/leave", chatController.LeaveChat).Methods("POST")
	chatRouter.HandleFunc("/decision", decisionController.MakeDecision).Methods("POST")
	chatRouter.HandleFunc("/decision", decisionController.CancelDecision).Methods("DELETE")
	chatRouter.HandleFunc("/skip", decisionController.Skip).Methods("POST")
	chatRouter.HandleFunc("/decision-timeout", decisionController.DecisionTimeout).Methods("POST")
}
