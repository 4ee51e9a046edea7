package routes

import (
	"ember_server/controllers"
	"ember_server/services"

	"github.com/gorilla/mux"
)

// RegisterEncryptionRoutes sets up routes for key management under /api/encryption
func RegisterEncryptionRoutes(r *mux.Router, encryptionService *services.EncryptionService) {
	controller := controllers.NewEncryptionController(encryptionService)

	encryptionRouter := r.PathPrefix("/api/encryption").Subrouter()
	encryptionRouter.HandleFunc("/public-key", controller.UpdatePublicKey).Methods("PUT")
	encryptionRouter.HandleFunc("/public-key/{userId}", controller.GetPublicKey).Methods("GET")
	encryptionRouter.HandleFunc("/status", controller.MyStatus).Methods("GET")
	encryptionRouter.HandleFunc("/chat-keys/{sessionId}", controller.ChatKeys).Methods("GET")
}
