package routes

import (
	"ember_server/controllers"
	"ember_server/services"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for presigned storage URLs under /api/s3
func RegisterS3Routes(r *mux.Router, s3Service *services.S3Service, userService *services.UserService) {
	controller := controllers.NewS3Controller(s3Service, userService)

	s3Router := r.PathPrefix("/api/s3").Subrouter()
	s3Router.HandleFunc("/profile-upload", controller.PresignProfileUpload).Methods("POST")
	s3Router.HandleFunc("/chat-upload", controller.PresignChatUpload).Methods("POST")
	s3Router.HandleFunc("/read", controller.PresignRead).Methods("GET")
}
