package routes

import (
	"ember_server/controllers"
	"ember_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserRoutes sets up routes for profiles under /api/users
func RegisterUserRoutes(r *mux.Router, userService *services.UserService) {
	controller := controllers.NewUserController(userService)

	userRouter := r.PathPrefix("/api/users").Subrouter()
	userRouter.HandleFunc("/me", controller.GetCurrentUser).Methods("GET")
	userRouter.HandleFunc("/sync", controller.SyncUser).Methods("POST")
	userRouter.HandleFunc("/me", controller.UpdateProfile).Methods("PATCH")
	userRouter.HandleFunc("/me", controller.DeleteAccount).Methods("DELETE")
}
