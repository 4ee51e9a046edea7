package controllers

import (
	"net/http"

	"ember_server/middleware"
	"ember_server/services"
)

// UserController handles HTTP requests for profile lifecycle
type UserController struct {
	UserService *services.UserService
}

// NewUserController creates a new UserController instance
func NewUserController(userService *services.UserService) *UserController {
	return &UserController{UserService: userService}
}

// GetCurrentUser returns the caller's full record
func (uc *UserController) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := uc.UserService.Current(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// SyncUser upserts the user record after sign-in
func (uc *UserController) SyncUser(w http.ResponseWriter, r *http.Request) {
	var in services.SyncInput
	if !decodeBody(w, r, &in) {
		return
	}
	user, err := uc.UserService.Sync(r.Context(), middleware.Identity(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile applies a partial profile edit
func (uc *UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ProfileInput
	if !decodeBody(w, r, &in) {
		return
	}
	user, err := uc.UserService.UpdateProfile(r.Context(), middleware.Identity(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteAccount removes the caller and all attached data
func (uc *UserController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := uc.UserService.DeleteAccount(r.Context(), middleware.Identity(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
