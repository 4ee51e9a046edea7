package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"ember_server/middleware"
	"ember_server/services"
)

// EncryptionController handles HTTP requests for public key management
type EncryptionController struct {
	EncryptionService *services.EncryptionService
}

// NewEncryptionController creates a new EncryptionController instance
func NewEncryptionController(encryptionService *services.EncryptionService) *EncryptionController {
	return &EncryptionController{EncryptionService: encryptionService}
}

// UpdatePublicKey publishes or rotates the caller's public key
func (ec *EncryptionController) UpdatePublicKey(w http.ResponseWriter, r *http.Request) {
	var in struct {
		PublicKey string `json:"publicKey"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if err := ec.EncryptionService.UpdatePublicKey(r.Context(), middleware.Identity(r), in.PublicKey); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// GetPublicKey returns another user's published key
func (ec *EncryptionController) GetPublicKey(w http.ResponseWriter, r *http.Request) {
	key, err := ec.EncryptionService.GetPublicKey(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": key})
}

// MyStatus reports the caller's encryption readiness
func (ec *EncryptionController) MyStatus(w http.ResponseWriter, r *http.Request) {
	status, err := ec.EncryptionService.MyStatus(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ChatKeys returns both public keys for a session
func (ec *EncryptionController) ChatKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := ec.EncryptionService.ChatKeys(r.Context(), middleware.Identity(r), mux.Vars(r)["sessionId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}
