package controllers

import (
	"net/http"

	"ember_server/middleware"
	"ember_server/services"
)

// S3Controller handles HTTP requests for presigned storage URLs
type S3Controller struct {
	S3Service   *services.S3Service
	UserService *services.UserService
}

// NewS3Controller creates a new S3Controller instance
func NewS3Controller(s3Service *services.S3Service, userService *services.UserService) *S3Controller {
	return &S3Controller{S3Service: s3Service, UserService: userService}
}

// PresignProfileUpload issues an upload slot for a profile photo
func (sc *S3Controller) PresignProfileUpload(w http.ResponseWriter, r *http.Request) {
	var in struct {
		FileName    string `json:"fileName"`
		ContentType string `json:"contentType"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	user, err := sc.UserService.Current(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	ticket, err := sc.S3Service.PresignProfileUpload(r.Context(), user.UserID, in.FileName, in.ContentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// PresignChatUpload issues an upload slot for a chat image
func (sc *S3Controller) PresignChatUpload(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SessionID   string `json:"sessionId"`
		ContentType string `json:"contentType"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	ticket, err := sc.S3Service.PresignChatUpload(r.Context(), in.SessionID, in.ContentType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// PresignRead issues a short-lived download URL
func (sc *S3Controller) PresignRead(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "key is required"})
		return
	}
	url, err := sc.S3Service.PresignRead(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
