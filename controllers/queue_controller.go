package controllers

import (
	"net/http"

	"ember_server/middleware"
	"ember_server/services"
)

// QueueController handles HTTP requests for matchmaking queue actions
type QueueController struct {
	QueueService *services.QueueService
}

// NewQueueController creates a new QueueController instance
func NewQueueController(queueService *services.QueueService) *QueueController {
	return &QueueController{QueueService: queueService}
}

// Join enters the caller into matchmaking
func (qc *QueueController) Join(w http.ResponseWriter, r *http.Request) {
	result, err := qc.QueueService.Join(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Leave removes the caller from the queue
func (qc *QueueController) Leave(w http.ResponseWriter, r *http.Request) {
	if err := qc.QueueService.Leave(r.Context(), middleware.Identity(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"left": true})
}

// Status reports the caller's matchmaking state
func (qc *QueueController) Status(w http.ResponseWriter, r *http.Request) {
	status, err := qc.QueueService.Status(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
