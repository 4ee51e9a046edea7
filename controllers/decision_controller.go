package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"ember_server/middleware"
	"ember_server/services"
)

// DecisionController handles HTTP requests for continue/skip votes
type DecisionController struct {
	DecisionService *services.DecisionService
}

// NewDecisionController creates a new DecisionController instance
func NewDecisionController(decisionService *services.DecisionService) *DecisionController {
	return &DecisionController{DecisionService: decisionService}
}

// MakeDecision records the caller's continue/end vote
func (dc *DecisionController) MakeDecision(w http.ResponseWriter, r *http.Request) {
	var in struct {
		WantsContinue bool `json:"wantsContinue"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	result, err := dc.DecisionService.MakeDecision(r.Context(), middleware.Identity(r), mux.Vars(r)["sessionId"], in.WantsContinue)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CancelDecision retracts the caller's pending vote
func (dc *DecisionController) CancelDecision(w http.ResponseWriter, r *http.Request) {
	if err := dc.DecisionService.CancelDecision(r.Context(), middleware.Identity(r), mux.Vars(r)["sessionId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// Skip votes to end the anonymous phase early
func (dc *DecisionController) Skip(w http.ResponseWriter, r *http.Request) {
	result, err := dc.DecisionService.Skip(r.Context(), middleware.Identity(r), mux.Vars(r)["sessionId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DecisionTimeout reports an expired reveal wait
func (dc *DecisionController) DecisionTimeout(w http.ResponseWriter, r *http.Request) {
	if err := dc.DecisionService.HandleDecisionTimeout(r.Context(), middleware.Identity(r), mux.Vars(r)["sessionId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
