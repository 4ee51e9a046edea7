package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"ember_server/middleware"
	"ember_server/services"
)

// MatchController handles HTTP requests for persistent connections
type MatchController struct {
	MatchService *services.MatchService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(matchService *services.MatchService) *MatchController {
	return &MatchController{MatchService: matchService}
}

// ListMatches returns the caller's active matches
func (mc *MatchController) ListMatches(w http.ResponseWriter, r *http.Request) {
	views, err := mc.MatchService.List(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": views})
}

// CutConnection soft-deletes a match
func (mc *MatchController) CutConnection(w http.ResponseWriter, r *http.Request) {
	if err := mc.MatchService.CutConnection(r.Context(), middleware.Identity(r), mux.Vars(r)["matchId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cut": true})
}

// CheckKicked reports whether a partner disconnected the caller
func (mc *MatchController) CheckKicked(w http.ResponseWriter, r *http.Request) {
	status, err := mc.MatchService.CheckKickedStatus(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ClearKicked acknowledges the kicked notice for a match
func (mc *MatchController) ClearKicked(w http.ResponseWriter, r *http.Request) {
	if err := mc.MatchService.ClearKickedStatus(r.Context(), middleware.Identity(r), mux.Vars(r)["matchId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// PurgeMatch permanently deletes an inactive match
func (mc *MatchController) PurgeMatch(w http.ResponseWriter, r *http.Request) {
	if err := mc.MatchService.Purge(r.Context(), middleware.Identity(r), mux.Vars(r)["matchId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"purged": true})
}

// RequestReconnect asks the partner to reopen an inactive match
func (mc *MatchController) RequestReconnect(w http.ResponseWriter, r *http.Request) {
	req, err := mc.MatchService.RequestReconnect(r.Context(), middleware.Identity(r), mux.Vars(r)["matchId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// PendingRequests lists reconnect requests awaiting the caller
func (mc *MatchController) PendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := mc.MatchService.PendingRequests(r.Context(), middleware.Identity(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": reqs})
}

// RespondRequest accepts or declines a reconnect request
func (mc *MatchController) RespondRequest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Accept bool `json:"accept"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	req, err := mc.MatchService.RespondChatRequest(r.Context(), middleware.Identity(r), mux.Vars(r)["requestId"], in.Accept)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
