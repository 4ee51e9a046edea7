package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/google/uuid"

	"ember_server/models"
	"ember_server/store"
	"ember_server/ws"
)

// MatchService manages the persistent connections that survive a speed
// date: listing, cutting, purging and the reconnect request flow.
type MatchService struct {
	Store store.Store
	Hub   *ws.Hub
}

// MatchView is one entry of the caller's match list, enriched with the
// partner's profile and ordered by recent activity.
type MatchView struct {
	Match       models.Match         `json:"match"`
	Partner     models.PublicProfile `json:"partner"`
	SessionID   string               `json:"sessionId"`
	LastMessage *models.Message      `json:"lastMessage,omitempty"`
}

// KickedStatus is the one-shot "you were disconnected" notice.
type KickedStatus struct {
	Kicked  bool   `json:"kicked"`
	MatchID string `json:"matchId,omitempty"`
}

// List returns the caller's active matches with partner profiles.
func (s *MatchService) List(ctx context.Context, clerkID string) ([]MatchView, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return nil, err
	}
	matches, err := s.Store.ListMatchesForUser(ctx, user.UserID, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	views := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		if !m.Active() {
			continue
		}
		partner, err := s.Store.GetUser(ctx, m.OtherParticipant(user.UserID))
		if err != nil {
			log.Printf("match: partner %s missing for match %s: %v", m.OtherParticipant(user.UserID), m.MatchID, err)
			continue
		}
		view := MatchView{
			Match:     m,
			Partner:   partner.Public(),
			SessionID: m.ChatSessionID,
		}
		if m.ChatSessionID != "" {
			if recent, err := s.Store.ListRecentMessages(ctx, m.ChatSessionID, 1); err == nil && len(recent) > 0 {
				last := recent[0]
				view.LastMessage = &last
			}
		}
		views = append(views, view)
	}
	// Most recently active conversation first.
	sort.Slice(views, func(i, j int) bool {
		return matchActivity(views[i].Match) > matchActivity(views[j].Match)
	})
	return views, nil
}

func matchActivity(m models.Match) int64 {
	if m.LastMessageAt > 0 {
		return m.LastMessageAt
	}
	return m.MatchedAt
}

// CutConnection soft-deletes a match. The partner keeps a one-shot
// kicked notice via EndedBy; messages of the attached session are
// purged and the session itself is closed.
func (s *MatchService) CutConnection(ctx context.Context, clerkID, matchID string) error {
	user, match, err := s.loadMatchFor(ctx, clerkID, matchID)
	if err != nil {
		return err
	}
	if !match.Active() {
		return nil
	}

	if _, err := s.Store.PatchMatch(ctx, matchID, models.MatchPatch{
		IsActive: boolPtr(false),
		EndedBy:  strPtr(user.UserID),
	}); err != nil {
		return fmt.Errorf("failed to cut connection: %w", err)
	}

	s.closeMatchSession(ctx, match)
	if err := s.Store.DeleteRequestsForMatch(ctx, matchID); err != nil {
		log.Printf("match: failed to drop requests for %s: %v", matchID, err)
	}

	s.Hub.Publish(ws.Event{
		Type:   ws.EventMatchCut,
		UserID: match.OtherParticipant(user.UserID),
		Payload: map[string]interface{}{
			"matchId": matchID,
		},
	})
	log.Printf("match: %s cut by %s", matchID, user.UserID)
	return nil
}

func (s *MatchService) closeMatchSession(ctx context.Context, match models.Match) {
	if match.ChatSessionID == "" {
		return
	}
	session, err := s.Store.GetSession(ctx, match.ChatSessionID)
	if err != nil {
		return
	}
	if session.Status != models.StatusEnded {
		if _, err := s.Store.PatchSession(ctx, session.SessionID, models.SessionPatch{
			Status:  strPtr(models.StatusEnded),
			EndedAt: int64Ptr(nowMillis()),
		}); err != nil {
			log.Printf("match: failed to close session %s: %v", session.SessionID, err)
		}
	}
	if err := s.Store.DeleteSessionMessages(ctx, session.SessionID); err != nil {
		log.Printf("match: failed to purge messages for %s: %v", session.SessionID, err)
	}
}

// CheckKickedStatus reports whether the partner cut any of the caller's
// matches since the last check. Reading does not consume the notice;
// the client acknowledges explicitly via ClearKickedStatus.
func (s *MatchService) CheckKickedStatus(ctx context.Context, clerkID string) (KickedStatus, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return KickedStatus{}, err
	}
	matches, err := s.Store.ListMatchesForUser(ctx, user.UserID, 50)
	if err != nil {
		return KickedStatus{}, fmt.Errorf("failed to list matches: %w", err)
	}
	for _, m := range matches {
		if !m.Active() && m.EndedBy != "" && m.EndedBy != user.UserID {
			return KickedStatus{Kicked: true, MatchID: m.MatchID}, nil
		}
	}
	return KickedStatus{}, nil
}

// ClearKickedStatus acknowledges the kicked notice for a match.
func (s *MatchService) ClearKickedStatus(ctx context.Context, clerkID, matchID string) error {
	user, match, err := s.loadMatchFor(ctx, clerkID, matchID)
	if err != nil {
		return err
	}
	if match.EndedBy == "" || match.EndedBy == user.UserID {
		return nil
	}
	if _, err := s.Store.PatchMatch(ctx, matchID, models.MatchPatch{ClearEndedBy: true}); err != nil {
		return fmt.Errorf("failed to clear kicked status: %w", err)
	}
	return nil
}

// Purge permanently deletes an inactive match along with its session's
// messages and any pending reconnect requests. Active matches must be
// cut first.
func (s *MatchService) Purge(ctx context.Context, clerkID, matchID string) error {
	_, match, err := s.loadMatchFor(ctx, clerkID, matchID)
	if err != nil {
		return err
	}
	if match.Active() {
		return preconditionf("cut the connection before purging")
	}
	if match.ChatSessionID != "" {
		if err := s.Store.DeleteSessionMessages(ctx, match.ChatSessionID); err != nil {
			log.Printf("match: failed to purge messages for %s: %v", match.ChatSessionID, err)
		}
	}
	if err := s.Store.DeleteRequestsForMatch(ctx, matchID); err != nil {
		log.Printf("match: failed to drop requests for %s: %v", matchID, err)
	}
	if err := s.Store.DeleteMatch(ctx, matchID); err != nil {
		return fmt.Errorf("failed to purge match: %w", err)
	}
	log.Printf("match: %s purged", matchID)
	return nil
}

// RequestReconnect asks the partner to reopen an inactive match. Only
// one pending request per match; a fresh request while one is pending
// is a no-op returning the existing request.
func (s *MatchService) RequestReconnect(ctx context.Context, clerkID, matchID string) (models.ChatRequest, error) {
	user, match, err := s.loadMatchFor(ctx, clerkID, matchID)
	if err != nil {
		return models.ChatRequest{}, err
	}
	if match.Active() {
		return models.ChatRequest{}, preconditionf("connection is still open")
	}

	partnerID := match.OtherParticipant(user.UserID)
	pending, err := s.Store.ListChatRequestsForUser(ctx, partnerID, models.RequestPending)
	if err != nil {
		return models.ChatRequest{}, fmt.Errorf("failed to check pending requests: %w", err)
	}
	for _, r := range pending {
		if r.MatchID == matchID && r.FromUserID == user.UserID {
			return r, nil
		}
	}

	req := models.ChatRequest{
		RequestID:  uuid.New().String(),
		FromUserID: user.UserID,
		ToUserID:   partnerID,
		MatchID:    matchID,
		Status:     models.RequestPending,
		CreatedAt:  nowMillis(),
	}
	if err := s.Store.InsertChatRequest(ctx, req); err != nil {
		return models.ChatRequest{}, fmt.Errorf("failed to create chat request: %w", err)
	}

	s.Hub.Publish(ws.Event{
		Type:    ws.EventChatRequest,
		UserID:  partnerID,
		Payload: req,
	})
	return req, nil
}

// PendingRequests lists reconnect requests awaiting the caller's answer.
func (s *MatchService) PendingRequests(ctx context.Context, clerkID string) ([]models.ChatRequest, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return nil, err
	}
	reqs, err := s.Store.ListChatRequestsForUser(ctx, user.UserID, models.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat requests: %w", err)
	}
	if reqs == nil {
		reqs = []models.ChatRequest{}
	}
	return reqs, nil
}

// RespondChatRequest accepts or declines a reconnect request. Accepting
// reactivates the match and opens a fresh extended session for it.
func (s *MatchService) RespondChatRequest(ctx context.Context, clerkID, requestID string, accept bool) (models.ChatRequest, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return models.ChatRequest{}, err
	}
	req, err := s.Store.GetChatRequest(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return models.ChatRequest{}, fmt.Errorf("chat request: %w", ErrNotFound)
	}
	if err != nil {
		return models.ChatRequest{}, fmt.Errorf("failed to load chat request: %w", err)
	}
	if req.ToUserID != user.UserID {
		return models.ChatRequest{}, ErrUnauthorized
	}
	if req.Status != models.RequestPending {
		return models.ChatRequest{}, preconditionf("request already %s", req.Status)
	}

	status := models.RequestDeclined
	if accept {
		status = models.RequestAccepted
	}
	updated, err := s.Store.PatchChatRequest(ctx, requestID, status, nowMillis())
	if err != nil {
		return models.ChatRequest{}, fmt.Errorf("failed to respond to request: %w", err)
	}

	if accept {
		if err := s.reopenMatch(ctx, req.MatchID); err != nil {
			return models.ChatRequest{}, err
		}
	}

	s.Hub.Publish(ws.Event{
		Type:    ws.EventChatRequest,
		UserID:  req.FromUserID,
		Payload: updated,
	})
	return updated, nil
}

func (s *MatchService) reopenMatch(ctx context.Context, matchID string) error {
	match, err := s.Store.GetMatch(ctx, matchID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("match: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to load match: %w", err)
	}

	now := nowMillis()
	session := models.ChatSession{
		SessionID: uuid.New().String(),
		User1ID:   match.User1ID,
		User2ID:   match.User2ID,
		Phase:     models.PhaseExtended,
		Status:    models.StatusActive,
		StartedAt: now,
	}
	if err := s.Store.CreateSession(ctx, session); err != nil {
		return fmt.Errorf("failed to reopen session: %w", err)
	}
	if _, err := s.Store.PatchMatch(ctx, matchID, models.MatchPatch{
		IsActive:      boolPtr(true),
		ClearEndedBy:  true,
		ChatSessionID: strPtr(session.SessionID),
	}); err != nil {
		return fmt.Errorf("failed to reactivate match: %w", err)
	}
	log.Printf("match: %s reopened with session %s", matchID, session.SessionID)
	return nil
}

func (s *MatchService) loadMatchFor(ctx context.Context, clerkID, matchID string) (models.User, models.Match, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return models.User{}, models.Match{}, err
	}
	match, err := s.Store.GetMatch(ctx, matchID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, models.Match{}, fmt.Errorf("match: %w", ErrNotFound)
	}
	if err != nil {
		return models.User{}, models.Match{}, fmt.Errorf("failed to load match: %w", err)
	}
	if !match.HasParticipant(user.UserID) {
		log.Printf("user %s attempted to access match %s without membership", user.UserID, matchID)
		return models.User{}, models.Match{}, ErrUnauthorized
	}
	return user, match, nil
}
