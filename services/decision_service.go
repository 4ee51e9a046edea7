package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ember_server/models"
	"ember_server/store"
	"ember_server/ws"
)

// DecisionService drives the speed-dating state machine: continue/skip
// votes, the waiting_reveal holding state, vetoes, and session teardown.
type DecisionService struct {
	Store store.Store
	Hub   *ws.Hub
}

// DecisionResult describes the session after a vote.
type DecisionResult struct {
	Status      string `json:"status"`
	Phase       string `json:"phase"`
	BothDecided bool   `json:"bothDecided"`
	BothSkipped bool   `json:"bothSkipped"`
	Matched     bool   `json:"matched"`
	MatchID     string `json:"matchId,omitempty"`
}

// MakeDecision records the caller's continue/end vote.
//
// A "no" from either side vetoes the pairing immediately, without
// waiting for the partner. A "yes" parks the session in waiting_reveal
// until the partner answers; mutual "yes" promotes to extended and
// creates the match. Votes against an already ended session are treated
// leniently for "no" (the veto already happened) and rejected for "yes".
func (s *DecisionService) MakeDecision(ctx context.Context, clerkID, sessionID string, wantsContinue bool) (DecisionResult, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return DecisionResult{}, err
	}
	session, err := loadSessionFor(ctx, s.Store, user, sessionID)
	if err != nil {
		return DecisionResult{}, err
	}

	if session.Status == models.StatusEnded {
		if !wantsContinue {
			// The partner's veto beat ours; same outcome either way.
			return DecisionResult{Status: session.Status, Phase: session.Phase}, nil
		}
		return DecisionResult{}, preconditionf("session already ended")
	}
	if session.Phase != models.PhaseSpeedDating {
		return DecisionResult{}, preconditionf("decisions only apply to speed dating sessions")
	}

	isUser1 := session.User1ID == user.UserID

	if !wantsContinue {
		ended, err := s.EndSession(ctx, session, user.UserID)
		if err != nil {
			return DecisionResult{}, err
		}
		other := ended.User2WantsContinue
		if !isUser1 {
			other = ended.User1WantsContinue
		}
		return DecisionResult{Status: ended.Status, Phase: ended.Phase, BothDecided: other != nil}, nil
	}

	// Write the vote first, then decide from the state the write
	// returns. Deciding from the earlier read loses a concurrent
	// partner vote, and an unguarded write could overwrite a veto that
	// landed in between.
	patch := models.SessionPatch{Status: strPtr(models.StatusWaitingReveal)}
	if isUser1 {
		patch.User1WantsContinue = boolPtr(true)
	} else {
		patch.User2WantsContinue = boolPtr(true)
	}
	if session.RevealStartedAt == 0 {
		patch.RevealStartedAt = int64Ptr(nowMillis())
	}
	updated, applied, err := s.Store.PatchSessionIfNotEnded(ctx, sessionID, patch)
	if err != nil {
		return DecisionResult{}, fmt.Errorf("failed to record decision: %w", err)
	}
	if !applied {
		// The partner's veto beat this vote in.
		return DecisionResult{}, preconditionf("session already ended")
	}

	if bothWantContinue(updated) {
		// Whichever vote lands second sees both and promotes.
		result, err := s.promote(ctx, updated)
		if err != nil {
			return DecisionResult{}, err
		}
		result.BothDecided = true
		return result, nil
	}

	// First vote in: hold for the partner.
	s.Hub.Publish(ws.Event{
		Type:      ws.EventDecision,
		SessionID: sessionID,
		Payload:   map[string]interface{}{"status": updated.Status},
	})
	return DecisionResult{Status: updated.Status, Phase: updated.Phase}, nil
}

func bothWantContinue(s models.ChatSession) bool {
	return s.User1WantsContinue != nil && *s.User1WantsContinue &&
		s.User2WantsContinue != nil && *s.User2WantsContinue
}

// CancelDecision retracts the caller's pending "yes". Only possible
// while the partner has not voted; once both votes exist the outcome is
// already determined and retraction would rewrite history.
func (s *DecisionService) CancelDecision(ctx context.Context, clerkID, sessionID string) error {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return err
	}
	session, err := loadSessionFor(ctx, s.Store, user, sessionID)
	if err != nil {
		return err
	}
	if session.Status == models.StatusEnded {
		return preconditionf("session already ended")
	}

	isUser1 := session.User1ID == user.UserID
	mine := session.User1WantsContinue
	theirs := session.User2WantsContinue
	if !isUser1 {
		mine, theirs = theirs, mine
	}
	if mine == nil {
		// Nothing to retract.
		return nil
	}
	if theirs != nil {
		return preconditionf("partner has already decided")
	}

	patch := models.SessionPatch{
		Status:             strPtr(models.StatusActive),
		ClearRevealStarted: true,
	}
	if isUser1 {
		patch.ClearUser1Continue = true
	} else {
		patch.ClearUser2Continue = true
	}
	updated, applied, err := s.Store.PatchSessionIfNotEnded(ctx, sessionID, patch)
	if err != nil {
		return fmt.Errorf("failed to cancel decision: %w", err)
	}
	if !applied {
		return preconditionf("session already ended")
	}

	s.Hub.Publish(ws.Event{
		Type:      ws.EventDecision,
		SessionID: sessionID,
		Payload:   map[string]interface{}{"status": updated.Status},
	})
	return nil
}

// Skip votes to cut the getting-to-know phase short. Votes are
// monotonic; repeating one is a no-op. Mutual skip promotes the session
// immediately, no waiting_reveal detour.
func (s *DecisionService) Skip(ctx context.Context, clerkID, sessionID string) (DecisionResult, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return DecisionResult{}, err
	}
	session, err := loadSessionFor(ctx, s.Store, user, sessionID)
	if err != nil {
		return DecisionResult{}, err
	}
	if session.Status == models.StatusEnded {
		return DecisionResult{}, preconditionf("session already ended")
	}
	if session.Phase != models.PhaseSpeedDating {
		return DecisionResult{}, preconditionf("nothing to skip in an extended chat")
	}

	isUser1 := session.User1ID == user.UserID
	mine := session.User1WantsSkip
	if !isUser1 {
		mine = session.User2WantsSkip
	}
	if mine {
		return DecisionResult{Status: session.Status, Phase: session.Phase}, nil
	}

	patch := models.SessionPatch{}
	if isUser1 {
		patch.User1WantsSkip = boolPtr(true)
	} else {
		patch.User2WantsSkip = boolPtr(true)
	}

	// Same write-then-decide shape as MakeDecision: the partner's skip
	// may land between our read and our write.
	updated, applied, err := s.Store.PatchSessionIfNotEnded(ctx, sessionID, patch)
	if err != nil {
		return DecisionResult{}, fmt.Errorf("failed to record skip: %w", err)
	}
	if !applied {
		return DecisionResult{}, preconditionf("session already ended")
	}
	if updated.Phase != models.PhaseSpeedDating {
		// Promoted concurrently; nothing left to skip past.
		return DecisionResult{Status: updated.Status, Phase: updated.Phase}, nil
	}

	if updated.User1WantsSkip && updated.User2WantsSkip {
		result, err := s.promote(ctx, updated)
		if err != nil {
			return DecisionResult{}, err
		}
		result.BothSkipped = true
		return result, nil
	}

	s.Hub.Publish(ws.Event{
		Type:      ws.EventSkip,
		SessionID: sessionID,
		Payload:   map[string]interface{}{"userId": user.UserID},
	})
	return DecisionResult{Status: updated.Status, Phase: updated.Phase}, nil
}

// HandleDecisionTimeout ends a session stuck in waiting_reveal past its
// deadline. Clients call it opportunistically and the sweeper calls it
// authoritatively, so every path through here must be safe to repeat:
// anything other than an expired waiting_reveal is a no-op.
func (s *DecisionService) HandleDecisionTimeout(ctx context.Context, clerkID, sessionID string) error {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return err
	}
	session, err := loadSessionFor(ctx, s.Store, user, sessionID)
	if err != nil {
		return err
	}
	return s.timeoutSession(ctx, session, ClientDecisionTimeoutMs)
}

func (s *DecisionService) timeoutSession(ctx context.Context, session models.ChatSession, deadlineMs int64) error {
	if session.Status != models.StatusWaitingReveal {
		return nil
	}
	if session.RevealStartedAt > 0 && nowMillis()-session.RevealStartedAt < deadlineMs {
		return nil
	}
	_, err := s.EndSession(ctx, session, "")
	return err
}

// promote moves a session to the extended phase and creates the match.
// The guarded transition makes exactly one of any set of concurrent
// promoters create the match.
func (s *DecisionService) promote(ctx context.Context, session models.ChatSession) (DecisionResult, error) {
	now := nowMillis()
	patch := models.SessionPatch{
		Phase:              strPtr(models.PhaseExtended),
		Status:             strPtr(models.StatusActive),
		ClearRevealStarted: true,
	}

	updated, won, err := s.Store.PromoteSession(ctx, session.SessionID, patch)
	if err != nil {
		return DecisionResult{}, fmt.Errorf("failed to promote session: %w", err)
	}
	if !won {
		// Someone else settled the session first; report its outcome.
		result := DecisionResult{Status: updated.Status, Phase: updated.Phase}
		if updated.Phase == models.PhaseExtended {
			if match, merr := s.Store.FindMatchBySession(ctx, session.SessionID); merr == nil && match != nil {
				result.Matched = true
				result.MatchID = match.MatchID
			}
		}
		return result, nil
	}

	match := models.Match{
		MatchID:       uuid.New().String(),
		User1ID:       session.User1ID,
		User2ID:       session.User2ID,
		ChatSessionID: session.SessionID,
		MatchedAt:     now,
		IsActive:      boolPtr(true),
	}
	if err := s.Store.InsertMatch(ctx, match); err != nil {
		return DecisionResult{}, fmt.Errorf("failed to create match: %w", err)
	}

	s.Hub.Publish(ws.Event{
		Type:      ws.EventDecision,
		SessionID: session.SessionID,
		Payload: map[string]interface{}{
			"status":  updated.Status,
			"phase":   updated.Phase,
			"matchId": match.MatchID,
		},
	})
	log.Printf("decision: session %s promoted to extended, match %s", session.SessionID, match.MatchID)
	return DecisionResult{Status: updated.Status, Phase: updated.Phase, Matched: true, MatchID: match.MatchID}, nil
}

// EndSession moves a session to the terminal ended state, releases both
// participants from the queue and purges the conversation. Already-ended
// sessions pass through unchanged. endedBy is empty for timeouts.
func (s *DecisionService) EndSession(ctx context.Context, session models.ChatSession, endedBy string) (models.ChatSession, error) {
	if session.Status == models.StatusEnded {
		return session, nil
	}
	updated, applied, err := s.Store.PatchSessionIfNotEnded(ctx, session.SessionID, models.SessionPatch{
		Status:  strPtr(models.StatusEnded),
		EndedAt: int64Ptr(nowMillis()),
	})
	if err != nil {
		return models.ChatSession{}, fmt.Errorf("failed to end session: %w", err)
	}
	if !applied {
		// A concurrent terminator got there first and its cleanup ran.
		return updated, nil
	}

	// Cleanup below is best-effort. The session is already terminally
	// ended; leftovers are cosmetic and logged.
	for _, id := range []string{session.User1ID, session.User2ID} {
		if err := s.Store.Dequeue(ctx, id); err != nil {
			log.Printf("decision: failed to dequeue %s after end: %v", id, err)
		}
		if _, err := s.Store.UpdateUser(ctx, id, models.UserPatch{
			IsInQueue: boolPtr(false),
			UpdatedAt: int64Ptr(nowMillis()),
		}); err != nil {
			log.Printf("decision: failed to clear queue flag for %s: %v", id, err)
		}
	}
	if session.Phase == models.PhaseSpeedDating {
		if err := s.Store.DeleteSessionMessages(ctx, session.SessionID); err != nil {
			log.Printf("decision: failed to purge messages for %s: %v", session.SessionID, err)
		}
	}

	s.Hub.Publish(ws.Event{
		Type:      ws.EventSessionEnded,
		SessionID: session.SessionID,
		Payload:   map[string]interface{}{"endedBy": endedBy},
	})
	log.Printf("decision: session %s ended", session.SessionID)
	return updated, nil
}
