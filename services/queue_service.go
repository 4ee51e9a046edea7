package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/google/uuid"

	"ember_server/models"
	"ember_server/store"
	"ember_server/ws"
)

// QueueService runs the matchmaking queue. Joining either pairs the
// caller with a compatible waiting user or parks them in the pending-set
// until someone else's join picks them up.
type QueueService struct {
	Store store.Store
	Hub   *ws.Hub
}

// JoinResult reports what happened on a join attempt.
type JoinResult struct {
	Matched   bool   `json:"matched"`
	SessionID string `json:"sessionId,omitempty"`
	PartnerID string `json:"partnerId,omitempty"`
}

// QueueStatus is the caller's current matchmaking state.
type QueueStatus struct {
	InQueue       bool   `json:"inQueue"`
	Matched       bool   `json:"matched"`
	ActiveSession string `json:"sessionId,omitempty"`
}

// Join enters the caller into matchmaking.
//
// The pairing protocol is claim-first, verify-second: the caller scans
// the pending-set for compatible candidates, atomically claims one by
// deleting their queue entry, then re-verifies the claimed candidate is
// still free. Losing a concurrent claim just means trying the next
// candidate; a candidate who turns out busy after a won claim bounces
// the caller back into the queue instead of looping.
func (s *QueueService) Join(ctx context.Context, clerkID string) (JoinResult, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return JoinResult{}, err
	}

	// One active speed dating session per user, ever.
	active, err := s.Store.FindActiveSpeedDatingSession(ctx, user.UserID)
	if err != nil {
		return JoinResult{}, fmt.Errorf("failed to check active sessions: %w", err)
	}
	if active != nil {
		return JoinResult{}, ErrAlreadyInSession
	}

	queued, err := s.Store.IsQueued(ctx, user.UserID)
	if err != nil {
		return JoinResult{}, fmt.Errorf("failed to check queue: %w", err)
	}
	if queued {
		// Already waiting; treat the repeat join as a no-op.
		return JoinResult{}, nil
	}

	self := models.QueueEntry{
		UserID:           user.UserID,
		Gender:           user.Gender,
		GenderPreference: user.GenderPreference,
		EnqueuedAt:       nowMillis(),
	}

	entries, err := s.Store.ListQueueEntries(ctx)
	if err != nil {
		return JoinResult{}, fmt.Errorf("failed to list queue: %w", err)
	}

	var candidates []models.QueueEntry
	for _, e := range entries {
		if models.Compatible(self, e) {
			candidates = append(candidates, e)
		}
	}
	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, candidate := range candidates {
		won, err := s.Store.ClaimQueueEntry(ctx, candidate.UserID)
		if err != nil {
			return JoinResult{}, fmt.Errorf("failed to claim candidate: %w", err)
		}
		if !won {
			// Someone else claimed them first; try the next candidate.
			continue
		}

		// Verify the claimed candidate did not land in a session between
		// our scan and the claim.
		busy, err := s.Store.FindActiveSpeedDatingSession(ctx, candidate.UserID)
		if err != nil {
			return JoinResult{}, fmt.Errorf("failed to verify candidate: %w", err)
		}
		if busy != nil {
			// Stale entry. The caller bounces back into the queue rather
			// than chasing further candidates, which keeps a losing racer
			// from spinning through the whole set.
			return JoinResult{}, s.enqueue(ctx, user, self)
		}

		return s.createSession(ctx, user, candidate)
	}

	// Nobody compatible is waiting; park the caller.
	return JoinResult{}, s.enqueue(ctx, user, self)
}

func (s *QueueService) enqueue(ctx context.Context, user models.User, entry models.QueueEntry) error {
	if err := s.Store.Enqueue(ctx, entry); err != nil {
		return fmt.Errorf("failed to enqueue: %w", err)
	}
	if _, err := s.Store.UpdateUser(ctx, user.UserID, models.UserPatch{
		IsInQueue: boolPtr(true),
		UpdatedAt: int64Ptr(nowMillis()),
	}); err != nil {
		return fmt.Errorf("failed to flag queued user: %w", err)
	}
	return nil
}

func (s *QueueService) createSession(ctx context.Context, user models.User, partner models.QueueEntry) (JoinResult, error) {
	now := nowMillis()
	session := models.ChatSession{
		SessionID:         uuid.New().String(),
		User1ID:           user.UserID,
		User2ID:           partner.UserID,
		Phase:             models.PhaseSpeedDating,
		Status:            models.StatusActive,
		StartedAt:         now,
		SpeedDatingEndsAt: now + models.SpeedDatingDurationMs,
	}
	if err := s.Store.CreateSession(ctx, session); err != nil {
		return JoinResult{}, fmt.Errorf("failed to create session: %w", err)
	}

	// Clear both users' queue flags; the partner's entry is already gone.
	for _, id := range []string{user.UserID, partner.UserID} {
		if _, err := s.Store.UpdateUser(ctx, id, models.UserPatch{
			IsInQueue: boolPtr(false),
			UpdatedAt: int64Ptr(now),
		}); err != nil {
			log.Printf("queue: failed to clear queue flag for %s: %v", id, err)
		}
	}

	s.Hub.Publish(ws.Event{
		Type:   ws.EventMatched,
		UserID: partner.UserID,
		Payload: map[string]interface{}{
			"sessionId": session.SessionID,
			"endsAt":    session.SpeedDatingEndsAt,
		},
	})

	log.Printf("queue: paired %s with %s in session %s", user.UserID, partner.UserID, session.SessionID)
	return JoinResult{Matched: true, SessionID: session.SessionID, PartnerID: partner.UserID}, nil
}

// Leave removes the caller from the queue. Idempotent.
func (s *QueueService) Leave(ctx context.Context, clerkID string) error {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return err
	}
	if err := s.Store.Dequeue(ctx, user.UserID); err != nil {
		return fmt.Errorf("failed to dequeue: %w", err)
	}
	if user.IsInQueue {
		if _, err := s.Store.UpdateUser(ctx, user.UserID, models.UserPatch{
			IsInQueue: boolPtr(false),
			UpdatedAt: int64Ptr(nowMillis()),
		}); err != nil {
			return fmt.Errorf("failed to clear queue flag: %w", err)
		}
	}
	return nil
}

// Status reports whether the caller is waiting or already in a session.
func (s *QueueService) Status(ctx context.Context, clerkID string) (QueueStatus, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return QueueStatus{}, err
	}
	active, err := s.Store.FindActiveSpeedDatingSession(ctx, user.UserID)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("failed to check active sessions: %w", err)
	}
	if active != nil {
		return QueueStatus{Matched: true, ActiveSession: active.SessionID}, nil
	}
	queued, err := s.Store.IsQueued(ctx, user.UserID)
	if err != nil {
		return QueueStatus{}, fmt.Errorf("failed to check queue: %w", err)
	}
	return QueueStatus{InQueue: queued}, nil
}
