package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ember_server/models"
	"ember_server/store"
)

// UserService owns profile lifecycle: sync from the auth provider,
// profile edits and full account deletion.
type UserService struct {
	Store store.Store
}

// SyncInput is the identity payload pushed after sign-in.
type SyncInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ProfileInput carries the editable profile fields.
type ProfileInput struct {
	Name             *string   `json:"name,omitempty"`
	Age              *int      `json:"age,omitempty"`
	Gender           *string   `json:"gender,omitempty"`
	GenderPreference *string   `json:"genderPreference,omitempty"`
	Bio              *string   `json:"bio,omitempty"`
	Photos           *[]string `json:"photos,omitempty"`
	PhotoStorageKeys *[]string `json:"photoStorageKeys,omitempty"`
}

// Current returns the caller's full user record.
func (s *UserService) Current(ctx context.Context, clerkID string) (models.User, error) {
	return resolveUser(ctx, s.Store, clerkID)
}

// Sync upserts the user record for an authenticated identity. First
// sign-in creates the record; later calls refresh email and name.
func (s *UserService) Sync(ctx context.Context, clerkID string, in SyncInput) (models.User, error) {
	if clerkID == "" {
		return models.User{}, ErrUnauthenticated
	}
	existing, err := s.Store.GetUserByClerkID(ctx, clerkID)
	if err == nil {
		patch := models.UserPatch{UpdatedAt: int64Ptr(nowMillis())}
		if in.Name != "" && in.Name != existing.Name {
			patch.Name = strPtr(in.Name)
		}
		updated, err := s.Store.UpdateUser(ctx, existing.UserID, patch)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to refresh user: %w", err)
		}
		return updated, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return models.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	now := nowMillis()
	user := models.User{
		UserID:    uuid.New().String(),
		ClerkID:   clerkID,
		Email:     in.Email,
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.CreateUser(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	log.Printf("user: created %s for identity %s", user.UserID, clerkID)
	return user, nil
}

// UpdateProfile applies a partial profile edit.
func (s *UserService) UpdateProfile(ctx context.Context, clerkID string, in ProfileInput) (models.User, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return models.User{}, err
	}
	if in.Age != nil && (*in.Age < 18 || *in.Age > 120) {
		return models.User{}, preconditionf("age must be between 18 and 120")
	}
	updated, err := s.Store.UpdateUser(ctx, user.UserID, models.UserPatch{
		Name:             in.Name,
		Age:              in.Age,
		Gender:           in.Gender,
		GenderPreference: in.GenderPreference,
		Bio:              in.Bio,
		Photos:           in.Photos,
		PhotoStorageKeys: in.PhotoStorageKeys,
		UpdatedAt:        int64Ptr(nowMillis()),
	})
	if err != nil {
		return models.User{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return updated, nil
}

// DeleteAccount removes the user and everything attached to them: queue
// entry, sessions, messages, matches, pending requests and the reports
// they filed. Cleanup is
// best-effort; the user record deletion at the end is the one step that
// must succeed.
func (s *UserService) DeleteAccount(ctx context.Context, clerkID string) error {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return err
	}

	if err := s.Store.Dequeue(ctx, user.UserID); err != nil {
		log.Printf("user: failed to dequeue %s: %v", user.UserID, err)
	}

	sessions, err := s.Store.ListSessionsForUser(ctx, user.UserID)
	if err != nil {
		log.Printf("user: failed to list sessions for %s: %v", user.UserID, err)
	}
	for _, session := range sessions {
		if session.Status != models.StatusEnded {
			if _, err := s.Store.PatchSession(ctx, session.SessionID, models.SessionPatch{
				Status:  strPtr(models.StatusEnded),
				EndedAt: int64Ptr(nowMillis()),
			}); err != nil {
				log.Printf("user: failed to end session %s: %v", session.SessionID, err)
			}
		}
		if err := s.Store.DeleteSessionMessages(ctx, session.SessionID); err != nil {
			log.Printf("user: failed to purge messages for %s: %v", session.SessionID, err)
		}
	}

	matches, err := s.Store.ListMatchesForUser(ctx, user.UserID, 0)
	if err != nil {
		log.Printf("user: failed to list matches for %s: %v", user.UserID, err)
	}
	for _, m := range matches {
		if err := s.Store.DeleteRequestsForMatch(ctx, m.MatchID); err != nil {
			log.Printf("user: failed to drop requests for %s: %v", m.MatchID, err)
		}
		if err := s.Store.DeleteMatch(ctx, m.MatchID); err != nil {
			log.Printf("user: failed to delete match %s: %v", m.MatchID, err)
		}
	}

	if err := s.Store.DeleteUserMessages(ctx, user.UserID); err != nil {
		log.Printf("user: failed to purge remaining messages for %s: %v", user.UserID, err)
	}

	// Reports filed by the user go with them; reports against them stay
	// for moderation.
	if err := s.Store.DeleteReportsByReporter(ctx, user.UserID); err != nil {
		log.Printf("user: failed to purge reports by %s: %v", user.UserID, err)
	}

	if err := s.Store.DeleteUser(ctx, user.UserID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	log.Printf("user: account %s deleted", user.UserID)
	return nil
}
