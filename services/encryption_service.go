package services

import (
	"context"
	"errors"
	"fmt"

	"ember_server/models"
	"ember_server/store"
)

// EncryptionService is the server side of the E2EE layer: it stores and
// serves public keys and reports readiness. Private keys and shared
// secrets never pass through here.
type EncryptionService struct {
	Store store.Store
}

// EncryptionStatus reports whether the caller has published a key.
type EncryptionStatus struct {
	HasPublicKey bool   `json:"hasPublicKey"`
	PublicKey    string `json:"publicKey,omitempty"`
}

// ChatEncryptionKeys is the material a client needs to derive the
// conversation secret: both published public keys. A conversation is
// encryptable only when both are present.
type ChatEncryptionKeys struct {
	MyPublicKey      string `json:"myPublicKey,omitempty"`
	PartnerPublicKey string `json:"partnerPublicKey,omitempty"`
	Ready            bool   `json:"ready"`
}

// UpdatePublicKey publishes (or rotates) the caller's public key.
func (s *EncryptionService) UpdatePublicKey(ctx context.Context, clerkID, publicKey string) error {
	if publicKey == "" {
		return preconditionf("public key is empty")
	}
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return err
	}
	_, err = s.Store.UpdateUser(ctx, user.UserID, models.UserPatch{
		PublicKey: strPtr(publicKey),
		UpdatedAt: int64Ptr(nowMillis()),
	})
	if err != nil {
		return fmt.Errorf("failed to store public key: %w", err)
	}
	return nil
}

// GetPublicKey returns another user's published key, empty if none.
func (s *EncryptionService) GetPublicKey(ctx context.Context, userID string) (string, error) {
	user, err := s.Store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	return user.PublicKey, nil
}

// MyStatus reports the caller's own encryption readiness.
func (s *EncryptionService) MyStatus(ctx context.Context, clerkID string) (EncryptionStatus, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return EncryptionStatus{}, err
	}
	return EncryptionStatus{
		HasPublicKey: user.PublicKey != "",
		PublicKey:    user.PublicKey,
	}, nil
}

// ChatKeys returns both public keys for a session the caller is in.
// Missing keys are not an error; Ready is simply false and the chat
// falls back to plaintext.
func (s *EncryptionService) ChatKeys(ctx context.Context, clerkID, sessionID string) (ChatEncryptionKeys, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return ChatEncryptionKeys{}, err
	}
	session, err := loadSessionFor(ctx, s.Store, user, sessionID)
	if err != nil {
		return ChatEncryptionKeys{}, err
	}

	keys := ChatEncryptionKeys{MyPublicKey: user.PublicKey}
	partner, err := s.Store.GetUser(ctx, session.OtherParticipant(user.UserID))
	if err == nil {
		keys.PartnerPublicKey = partner.PublicKey
	}
	keys.Ready = keys.MyPublicKey != "" && keys.PartnerPublicKey != ""
	return keys, nil
}
