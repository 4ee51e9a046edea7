package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"ember_server/models"
	"ember_server/store"
)

// ReportService files moderation reports. Encrypted message content is
// opaque to the server, so the reporter submits the plaintext as they
// decrypted it alongside the message reference.
type ReportService struct {
	Store store.Store
}

// ReportInput is one abuse report against the caller's chat partner.
type ReportInput struct {
	SessionID        string `json:"sessionId"`
	MessageID        string `json:"messageId,omitempty"`
	DecryptedContent string `json:"decryptedContent"`
	Reason           string `json:"reason"`
	Details          string `json:"details,omitempty"`
}

var validReasons = map[string]bool{
	models.ReasonHarassment:    true,
	models.ReasonSpam:          true,
	models.ReasonInappropriate: true,
	models.ReasonThreats:       true,
	models.ReasonOther:         true,
}

// File validates and stores a report against the caller's partner in
// the given session.
func (s *ReportService) File(ctx context.Context, clerkID string, in ReportInput) (models.Report, error) {
	user, err := resolveUser(ctx, s.Store, clerkID)
	if err != nil {
		return models.Report{}, err
	}
	if !validReasons[in.Reason] {
		return models.Report{}, preconditionf("unknown report reason %q", in.Reason)
	}
	session, err := loadSessionFor(ctx, s.Store, user, in.SessionID)
	if err != nil {
		return models.Report{}, err
	}

	report := models.Report{
		ReportID:         uuid.New().String(),
		ReporterID:       user.UserID,
		ReportedUserID:   session.OtherParticipant(user.UserID),
		MessageID:        in.MessageID,
		ChatSessionID:    session.SessionID,
		DecryptedContent: in.DecryptedContent,
		Reason:           in.Reason,
		Details:          in.Details,
		Status:           models.ReportPending,
		CreatedAt:        nowMillis(),
	}
	if err := s.Store.InsertReport(ctx, report); err != nil {
		return models.Report{}, fmt.Errorf("failed to file report: %w", err)
	}
	log.Printf("report: %s filed against %s (%s)", report.ReportID, report.ReportedUserID, report.Reason)
	return report, nil
}
