package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember_server/models"
)

func TestFileReport(t *testing.T) {
	env, sessionID := setupPair(t)
	ctx := context.Background()

	report, err := env.reports.File(ctx, "alice", ReportInput{
		SessionID:        sessionID,
		DecryptedContent: "something awful",
		Reason:           models.ReasonHarassment,
		Details:          "kept at it after I asked them to stop",
	})
	require.NoError(t, err)
	assert.Equal(t, "u_alice", report.ReporterID)
	assert.Equal(t, "u_bob", report.ReportedUserID)
	assert.Equal(t, models.ReportPending, report.Status)
	assert.NotEmpty(t, report.ReportID)
}

func TestFileReportInvalidReason(t *testing.T) {
	env, sessionID := setupPair(t)

	_, err := env.reports.File(context.Background(), "alice", ReportInput{
		SessionID: sessionID,
		Reason:    "vibes",
	})
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestFileReportByOutsider(t *testing.T) {
	env, sessionID := setupPair(t)
	env.addUser(t, "mallory", "other", models.PreferenceBoth)

	_, err := env.reports.File(context.Background(), "mallory", ReportInput{
		SessionID: sessionID,
		Reason:    models.ReasonSpam,
	})
	assert.ErrorIs(t, err, ErrUnauthorized)
}
