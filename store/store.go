package store

import (
	"context"
	"errors"

	"ember_server/models"
)

// ErrNotFound is returned when a requested item does not exist.
var ErrNotFound = errors.New("item not found")

// Store is the document-store contract the services are built against:
// indexed lookups, ordered scans, and atomic single-document patches.
// Each method executes indivisibly relative to other mutations; there
// are no cross-document transactions. The matchmaking claim protocol
// (ClaimQueueEntry) relies on exactly that guarantee.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u models.User) error
	GetUser(ctx context.Context, userID string) (models.User, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (models.User, error)
	UpdateUser(ctx context.Context, userID string, p models.UserPatch) (models.User, error)
	DeleteUser(ctx context.Context, userID string) error

	// Matchmaking pending-set
	Enqueue(ctx context.Context, e models.QueueEntry) error
	Dequeue(ctx context.Context, userID string) error // idempotent
	// ClaimQueueEntry atomically removes the entry if it still exists and
	// reports whether this caller won the claim.
	ClaimQueueEntry(ctx context.Context, userID string) (bool, error)
	ListQueueEntries(ctx context.Context) ([]models.QueueEntry, error)
	IsQueued(ctx context.Context, userID string) (bool, error)

	// Chat sessions
	CreateSession(ctx context.Context, s models.ChatSession) error
	GetSession(ctx context.Context, sessionID string) (models.ChatSession, error)
	PatchSession(ctx context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, error)
	// PatchSessionIfNotEnded applies the patch only while the session has
	// not reached the terminal ended status. Reports whether the patch was
	// applied; on a failed guard the current session is returned untouched.
	PatchSessionIfNotEnded(ctx context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, bool, error)
	// PromoteSession applies the patch only while the session is still in
	// the speed_dating phase and not ended. Concurrent promoters racing on
	// the same session see exactly one true.
	PromoteSession(ctx context.Context, sessionID string, p models.SessionPatch) (models.ChatSession, bool, error)
	// FindActiveSpeedDatingSession returns nil when the user has none.
	FindActiveSpeedDatingSession(ctx context.Context, userID string) (*models.ChatSession, error)
	ListSessionsForUser(ctx context.Context, userID string) ([]models.ChatSession, error)
	// ListWaitingRevealBefore returns sessions stuck in waiting_reveal
	// whose reveal started before the cutoff timestamp.
	ListWaitingRevealBefore(ctx context.Context, cutoff int64) ([]models.ChatSession, error)

	// Messages
	InsertMessage(ctx context.Context, m models.Message) error
	ListMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error)       // ascending by time
	ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]models.Message, error) // descending by time
	DeleteSessionMessages(ctx context.Context, sessionID string) error
	DeleteUserMessages(ctx context.Context, userID string) error

	// Matches
	InsertMatch(ctx context.Context, m models.Match) error
	GetMatch(ctx context.Context, matchID string) (models.Match, error)
	PatchMatch(ctx context.Context, matchID string, p models.MatchPatch) (models.Match, error)
	ListMatchesForUser(ctx context.Context, userID string, limit int) ([]models.Match, error)
	FindMatchBySession(ctx context.Context, sessionID string) (*models.Match, error)
	DeleteMatch(ctx context.Context, matchID string) error

	// Chat requests
	InsertChatRequest(ctx context.Context, r models.ChatRequest) error
	GetChatRequest(ctx context.Context, requestID string) (models.ChatRequest, error)
	PatchChatRequest(ctx context.Context, requestID string, status string, respondedAt int64) (models.ChatRequest, error)
	ListChatRequestsForUser(ctx context.Context, toUserID string, status string) ([]models.ChatRequest, error)
	DeleteRequestsForMatch(ctx context.Context, matchID string) error

	// Reports
	InsertReport(ctx context.Context, r models.Report) error
	DeleteReportsByReporter(ctx context.Context, reporterID string) error
}
