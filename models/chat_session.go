package models

// ChatSession is one ephemeral pairing between two users.
//
// Phase moves speed_dating -> extended exactly once (mutual continue or
// mutual skip). Status ended is terminal; a session is never resurrected.
type ChatSession struct {
	SessionID string `dynamodbav:"sessionId" json:"sessionId"` // Partition key
	User1ID   string `dynamodbav:"user1Id" json:"user1Id"`
	User2ID   string `dynamodbav:"user2Id" json:"user2Id"`
	Phase     string `dynamodbav:"phase" json:"phase"`   // speed_dating | extended
	Status    string `dynamodbav:"status" json:"status"` // active | waiting_reveal | ended

	// Continue decisions are tri-state: nil = undecided.
	User1WantsContinue *bool `dynamodbav:"user1WantsContinue,omitempty" json:"user1WantsContinue,omitempty"`
	User2WantsContinue *bool `dynamodbav:"user2WantsContinue,omitempty" json:"user2WantsContinue,omitempty"`

	// Skip votes are monotonic: once true, never retracted.
	User1WantsSkip bool `dynamodbav:"user1WantsSkip,omitempty" json:"user1WantsSkip,omitempty"`
	User2WantsSkip bool `dynamodbav:"user2WantsSkip,omitempty" json:"user2WantsSkip,omitempty"`

	User1Typing     bool  `dynamodbav:"user1Typing,omitempty" json:"user1Typing,omitempty"`
	User1LastTyping int64 `dynamodbav:"user1LastTyping,omitempty" json:"user1LastTyping,omitempty"`
	User2Typing     bool  `dynamodbav:"user2Typing,omitempty" json:"user2Typing,omitempty"`
	User2LastTyping int64 `dynamodbav:"user2LastTyping,omitempty" json:"user2LastTyping,omitempty"`

	StartedAt         int64 `dynamodbav:"startedAt" json:"startedAt"`
	SpeedDatingEndsAt int64 `dynamodbav:"speedDatingEndsAt,omitempty" json:"speedDatingEndsAt,omitempty"`
	// Set when the session enters waiting_reveal; the sweeper force-ends
	// sessions stuck past the decision deadline.
	RevealStartedAt int64 `dynamodbav:"revealStartedAt,omitempty" json:"revealStartedAt,omitempty"`
	EndedAt         int64 `dynamodbav:"endedAt,omitempty" json:"endedAt,omitempty"`
}

// HasParticipant reports whether userID is one of the two participants.
func (s ChatSession) HasParticipant(userID string) bool {
	return s.User1ID == userID || s.User2ID == userID
}

// OtherParticipant returns the partner of userID.
func (s ChatSession) OtherParticipant(userID string) string {
	if s.User1ID == userID {
		return s.User2ID
	}
	return s.User1ID
}

// SessionPatch is an atomic single-document patch against a chat session.
// Nil fields are left unchanged; the Clear* flags remove a decision
// entirely (back to undecided).
type SessionPatch struct {
	Status             *string
	Phase              *string
	User1WantsContinue *bool
	User2WantsContinue *bool
	ClearUser1Continue bool
	ClearUser2Continue bool
	User1WantsSkip     *bool
	User2WantsSkip     *bool
	User1Typing        *bool
	User2Typing        *bool
	User1LastTyping    *int64
	User2LastTyping    *int64
	RevealStartedAt    *int64
	ClearRevealStarted bool
	EndedAt            *int64
}

// ChatSessionsTable is the DynamoDB table name for chat sessions
const ChatSessionsTable = "ChatSessions"
