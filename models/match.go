package models

// Match is the persistent record created when both participants agreed
// to continue (or both voted to skip). Connection-cutting soft-deletes
// via IsActive=false so EndedBy survives for the one-shot kick notice.
type Match struct {
	MatchID       string `dynamodbav:"matchId" json:"matchId"` // Partition key
	User1ID       string `dynamodbav:"user1Id" json:"user1Id"`
	User2ID       string `dynamodbav:"user2Id" json:"user2Id"`
	ChatSessionID string `dynamodbav:"chatSessionId" json:"chatSessionId"`
	MatchedAt     int64  `dynamodbav:"matchedAt" json:"matchedAt"`
	// nil is treated as active (legacy rows predate the field).
	IsActive      *bool  `dynamodbav:"isActive,omitempty" json:"isActive,omitempty"`
	LastMessageAt int64  `dynamodbav:"lastMessageAt,omitempty" json:"lastMessageAt,omitempty"`
	EndedBy       string `dynamodbav:"endedBy,omitempty" json:"endedBy,omitempty"`
}

// Active reports whether the connection is still open (nil = active).
func (m Match) Active() bool {
	return m.IsActive == nil || *m.IsActive
}

// HasParticipant reports whether userID belongs to this match.
func (m Match) HasParticipant(userID string) bool {
	return m.User1ID == userID || m.User2ID == userID
}

// OtherParticipant returns the partner of userID.
func (m Match) OtherParticipant(userID string) string {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// MatchPatch is an atomic single-document patch against a match.
type MatchPatch struct {
	IsActive      *bool
	EndedBy       *string
	ClearEndedBy  bool
	LastMessageAt *int64
	ChatSessionID *string
}

// MatchesTable is the DynamoDB table name for matches
const MatchesTable = "Matches"
