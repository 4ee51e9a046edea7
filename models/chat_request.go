package models

// ChatRequest asks to reopen a chat against an inactive match. Requests
// are ephemeral: they are removed whenever the parent match is cut or
// purged.
type ChatRequest struct {
	RequestID   string `dynamodbav:"requestId" json:"requestId"` // Partition key
	FromUserID  string `dynamodbav:"fromUserId" json:"fromUserId"`
	ToUserID    string `dynamodbav:"toUserId" json:"toUserId"`
	MatchID     string `dynamodbav:"matchId" json:"matchId"`
	Status      string `dynamodbav:"status" json:"status"` // pending | accepted | declined
	CreatedAt   int64  `dynamodbav:"createdAt" json:"createdAt"`
	RespondedAt int64  `dynamodbav:"respondedAt,omitempty" json:"respondedAt,omitempty"`
}

// ChatRequestsTable is the DynamoDB table name for chat requests
const ChatRequestsTable = "ChatRequests"
