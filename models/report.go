package models

// Report carries reporter-decrypted message content for moderation.
// The server cannot decrypt E2EE messages, so the reporter submits the
// plaintext as they decrypted it.
type Report struct {
	ReportID         string `dynamodbav:"reportId" json:"reportId"` // Partition key
	ReporterID       string `dynamodbav:"reporterId" json:"reporterId"`
	ReportedUserID   string `dynamodbav:"reportedUserId" json:"reportedUserId"`
	MessageID        string `dynamodbav:"messageId,omitempty" json:"messageId,omitempty"`
	ChatSessionID    string `dynamodbav:"chatSessionId" json:"chatSessionId"`
	DecryptedContent string `dynamodbav:"decryptedContent" json:"decryptedContent"`
	Reason           string `dynamodbav:"reason" json:"reason"`
	Details          string `dynamodbav:"details,omitempty" json:"details,omitempty"`
	Status           string `dynamodbav:"status" json:"status"`
	ReviewedBy       string `dynamodbav:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt       int64  `dynamodbav:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	ActionTaken      string `dynamodbav:"actionTaken,omitempty" json:"actionTaken,omitempty"`
	CreatedAt        int64  `dynamodbav:"createdAt" json:"createdAt"`
}

// ReportsTable is the DynamoDB table name for moderation reports
const ReportsTable = "Reports"
