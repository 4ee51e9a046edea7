package models

// Message belongs to exactly one chat session. Speed-dating messages are
// plaintext; once a conversation is E2EE-ready the client sends
// ciphertext+nonce and Content carries only a placeholder. All messages
// of a session are bulk-deleted when the session ends.
type Message struct {
	ChatSessionID string `dynamodbav:"chatSessionId" json:"chatSessionId"` // Partition key
	CreatedAt     int64  `dynamodbav:"createdAt" json:"createdAt"`         // Sort key
	MessageID     string `dynamodbav:"messageId" json:"messageId"`
	SenderID      string `dynamodbav:"senderId" json:"senderId"`
	Content       string `dynamodbav:"content" json:"content"`
	MessageType   string `dynamodbav:"messageType,omitempty" json:"messageType,omitempty"` // text | image
	ImageKey      string `dynamodbav:"imageKey,omitempty" json:"imageKey,omitempty"`

	IsEncrypted      bool   `dynamodbav:"isEncrypted,omitempty" json:"isEncrypted,omitempty"`
	EncryptedContent string `dynamodbav:"encryptedContent,omitempty" json:"encryptedContent,omitempty"` // Base64 ciphertext
	Nonce            string `dynamodbav:"nonce,omitempty" json:"nonce,omitempty"`                       // Base64 nonce
}

// MessagesTable is the DynamoDB table name for messages
const MessagesTable = "Messages"
