package models

// Chat session phases
const (
	PhaseSpeedDating = "speed_dating"
	PhaseExtended    = "extended"
)

// Chat session statuses
const (
	StatusActive        = "active"
	StatusWaitingReveal = "waiting_reveal"
	StatusEnded         = "ended"
)

// Message types
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Chat request statuses
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestDeclined = "declined"
)

// Report reasons
const (
	ReasonHarassment    = "harassment"
	ReasonSpam          = "spam"
	ReasonInappropriate = "inappropriate"
	ReasonThreats       = "threats"
	ReasonOther         = "other"
)

// Report statuses
const (
	ReportPending   = "pending"
	ReportReviewed  = "reviewed"
	ReportActioned  = "actioned"
	ReportDismissed = "dismissed"
)

// Gender preference wildcard
const PreferenceBoth = "both"

// Protocol limits and windows (milliseconds unless noted)
const (
	SpeedDatingDurationMs = 15 * 60 * 1000
	MaxMessageLength      = 2000
	MessageListLimit      = 200
	RateLimitCount        = 10
	RateLimitWindowMs     = 10 * 1000
	ImageRateLimitCount   = 5
	ImageRateLimitWindow  = 60 * 1000
	TypingStaleMs         = 5 * 1000
)

// EncryptedPlaceholder replaces plaintext content on encrypted messages.
// The server stores ciphertext+nonce and never sees the real content.
const EncryptedPlaceholder = "[encrypted]"
