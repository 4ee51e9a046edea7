package models

// QueueEntry is one row of the matchmaking pending-set. Compatibility
// attributes are denormalized onto the entry so candidate scanning never
// touches the Users table. Claiming a candidate is an atomic conditional
// delete of their entry.
type QueueEntry struct {
	UserID           string `dynamodbav:"userId" json:"userId"` // Partition key
	Gender           string `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	GenderPreference string `dynamodbav:"genderPreference,omitempty" json:"genderPreference,omitempty"`
	EnqueuedAt       int64  `dynamodbav:"enqueuedAt" json:"enqueuedAt"`
}

// Compatible reports whether two queue entries may be paired. A missing
// preference on either side acts as a wildcard; otherwise both sides'
// stated preference must match the other's stated gender.
func Compatible(a, b QueueEntry) bool {
	if a.UserID == b.UserID {
		return false
	}
	if a.GenderPreference == "" || b.GenderPreference == "" {
		return true
	}
	aWantsB := a.GenderPreference == PreferenceBoth || (b.Gender != "" && a.GenderPreference == b.Gender)
	bWantsA := b.GenderPreference == PreferenceBoth || (a.Gender != "" && b.GenderPreference == a.Gender)
	return aWantsB && bWantsA
}

// QueueEntriesTable is the DynamoDB table name for the matchmaking pending-set
const QueueEntriesTable = "QueueEntries"
