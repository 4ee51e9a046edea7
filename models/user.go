package models

// User combines the auth-provider identity with dating fields.
// The auth provider owns authentication; ClerkID is its stable subject,
// mapped to UserID on every request (client-supplied IDs are never trusted).
type User struct {
	UserID           string   `dynamodbav:"userId" json:"userId"` // Partition key
	ClerkID          string   `dynamodbav:"clerkId" json:"clerkId"`
	Email            string   `dynamodbav:"email" json:"email"`
	Name             string   `dynamodbav:"name" json:"name"`
	Age              int      `dynamodbav:"age,omitempty" json:"age,omitempty"`
	Gender           string   `dynamodbav:"gender,omitempty" json:"gender,omitempty"`                     // male | female | other
	GenderPreference string   `dynamodbav:"genderPreference,omitempty" json:"genderPreference,omitempty"` // male | female | both
	Bio              string   `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Photos           []string `dynamodbav:"photos,omitempty" json:"photos,omitempty"`
	PhotoStorageKeys []string `dynamodbav:"photoStorageKeys,omitempty" json:"photoStorageKeys,omitempty"`
	IsInQueue        bool     `dynamodbav:"isInQueue" json:"isInQueue"`
	PublicKey        string   `dynamodbav:"publicKey,omitempty" json:"publicKey,omitempty"` // Base64 X25519 public key
	CreatedAt        int64    `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt        int64    `dynamodbav:"updatedAt" json:"updatedAt"`
}

// PublicProfile is the subset of a user exposed to a matched partner.
type PublicProfile struct {
	UserID    string   `json:"userId"`
	Name      string   `json:"name"`
	Age       int      `json:"age,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Photos    []string `json:"photos,omitempty"`
	PublicKey string   `json:"publicKey,omitempty"`
}

// Public returns the profile fields safe to reveal to the other participant.
func (u User) Public() PublicProfile {
	return PublicProfile{
		UserID:    u.UserID,
		Name:      u.Name,
		Age:       u.Age,
		Gender:    u.Gender,
		Bio:       u.Bio,
		Photos:    u.Photos,
		PublicKey: u.PublicKey,
	}
}

// UserPatch holds the updatable user fields; nil means "leave unchanged".
type UserPatch struct {
	Name             *string
	Age              *int
	Gender           *string
	GenderPreference *string
	Bio              *string
	Photos           *[]string
	PhotoStorageKeys *[]string
	IsInQueue        *bool
	PublicKey        *string
	UpdatedAt        *int64
}

// UsersTable is the DynamoDB table name for users
const UsersTable = "Users"
