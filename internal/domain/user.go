package domain

// Roles a credential record can carry. Only admin accounts can be
// provisioned through this service; open registration does not exist.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// CredentialRecord is a row in the credential table, keyed by username.
// Records are created once and never updated or deleted.
type CredentialRecord struct {
	Username     string `dynamodbav:"username" json:"username"`
	PasswordHash string `dynamodbav:"password" json:"-"`
	Role         string `dynamodbav:"role" json:"role"`
	CreatedAt    string `dynamodbav:"createdAt" json:"created_at"`
}

// Profile is the chat data layer's user record, stored in the shared table
// under PK "USER#<identifier>" / SK "USER" so the chat frontend recognizes
// authenticated users as first-class chat users.
type Profile struct {
	ID         string         `json:"id"`
	Identifier string         `json:"identifier"`
	CreatedAt  string         `json:"created_at"`
	Metadata   map[string]any `json:"metadata"`
}

// User is the descriptor handed back to the chat client on a successful
// login.
type User struct {
	Identifier string         `json:"identifier"`
	Metadata   map[string]any `json:"metadata"`
}
