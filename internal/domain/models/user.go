// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountType distinguishes ordinary users from service administrators.
// It is unrelated to per-group roles; see Role on Membership.
type AccountType string

const (
	AccountUser  AccountType = "user"
	AccountAdmin AccountType = "admin"
)

// Valid reports whether t is one of the closed set of account types.
func (t AccountType) Valid() bool {
	return t == AccountUser || t == AccountAdmin
}

// User represents a person who signs in with Google.
//
// NOTE:
//   - Group membership is not embedded on User.
//     Use the memberships collection to discover a user's groups.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleSub   string             `bson:"google_sub" json:"-"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email       string             `bson:"email" json:"email"`
	Picture     string             `bson:"picture,omitempty" json:"picture,omitempty"`
	AccountType AccountType        `bson:"account_type" json:"account_type"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
