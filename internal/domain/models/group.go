// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignMode controls how a group distributes tasks to its members.
type AssignMode string

const (
	AssignEqual  AssignMode = "equal"
	AssignRatio  AssignMode = "ratio"
	AssignManual AssignMode = "manual"
)

// Valid reports whether m is one of the closed set of assign modes.
func (m AssignMode) Valid() bool {
	return m == AssignEqual || m == AssignRatio || m == AssignManual
}

// BalanceType controls the unit used to balance workload across members.
type BalanceType string

const (
	BalancePoint BalanceType = "point"
	BalanceTime  BalanceType = "time"
)

// Valid reports whether b is one of the closed set of balance types.
func (b BalanceType) Valid() bool {
	return b == BalancePoint || b == BalanceTime
}

// Group is a task-sharing unit (a household, a team, a flat share).
//
// NOTE:
//   - Member lists are not embedded on Group.
//     All membership is stored in the memberships collection.
//   - ShareKey is generated server-side and is unique; users join a
//     group by presenting its share key.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	ShareKey    string             `bson:"share_key" json:"share_key"`
	AssignMode  AssignMode         `bson:"assign_mode" json:"assign_mode"`
	BalanceType BalanceType        `bson:"balance_type" json:"balance_type"`
	Active      bool               `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
