// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus tracks an assignment through its lifecycle:
// pending -> in_progress -> completed.
type AssignmentStatus string

const (
	StatusPending    AssignmentStatus = "pending"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusCompleted  AssignmentStatus = "completed"
)

// Valid reports whether s is one of the closed set of statuses.
func (s AssignmentStatus) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// Assignment hands a task to a specific membership. Exactly one document
// per (task_id, membership_id), enforced by a unique index.
//
// Status and CompletedDate are kept consistent by SyncStatus:
// a set CompletedDate always means completed, a cleared one never does.
type Assignment struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TaskID        primitive.ObjectID  `bson:"task_id" json:"task_id"`
	MembershipID  primitive.ObjectID  `bson:"membership_id" json:"membership_id"`
	AssignedByID  *primitive.ObjectID `bson:"assigned_by_id,omitempty" json:"assigned_by_id,omitempty"`
	DueDate       time.Time           `bson:"due_date" json:"due_date"`
	CompletedDate *time.Time          `bson:"completed_date,omitempty" json:"completed_date,omitempty"`
	Comment       string              `bson:"comment,omitempty" json:"comment,omitempty"`
	Status        AssignmentStatus    `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SyncStatus reconciles Status with CompletedDate. A set completed date
// forces completed. A cleared completed date drops a stale completed
// status back to pending but leaves an explicit in_progress alone.
func (a *Assignment) SyncStatus() {
	if a.CompletedDate != nil {
		a.Status = StatusCompleted
		return
	}
	if a.Status == StatusCompleted || a.Status == "" {
		a.Status = StatusPending
	}
}

// Completed reports whether the assignment has been completed.
func (a *Assignment) Completed() bool {
	return a.Status == StatusCompleted
}
