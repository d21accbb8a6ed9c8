// internal/domain/models/evaluation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Evaluation is a peer score for a completed assignment. Each evaluator
// may score a given assignment once, enforced by a unique index on
// (assignment_id, evaluator_id).
type Evaluation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignment_id" json:"assignment_id"`
	EvaluatorID  primitive.ObjectID `bson:"evaluator_id" json:"evaluator_id"`
	Score        int                `bson:"score" json:"score"` // 1-5
	Feedback     string             `bson:"feedback,omitempty" json:"feedback,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
