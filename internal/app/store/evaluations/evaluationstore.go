// internal/app/store/evaluations/evaluationstore.go
package evaluationstore

import (
	"context"
	"time"

	"github.com/dalemusser/kajishare/internal/domain/fault"
	"github.com/dalemusser/kajishare/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("evaluations")}
}

// Create inserts an evaluation. The unique (assignment_id, evaluator_id)
// index closes the re-scoring race; a duplicate-key error surfaces as
// fault.ErrDuplicateEvaluation.
func (s *Store) Create(ctx context.Context, e models.Evaluation) (models.Evaluation, error) {
	now := time.Now().UTC()
	if e.ID == primitive.NilObjectID {
		e.ID = primitive.NewObjectID()
	}
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Evaluation{}, fault.ErrDuplicateEvaluation
		}
		return models.Evaluation{}, err
	}
	return e, nil
}

// GetByID returns the evaluation with the given id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Evaluation, error) {
	var e models.Evaluation
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	return e, err
}

// ListByAssignments returns all evaluations for the given assignments,
// newest first.
func (s *Store) ListByAssignments(ctx context.Context, assignmentIDs []primitive.ObjectID) ([]models.Evaluation, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"assignment_id": bson.M{"$in": assignmentIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var evaluations []models.Evaluation
	if err := cur.All(ctx, &evaluations); err != nil {
		return nil, err
	}
	return evaluations, nil
}

// Update sets the score and feedback of an existing evaluation.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, score int, feedback string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"score":      score,
		"feedback":   feedback,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the evaluation with the given id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByAssignments removes all evaluations of the given assignments
// (group cascade).
func (s *Store) DeleteByAssignments(ctx context.Context, assignmentIDs []primitive.ObjectID) (int64, error) {
	if len(assignmentIDs) == 0 {
		return 0, nil
	}
	res, err := s.c.DeleteMany(ctx, bson.M{"assignment_id": bson.M{"$in": assignmentIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
