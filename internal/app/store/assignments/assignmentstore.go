// internal/app/store/assignments/assignmentstore.go
package assignmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/kajishare/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateAssignment = errors.New("this task is already assigned to this membership")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignments")}
}

// Create inserts an assignment. The unique (task_id, membership_id)
// index surfaces double assignment as ErrDuplicateAssignment.
func (s *Store) Create(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	now := time.Now().UTC()
	if a.ID == primitive.NilObjectID {
		a.ID = primitive.NewObjectID()
	}
	a.SyncStatus()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Assignment{}, ErrDuplicateAssignment
		}
		return models.Assignment{}, err
	}
	return a, nil
}

// GetByID returns the assignment with the given id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	return a, err
}

// ListByTask returns a task's assignments, earliest due date first.
func (s *Store) ListByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"task_id": taskID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var assignments []models.Assignment
	if err := cur.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// IDsByTasks returns the ids of all assignments across the given
// tasks.
func (s *Store) IDsByTasks(ctx context.Context, taskIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"task_id": bson.M{"$in": taskIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var a models.Assignment
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		ids = append(ids, a.ID)
	}
	return ids, cur.Err()
}

// Update replaces the mutable fields of an assignment. The caller is
// expected to have run SyncStatus and the due-date check beforehand.
func (s *Store) Update(ctx context.Context, a models.Assignment) error {
	set := bson.M{
		"due_date":   a.DueDate,
		"comment":    a.Comment,
		"status":     a.Status,
		"updated_at": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if a.CompletedDate != nil {
		set["completed_date"] = *a.CompletedDate
	} else {
		update["$unset"] = bson.M{"completed_date": ""}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": a.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the assignment with the given id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByTasks removes all assignments of the given tasks (group
// cascade) and returns the removed assignment ids so the caller can
// cascade into evaluations.
func (s *Store) DeleteByTasks(ctx context.Context, taskIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	ids, err := s.IDsByTasks(ctx, taskIDs)
	if err != nil {
		return nil, err
	}
	if len(taskIDs) > 0 {
		if _, err := s.c.DeleteMany(ctx, bson.M{"task_id": bson.M{"$in": taskIDs}}); err != nil {
			return nil, err
		}
	}
	return ids, nil
}
