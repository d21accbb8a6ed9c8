// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/kajishare/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrDuplicateShareKey = errors.New("share key collision")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

// Create inserts a group with a freshly generated share key. The unique
// index on share_key is the backstop; a collision (vanishingly rare
// with random UUIDs) surfaces as ErrDuplicateShareKey so the caller can
// retry.
func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	if g.ID == primitive.NilObjectID {
		g.ID = primitive.NewObjectID()
	}
	if g.ShareKey == "" {
		g.ShareKey = uuid.NewString()
	}
	g.NameCI = text.Fold(g.Name)
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateShareKey
		}
		return models.Group{}, err
	}
	return g, nil
}

// GetByID returns the group with the given id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	return g, err
}

// FindByShareKey returns the group with the given share key, or
// (nil, nil) when no group matches. Used by the join-by-share-key flow.
func (s *Store) FindByShareKey(ctx context.Context, key string) (*models.Group, error) {
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"share_key": key}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListByIDs returns the groups with the given ids.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Update sets the editable group fields. The share key is immutable.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name string, mode models.AssignMode, balance models.BalanceType, active bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":         name,
		"name_ci":      text.Fold(name),
		"assign_mode":  mode,
		"balance_type": balance,
		"active":       active,
		"updated_at":   time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the group document only. Cascading the owned
// memberships, tasks, assignments, and evaluations is orchestrated by
// the groups feature so each store stays single-collection.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
