// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"time"

	"github.com/dalemusser/kajishare/internal/domain/fault"
	"github.com/dalemusser/kajishare/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store provides access to the memberships collection, the central
// record of the authorization core. Besides CRUD it exposes the
// aggregate queries the policy layer depends on: workload-ratio sums
// and active-admin counts, both scoped to a single group.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

// Create inserts a membership. The unique (user_id, group_id) index is
// the backstop against double joins; a duplicate-key error surfaces as
// fault.ErrDuplicateMembership.
func (s *Store) Create(ctx context.Context, m models.Membership) (models.Membership, error) {
	now := time.Now().UTC()
	if m.ID == primitive.NilObjectID {
		m.ID = primitive.NewObjectID()
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Membership{}, fault.ErrDuplicateMembership
		}
		return models.Membership{}, err
	}
	return m, nil
}

// GetByID returns the membership with the given id.
// Returns mongo.ErrNoDocuments if it does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	return m, err
}

// FindByUserAndGroup returns the membership for (userID, groupID), or
// (nil, nil) when the user has no membership in the group. This is the
// lookup the permission evaluator runs on every guarded operation.
func (s *Store) FindByUserAndGroup(ctx context.Context, userID, groupID primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "group_id": groupID}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SumWorkloadRatio returns the sum of non-nil workload ratios across a
// group's active memberships, optionally excluding one membership (so
// an update can re-check the group total without its own prior value).
func (s *Store) SumWorkloadRatio(ctx context.Context, groupID primitive.ObjectID, excluding *primitive.ObjectID) (float64, error) {
	match := bson.M{
		"group_id":       groupID,
		"active":         true,
		"workload_ratio": bson.M{"$ne": nil},
	}
	if excluding != nil {
		match["_id"] = bson.M{"$ne": *excluding}
	}

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": match},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$workload_ratio"}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total float64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, cur.Err()
}

// CountActiveAdmins returns the number of active admin memberships in
// the group. The role-change guard denies any mutation that would take
// this below one.
func (s *Store) CountActiveAdmins(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"group_id": groupID,
		"role":     models.RoleAdmin,
		"active":   true,
	})
}

// ActiveGroupIDs returns the ids of all groups where the user holds an
// active membership. Collection endpoints use this to pre-scope
// cross-group listings to the caller's own groups.
func (s *Store) ActiveGroupIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var m models.Membership
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		ids = append(ids, m.GroupID)
	}
	return ids, cur.Err()
}

// ListByGroup returns all memberships of a group.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.Membership, error) {
	return s.list(ctx, bson.M{"group_id": groupID})
}

// ListByGroups returns all memberships across the given groups.
func (s *Store) ListByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]models.Membership, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	return s.list(ctx, bson.M{"group_id": bson.M{"$in": groupIDs}})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// UpdateRatioAndActive sets the mutable non-role fields of a membership.
// Role changes go through SetRole only.
func (s *Store) UpdateRatioAndActive(ctx context.Context, id primitive.ObjectID, ratio *float64, active bool) error {
	set := bson.M{
		"active":     active,
		"updated_at": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if ratio != nil {
		set["workload_ratio"] = *ratio
	} else {
		update["$unset"] = bson.M{"workload_ratio": ""}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetRole updates only the role field.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role models.Role) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":       role,
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

// Delete removes the membership with the given id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByGroup removes all memberships of a group (group cascade).
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes all memberships of a user (user cascade).
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
