// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/kajishare/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateEmail = errors.New("a user with this email already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts a user. Email and google_sub uniqueness are enforced
// by indexes; duplicates surface as ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	if u.ID == primitive.NilObjectID {
		u.ID = primitive.NewObjectID()
	}
	if u.AccountType == "" {
		u.AccountType = models.AccountUser
	}
	u.NameCI = text.Fold(u.Name)
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID returns the user with the given id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, err
}

// FindByGoogleSub returns the user with the given Google subject id, or
// (nil, nil) when no such user exists.
func (s *Store) FindByGoogleSub(ctx context.Context, sub string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"google_sub": sub}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertByGoogleSub finds the user for a verified Google identity,
// creating the record on first sign-in. Name, email, and picture are
// refreshed from the identity payload on every sign-in.
func (s *Store) UpsertByGoogleSub(ctx context.Context, sub, name, email, picture string) (models.User, error) {
	now := time.Now().UTC()
	filter := bson.M{"google_sub": sub}
	update := bson.M{
		"$set": bson.M{
			"name":       name,
			"name_ci":    text.Fold(name),
			"email":      email,
			"picture":    picture,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID(),
			"google_sub":   sub,
			"account_type": models.AccountUser,
			"created_at":   now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// List returns all users, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update sets the user-editable fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, name, email string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"email":      email,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
