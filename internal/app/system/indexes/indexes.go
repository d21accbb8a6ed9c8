// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup (EnsureSchema hook). Each ensure* call is
idempotent. The unique pair indexes double as the store-level backstop
for the rule engine: double joins, double assignment, and double
evaluation all fail at the index even if a race slips past the
application checks.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureMemberships(ctx, db); err != nil {
		problems = append(problems, "memberships: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureAssignments(ctx, db); err != nil {
		problems = append(problems, "assignments: "+err.Error())
	}
	if err := ensureEvaluations(ctx, db); err != nil {
		problems = append(problems, "evaluations: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensure(ctx context.Context, db *mongo.Database, coll string, idx []mongo.IndexModel) error {
	if len(idx) == 0 {
		return nil
	}
	names, err := db.Collection(coll).Indexes().CreateMany(ctx, idx)
	if err != nil {
		return err
	}
	zap.L().Info("indexes ensured", zap.String("collection", coll), zap.Strings("names", names))
	return nil
}

func unique(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name).SetUnique(true),
	}
}

func plain(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name),
	}
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensure(ctx, db, "users", []mongo.IndexModel{
		unique("uniq_google_sub", bson.D{{Key: "google_sub", Value: 1}}),
		unique("uniq_email", bson.D{{Key: "email", Value: 1}}),
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensure(ctx, db, "groups", []mongo.IndexModel{
		unique("uniq_share_key", bson.D{{Key: "share_key", Value: 1}}),
	})
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	return ensure(ctx, db, "memberships", []mongo.IndexModel{
		unique("uniq_user_group", bson.D{{Key: "user_id", Value: 1}, {Key: "group_id", Value: 1}}),
		plain("by_group", bson.D{{Key: "group_id", Value: 1}}),
		plain("by_user_active", bson.D{{Key: "user_id", Value: 1}, {Key: "active", Value: 1}}),
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	return ensure(ctx, db, "tasks", []mongo.IndexModel{
		plain("by_group", bson.D{{Key: "group_id", Value: 1}}),
	})
}

func ensureAssignments(ctx context.Context, db *mongo.Database) error {
	return ensure(ctx, db, "assignments", []mongo.IndexModel{
		unique("uniq_task_membership", bson.D{{Key: "task_id", Value: 1}, {Key: "membership_id", Value: 1}}),
		plain("by_membership", bson.D{{Key: "membership_id", Value: 1}}),
	})
}

func ensureEvaluations(ctx context.Context, db *mongo.Database) error {
	return ensure(ctx, db, "evaluations", []mongo.IndexModel{
		unique("uniq_assignment_evaluator", bson.D{{Key: "assignment_id", Value: 1}, {Key: "evaluator_id", Value: 1}}),
		plain("by_assignment", bson.D{{Key: "assignment_id", Value: 1}}),
	})
}
