package evaluationstore_test

import (
	"errors"
	"testing"

	evaluationstore "github.com/dalemusser/kajishare/internal/app/store/evaluations"
	"github.com/dalemusser/kajishare/internal/app/system/indexes"
	"github.com/dalemusser/kajishare/internal/domain/fault"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/dalemusser/kajishare/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) *evaluationstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return evaluationstore.New(db)
}

func TestCreate_DuplicateEvaluatorRefused(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	assignmentID := primitive.NewObjectID()
	evaluatorID := primitive.NewObjectID()

	if _, err := store.Create(ctx, models.Evaluation{
		AssignmentID: assignmentID,
		EvaluatorID:  evaluatorID,
		Score:        4,
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := store.Create(ctx, models.Evaluation{
		AssignmentID: assignmentID,
		EvaluatorID:  evaluatorID,
		Score:        2,
	})
	if !errors.Is(err, fault.ErrDuplicateEvaluation) {
		t.Errorf("second create: got %v, want ErrDuplicateEvaluation", err)
	}

	// A different evaluator may score the same assignment.
	if _, err := store.Create(ctx, models.Evaluation{
		AssignmentID: assignmentID,
		EvaluatorID:  primitive.NewObjectID(),
		Score:        5,
	}); err != nil {
		t.Errorf("different evaluator: %v", err)
	}
}

func TestUpdateAndListByAssignments(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a1 := primitive.NewObjectID()
	a2 := primitive.NewObjectID()

	e1, err := store.Create(ctx, models.Evaluation{AssignmentID: a1, EvaluatorID: primitive.NewObjectID(), Score: 3})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, models.Evaluation{AssignmentID: a2, EvaluatorID: primitive.NewObjectID(), Score: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Update(ctx, e1.ID, 4, "solid work"); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.GetByID(ctx, e1.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Score != 4 || got.Feedback != "solid work" {
		t.Errorf("after update: got score=%d feedback=%q", got.Score, got.Feedback)
	}

	list, err := store.ListByAssignments(ctx, []primitive.ObjectID{a1})
	if err != nil {
		t.Fatalf("ListByAssignments: %v", err)
	}
	if len(list) != 1 || list[0].ID != e1.ID {
		t.Errorf("list: got %d evaluations", len(list))
	}

	// Empty scope yields an empty result, not everything.
	list, err = store.ListByAssignments(ctx, nil)
	if err != nil {
		t.Fatalf("ListByAssignments(nil): %v", err)
	}
	if len(list) != 0 {
		t.Errorf("empty scope: got %d evaluations, want 0", len(list))
	}
}
