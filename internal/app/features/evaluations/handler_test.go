package evaluations_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/features/evaluations"
	evaluationstore "github.com/dalemusser/kajishare/internal/app/store/evaluations"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/indexes"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/dalemusser/kajishare/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (chi.Router, *testutil.Fixtures, *evaluationstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	fixtures := testutil.NewFixtures(t, db)
	store := evaluationstore.New(db)
	logger := zap.NewNop()
	h := evaluations.NewHandler(store, fixtures.Assignments, fixtures.Tasks, fixtures.Memberships, apierr.NewErrorLogger(logger), logger)
	return evaluations.Routes(h), fixtures, store
}

func identify(req *http.Request, user models.User) *http.Request {
	return auth.WithTestIdentity(req, &auth.Identity{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AccountType: user.AccountType,
	})
}

func TestHandleCreate_PendingAssignmentRefused(t *testing.T) {
	router, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Flat 12")
	user := fixtures.CreateUser(ctx, "User")
	m := fixtures.CreateMembership(ctx, user.ID, group.ID, models.RoleMember)
	task := fixtures.CreateTask(ctx, group.ID, "Dishes", 3)
	a := fixtures.CreateAssignment(ctx, task.ID, m.ID)

	body := `{"assignment_id":"` + a.ID.Hex() + `","score":4}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req = identify(req, user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d: %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	}
}

func TestHandleCreate_CompletedAssignment(t *testing.T) {
	router, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Flat 12")
	user := fixtures.CreateUser(ctx, "User")
	m := fixtures.CreateMembership(ctx, user.ID, group.ID, models.RoleMember)
	task := fixtures.CreateTask(ctx, group.ID, "Dishes", 3)
	a := fixtures.CompleteAssignment(ctx, fixtures.CreateAssignment(ctx, task.ID, m.ID))

	body := `{"assignment_id":"` + a.ID.Hex() + `","score":4,"feedback":"nice"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req = identify(req, user)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created models.Evaluation
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.EvaluatorID != user.ID {
		t.Errorf("evaluator: got %s, want the caller", created.EvaluatorID.Hex())
	}
	if created.Score != 4 || created.Feedback != "nice" {
		t.Errorf("evaluation: got score=%d feedback=%q", created.Score, created.Feedback)
	}
}

func TestHandleCreate_SecondScoreBySameCallerRefused(t *testing.T) {
	router, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Flat 12")
	user := fixtures.CreateUser(ctx, "User")
	m := fixtures.CreateMembership(ctx, user.ID, group.ID, models.RoleMember)
	task := fixtures.CreateTask(ctx, group.ID, "Dishes", 3)
	a := fixtures.CompleteAssignment(ctx, fixtures.CreateAssignment(ctx, task.ID, m.ID))

	body := `{"assignment_id":"` + a.ID.Hex() + `","score":4}`
	for i, want := range []int{http.StatusCreated, http.StatusUnprocessableEntity} {
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		req = identify(req, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d: got %d, want %d: %s", i+1, rec.Code, want, rec.Body.String())
		}
	}
}

func TestHandleCreate_OutsiderForbidden(t *testing.T) {
	router, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Flat 12")
	insider := fixtures.CreateUser(ctx, "Insider")
	outsider := fixtures.CreateUser(ctx, "Outsider")
	m := fixtures.CreateMembership(ctx, insider.ID, group.ID, models.RoleMember)
	task := fixtures.CreateTask(ctx, group.ID, "Dishes", 3)
	a := fixtures.CompleteAssignment(ctx, fixtures.CreateAssignment(ctx, task.ID, m.ID))

	body := `{"assignment_id":"` + a.ID.Hex() + `","score":4}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req = identify(req, outsider)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d: %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}
}

func TestHandleCreate_ScoreRange(t *testing.T) {
	router, fixtures, _ := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Flat 12")
	user := fixtures.CreateUser(ctx, "User")
	m := fixtures.CreateMembership(ctx, user.ID, group.ID, models.RoleMember)
	task := fixtures.CreateTask(ctx, group.ID, "Dishes", 3)
	a := fixtures.CompleteAssignment(ctx, fixtures.CreateAssignment(ctx, task.ID, m.ID))

	for _, score := range []string{"0", "6"} {
		body := `{"assignment_id":"` + a.ID.Hex() + `","score":` + score + `}`
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		req = identify(req, user)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("score %s: got %d, want %d", score, rec.Code, http.StatusUnprocessableEntity)
		}
	}
}

func TestHandleDestroy_MemberForbiddenAdminAllowed(t *testing.T) {
	router, fixtures, store := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	group := fixtures.CreateGroup(ctx, "Flat 12")
	admin := fixtures.CreateUser(ctx, "Admin")
	member := fixtures.CreateUser(ctx, "Member")
	fixtures.CreateMembership(ctx, admin.ID, group.ID, models.RoleAdmin)
	m := fixtures.CreateMembership(ctx, member.ID, group.ID, models.RoleMember)
	task := fixtures.CreateTask(ctx, group.ID, "Dishes", 3)
	a := fixtures.CompleteAssignment(ctx, fixtures.CreateAssignment(ctx, task.ID, m.ID))

	evaluation, err := store.Create(ctx, models.Evaluation{
		AssignmentID: a.ID,
		EvaluatorID:  member.ID,
		Score:        3,
	})
	if err != nil {
		t.Fatalf("create evaluation: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/"+evaluation.ID.Hex(), nil)
	req = identify(req, member)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member delete: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	req = httptest.NewRequest("DELETE", "/"+evaluation.ID.Hex(), nil)
	req = identify(req, admin)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin delete: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "successfully deleted") {
		t.Errorf("body: got %q, want a deletion message", rec.Body.String())
	}
}
