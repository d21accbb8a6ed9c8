package users_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/features/users"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/indexes"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/dalemusser/kajishare/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (chi.Router, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	fixtures := testutil.NewFixtures(t, db)
	logger := zap.NewNop()
	h := users.NewHandler(fixtures.Users, apierr.NewErrorLogger(logger), logger)
	return users.Routes(h), fixtures
}

func identify(req *http.Request, user models.User) *http.Request {
	return auth.WithTestIdentity(req, &auth.Identity{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AccountType: user.AccountType,
	})
}

func TestHandleIndex_RequiresAuthentication(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleUpdate_SelfOnly(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fixtures.CreateUser(ctx, "Me")
	other := fixtures.CreateUser(ctx, "Other")

	body := `{"name":"Hijacked","email":"hijack@example.com"}`
	req := httptest.NewRequest("PATCH", "/"+other.ID.Hex(), strings.NewReader(body))
	req = identify(req, me)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("update other: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	body = `{"name":"New Me","email":"` + me.Email + `"}`
	req = httptest.NewRequest("PATCH", "/"+me.ID.Hex(), strings.NewReader(body))
	req = identify(req, me)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update self: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var updated models.User
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Name != "New Me" {
		t.Errorf("name: got %q, want New Me", updated.Name)
	}
}

func TestHandleUpdate_Validation(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fixtures.CreateUser(ctx, "Me")

	cases := []struct {
		name string
		body string
	}{
		{"blank name", `{"name":"","email":"me@example.com"}`},
		{"long name", `{"name":"` + strings.Repeat("x", 51) + `","email":"me@example.com"}`},
		{"blank email", `{"name":"Me","email":""}`},
		{"bad email", `{"name":"Me","email":"not-an-email"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("PATCH", "/"+me.ID.Hex(), strings.NewReader(tc.body))
			req = identify(req, me)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnprocessableEntity)
			}
		})
	}
}

func TestHandleCreate_AdminAccountOnly(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ordinary := fixtures.CreateUser(ctx, "Ordinary")

	body := `{"name":"Provisioned","email":"prov@example.com","google_sub":"sub-prov"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req = identify(req, ordinary)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("ordinary create: got %d, want %d", rec.Code, http.StatusForbidden)
	}

	admin := fixtures.CreateUser(ctx, "Admin")
	req = httptest.NewRequest("POST", "/", strings.NewReader(body))
	req = auth.WithTestIdentity(req, &auth.Identity{
		UserID:      admin.ID,
		AccountType: models.AccountAdmin,
	})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create: got %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created models.User
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.AccountType != models.AccountUser {
		t.Errorf("account type: got %q, want user", created.AccountType)
	}
}

func TestHandleUpdate_DuplicateEmailRefused(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := fixtures.CreateUser(ctx, "Me")
	other := fixtures.CreateUser(ctx, "Other")

	body := `{"name":"Me","email":"` + other.Email + `"}`
	req := httptest.NewRequest("PATCH", "/"+me.ID.Hex(), strings.NewReader(body))
	req = identify(req, me)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d: %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	}
}
