package sessions_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/kajishare/internal/app/features/apierr"
	"github.com/dalemusser/kajishare/internal/app/features/sessions"
	userstore "github.com/dalemusser/kajishare/internal/app/store/users"
	"github.com/dalemusser/kajishare/internal/app/system/auth"
	"github.com/dalemusser/kajishare/internal/app/system/indexes"
	"github.com/dalemusser/kajishare/internal/domain/models"
	"github.com/dalemusser/kajishare/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, verifier auth.TokenVerifier, exchanger auth.CodeExchanger) (chi.Router, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	users := userstore.New(db)
	logger := zap.NewNop()
	h := sessions.NewHandler(users, verifier, exchanger, apierr.NewErrorLogger(logger), logger)
	return sessions.Routes(h), users
}

func TestHandleGoogleAuth_SignInCreatesUser(t *testing.T) {
	verifier := auth.StaticVerifier{
		"good-token": {Sub: "sub-1", Name: "Aki", Email: "aki@example.com", Picture: "https://example.com/aki.png"},
	}
	router, _ := newTestRouter(t, verifier, auth.StaticExchanger{})

	req := httptest.NewRequest("POST", "/google", nil)
	req.Header.Set("Authorization", "Bearer good-token")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var user models.User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.GoogleSub != "sub-1" || user.Email != "aki@example.com" {
		t.Errorf("user: got sub=%q email=%q", user.GoogleSub, user.Email)
	}
}

func TestHandleGoogleAuth_RepeatSignInFindsExistingUser(t *testing.T) {
	verifier := auth.StaticVerifier{
		"good-token": {Sub: "sub-1", Name: "Aki", Email: "aki@example.com"},
	}
	router, _ := newTestRouter(t, verifier, auth.StaticExchanger{})

	var ids []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/google", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("sign-in %d: got %d: %s", i+1, rec.Code, rec.Body.String())
		}
		var user models.User
		if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
			t.Fatalf("decode: %v", err)
		}
		ids = append(ids, user.ID.Hex())
	}
	if ids[0] != ids[1] {
		t.Errorf("repeat sign-in minted a new user: %s vs %s", ids[0], ids[1])
	}
}

func TestHandleGoogleCode_ExchangesAndSignsIn(t *testing.T) {
	verifier := auth.StaticVerifier{
		"exchanged-token": {Sub: "sub-2", Name: "Ren", Email: "ren@example.com"},
	}
	exchanger := auth.StaticExchanger{"auth-code": "exchanged-token"}
	router, _ := newTestRouter(t, verifier, exchanger)

	req := httptest.NewRequest("POST", "/google/code", strings.NewReader(`{"code":"auth-code"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var user models.User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.GoogleSub != "sub-2" {
		t.Errorf("user: got sub=%q, want sub-2", user.GoogleSub)
	}

	// An unknown code is refused before any verification happens.
	req = httptest.NewRequest("POST", "/google/code", strings.NewReader(`{"code":"wrong"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown code: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleGoogleAuth_RejectsBadCredentials(t *testing.T) {
	router, _ := newTestRouter(t, auth.StaticVerifier{}, auth.StaticExchanger{})

	// No Authorization header.
	req := httptest.NewRequest("POST", "/google", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	// Unverifiable token.
	req = httptest.NewRequest("POST", "/google", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
