package profile_test

import (
	"net/http"
	"testing"

	"github.com/synergysphere/synergysphere/internal/app/features/profile"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	handler := profile.NewHandler(userstore.New(db), zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func TestServeProfile(t *testing.T) {
	handler, _ := newTestHandler(t)

	user := testutil.SomeUser("Ada", "ada@example.com")
	req := testutil.NewAuthenticatedRequest("GET", "/users/profile", user)
	rec := testutil.NewRecorder()
	handler.ServeProfile(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.ID != user.ID || resp.Name != "Ada" || resp.Email != "ada@example.com" {
		t.Errorf("unexpected profile: %+v", resp)
	}
}

func TestServeProfile_NoSession(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewRequest("GET", "/users/profile")
	rec := testutil.NewRecorder()
	handler.ServeProfile(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeSearch(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	caller := fixtures.CreateUser(ctx, "Caller", "caller@synergy.dev")
	fixtures.CreateUser(ctx, "Ada", "ada@synergy.dev")
	fixtures.CreateUser(ctx, "Brin", "brin@other.org")

	req := testutil.NewAuthenticatedRequest("GET", "/users/search?email=synergy", testutil.AsTestUser(caller))
	rec := testutil.NewRecorder()
	handler.ServeSearch(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp []struct {
		Email string `json:"email"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp) != 1 {
		t.Fatalf("got %d results, want 1 (caller excluded)", len(resp))
	}
	if resp[0].Email != "ada@synergy.dev" {
		t.Errorf("got %q", resp[0].Email)
	}
}

func TestServeSearch_EmptyQuery(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	caller := fixtures.CreateUser(ctx, "Caller", "caller@synergy.dev")
	fixtures.CreateUser(ctx, "Ada", "ada@synergy.dev")
	fixtures.CreateUser(ctx, "Brin", "brin@other.org")

	// An open search lists everyone but the caller.
	req := testutil.NewAuthenticatedRequest("GET", "/users/search", testutil.AsTestUser(caller))
	rec := testutil.NewRecorder()
	handler.ServeSearch(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	var resp []struct {
		Email string `json:"email"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp) != 2 {
		t.Fatalf("got %d results, want 2", len(resp))
	}
	for _, u := range resp {
		if u.Email == "caller@synergy.dev" {
			t.Error("caller included in own results")
		}
	}
}
