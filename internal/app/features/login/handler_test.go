package login_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/synergysphere/synergysphere/internal/app/features/login"
	loginstore "github.com/synergysphere/synergysphere/internal/app/store/logins"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/app/system/auth"
	"github.com/synergysphere/synergysphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const testSessionKey = "test-session-key-0123456789-abcdefghij"

func newTestHandler(t *testing.T) (*login.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sessionMgr, err := auth.NewSessionManager(testSessionKey, "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	handler := login.NewHandler(userstore.New(db), loginstore.New(db), sessionMgr, zap.NewNop())
	return handler, testutil.NewFixtures(t, db)
}

func registerUser(t *testing.T, h *login.Handler, email, password string) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := h.Users.Create(ctx, "Test User", email, password); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func TestHandleLogin_Success(t *testing.T) {
	handler, fixtures := newTestHandler(t)
	registerUser(t, handler, "ada@example.com", "s3cret1")

	req := testutil.NewJSONRequest(t, "POST", "/auth/login", map[string]string{
		"email":    "ADA@example.com",
		"password": "s3cret1",
	})
	req.RemoteAddr = "203.0.113.5:40000"
	rec := testutil.NewRecorder()
	handler.HandleLogin(rec.ResponseRecorder, req)

	rec.AssertStatus(t, http.StatusOK)

	// Session cookie must be set.
	cookies := rec.Result().Cookies()
	var found *http.Cookie
	for _, c := range cookies {
		if c.Name == "test-session" {
			found = c
		}
	}
	if found == nil {
		t.Fatal("session cookie not set")
	}
	if !found.HttpOnly {
		t.Error("session cookie must be http-only")
	}

	// The sign-in leaves an audit record.
	ctx, cancel := testutil.TestContext()
	defer cancel()
	n, err := fixtures.DB().Collection("login_records").CountDocuments(ctx, bson.M{"ip": "203.0.113.5"})
	if err != nil {
		t.Fatalf("count login records: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d login records, want 1", n)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	handler, _ := newTestHandler(t)
	registerUser(t, handler, "ada@example.com", "s3cret1")

	// Unknown email and wrong password must be indistinguishable.
	bodies := []map[string]string{
		{"email": "nobody@example.com", "password": "s3cret1"},
		{"email": "ada@example.com", "password": "wrong-password"},
	}

	var messages []string
	for _, body := range bodies {
		rec := testutil.NewRecorder()
		handler.HandleLogin(rec.ResponseRecorder, testutil.NewJSONRequest(t, "POST", "/auth/login", body))
		rec.AssertStatus(t, http.StatusUnauthorized)

		var resp struct {
			Message string `json:"message"`
		}
		rec.DecodeJSON(t, &resp)
		messages = append(messages, resp.Message)
	}

	if messages[0] != messages[1] {
		t.Errorf("error messages differ: %q vs %q", messages[0], messages[1])
	}
}

func TestHandleLogin_MissingFields(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	handler.HandleLogin(rec.ResponseRecorder, testutil.NewJSONRequest(t, "POST", "/auth/login", map[string]string{}))
	rec.AssertStatus(t, http.StatusBadRequest)
}
