package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/synergysphere/synergysphere/internal/app/features/logout"
	"github.com/synergysphere/synergysphere/internal/app/system/auth"
	"go.uber.org/zap"
)

func TestHandleLogout_ClearsCookie(t *testing.T) {
	sessionMgr, err := auth.NewSessionManager("test-session-key-0123456789-abcdefghij", "test-session", "", 24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	handler := logout.NewHandler(sessionMgr, zap.NewNop())

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected a deletion cookie for the session")
	}
}
