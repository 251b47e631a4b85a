package loginstore_test

import (
	"net/http/httptest"
	"testing"

	loginstore "github.com/synergysphere/synergysphere/internal/app/store/logins"
	"github.com/synergysphere/synergysphere/internal/domain/models"
	"github.com/synergysphere/synergysphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Record(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if err := store.Record(ctx, "sess-abc", userID, "192.168.1.1"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	var found models.LoginRecord
	err := db.Collection("login_records").FindOne(ctx, bson.M{"user_id": userID}).Decode(&found)
	if err != nil {
		t.Fatalf("failed to find login record: %v", err)
	}
	if found.SessionID != "sess-abc" {
		t.Errorf("session id: got %q", found.SessionID)
	}
	if found.IP != "192.168.1.1" {
		t.Errorf("ip: got %q", found.IP)
	}
	if found.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"no proxy", "", "10.0.0.7:49152", "10.0.0.7"},
		{"single forwarded", "203.0.113.5", "10.0.0.7:49152", "203.0.113.5"},
		{"forwarded chain", "203.0.113.5, 10.0.0.1, 10.0.0.2", "10.0.0.7:49152", "203.0.113.5"},
		{"remote addr without port", "", "10.0.0.7", "10.0.0.7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tc.remoteAddr
			if tc.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tc.forwarded)
			}
			if got := loginstore.ClientIP(r); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}
