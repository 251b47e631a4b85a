package indexes_test

import (
	"testing"

	"github.com/synergysphere/synergysphere/internal/app/system/indexes"
	"github.com/synergysphere/synergysphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Ensure should succeed on a clean database
	if err := indexes.Ensure(ctx, db); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
}

func TestEnsure_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.Ensure(ctx, db); err != nil {
		t.Fatalf("First Ensure failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	if err := indexes.Ensure(ctx, db); err != nil {
		t.Fatalf("Second Ensure failed: %v", err)
	}
}

func TestEnsure_CreatesExpectedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.Ensure(ctx, db); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	cases := []struct {
		collection string
		want       []string
	}{
		{"users", []string{"uniq_users_email_ci"}},
		{"projects", []string{"idx_projects_member_ids", "idx_projects_owner"}},
		{"tasks", []string{"idx_tasks_project_created", "idx_tasks_assignee"}},
		{"login_records", []string{"idx_login_records_user_created", "idx_login_records_created"}},
	}

	for _, tc := range cases {
		cur, err := db.Collection(tc.collection).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("%s: List indexes failed: %v", tc.collection, err)
		}

		names := make(map[string]bool)
		for cur.Next(ctx) {
			var idx bson.M
			if err := cur.Decode(&idx); err != nil {
				continue
			}
			if name, ok := idx["name"].(string); ok {
				names[name] = true
			}
		}
		cur.Close(ctx)

		for _, want := range tc.want {
			if !names[want] {
				t.Errorf("%s: missing index %q (have %v)", tc.collection, want, names)
			}
		}
	}
}
