package userstore_test

import (
	"testing"

	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/app/system/indexes"
	"github.com/synergysphere/synergysphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, "Ada Lovelace", "Ada@Example.com", "s3cret1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.ID.IsZero() {
		t.Error("expected a generated ID")
	}
	if u.Email != "ada@example.com" {
		t.Errorf("email not normalized: got %q", u.Email)
	}
	if u.PasswordHash == "s3cret1" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret1")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cases := []struct {
		name     string
		userName string
		email    string
		password string
		wantErr  error
	}{
		{"missing name", "", "a@b.com", "s3cret1", userstore.ErrNameRequired},
		{"bad email", "Ada", "not-an-email", "s3cret1", userstore.ErrInvalidEmail},
		{"short password", "Ada", "a@b.com", "12345", userstore.ErrPasswordTooShort},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Create(ctx, tc.userName, tc.email, tc.password)
			if err != tc.wantErr {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.Ensure(ctx, db); err != nil {
		t.Fatalf("Ensure indexes failed: %v", err)
	}

	if _, err := store.Create(ctx, "Ada", "ada@example.com", "s3cret1"); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same address with different casing must collide on email_ci.
	_, err := store.Create(ctx, "Other Ada", "ADA@Example.COM", "s3cret1")
	if err != userstore.ErrDuplicateEmail {
		t.Errorf("got %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_GetByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, "Ada", "ada@example.com", "s3cret1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got user %s, want %s", got.ID.Hex(), created.ID.Hex())
	}

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); err != mongo.ErrNoDocuments {
		t.Errorf("missing user: got %v, want mongo.ErrNoDocuments", err)
	}
}

func TestStore_GetRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fx.CreateUser(ctx, "Ada", "ada@example.com")
	b := fx.CreateUser(ctx, "Brin", "brin@example.com")

	refs, err := store.GetRefs(ctx, []primitive.ObjectID{a.ID, b.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetRefs failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("got %d refs, want 2", len(refs))
	}
	if refs[a.ID].Name != "Ada" || refs[b.ID].Email != "brin@example.com" {
		t.Errorf("refs carry wrong data: %+v", refs)
	}
}

func TestStore_SearchByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	caller := fx.CreateUser(ctx, "Caller", "caller@synergy.dev")
	fx.CreateUser(ctx, "Ada", "ada@synergy.dev")
	fx.CreateUser(ctx, "Brin", "brin@other.org")

	got, err := store.SearchByEmail(ctx, "synergy", caller.ID, 10)
	if err != nil {
		t.Fatalf("SearchByEmail failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d users, want 1 (caller excluded)", len(got))
	}
	if got[0].Email != "ada@synergy.dev" {
		t.Errorf("got %q", got[0].Email)
	}

	// Regex metacharacters in the query must match literally.
	if _, err := store.SearchByEmail(ctx, "a.*(", caller.ID, 10); err != nil {
		t.Errorf("metacharacter query failed: %v", err)
	}
}
