package userstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/synergysphere/synergysphere/internal/app/system/inputval"
	"github.com/synergysphere/synergysphere/internal/app/system/normalize"
	"github.com/synergysphere/synergysphere/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// MinPasswordLength is the registration minimum.
const MinPasswordLength = 6

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail   = errors.New("a user with this email already exists")
	ErrNameRequired     = errors.New("name is required")
	ErrInvalidEmail     = errors.New("a valid email address is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

// Create inserts a new user after normalizing and validating fields.
// The password is bcrypt-hashed; the plain text is never stored.
func (s *Store) Create(ctx context.Context, name, email, password string) (models.User, error) {
	name = normalize.Name(name)
	email = normalize.Email(email)

	if name == "" {
		return models.User{}, ErrNameRequired
	}
	if !inputval.IsValidEmail(email) {
		return models.User{}, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return models.User{}, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	filter := bson.M{"email_ci": text.Fold(normalize.Email(email))}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRefs resolves a set of user IDs to display references. Missing IDs
// are silently skipped (a deleted user should not break a project view).
func (s *Store) GetRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error) {
	refs := make(map[primitive.ObjectID]models.UserRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	proj := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		refs[u.ID] = u.Ref()
	}
	return refs, cur.Err()
}

// SearchByEmail returns up to limit users whose email contains the given
// substring, case-insensitive, excluding excludeID (the caller). An empty
// substring matches everyone, mirroring the open search the UI relies on
// for the invite picker.
func (s *Store) SearchByEmail(ctx context.Context, substr string, excludeID primitive.ObjectID, limit int64) ([]models.User, error) {
	filter := bson.M{"_id": bson.M{"$ne": excludeID}}
	if substr != "" {
		filter["email"] = bson.M{
			// Quote the input so regex metacharacters match literally.
			"$regex":   regexp.QuoteMeta(substr),
			"$options": "i",
		}
	}

	opts := options.Find().
		SetProjection(bson.M{"name": 1, "email": 1}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
