// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/synergysphere/synergysphere/internal/app/system/htmlsanitize"
	"github.com/synergysphere/synergysphere/internal/app/system/normalize"
	"github.com/synergysphere/synergysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

var (
	ErrNameRequired     = errors.New("project name is required")
	ErrBadPriority      = errors.New(`priority must be "Low"|"Medium"|"High"`)
	ErrManagerNotMember = errors.New("project manager must be a member")

	// ErrAlreadyMember is returned when the candidate is already in the
	// member set, including when a concurrent invite got there first.
	ErrAlreadyMember = errors.New("user is already a member of this project")
)

// NewProject describes the caller-supplied fields for project creation.
type NewProject struct {
	Name        string
	Description string
	Tags        []string
	ManagerID   *primitive.ObjectID
	Deadline    *time.Time
	Priority    string
	ImageURL    string
}

// Create inserts a project owned by ownerID. The owner is always the
// first member; a manager, if given, must already be in the member set
// (at creation that means the owner).
func (s *Store) Create(ctx context.Context, ownerID primitive.ObjectID, in NewProject) (models.Project, error) {
	name := normalize.Name(in.Name)
	if name == "" {
		return models.Project{}, ErrNameRequired
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityLow
	}
	if !models.IsValidPriority(priority) {
		return models.Project{}, ErrBadPriority
	}

	// Tags are plain text; strip any markup and drop entries that end
	// up empty.
	var tags []string
	for _, tag := range in.Tags {
		if tag = normalize.Name(htmlsanitize.StripTags(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}

	now := time.Now().UTC()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: htmlsanitize.Sanitize(in.Description),
		OwnerID:     ownerID,
		MemberIDs:   []primitive.ObjectID{ownerID},
		Tags:        tags,
		Deadline:    in.Deadline,
		Priority:    priority,
		ImageURL:    in.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if in.ManagerID != nil {
		if !p.HasMember(*in.ManagerID) {
			return models.Project{}, ErrManagerNotMember
		}
		p.ManagerID = in.ManagerID
	}

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForMember returns the projects the user belongs to, oldest first.
func (s *Store) ListForMember(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"member_ids": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetNames resolves project IDs to names for embedding in task views.
// Unknown IDs are simply absent from the result.
func (s *Store) GetNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	if len(ids) == 0 {
		return map[primitive.ObjectID]string{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	names := make(map[primitive.ObjectID]string, len(ids))
	for cur.Next(ctx) {
		var doc struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		names[doc.ID] = doc.Name
	}
	return names, cur.Err()
}

// AddMember appends userID to the project's member set with a single
// conditional update: the filter requires the member to be absent, so
// two concurrent invites cannot overwrite each other's append and the
// loser of a race classifies as ErrAlreadyMember instead of writing a
// duplicate.
//
// Returns the updated member set. Authorization (owner-only) is the
// caller's responsibility via projectpolicy.
func (s *Store) AddMember(ctx context.Context, projectID, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"_id":        projectID,
		"member_ids": bson.M{"$ne": userID},
	}
	update := bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}

	var updated models.Project
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return updated.MemberIDs, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// No match: either the project is gone or the user is already a
	// member (possibly via a concurrent invite). Re-read to classify.
	p, err := s.GetByID(ctx, projectID)
	if err != nil {
		return nil, err // mongo.ErrNoDocuments → project absent
	}
	if p.HasMember(userID) {
		return nil, ErrAlreadyMember
	}
	return nil, mongo.ErrNoDocuments
}
