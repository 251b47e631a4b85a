// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project priorities. PriorityLow is the default at creation.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// IsValidPriority checks if a value is a valid project priority.
func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Project is a collaboration space owned by one user.
//
// Invariants (enforced by the project store):
//   - OwnerID is always present in MemberIDs.
//   - ManagerID, if set, is present in MemberIDs.
//   - OwnerID never changes after creation.
type Project struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	NameCI      string               `bson:"name_ci" json:"-"`
	Description string               `bson:"description" json:"description"`
	OwnerID     primitive.ObjectID   `bson:"owner_id" json:"owner"`
	MemberIDs   []primitive.ObjectID `bson:"member_ids" json:"members"`

	Tags      []string            `bson:"tags,omitempty" json:"tags,omitempty"`
	ManagerID *primitive.ObjectID `bson:"manager_id,omitempty" json:"projectManager,omitempty"`
	Deadline  *time.Time          `bson:"deadline,omitempty" json:"deadline,omitempty"`
	Priority  string              `bson:"priority" json:"priority"`
	ImageURL  string              `bson:"image_url,omitempty" json:"imageUrl,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasMember reports whether the given user is in the member set.
func (p *Project) HasMember(userID primitive.ObjectID) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
