// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses. The status field is a free enumeration set: an authorized
// actor may move a task from any status to any other (the board supports
// backward moves and direct jumps), so there is no transition table here.
const (
	StatusToDo       = "To-Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// IsValidStatus checks if a value is a valid task status.
func IsValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a unit of work scoped to a project.
//
// NOTE:
//   - ProjectID and CreatorID are immutable after creation.
//   - AssigneeID, if set, must be a member of the project (enforced by the
//     tasks feature at write time).
//   - Only the assignee may change Status.
type Task struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	ProjectID   primitive.ObjectID  `bson:"project_id" json:"project"`
	AssigneeID  *primitive.ObjectID `bson:"assignee_id,omitempty" json:"assignee,omitempty"`
	DueDate     *time.Time          `bson:"due_date,omitempty" json:"dueDate,omitempty"`
	Status      string              `bson:"status" json:"status"`
	ImageURL    string              `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	CreatorID   primitive.ObjectID  `bson:"creator_id" json:"creator"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAssignee reports whether the given user is this task's assignee.
// Unassigned tasks have no assignee, so this is false for everyone.
func (t *Task) IsAssignee(userID primitive.ObjectID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
