// Package taskpolicy decides who may edit a task and who may move it on
// the board.
//
// Authorization rules:
//   - Any project member can edit title, description, assignee, and dates
//   - Only the assignee can change status, on every path; an unassigned
//     task's status cannot be changed until someone is assigned
package taskpolicy

import (
	"github.com/synergysphere/synergysphere/internal/app/policy"
	"github.com/synergysphere/synergysphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanMutate reports whether the user may edit the task's fields
// (title, description, assignee, due date). The project is the task's
// project, loaded by the caller.
func CanMutate(userID primitive.ObjectID, t *models.Task, p *models.Project) policy.Decision {
	if t == nil {
		return policy.NotFound
	}
	// A task whose project is gone is unreachable.
	if p == nil {
		return policy.NotFound
	}
	if p.HasMember(userID) {
		return policy.Allowed
	}
	return policy.Forbidden
}

// CanChangeStatus reports whether the user may change the task's status.
func CanChangeStatus(userID primitive.ObjectID, t *models.Task) policy.Decision {
	if t == nil {
		return policy.NotFound
	}
	if t.IsAssignee(userID) {
		return policy.Allowed
	}
	return policy.Forbidden
}
