// Package projectpolicy decides who may read a project and who may
// change its member set.
//
// Authorization rules:
//   - Any member can view the project and act on its tasks
//   - Only the owner can manage the member set (ownership is fixed at
//     creation and never transfers, so this check stays trivially correct)
package projectpolicy

import (
	"github.com/synergysphere/synergysphere/internal/app/policy"
	"github.com/synergysphere/synergysphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CanView reports whether the user may read the project.
func CanView(userID primitive.ObjectID, p *models.Project) policy.Decision {
	if p == nil {
		return policy.NotFound
	}
	if p.HasMember(userID) {
		return policy.Allowed
	}
	return policy.Forbidden
}

// CanManageMembers reports whether the user may add project members.
func CanManageMembers(userID primitive.ObjectID, p *models.Project) policy.Decision {
	if p == nil {
		return policy.NotFound
	}
	if p.OwnerID == userID {
		return policy.Allowed
	}
	return policy.Forbidden
}

// CanActOnTasks reports whether the user may create or list tasks in the
// project. Same rule as CanView: membership.
func CanActOnTasks(userID primitive.ObjectID, p *models.Project) policy.Decision {
	return CanView(userID, p)
}
