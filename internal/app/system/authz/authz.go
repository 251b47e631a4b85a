// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/synergysphere/synergysphere/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's Mongo ObjectID, name, and a found flag.
// If no user is present in context or the user ID is malformed, it
// returns NilObjectID and false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (userID primitive.ObjectID, name string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, "", false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		// Should not happen in normal operation; indicates session corruption.
		return primitive.NilObjectID, "", false
	}
	return userID, user.Name, true
}
