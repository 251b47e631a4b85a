// internal/domain/models/loginrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord captures a single successful login event.
// SessionID ties the record to the session cookie issued at login.
// CreatedAt is indexed for recent-activity views.
type LoginRecord struct {
	SessionID string             `bson:"session_id"`
	UserID    primitive.ObjectID `bson:"user_id"`
	IP        string             `bson:"ip"`
	CreatedAt time.Time          `bson:"created_at"`
}
