// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/synergysphere/synergysphere/internal/app/system/httpjson"
	"go.uber.org/zap"
)

// body is the JSON shape every error response uses.
type body struct {
	Message string `json:"message"`
}

// Write sends a JSON error with the given status and message.
func Write(w http.ResponseWriter, status int, message string) {
	httpjson.Write(w, status, body{Message: message})
}

// BadRequest is for malformed or invalid input.
func BadRequest(w http.ResponseWriter, message string) {
	Write(w, http.StatusBadRequest, message)
}

// Unauthorized is for requests with no valid session.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Not authorized, no session"
	}
	Write(w, http.StatusUnauthorized, message)
}

// Forbidden is for signed-in callers who lack permission on a resource
// they are allowed to know exists.
func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	Write(w, http.StatusForbidden, message)
}

// NotFound covers both truly absent resources and resources hidden from
// the caller; the two cases are indistinguishable on the wire.
func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Write(w, http.StatusNotFound, message)
}

// Conflict is for duplicate-state outcomes like repeated invites.
func Conflict(w http.ResponseWriter, message string) {
	Write(w, http.StatusConflict, message)
}

// ServerError logs the underlying error and sends a generic 500 so
// internals never leak to the client.
func ServerError(w http.ResponseWriter, log *zap.Logger, context string, err error) {
	if log != nil {
		log.Error(context, zap.Error(err))
	}
	Write(w, http.StatusInternalServerError, "Server error")
}

// ErrorLogger pairs a zap logger with the owning feature so handlers
// report failures consistently.
type ErrorLogger struct {
	log     *zap.Logger
	feature string
}

// NewErrorLogger constructs an ErrorLogger for a feature.
func NewErrorLogger(log *zap.Logger, feature string) *ErrorLogger {
	return &ErrorLogger{log: log, feature: feature}
}

// ServerError logs err tagged with the feature and writes a generic 500.
func (l *ErrorLogger) ServerError(w http.ResponseWriter, context string, err error) {
	if l != nil && l.log != nil {
		l.log.Error(context, zap.String("feature", l.feature), zap.Error(err))
	}
	Write(w, http.StatusInternalServerError, "Server error")
}
