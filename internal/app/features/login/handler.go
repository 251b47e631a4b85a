// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/synergysphere/synergysphere/internal/app/features/errors"
	loginstore "github.com/synergysphere/synergysphere/internal/app/store/logins"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/app/system/auth"
	"github.com/synergysphere/synergysphere/internal/app/system/httpjson"
	"github.com/synergysphere/synergysphere/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// invalidCredentials is deliberately identical for an unknown email and
// a wrong password so the endpoint cannot be used to probe for accounts.
const invalidCredentials = "Invalid email or password"

type Handler struct {
	Users      *userstore.Store
	Logins     *loginstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
	ErrLog     *apierrors.ErrorLogger
}

func NewHandler(users *userstore.Store, logins *loginstore.Store, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		Logins:     logins,
		SessionMgr: sessionMgr,
		Log:        logger,
		ErrLog:     apierrors.NewErrorLogger(logger, "login"),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		apierrors.BadRequest(w, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierrors.Unauthorized(w, invalidCredentials)
			return
		}
		h.ErrLog.ServerError(w, "login: lookup failed", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		apierrors.Unauthorized(w, invalidCredentials)
		return
	}

	sid, err := h.SessionMgr.SignIn(w, r, u.ID.Hex())
	if err != nil {
		h.ErrLog.ServerError(w, "login: session write failed", err)
		return
	}

	// Audit trail only; a failed write must not block the sign-in.
	if err := h.Logins.Record(ctx, sid, u.ID, loginstore.ClientIP(r)); err != nil {
		h.Log.Warn("login: record write failed",
			zap.String("user_id", u.ID.Hex()),
			zap.Error(err))
	}

	h.Log.Info("user signed in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("session_id", sid))
	httpjson.Write(w, http.StatusOK, u.Ref())
}
