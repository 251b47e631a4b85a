// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/synergysphere/synergysphere/internal/app/features/errors"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/app/system/httpjson"
	"github.com/synergysphere/synergysphere/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *apierrors.ErrorLogger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		Log:    logger,
		ErrLog: apierrors.NewErrorLogger(logger, "register"),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpjson.Decode(r, &req); err != nil {
		apierrors.BadRequest(w, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		h.Log.Info("user registered",
			zap.String("user_id", u.ID.Hex()),
			zap.String("email", u.Email))
		httpjson.Write(w, http.StatusCreated, u.Ref())
	case errors.Is(err, userstore.ErrDuplicateEmail):
		apierrors.BadRequest(w, "A user with this email already exists")
	case errors.Is(err, userstore.ErrNameRequired),
		errors.Is(err, userstore.ErrInvalidEmail),
		errors.Is(err, userstore.ErrPasswordTooShort):
		apierrors.BadRequest(w, err.Error())
	default:
		h.ErrLog.ServerError(w, "register: create user failed", err)
	}
}
