// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"net/http"

	apierrors "github.com/synergysphere/synergysphere/internal/app/features/errors"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/app/system/auth"
	"github.com/synergysphere/synergysphere/internal/app/system/authz"
	"github.com/synergysphere/synergysphere/internal/app/system/httpjson"
	"github.com/synergysphere/synergysphere/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// searchLimit caps member-search results; the picker UI only shows a
// handful anyway.
const searchLimit = 10

type Handler struct {
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *apierrors.ErrorLogger
}

func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Users:  users,
		Log:    logger,
		ErrLog: apierrors.NewErrorLogger(logger, "profile"),
	}
}

type profileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ServeProfile handles GET /users/profile. The session middleware has
// already refreshed the user from the database.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}
	httpjson.Write(w, http.StatusOK, profileResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	})
}

// ServeSearch handles GET /users/search?email=substr. The caller is
// excluded from their own results. An empty query is an open search;
// the invite picker starts from it before the user types.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := authz.UserCtx(r)
	if !ok {
		apierrors.Unauthorized(w, "")
		return
	}

	query := r.URL.Query().Get("email")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	found, err := h.Users.SearchByEmail(ctx, query, callerID, searchLimit)
	if err != nil {
		h.ErrLog.ServerError(w, "profile: user search failed", err)
		return
	}

	results := make([]profileResponse, 0, len(found))
	for _, u := range found {
		results = append(results, profileResponse{
			ID:    u.ID.Hex(),
			Name:  u.Name,
			Email: u.Email,
		})
	}
	httpjson.Write(w, http.StatusOK, results)
}
