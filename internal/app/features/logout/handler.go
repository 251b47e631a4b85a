// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/synergysphere/synergysphere/internal/app/system/auth"
	"github.com/synergysphere/synergysphere/internal/app/system/httpjson"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// HandleLogout handles POST /auth/logout. Clearing the cookie is
// best-effort: even a corrupt session gets a deletion cookie back.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("logout: session clear failed", zap.Error(err))
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
