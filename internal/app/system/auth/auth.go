// Package auth manages the session cookie and the request-scoped current
// user. Identity is resolved once here at the boundary; handlers and
// services receive the caller explicitly and never read ambient state.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	sessionIDKey = "session_id"
)

// SessionUser is the resolved caller injected into r.Context().
type SessionUser struct {
	ID    string
	Name  string
	Email string
}

// UserFetcher loads fresh user data for the ID stored in the session.
// Returning nil means the session is no longer valid (user deleted).
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) *SessionUser
}

// SessionManager wraps a cookie store with the session conventions used
// across the app: HTTP-only, SameSite=Strict, 30-day expiry by default.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
}

// NewSessionManager builds a SessionManager backed by a signed cookie
// store. The `secure` flag controls the Secure cookie attribute; keep it
// off only for local development over http.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "synergysphere-session"
	}
	if maxAge <= 0 {
		maxAge = 30 * 24 * time.Hour
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher installs the fetcher LoadSessionUser uses to load fresh
// user data on each request, so profile updates and deletions take effect
// immediately instead of living in the cookie for 30 days.
func (m *SessionManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// GetSession returns the request's session, or a fresh one if the cookie
// is absent or fails to decode. The error is informational; the returned
// session is always usable.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

// SignIn marks the session authenticated for the given user and saves the
// cookie. It returns the generated session ID, which callers record in
// the login audit trail.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) (string, error) {
	sess, err := m.GetSession(r)
	if err != nil {
		// Decode failures fall back to the fresh session Get returned.
		m.log.Warn("session cookie invalid, using fresh session",
			zap.Error(err), zap.String("user_id", userID))
	}

	sid := uuid.NewString()
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	sess.Values[sessionIDKey] = sid

	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return sid, nil
}

// SignOut clears the session and expires the cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.GetSession(r)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helpers                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// SessionID returns the session identifier issued at sign-in, if any.
func (m *SessionManager) SessionID(r *http.Request) string {
	sess, err := m.GetSession(r)
	if err != nil {
		return ""
	}
	sid, _ := sess.Values[sessionIDKey].(string)
	return sid
}

// LoadSessionUser injects the user into context if they are signed in.
// With a UserFetcher installed, user data is loaded fresh on every
// request; a nil fetch result is treated as signed out.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.GetSession(r)
		if err != nil {
			// A tampered or stale signature means signed out, not a
			// server failure. Anything else is worth a log line.
			if _, isCookieErr := err.(securecookie.Error); !isCookieErr {
				m.log.Warn("session decode failed", zap.Error(err))
			}
		}

		isAuth, _ := sess.Values[isAuthKey].(bool)
		userID, _ := sess.Values[userIDKey].(string)
		if !isAuth || userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		if m.fetcher != nil {
			if u := m.fetcher.FetchUser(r.Context(), userID); u != nil {
				r = withUser(r, u)
			}
		} else {
			r = withUser(r, &SessionUser{ID: userID})
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser). Callers without one get a JSON 401.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Not authorized, no session"}`)
	})
}

// WithTestUser injects a user into the request context directly.
// Test-only escape hatch for handler tests that bypass the middleware.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
