// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	healthfeature "github.com/synergysphere/synergysphere/internal/app/features/health"
	loginfeature "github.com/synergysphere/synergysphere/internal/app/features/login"
	logoutfeature "github.com/synergysphere/synergysphere/internal/app/features/logout"
	profilefeature "github.com/synergysphere/synergysphere/internal/app/features/profile"
	projectsfeature "github.com/synergysphere/synergysphere/internal/app/features/projects"
	registerfeature "github.com/synergysphere/synergysphere/internal/app/features/register"
	tasksfeature "github.com/synergysphere/synergysphere/internal/app/features/tasks"
	loginstore "github.com/synergysphere/synergysphere/internal/app/store/logins"
	projectstore "github.com/synergysphere/synergysphere/internal/app/store/projects"
	taskstore "github.com/synergysphere/synergysphere/internal/app/store/tasks"
	userstore "github.com/synergysphere/synergysphere/internal/app/store/users"
	"github.com/synergysphere/synergysphere/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. The router mounts the JSON API:
// authentication under /auth, then the session-guarded /users, /projects,
// and /tasks feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request, so a
	// deleted account loses access immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	users := userstore.New(deps.MongoDatabase)
	projects := projectstore.New(deps.MongoDatabase)
	tasks := taskstore.New(deps.MongoDatabase)
	logins := loginstore.New(deps.MongoDatabase)

	r := chi.NewRouter()

	if appCfg.CORSOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{appCfg.CORSOrigin},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	registerHandler := registerfeature.NewHandler(users, logger)
	loginHandler := loginfeature.NewHandler(users, logins, sessionMgr, logger)
	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Route("/auth", func(r chi.Router) {
		r.Mount("/register", registerfeature.Routes(registerHandler))
		r.Mount("/login", loginfeature.Routes(loginHandler))
		r.Mount("/logout", logoutfeature.Routes(logoutHandler))
	})

	// Everything below requires a signed-in session.
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.RequireSignedIn)

		profileHandler := profilefeature.NewHandler(users, logger)
		r.Mount("/users", profilefeature.Routes(profileHandler))

		projectsHandler := projectsfeature.NewHandler(projects, users, logger)
		r.Mount("/projects", projectsfeature.Routes(projectsHandler))

		tasksHandler := tasksfeature.NewHandler(tasks, projects, users, logger)
		r.Mount("/tasks", tasksfeature.Routes(tasksHandler))
	})

	return r, nil
}
