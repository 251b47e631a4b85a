// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/profile", h.ServeProfile)
	r.Get("/search", h.ServeSearch)
	return r
}
