// internal/app/features/projects/routes.go
package projects

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Get("/{projectID}", h.HandleGet)
	r.Post("/{projectID}/members", h.HandleAddMember)
	return r
}
