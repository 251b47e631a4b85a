// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.Get("/project/{projectID}", h.HandleListByProject)
	r.Get("/mytasks", h.HandleListMine)
	r.Get("/{taskID}", h.HandleGet)
	r.Put("/{taskID}", h.HandleUpdate)
	r.Put("/{taskID}/status", h.HandleSetStatus)
	return r
}
