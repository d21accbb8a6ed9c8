// internal/app/features/evaluations/routes.go
package evaluations

import "github.com/go-chi/chi/v5"

// Routes mounts the evaluation endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleIndex)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleShow)
	r.Patch("/{id}", h.HandleUpdate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDestroy)
	return r
}
