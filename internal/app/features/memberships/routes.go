// internal/app/features/memberships/routes.go
package memberships

import "github.com/go-chi/chi/v5"

// Routes mounts the membership endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleIndex)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleShow)
	r.Patch("/{id}", h.HandleUpdate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDestroy)
	r.Patch("/{id}/change_role", h.HandleChangeRole)
	return r
}
