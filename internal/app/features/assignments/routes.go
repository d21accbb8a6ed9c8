// internal/app/features/assignments/routes.go
package assignments

import "github.com/go-chi/chi/v5"

// TaskRoutes returns the assignment collection routes mounted under
// /tasks/{taskID}/assignments.
func TaskRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleIndex)
	r.Post("/", h.HandleCreate)
	return r
}

// Routes returns the assignment item routes mounted under /assignments.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}", h.HandleShow)
	r.Patch("/{id}", h.HandleUpdate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDestroy)
	return r
}
