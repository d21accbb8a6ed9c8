// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes mounts the group endpoints. taskRoutes is the task collection
// subrouter served under /{groupID}/tasks; nesting it here keeps the
// groupID param name consistent across the subtree.
func Routes(h *Handler, taskRoutes chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleIndex)
	r.Post("/", h.HandleCreate)
	r.Post("/join", h.HandleJoin)
	r.Get("/{groupID}", h.HandleShow)
	r.Patch("/{groupID}", h.HandleUpdate)
	r.Put("/{groupID}", h.HandleUpdate)
	r.Delete("/{groupID}", h.HandleDestroy)
	r.Mount("/{groupID}/tasks", taskRoutes)
	return r
}
