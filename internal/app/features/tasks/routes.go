// internal/app/features/tasks/routes.go
package tasks

import "github.com/go-chi/chi/v5"

// GroupRoutes returns the task collection routes, mounted by the
// groups feature under /groups/{groupID}/tasks.
func GroupRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleIndex)
	r.Post("/", h.HandleCreate)
	return r
}

// Routes returns the task item routes mounted under /tasks.
// assignmentRoutes is the assignment collection subrouter served under
// /{taskID}/assignments.
func Routes(h *Handler, assignmentRoutes chi.Router) chi.Router {
	r := chi.NewRouter()
	r.Get("/{taskID}", h.HandleShow)
	r.Patch("/{taskID}", h.HandleUpdate)
	r.Put("/{taskID}", h.HandleUpdate)
	r.Delete("/{taskID}", h.HandleDestroy)
	r.Mount("/{taskID}/assignments", assignmentRoutes)
	return r
}
