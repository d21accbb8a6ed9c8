// internal/app/features/sessions/routes.go
package sessions

import "github.com/go-chi/chi/v5"

// Routes mounts the authentication endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/google", h.HandleGoogleAuth)
	r.Post("/google/code", h.HandleGoogleCode)
	return r
}
