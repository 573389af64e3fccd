package locations

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the per-customer location endpoints under
// /{customerID}/locations.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Route("/{customerID}/locations", func(r chi.Router) {
		r.Post("/resolve", h.ResolveHandler)
		r.Get("/", h.ListHandler)
		r.Get("/primary", h.PrimaryHandler)
		r.Patch("/{locationID}", h.UpdateHandler)
		r.Patch("/{locationID}/primary", h.SetPrimaryHandler)
		r.Delete("/{locationID}", h.DeleteHandler)
	})

	return r
}
