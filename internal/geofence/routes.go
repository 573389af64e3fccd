package geofence

import (
	"net/http"

	"github.com/ElComedor/Geo-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// SetupRoutes mounts the geofencing endpoints. The validation endpoints
// are public and rate-limited; the per-zone check is admin-only.
func SetupRoutes(h *Handler, sessions middleware.SessionFetcher, perSecond rate.Limit, burst int) http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(perSecond, burst))
		r.Post("/validate-location", h.ValidateLocationHandler)
		r.Post("/validate-zone", h.ValidateZoneHandler)
	})

	r.Get("/cities", h.CitiesHandler)
	r.Get("/zones", h.ZonesHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessions))
		r.Use(middleware.AdminOnly)
		r.Post("/zones/{zoneID}/check", h.ZoneCheckHandler)
	})

	return r
}
