package geofence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RegionStore is the slice of the spatial store the query endpoints need.
type RegionStore interface {
	ListActiveCities(ctx context.Context) ([]spatial.City, error)
	ListActiveZones(ctx context.Context, cityID *uuid.UUID) ([]spatial.ZoneSummary, error)
	ZoneContains(ctx context.Context, zoneID uuid.UUID, p spatial.Point) (bool, error)
}

type Handler struct {
	resolver *Resolver
	store    RegionStore
}

func NewHandler(resolver *Resolver, store RegionStore) *Handler {
	return &Handler{resolver: resolver, store: store}
}

type pointRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type cityOut struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Country string    `json:"country"`
	State   string    `json:"state,omitempty"`
}

type zoneOut struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

func cityPayload(c *spatial.City) *cityOut {
	if c == nil {
		return nil
	}
	return &cityOut{ID: c.ID, Name: c.Name, Country: c.Country, State: c.State}
}

func zonePayload(z *spatial.DeliveryZone) *zoneOut {
	if z == nil {
		return nil
	}
	return &zoneOut{ID: z.ID, Name: z.Name, Description: z.Description}
}

// ValidateLocationHandler answers the city-level question: do we serve
// this point at all. POST body: {latitude, longitude}.
func (h *Handler) ValidateLocationHandler(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request body"})
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), spatial.Point{Latitude: req.Latitude, Longitude: req.Longitude})
	if errors.Is(err, spatial.ErrInvalidCoordinates) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"isValid": false,
			"data": map[string]any{
				"withinServiceArea": false,
				"message":           "Invalid coordinates. Latitude must be in [-90,90], longitude in [-180,180].",
			},
		})
		return
	}
	if err != nil {
		log.Printf("[geofence] validate-location error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"isValid": false,
			"data": map[string]any{
				"withinServiceArea": false,
				"message":           "Unable to validate your location. Please try again.",
			},
		})
		return
	}

	if resolution.City == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"isValid": false,
			"data": map[string]any{
				"withinServiceArea": false,
				"message":           "Sorry, we don't deliver to your area yet. We're working on expanding our service!",
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"isValid": true,
		"data": map[string]any{
			"withinServiceArea": true,
			"city":              cityPayload(resolution.City),
			"message":           fmt.Sprintf("Great! We deliver to %s.", resolution.City.Name),
		},
	})
}

// ValidateZoneHandler answers the full three-way question: outside city,
// within city only, or within a delivery zone.
func (h *Handler) ValidateZoneHandler(w http.ResponseWriter, r *http.Request) {
	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request body"})
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), spatial.Point{Latitude: req.Latitude, Longitude: req.Longitude})
	if errors.Is(err, spatial.ErrInvalidCoordinates) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "Invalid coordinates. Latitude must be in [-90,90], longitude in [-180,180].",
		})
		return
	}
	if err != nil {
		log.Printf("[geofence] validate-zone error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "Unable to validate your location. Please try again.",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"isValid":            resolution.Deliverable(),
		"withinDeliveryZone": resolution.Deliverable(),
		"reason":             resolution.Outcome,
		"message":            resolution.Message,
		"city":               cityPayload(resolution.City),
		"zone":               zonePayload(resolution.Zone),
	})
}

// CitiesHandler lists active cities.
func (h *Handler) CitiesHandler(w http.ResponseWriter, r *http.Request) {
	cities, err := h.store.ListActiveCities(r.Context())
	if err != nil {
		log.Printf("[geofence] list cities error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch cities"})
		return
	}
	out := make([]cityOut, len(cities))
	for i, c := range cities {
		out[i] = cityOut{ID: c.ID, Name: c.Name, Country: c.Country, State: c.State}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": out})
}

// ZonesHandler lists active zones, optionally filtered by ?city_id=.
func (h *Handler) ZonesHandler(w http.ResponseWriter, r *http.Request) {
	var cityID *uuid.UUID
	if raw := r.URL.Query().Get("city_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid city_id"})
			return
		}
		cityID = &id
	}

	zones, err := h.store.ListActiveZones(r.Context(), cityID)
	if err != nil {
		log.Printf("[geofence] list zones error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch zones"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": zones})
}

// ZoneCheckHandler tests whether a point lies inside one specific zone.
// Admin verification tool.
func (h *Handler) ZoneCheckHandler(w http.ResponseWriter, r *http.Request) {
	zoneID, err := uuid.Parse(chi.URLParam(r, "zoneID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid zone id"})
		return
	}

	var req pointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request body"})
		return
	}
	p := spatial.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := p.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid coordinates"})
		return
	}

	contains, err := h.store.ZoneContains(r.Context(), zoneID, p)
	if errors.Is(err, spatial.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Zone not found"})
		return
	}
	if err != nil {
		log.Printf("[geofence] zone check error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Zone check failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "contains": contains})
}
