package locations

import (
	"encoding/json"
	"errors"
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

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

type Handler struct {
	service *Service
	store   *spatial.Store
}

func NewHandler(service *Service, store *spatial.Store) *Handler {
	return &Handler{service: service, store: store}
}

func customerID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "customerID"))
}

func locationID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "locationID"))
}

type locationOut struct {
	ID         uuid.UUID `json:"id"`
	Address    string    `json:"address"`
	Label      *string   `json:"label"`
	IsPrimary  bool      `json:"is_primary"`
	LastUsedAt any       `json:"last_used_at,omitempty"`
	CreatedAt  any       `json:"created_at,omitempty"`
}

func locationPayload(l *spatial.CustomerLocation) locationOut {
	return locationOut{
		ID:         l.ID,
		Address:    l.Address,
		Label:      l.Label,
		IsPrimary:  l.IsPrimary,
		LastUsedAt: l.LastUsedAt,
		CreatedAt:  l.CreatedAt,
	}
}

// ResolveHandler deduplicates a GPS fix for a customer.
// POST body: {latitude, longitude, address?}.
func (h *Handler) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	var req struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Address   string  `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.ResolveLocation(r.Context(), id, spatial.Point{Latitude: req.Latitude, Longitude: req.Longitude}, req.Address)
	switch {
	case errors.Is(err, spatial.ErrInvalidCoordinates):
		writeError(w, http.StatusBadRequest, "Invalid coordinates")
		return
	case errors.Is(err, ErrUnknownCustomer):
		writeError(w, http.StatusNotFound, "Customer not found")
		return
	case err != nil:
		log.Printf("[locations] resolve error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to resolve location")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"location": result,
		"message":  result.Message,
	})
}

// ListHandler returns a customer's locations, primary first.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	list, err := h.store.ListLocations(r.Context(), id)
	if err != nil {
		log.Printf("[locations] list error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch locations")
		return
	}
	out := make([]locationOut, len(list))
	for i := range list {
		out[i] = locationPayload(&list[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "locations": out})
}

// PrimaryHandler returns the customer's primary location.
func (h *Handler) PrimaryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := customerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	location, err := h.store.GetPrimaryLocation(r.Context(), id)
	if errors.Is(err, spatial.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No primary location set")
		return
	}
	if err != nil {
		log.Printf("[locations] primary error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch primary location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "location": locationPayload(location)})
}

// UpdateHandler edits address and/or label.
// PATCH body: {address?, label?} where label may be null to clear it.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	custID, err := customerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}
	locID, err := locationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	var req struct {
		Address *string          `json:"address"`
		Label   *json.RawMessage `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	upd := spatial.LocationUpdate{Address: req.Address}
	if req.Label != nil {
		if string(*req.Label) == "null" {
			upd.ClearLabel = true
		} else {
			var label string
			if err := json.Unmarshal(*req.Label, &label); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid label")
				return
			}
			upd.Label = &label
		}
	}

	location, err := h.store.UpdateLocation(r.Context(), custID, locID, upd)
	if errors.Is(err, spatial.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Location not found")
		return
	}
	if err != nil {
		log.Printf("[locations] update error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"location": locationPayload(location),
		"message":  "Location updated successfully",
	})
}

// SetPrimaryHandler marks a location as the customer's primary.
func (h *Handler) SetPrimaryHandler(w http.ResponseWriter, r *http.Request) {
	custID, err := customerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}
	locID, err := locationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	location, err := h.store.SetPrimaryLocation(r.Context(), custID, locID)
	if errors.Is(err, spatial.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Location not found")
		return
	}
	if err != nil {
		log.Printf("[locations] set primary error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to update primary location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"location": locationPayload(location),
		"message":  "Primary location updated",
	})
}

// DeleteHandler removes a location unless orders still reference it.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	custID, err := customerID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}
	locID, err := locationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid location id")
		return
	}

	err = h.store.DeleteLocation(r.Context(), custID, locID)
	switch {
	case errors.Is(err, spatial.ErrNotFound):
		writeError(w, http.StatusNotFound, "Location not found")
		return
	case errors.Is(err, spatial.ErrLocationInUse):
		writeError(w, http.StatusConflict, "Cannot delete location - it is used by existing orders")
		return
	case err != nil:
		log.Printf("[locations] delete error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Location deleted successfully"})
}
