package geofence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/google/uuid"
)

type mockRegionStore struct {
	cities []spatial.City
	zones  []spatial.ZoneSummary
}

func (m *mockRegionStore) ListActiveCities(ctx context.Context) ([]spatial.City, error) {
	return m.cities, nil
}

func (m *mockRegionStore) ListActiveZones(ctx context.Context, cityID *uuid.UUID) ([]spatial.ZoneSummary, error) {
	return m.zones, nil
}

func (m *mockRegionStore) ZoneContains(ctx context.Context, zoneID uuid.UUID, p spatial.Point) (bool, error) {
	return false, spatial.ErrNotFound
}

func TestValidateLocationHandler_InvalidCoordinates(t *testing.T) {
	h := NewHandler(NewResolver(&mockFinder{}), &mockRegionStore{})

	req := httptest.NewRequest(http.MethodPost, "/validate-location",
		strings.NewReader(`{"latitude": 120, "longitude": 0}`))
	rec := httptest.NewRecorder()
	h.ValidateLocationHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid coordinates") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestValidateLocationHandler_WithinCity(t *testing.T) {
	city := &spatial.City{ID: uuid.New(), Name: "Nuevo Laredo", Country: "Mexico"}
	h := NewHandler(NewResolver(&mockFinder{city: city}), &mockRegionStore{})

	req := httptest.NewRequest(http.MethodPost, "/validate-location",
		strings.NewReader(`{"latitude": 27.4764, "longitude": -99.5164}`))
	rec := httptest.NewRecorder()
	h.ValidateLocationHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"withinServiceArea":true`) {
		t.Errorf("expected withinServiceArea true: %s", body)
	}
	if !strings.Contains(body, "Nuevo Laredo") {
		t.Errorf("expected city name in body: %s", body)
	}
}

func TestValidateZoneHandler_ThreeWay(t *testing.T) {
	city := &spatial.City{ID: uuid.New(), Name: "Nuevo Laredo"}
	zone := &spatial.DeliveryZone{ID: uuid.New(), CityID: city.ID, Name: "casa-mirador"}

	cases := []struct {
		name       string
		finder     *mockFinder
		wantReason string
	}{
		{"outside city", &mockFinder{}, string(OutsideCity)},
		{"city only", &mockFinder{city: city}, string(WithinCityOnly)},
		{"within zone", &mockFinder{city: city, zone: zone}, string(WithinZone)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler(NewResolver(tc.finder), &mockRegionStore{})
			req := httptest.NewRequest(http.MethodPost, "/validate-zone",
				strings.NewReader(`{"latitude": 27.4764, "longitude": -99.5164}`))
			rec := httptest.NewRecorder()
			h.ValidateZoneHandler(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.wantReason) {
				t.Errorf("expected reason %s in body: %s", tc.wantReason, rec.Body.String())
			}
		})
	}
}

func TestZonesHandler_InvalidCityID(t *testing.T) {
	h := NewHandler(NewResolver(&mockFinder{}), &mockRegionStore{})

	req := httptest.NewRequest(http.MethodGet, "/zones?city_id=not-a-uuid", nil)
	rec := httptest.NewRecorder()
	h.ZonesHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
