package authoring

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/google/uuid"
)

const validZone = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {},
		"geometry": {
			"type": "Polygon",
			"coordinates": [[[0,0],[0,1],[1,1],[1,0],[0,0]]]
		}
	}]
}`

const lineStringZone = `{
	"type": "FeatureCollection",
	"features": [{
		"type": "Feature",
		"properties": {},
		"geometry": {
			"type": "LineString",
			"coordinates": [[0,0],[1,1]]
		}
	}]
}`

// fakeZoneStore tracks zones per city in memory.
type fakeZoneStore struct {
	cities  map[string]*spatial.City
	zones   map[uuid.UUID]map[string]spatial.DeliveryZone
	deleted []string
}

func newFakeZoneStore(cityNames ...string) *fakeZoneStore {
	s := &fakeZoneStore{
		cities: make(map[string]*spatial.City),
		zones:  make(map[uuid.UUID]map[string]spatial.DeliveryZone),
	}
	for _, name := range cityNames {
		city := &spatial.City{ID: uuid.New(), Name: name, IsActive: true}
		s.cities[name] = city
		s.zones[city.ID] = make(map[string]spatial.DeliveryZone)
	}
	return s
}

func (s *fakeZoneStore) addZone(cityName, zoneName string) {
	city := s.cities[cityName]
	s.zones[city.ID][zoneName] = spatial.DeliveryZone{ID: uuid.New(), CityID: city.ID, Name: zoneName}
}

func (s *fakeZoneStore) FindCityByName(ctx context.Context, name string) (*spatial.City, error) {
	city, ok := s.cities[name]
	if !ok {
		return nil, fmt.Errorf("city %q: %w", name, spatial.ErrNotFound)
	}
	return city, nil
}

func (s *fakeZoneStore) ListZonesByCity(ctx context.Context, cityID uuid.UUID) ([]spatial.DeliveryZone, error) {
	var out []spatial.DeliveryZone
	for _, zone := range s.zones[cityID] {
		out = append(out, zone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *fakeZoneStore) UpsertZone(ctx context.Context, cityID uuid.UUID, name, description, boundaryWKT string) (*spatial.DeliveryZone, error) {
	zone, ok := s.zones[cityID][name]
	if !ok {
		zone = spatial.DeliveryZone{ID: uuid.New(), CityID: cityID, Name: name}
	}
	s.zones[cityID][name] = zone
	return &zone, nil
}

func (s *fakeZoneStore) DeleteZonesByName(ctx context.Context, cityID uuid.UUID, names []string) (int64, error) {
	var removed int64
	for _, name := range names {
		if _, ok := s.zones[cityID][name]; ok {
			delete(s.zones[cityID], name)
			s.deleted = append(s.deleted, name)
			removed++
		}
	}
	return removed, nil
}

func writeZoneFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRun_Reconciles(t *testing.T) {
	citiesDir := t.TempDir()
	cityDir := filepath.Join(citiesDir, "nuevo-laredo")
	if err := os.Mkdir(cityDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeZoneFile(t, cityDir, "new-zone.geojson", validZone)
	writeZoneFile(t, cityDir, "both-zone.geojson", validZone)
	writeZoneFile(t, cityDir, "broken.geojson", "{not json")

	store := newFakeZoneStore("Nuevo Laredo")
	store.addZone("Nuevo Laredo", "both-zone")
	store.addZone("Nuevo Laredo", "old-zone")

	summary, err := Run(context.Background(), store, citiesDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Added != 1 {
		t.Errorf("added = %d, want 1", summary.Added)
	}
	if summary.Updated != 1 {
		t.Errorf("updated = %d, want 1", summary.Updated)
	}
	if summary.Removed != 1 {
		t.Errorf("removed = %d, want 1", summary.Removed)
	}
	if summary.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", summary.Skipped)
	}

	city := store.cities["Nuevo Laredo"]
	zones, _ := store.ListZonesByCity(context.Background(), city.ID)
	names := make([]string, len(zones))
	for i, zone := range zones {
		names[i] = zone.Name
	}
	want := []string{"both-zone", "new-zone"}
	if len(names) != 2 || names[0] != want[0] || names[1] != want[1] {
		t.Errorf("store zones = %v, want %v", names, want)
	}
}

func TestRun_UnknownCityIsSkipped(t *testing.T) {
	citiesDir := t.TempDir()
	cityDir := filepath.Join(citiesDir, "ciudad-fantasma")
	if err := os.Mkdir(cityDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeZoneFile(t, cityDir, "zone.geojson", validZone)

	store := newFakeZoneStore("Nuevo Laredo")
	summary, err := Run(context.Background(), store, citiesDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != (Summary{}) {
		t.Errorf("expected empty summary, got %+v", summary)
	}
}

func TestRun_UnsupportedGeometryCountsAsSkipped(t *testing.T) {
	citiesDir := t.TempDir()
	cityDir := filepath.Join(citiesDir, "nuevo-laredo")
	if err := os.Mkdir(cityDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeZoneFile(t, cityDir, "route.geojson", lineStringZone)
	writeZoneFile(t, cityDir, "good-zone.geojson", validZone)

	store := newFakeZoneStore("Nuevo Laredo")
	summary, err := Run(context.Background(), store, citiesDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Skipped != 1 || summary.Added != 1 {
		t.Errorf("got %+v, want skipped=1 added=1", summary)
	}
}

func TestRun_MissingCitiesDir(t *testing.T) {
	store := newFakeZoneStore()
	if _, err := Run(context.Background(), store, filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing cities directory")
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Added: 1, Updated: 2, Removed: 3, Skipped: 4}
	want := "added=1 updated=2 removed=3 skipped=4"
	if s.String() != want {
		t.Errorf("got %q, want %q", s.String(), want)
	}
}
