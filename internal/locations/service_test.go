package locations

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/google/uuid"
)

// fakeStore keeps locations in memory. Points at identical coordinates
// are distance 0; everything else is far outside any sane threshold.
type fakeStore struct {
	customers map[uuid.UUID]bool
	rows      []fakeRow
	touched   []uuid.UUID
}

type fakeRow struct {
	loc   spatial.CustomerLocation
	point spatial.Point
}

func newFakeStore(customerIDs ...uuid.UUID) *fakeStore {
	s := &fakeStore{customers: make(map[uuid.UUID]bool)}
	for _, id := range customerIDs {
		s.customers[id] = true
	}
	return s
}

func (s *fakeStore) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.customers[id], nil
}

func (s *fakeStore) FindNear(ctx context.Context, customerID uuid.UUID, p spatial.Point, radiusMeters float64) ([]spatial.NearbyLocation, error) {
	var out []spatial.NearbyLocation
	for _, row := range s.rows {
		if row.loc.CustomerID != customerID {
			continue
		}
		distance := 1e6
		if row.point == p {
			distance = 0
		}
		if distance <= radiusMeters {
			out = append(out, spatial.NearbyLocation{
				ID:         row.loc.ID,
				CustomerID: row.loc.CustomerID,
				Address:    row.loc.Address,
				Label:      row.loc.Label,
				IsPrimary:  row.loc.IsPrimary,
				LastUsedAt: row.loc.LastUsedAt,
				Distance:   distance,
			})
		}
	}
	return out, nil
}

func (s *fakeStore) TouchLocation(ctx context.Context, id uuid.UUID) error {
	s.touched = append(s.touched, id)
	return nil
}

func (s *fakeStore) CountLocations(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	for _, row := range s.rows {
		if row.loc.CustomerID == customerID {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) CreateLocation(ctx context.Context, customerID uuid.UUID, p spatial.Point, address string, label *string, isPrimary bool) (*spatial.CustomerLocation, error) {
	loc := spatial.CustomerLocation{
		ID:         uuid.New(),
		CustomerID: customerID,
		Address:    address,
		Label:      label,
		IsPrimary:  isPrimary,
		LastUsedAt: time.Now(),
	}
	s.rows = append(s.rows, fakeRow{loc: loc, point: p})
	return &loc, nil
}

var fix = spatial.Point{Latitude: 27.4764, Longitude: -99.5164}

func TestResolveLocation_UnknownCustomer(t *testing.T) {
	svc := NewService(newFakeStore(), 0)

	_, err := svc.ResolveLocation(context.Background(), uuid.New(), fix, "Calle Hidalgo 12")
	if !errors.Is(err, ErrUnknownCustomer) {
		t.Errorf("expected ErrUnknownCustomer, got %v", err)
	}
}

func TestResolveLocation_InvalidCoordinates(t *testing.T) {
	customer := uuid.New()
	svc := NewService(newFakeStore(customer), 0)

	_, err := svc.ResolveLocation(context.Background(), customer, spatial.Point{Latitude: 91}, "")
	if !errors.Is(err, spatial.ErrInvalidCoordinates) {
		t.Errorf("expected ErrInvalidCoordinates, got %v", err)
	}
}

func TestResolveLocation_FirstBecomesPrimary(t *testing.T) {
	customer := uuid.New()
	store := newFakeStore(customer)
	svc := NewService(store, 0)

	result, err := svc.ResolveLocation(context.Background(), customer, fix, "Calle Hidalgo 12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsExisting {
		t.Error("first resolution must create, not reuse")
	}
	if !result.IsPrimary {
		t.Error("first location must be primary")
	}
	if result.Message != "New location saved as your primary address" {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestResolveLocation_SecondPointIsSecondary(t *testing.T) {
	customer := uuid.New()
	store := newFakeStore(customer)
	svc := NewService(store, 0)

	if _, err := svc.ResolveLocation(context.Background(), customer, fix, "Calle Hidalgo 12"); err != nil {
		t.Fatal(err)
	}
	elsewhere := spatial.Point{Latitude: 27.49, Longitude: -99.51}
	result, err := svc.ResolveLocation(context.Background(), customer, elsewhere, "Av. Reforma 800")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsExisting || result.IsPrimary {
		t.Errorf("expected new secondary location, got existing=%v primary=%v", result.IsExisting, result.IsPrimary)
	}
	if result.Message != "New location saved" {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestResolveLocation_NoAddressMessage(t *testing.T) {
	customer := uuid.New()
	svc := NewService(newFakeStore(customer), 0)

	result, err := svc.ResolveLocation(context.Background(), customer, fix, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Message != "Location saved. Please enter your delivery address." {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

// Resolving the same fix twice must reuse the stored row, not add one.
func TestResolveLocation_Idempotent(t *testing.T) {
	customer := uuid.New()
	store := newFakeStore(customer)
	svc := NewService(store, 0)

	first, err := svc.ResolveLocation(context.Background(), customer, fix, "Calle Hidalgo 12")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ResolveLocation(context.Background(), customer, fix, "")
	if err != nil {
		t.Fatal(err)
	}

	if !second.IsExisting {
		t.Error("second resolution must reuse the stored location")
	}
	if second.ID != first.ID {
		t.Errorf("expected same location id %s, got %s", first.ID, second.ID)
	}
	if len(store.rows) != 1 {
		t.Errorf("expected 1 stored row, got %d", len(store.rows))
	}
	if len(store.touched) != 1 || store.touched[0] != first.ID {
		t.Errorf("expected lastUsedAt bump for %s, got %v", first.ID, store.touched)
	}
	if second.Distance == nil || *second.Distance != 0 {
		t.Errorf("expected distance 0, got %v", second.Distance)
	}
	if !strings.Contains(second.Message, "Using existing location") {
		t.Errorf("unexpected message: %q", second.Message)
	}
}

// Labels take precedence over addresses in the reuse message.
func TestResolveLocation_ReuseMessageUsesLabel(t *testing.T) {
	customer := uuid.New()
	store := newFakeStore(customer)
	label := "Home"
	loc := spatial.CustomerLocation{
		ID:         uuid.New(),
		CustomerID: customer,
		Address:    "Calle Hidalgo 12",
		Label:      &label,
		IsPrimary:  true,
	}
	store.rows = append(store.rows, fakeRow{loc: loc, point: fix})
	svc := NewService(store, 0)

	result, err := svc.ResolveLocation(context.Background(), customer, fix, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Message, `"Home"`) {
		t.Errorf("expected label in message, got %q", result.Message)
	}
}

// Two racing resolutions can both insert; the next call must settle on
// one of the duplicates instead of creating a third.
func TestResolveLocation_SelfHealingDuplicates(t *testing.T) {
	customer := uuid.New()
	store := newFakeStore(customer)
	for i := 0; i < 2; i++ {
		loc := spatial.CustomerLocation{ID: uuid.New(), CustomerID: customer, Address: "Calle Hidalgo 12"}
		store.rows = append(store.rows, fakeRow{loc: loc, point: fix})
	}
	svc := NewService(store, 0)

	result, err := svc.ResolveLocation(context.Background(), customer, fix, "")
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsExisting {
		t.Error("expected reuse of one duplicate")
	}
	if len(store.rows) != 2 {
		t.Errorf("expected no new row, got %d rows", len(store.rows))
	}
}
