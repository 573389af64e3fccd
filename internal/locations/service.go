package locations

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/google/uuid"
)

// DefaultProximityThresholdMeters is how close a new GPS fix must be to an
// existing location to count as the same place. Deliberately tight: GPS
// noise at rest is usually smaller, and a loose threshold would merge
// genuinely distinct nearby addresses.
const DefaultProximityThresholdMeters = 5.0

// ErrUnknownCustomer is returned when the owning customer does not exist.
var ErrUnknownCustomer = errors.New("customer not found")

// LocationStore is the slice of the spatial store the deduplicator needs.
type LocationStore interface {
	CustomerExists(ctx context.Context, id uuid.UUID) (bool, error)
	FindNear(ctx context.Context, customerID uuid.UUID, p spatial.Point, radiusMeters float64) ([]spatial.NearbyLocation, error)
	TouchLocation(ctx context.Context, id uuid.UUID) error
	CountLocations(ctx context.Context, customerID uuid.UUID) (int64, error)
	CreateLocation(ctx context.Context, customerID uuid.UUID, p spatial.Point, address string, label *string, isPrimary bool) (*spatial.CustomerLocation, error)
}

// ResolveResult is the outcome of a location resolution.
type ResolveResult struct {
	ID         uuid.UUID `json:"id"`
	Address    string    `json:"address"`
	Label      *string   `json:"label"`
	IsPrimary  bool      `json:"is_primary"`
	IsExisting bool      `json:"is_existing"`
	Distance   *float64  `json:"distance,omitempty"`
	Message    string    `json:"-"`
}

// Service deduplicates customer locations: a fix within the proximity
// threshold of a stored location reuses it, anything else becomes a new
// row. The search and the insert are separate steps without a lock;
// concurrent calls for the same spot may both insert, and the next call
// reuses whichever of the duplicates sorts nearest.
type Service struct {
	store     LocationStore
	threshold float64
}

func NewService(store LocationStore, thresholdMeters float64) *Service {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultProximityThresholdMeters
	}
	return &Service{store: store, threshold: thresholdMeters}
}

// ResolveLocation reuses the nearest stored location within the threshold
// or creates a new one. The first location a customer ever stores becomes
// their primary.
func (s *Service) ResolveLocation(ctx context.Context, customerID uuid.UUID, p spatial.Point, address string) (*ResolveResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.store.CustomerExists(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("check customer: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("customer %s: %w", customerID, ErrUnknownCustomer)
	}

	nearby, err := s.store.FindNear(ctx, customerID, p, s.threshold)
	if err != nil {
		return nil, err
	}
	if len(nearby) > 0 {
		nearest := nearby[0]
		if err := s.store.TouchLocation(ctx, nearest.ID); err != nil {
			return nil, fmt.Errorf("touch location: %w", err)
		}
		display := nearest.Address
		if nearest.Label != nil && *nearest.Label != "" {
			display = *nearest.Label
		}
		distance := nearest.Distance
		return &ResolveResult{
			ID:         nearest.ID,
			Address:    nearest.Address,
			Label:      nearest.Label,
			IsPrimary:  nearest.IsPrimary,
			IsExisting: true,
			Distance:   &distance,
			Message:    fmt.Sprintf("Using existing location %q (%dm away)", display, int(math.Round(distance))),
		}, nil
	}

	count, err := s.store.CountLocations(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("count locations: %w", err)
	}
	isPrimary := count == 0

	created, err := s.store.CreateLocation(ctx, customerID, p, address, nil, isPrimary)
	if err != nil {
		return nil, err
	}

	var message string
	switch {
	case address == "":
		message = "Location saved. Please enter your delivery address."
	case isPrimary:
		message = "New location saved as your primary address"
	default:
		message = "New location saved"
	}

	return &ResolveResult{
		ID:         created.ID,
		Address:    created.Address,
		Label:      created.Label,
		IsPrimary:  created.IsPrimary,
		IsExisting: false,
		Message:    message,
	}, nil
}
