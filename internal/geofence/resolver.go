package geofence

import (
	"context"
	"errors"
	"fmt"

	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/google/uuid"
)

// ErrResolutionFailed wraps spatial store failures. A caller seeing this
// could not determine the service area; it must not be read as "outside
// the service area".
var ErrResolutionFailed = errors.New("failed to determine service area")

// Outcome is the three-way verdict for a point.
type Outcome string

const (
	OutsideCity    Outcome = "OUTSIDE_CITY"
	WithinCityOnly Outcome = "OUTSIDE_DELIVERY_ZONE"
	WithinZone     Outcome = "WITHIN_DELIVERY_ZONE"
)

// Resolution carries the verdict. City is set unless the outcome is
// OutsideCity; Zone is set only for WithinZone.
type Resolution struct {
	Outcome Outcome
	City    *spatial.City
	Zone    *spatial.DeliveryZone
	Message string
}

// Deliverable reports whether an order may proceed from this point.
func (r Resolution) Deliverable() bool {
	return r.Outcome == WithinZone
}

// RegionFinder is the slice of the spatial store the resolver needs.
type RegionFinder interface {
	FindContainingCity(ctx context.Context, p spatial.Point, activeOnly bool) (*spatial.City, error)
	FindContainingZone(ctx context.Context, cityID uuid.UUID, p spatial.Point, activeOnly bool) (*spatial.DeliveryZone, error)
}

// Resolver classifies points against active cities and their delivery
// zones. The zone lookup is always scoped to the already-resolved city so
// a zone of another city can never match, and so the caller can tell "in
// city, no zone" from "not served at all".
type Resolver struct {
	store RegionFinder
}

func NewResolver(store RegionFinder) *Resolver {
	return &Resolver{store: store}
}

// Resolve validates the point and classifies it. Store errors come back
// wrapped in ErrResolutionFailed, never as an "outside" verdict.
func (r *Resolver) Resolve(ctx context.Context, p spatial.Point) (Resolution, error) {
	if err := p.Validate(); err != nil {
		return Resolution{}, err
	}

	city, err := r.store.FindContainingCity(ctx, p, true)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if city == nil {
		return Resolution{
			Outcome: OutsideCity,
			Message: "Location is outside any active city boundary",
		}, nil
	}

	zone, err := r.store.FindContainingZone(ctx, city.ID, p, true)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	if zone == nil {
		return Resolution{
			Outcome: WithinCityOnly,
			City:    city,
			Message: fmt.Sprintf("Location is within %s but outside any delivery zone", city.Name),
		}, nil
	}

	return Resolution{
		Outcome: WithinZone,
		City:    city,
		Zone:    zone,
		Message: "Location is within an active delivery zone",
	}, nil
}
