package spatial

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCoordinates is returned for points outside the valid
// latitude/longitude ranges.
var ErrInvalidCoordinates = errors.New("coordinates out of range")

// Point is a WGS84 coordinate pair. External APIs take latitude first;
// stored geometry and WKT text are always longitude first.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks the point against [-90,90] x [-180,180].
func (p Point) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return ErrInvalidCoordinates
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// City is a service city. Its boundary (geometry(MultiPolygon,4326)) and
// center_point (geometry(Point,4326)) columns are created by Init and
// written only through parameterized raw SQL.
type City struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Country   string    `json:"country"`
	State     string    `json:"state,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (City) TableName() string { return "geo.cities" }

// DeliveryZone is a delivery sub-zone of one city. Zone names are unique
// within their city. Its boundary column (geometry(Geometry,4326), polygon
// or multi-polygon) is created by Init.
type DeliveryZone struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CityID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_zones_city_name" json:"city_id"`
	Name        string    `gorm:"not null;uniqueIndex:idx_zones_city_name" json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (DeliveryZone) TableName() string { return "geo.delivery_zones" }

// ZoneSummary is a zone joined with its city name, for listing endpoints.
type ZoneSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CityID      uuid.UUID `json:"city_id"`
	CityName    string    `json:"city_name"`
}

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `json:"name"`
	Phone     string    `gorm:"uniqueIndex" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Customer) TableName() string { return "geo.customers" }

// CustomerLocation is one stored GPS fix for a customer. Its location
// column (geometry(Point,4326)) is created by Init. At most one location
// per customer is primary.
type CustomerLocation struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`
	Address    string    `json:"address"`
	Label      *string   `json:"label"`
	IsPrimary  bool      `json:"is_primary"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}

func (CustomerLocation) TableName() string { return "geo.customer_locations" }

// NearbyLocation is a customer location row with its geodesic distance in
// meters from the queried point. Kept flat so raw query results scan
// directly into it.
type NearbyLocation struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Address    string    `json:"address"`
	Label      *string   `json:"label"`
	IsPrimary  bool      `json:"is_primary"`
	LastUsedAt time.Time `json:"last_used_at"`
	Distance   float64   `json:"distance"`
}

// Order carries only the columns the location lifecycle needs: a location
// referenced by any order cannot be deleted. The full ordering workflow
// lives outside this service.
type Order struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	CustomerLocationID *uuid.UUID `gorm:"type:uuid;index" json:"customer_location_id"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
}

func (Order) TableName() string { return "geo.orders" }
