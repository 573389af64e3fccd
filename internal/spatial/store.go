package spatial

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when a region insert collides with the
	// name uniqueness rules (city name system-wide, zone name per city).
	ErrDuplicateName = errors.New("name already exists")

	// ErrLocationInUse is returned when deleting a location that is still
	// referenced by orders.
	ErrLocationInUse = errors.New("location is referenced by orders")
)

// Store runs all region and customer-location queries against an injected
// GORM handle. Geometry values never enter query text directly; every
// coordinate and WKT string travels as a bind parameter.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// translateError maps Postgres unique violations to ErrDuplicateName.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicateName, pgErr.ConstraintName)
	}
	return err
}

// UpsertCity inserts a city or, when one with the same name exists,
// replaces its boundary, center point and metadata. The boundary is
// MULTIPOLYGON WKT; the center point is the precomputed boundary centroid.
func (s *Store) UpsertCity(ctx context.Context, name, country, state, timezone, boundaryWKT string, centerLon, centerLat float64) (*City, error) {
	var city City
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&city).Error
	switch {
	case err == nil:
		res := s.db.WithContext(ctx).Exec(`
			UPDATE geo.cities
			SET boundary = ST_GeomFromText(?, 4326),
			    center_point = ST_SetSRID(ST_MakePoint(?, ?), 4326),
			    country = ?, state = ?, timezone = ?,
			    is_active = true, updated_at = NOW()
			WHERE id = ?`,
			boundaryWKT, centerLon, centerLat, country, state, timezone, city.ID)
		if res.Error != nil {
			return nil, fmt.Errorf("update city %q: %w", name, res.Error)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		var row struct{ ID uuid.UUID }
		res := s.db.WithContext(ctx).Raw(`
			INSERT INTO geo.cities (name, country, state, timezone, boundary, center_point, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ST_GeomFromText(?, 4326), ST_SetSRID(ST_MakePoint(?, ?), 4326), true, NOW(), NOW())
			RETURNING id`,
			name, country, state, timezone, boundaryWKT, centerLon, centerLat).Scan(&row)
		if res.Error != nil {
			return nil, fmt.Errorf("insert city %q: %w", name, translateError(res.Error))
		}
		city.ID = row.ID
	default:
		return nil, fmt.Errorf("lookup city %q: %w", name, err)
	}

	if err := s.db.WithContext(ctx).First(&city, "id = ?", city.ID).Error; err != nil {
		return nil, fmt.Errorf("reload city %q: %w", name, err)
	}
	return &city, nil
}

// UpsertZone inserts a delivery zone or replaces the boundary and
// description of the zone with the same name in the same city.
func (s *Store) UpsertZone(ctx context.Context, cityID uuid.UUID, name, description, boundaryWKT string) (*DeliveryZone, error) {
	var zone DeliveryZone
	err := s.db.WithContext(ctx).Where("city_id = ? AND name = ?", cityID, name).First(&zone).Error
	switch {
	case err == nil:
		res := s.db.WithContext(ctx).Exec(`
			UPDATE geo.delivery_zones
			SET boundary = ST_GeomFromText(?, 4326),
			    description = ?, updated_at = NOW()
			WHERE id = ?`,
			boundaryWKT, description, zone.ID)
		if res.Error != nil {
			return nil, fmt.Errorf("update zone %q: %w", name, res.Error)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		var row struct{ ID uuid.UUID }
		res := s.db.WithContext(ctx).Raw(`
			INSERT INTO geo.delivery_zones (city_id, name, description, boundary, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ST_GeomFromText(?, 4326), true, NOW(), NOW())
			RETURNING id`,
			cityID, name, description, boundaryWKT).Scan(&row)
		if res.Error != nil {
			return nil, fmt.Errorf("insert zone %q: %w", name, translateError(res.Error))
		}
		zone.ID = row.ID
	default:
		return nil, fmt.Errorf("lookup zone %q: %w", name, err)
	}

	if err := s.db.WithContext(ctx).First(&zone, "id = ?", zone.ID).Error; err != nil {
		return nil, fmt.Errorf("reload zone %q: %w", name, err)
	}
	return &zone, nil
}

// DeleteZone hard-deletes a zone. Not idempotent: deleting an absent zone
// returns ErrNotFound.
func (s *Store) DeleteZone(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&DeliveryZone{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("zone %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteZonesByName removes the named zones of one city in a single
// statement and reports how many rows went away.
func (s *Store) DeleteZonesByName(ctx context.Context, cityID uuid.UUID, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Exec(
		`DELETE FROM geo.delivery_zones WHERE city_id = ? AND name = ANY(?)`,
		cityID, pq.Array(names))
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// FindContainingCity returns the city whose boundary contains the point,
// or nil when no city does. With overlapping boundaries the oldest city
// wins, which keeps the answer stable for a given store.
func (s *Store) FindContainingCity(ctx context.Context, p Point, activeOnly bool) (*City, error) {
	query := `
		SELECT id, name, country, state, timezone, is_active, created_at, updated_at
		FROM geo.cities
		WHERE ST_Contains(boundary, ST_SetSRID(ST_MakePoint(?, ?), 4326))`
	if activeOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY created_at, id LIMIT 1`

	var city City
	res := s.db.WithContext(ctx).Raw(query, p.Longitude, p.Latitude).Scan(&city)
	if res.Error != nil {
		return nil, fmt.Errorf("city containment query: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &city, nil
}

// FindContainingZone returns the delivery zone of the given city whose
// boundary contains the point, or nil when none does.
func (s *Store) FindContainingZone(ctx context.Context, cityID uuid.UUID, p Point, activeOnly bool) (*DeliveryZone, error) {
	query := `
		SELECT id, city_id, name, description, is_active, created_at, updated_at
		FROM geo.delivery_zones
		WHERE city_id = ?
		AND ST_Contains(boundary, ST_SetSRID(ST_MakePoint(?, ?), 4326))`
	if activeOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY created_at, id LIMIT 1`

	var zone DeliveryZone
	res := s.db.WithContext(ctx).Raw(query, cityID, p.Longitude, p.Latitude).Scan(&zone)
	if res.Error != nil {
		return nil, fmt.Errorf("zone containment query: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &zone, nil
}

// ZoneContains tests one specific zone against a point.
func (s *Store) ZoneContains(ctx context.Context, zoneID uuid.UUID, p Point) (bool, error) {
	var row struct{ Contains bool }
	res := s.db.WithContext(ctx).Raw(`
		SELECT ST_Contains(boundary, ST_SetSRID(ST_MakePoint(?, ?), 4326)) AS contains
		FROM geo.delivery_zones
		WHERE id = ?`,
		p.Longitude, p.Latitude, zoneID).Scan(&row)
	if res.Error != nil {
		return false, fmt.Errorf("zone check query: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, fmt.Errorf("zone %s: %w", zoneID, ErrNotFound)
	}
	return row.Contains, nil
}

// ListActiveCities returns active cities ordered by name.
func (s *Store) ListActiveCities(ctx context.Context) ([]City, error) {
	var cities []City
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&cities).Error
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// ListActiveZones returns active zones of active cities, optionally
// filtered to one city, ordered by city then zone name.
func (s *Store) ListActiveZones(ctx context.Context, cityID *uuid.UUID) ([]ZoneSummary, error) {
	query := `
		SELECT dz.id, dz.name, dz.description, dz.city_id, c.name AS city_name
		FROM geo.delivery_zones dz
		JOIN geo.cities c ON c.id = dz.city_id
		WHERE dz.is_active = true AND c.is_active = true`
	args := []any{}
	if cityID != nil {
		query += ` AND dz.city_id = ?`
		args = append(args, *cityID)
	}
	query += ` ORDER BY c.name, dz.name`

	var zones []ZoneSummary
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

// ListZonesByCity returns every zone of a city, active or not. Authoring
// reconciles against the full set.
func (s *Store) ListZonesByCity(ctx context.Context, cityID uuid.UUID) ([]DeliveryZone, error) {
	var zones []DeliveryZone
	err := s.db.WithContext(ctx).
		Where("city_id = ?", cityID).
		Order("name ASC").
		Find(&zones).Error
	if err != nil {
		return nil, err
	}
	return zones, nil
}

// FindCityByName returns the city with the given name or ErrNotFound.
func (s *Store) FindCityByName(ctx context.Context, name string) (*City, error) {
	var city City
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&city).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("city %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// CustomerExists reports whether a customer row exists.
func (s *Store) CustomerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Customer{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindNear returns the customer's stored locations whose geodesic distance
// to the point is within radiusMeters (inclusive), nearest first. The
// geography casts make ST_Distance/ST_DWithin measure on the ellipsoid in
// meters rather than in planar degrees.
func (s *Store) FindNear(ctx context.Context, customerID uuid.UUID, p Point, radiusMeters float64) ([]NearbyLocation, error) {
	var locations []NearbyLocation
	err := s.db.WithContext(ctx).Raw(`
		SELECT id, customer_id, address, label, is_primary, last_used_at,
		       ST_Distance(location::geography, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography) AS distance
		FROM geo.customer_locations
		WHERE customer_id = ?
		AND ST_DWithin(location::geography, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography, ?)
		ORDER BY distance ASC`,
		p.Longitude, p.Latitude, customerID, p.Longitude, p.Latitude, radiusMeters).
		Scan(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("proximity query: %w", err)
	}
	return locations, nil
}

// CountLocations returns how many locations a customer has.
func (s *Store) CountLocations(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&CustomerLocation{}).
		Where("customer_id = ?", customerID).Count(&count).Error
	return count, err
}

// CreateLocation stores a new location point for a customer. Setting it
// primary unsets any existing primary in the same transaction, so the
// one-primary-per-customer invariant holds.
func (s *Store) CreateLocation(ctx context.Context, customerID uuid.UUID, p Point, address string, label *string, isPrimary bool) (*CustomerLocation, error) {
	var created CustomerLocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isPrimary {
			if err := tx.Exec(`
				UPDATE geo.customer_locations
				SET is_primary = false, updated_at = NOW()
				WHERE customer_id = ? AND is_primary = true`,
				customerID).Error; err != nil {
				return err
			}
		}
		var row struct{ ID uuid.UUID }
		res := tx.Raw(`
			INSERT INTO geo.customer_locations (customer_id, location, address, label, is_primary, created_at, updated_at, last_used_at)
			VALUES (?, ST_SetSRID(ST_MakePoint(?, ?), 4326), ?, ?, ?, NOW(), NOW(), NOW())
			RETURNING id`,
			customerID, p.Longitude, p.Latitude, address, label, isPrimary).Scan(&row)
		if res.Error != nil {
			return res.Error
		}
		return tx.First(&created, "id = ?", row.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return &created, nil
}

// TouchLocation bumps last_used_at on a reused location.
func (s *Store) TouchLocation(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&CustomerLocation{}).
		Where("id = ?", id).
		Update("last_used_at", time.Now()).Error
}

// ListLocations returns a customer's locations, primary first, then most
// recently used.
func (s *Store) ListLocations(ctx context.Context, customerID uuid.UUID) ([]CustomerLocation, error) {
	var locations []CustomerLocation
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("is_primary DESC, last_used_at DESC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// GetLocation returns one location, scoped to its owner.
func (s *Store) GetLocation(ctx context.Context, customerID, locationID uuid.UUID) (*CustomerLocation, error) {
	var location CustomerLocation
	err := s.db.WithContext(ctx).
		Where("id = ? AND customer_id = ?", locationID, customerID).
		First(&location).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("location %s: %w", locationID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// GetPrimaryLocation returns the customer's primary location or ErrNotFound.
func (s *Store) GetPrimaryLocation(ctx context.Context, customerID uuid.UUID) (*CustomerLocation, error) {
	var location CustomerLocation
	err := s.db.WithContext(ctx).
		Where("customer_id = ? AND is_primary = ?", customerID, true).
		First(&location).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("primary location: %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// LocationUpdate carries the mutable fields of a location. Nil means leave
// unchanged; ClearLabel removes the label.
type LocationUpdate struct {
	Address    *string
	Label      *string
	ClearLabel bool
}

// UpdateLocation applies address/label edits to an owned location.
func (s *Store) UpdateLocation(ctx context.Context, customerID, locationID uuid.UUID, upd LocationUpdate) (*CustomerLocation, error) {
	location, err := s.GetLocation(ctx, customerID, locationID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if upd.Address != nil {
		updates["address"] = *upd.Address
	}
	if upd.ClearLabel {
		updates["label"] = nil
	} else if upd.Label != nil {
		updates["label"] = *upd.Label
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(location).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return location, nil
}

// SetPrimaryLocation makes one owned location the primary, unsetting any
// other in the same transaction.
func (s *Store) SetPrimaryLocation(ctx context.Context, customerID, locationID uuid.UUID) (*CustomerLocation, error) {
	var location CustomerLocation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND customer_id = ?", locationID, customerID).First(&location).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("location %s: %w", locationID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE geo.customer_locations
			SET is_primary = false, updated_at = NOW()
			WHERE customer_id = ? AND is_primary = true`,
			customerID).Error; err != nil {
			return err
		}
		return tx.Model(&location).Update("is_primary", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &location, nil
}

// DeleteLocation removes an owned location unless orders still reference
// it. Deleting the primary promotes the most recently used survivor.
func (s *Store) DeleteLocation(ctx context.Context, customerID, locationID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var location CustomerLocation
		err := tx.Where("id = ? AND customer_id = ?", locationID, customerID).First(&location).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("location %s: %w", locationID, ErrNotFound)
		}
		if err != nil {
			return err
		}

		var orderCount int64
		if err := tx.Model(&Order{}).Where("customer_location_id = ?", locationID).Count(&orderCount).Error; err != nil {
			return err
		}
		if orderCount > 0 {
			return fmt.Errorf("%w: %d order(s)", ErrLocationInUse, orderCount)
		}

		if err := tx.Delete(&CustomerLocation{}, "id = ?", locationID).Error; err != nil {
			return err
		}

		if location.IsPrimary {
			var next CustomerLocation
			err := tx.Where("customer_id = ?", customerID).
				Order("last_used_at DESC").
				First(&next).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // no locations left, zero primaries is fine
			}
			if err != nil {
				return err
			}
			return tx.Model(&next).Update("is_primary", true).Error
		}
		return nil
	})
}
