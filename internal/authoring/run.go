// Package authoring reconciles a directory tree of zone geometry files
// into the spatial store. Layout: one subdirectory per city under the
// cities directory, one .geojson file per zone inside it; the zone name is
// the filename without extension. After a run the store's zone set for
// each processed city exactly mirrors its file set.
package authoring

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/ElComedor/Geo-Backend/internal/geo"
	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/google/uuid"
)

// ZoneStore is the slice of the spatial store the authoring batch needs.
type ZoneStore interface {
	FindCityByName(ctx context.Context, name string) (*spatial.City, error)
	ListZonesByCity(ctx context.Context, cityID uuid.UUID) ([]spatial.DeliveryZone, error)
	UpsertZone(ctx context.Context, cityID uuid.UUID, name, description, boundaryWKT string) (*spatial.DeliveryZone, error)
	DeleteZonesByName(ctx context.Context, cityID uuid.UUID, names []string) (int64, error)
}

// Summary counts what one run did.
type Summary struct {
	Added   int
	Updated int
	Removed int
	Skipped int
}

func (s Summary) String() string {
	return fmt.Sprintf("added=%d updated=%d removed=%d skipped=%d", s.Added, s.Updated, s.Removed, s.Skipped)
}

// Run processes every city directory under citiesDir. A missing city row
// or a broken zone file is logged and counted, never fatal for the rest of
// the batch.
func Run(ctx context.Context, store ZoneStore, citiesDir string) (Summary, error) {
	var summary Summary

	cityDirs, err := geo.CityDirs(citiesDir)
	if err != nil {
		return summary, fmt.Errorf("read cities directory: %w", err)
	}
	if len(cityDirs) == 0 {
		log.Printf("[authoring] no city directories found in %s", citiesDir)
		return summary, nil
	}

	for _, dir := range cityDirs {
		cityName := geo.DisplayName(dir)
		city, err := store.FindCityByName(ctx, cityName)
		if errors.Is(err, spatial.ErrNotFound) {
			log.Printf("[authoring] city %q not in store, skipping directory %s (seed cities first)", cityName, dir)
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("lookup city %q: %w", cityName, err)
		}

		cs, err := runCity(ctx, store, city, filepath.Join(citiesDir, dir))
		if err != nil {
			return summary, err
		}
		summary.Added += cs.Added
		summary.Updated += cs.Updated
		summary.Removed += cs.Removed
		summary.Skipped += cs.Skipped
	}

	return summary, nil
}

func runCity(ctx context.Context, store ZoneStore, city *spatial.City, zoneDir string) (Summary, error) {
	var summary Summary

	files, err := geo.GeoJSONFiles(zoneDir)
	if err != nil {
		return summary, fmt.Errorf("read zone directory %s: %w", zoneDir, err)
	}
	if len(files) == 0 {
		log.Printf("[authoring] %s: no zone files", city.Name)
	}

	existing, err := store.ListZonesByCity(ctx, city.ID)
	if err != nil {
		return summary, fmt.Errorf("list zones for %s: %w", city.Name, err)
	}
	existingByName := make(map[string]spatial.DeliveryZone, len(existing))
	for _, zone := range existing {
		existingByName[zone.Name] = zone
	}

	fileNames := make(map[string]struct{}, len(files))
	for _, file := range files {
		zoneName := geo.ZoneName(file)
		fileNames[zoneName] = struct{}{}

		wkt, err := zoneWKT(filepath.Join(zoneDir, file))
		if err != nil {
			log.Printf("[authoring] %s/%s: %v", city.Name, zoneName, err)
			summary.Skipped++
			continue
		}

		_, wasExisting := existingByName[zoneName]
		if _, err := store.UpsertZone(ctx, city.ID, zoneName, "", wkt); err != nil {
			log.Printf("[authoring] %s/%s: upsert failed: %v", city.Name, zoneName, err)
			summary.Skipped++
			continue
		}
		if wasExisting {
			summary.Updated++
			log.Printf("[authoring] %s/%s updated", city.Name, zoneName)
		} else {
			summary.Added++
			log.Printf("[authoring] %s/%s added", city.Name, zoneName)
		}
	}

	// Zones in the store with no backing file are orphans.
	var orphans []string
	for name := range existingByName {
		if _, ok := fileNames[name]; !ok {
			orphans = append(orphans, name)
		}
	}
	if len(orphans) > 0 {
		removed, err := store.DeleteZonesByName(ctx, city.ID, orphans)
		if err != nil {
			return summary, fmt.Errorf("remove orphan zones for %s: %w", city.Name, err)
		}
		summary.Removed += int(removed)
		log.Printf("[authoring] %s: removed %d orphan zone(s)", city.Name, removed)
	}

	return summary, nil
}

// zoneWKT parses one zone file down to canonical boundary text.
func zoneWKT(path string) (string, error) {
	fc, err := geo.ReadFeatureCollection(path)
	if err != nil {
		return "", err
	}
	if len(fc.Features) == 0 {
		return "", fmt.Errorf("no features found")
	}
	geometry := fc.Features[0].Geometry
	if len(geometry.Coordinates) == 0 {
		return "", fmt.Errorf("invalid geometry")
	}
	return geometry.WKT()
}
