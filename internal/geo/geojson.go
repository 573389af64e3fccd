package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Geometry is a GeoJSON geometry with coordinates left raw until the type
// is known.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type Feature struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Geometry   Geometry       `json:"geometry"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// AsPolygon decodes the coordinates as polygon rings.
func (g Geometry) AsPolygon() (Polygon, error) {
	var p Polygon
	if err := json.Unmarshal(g.Coordinates, &p); err != nil {
		return nil, fmt.Errorf("decode polygon coordinates: %w", err)
	}
	return p, nil
}

// AsMultiPolygon decodes the coordinates as a list of polygons.
func (g Geometry) AsMultiPolygon() (MultiPolygon, error) {
	var mp MultiPolygon
	if err := json.Unmarshal(g.Coordinates, &mp); err != nil {
		return nil, fmt.Errorf("decode multipolygon coordinates: %w", err)
	}
	return mp, nil
}

// WKT serializes the geometry in its own kind: POLYGON for Polygon input,
// MULTIPOLYGON for MultiPolygon input.
func (g Geometry) WKT() (string, error) {
	switch g.Type {
	case "Polygon":
		p, err := g.AsPolygon()
		if err != nil {
			return "", err
		}
		return PolygonWKT(p)
	case "MultiPolygon":
		mp, err := g.AsMultiPolygon()
		if err != nil {
			return "", err
		}
		return MultiPolygonWKT(mp)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGeometry, g.Type)
	}
}

// MultiPolygonText serializes the geometry as MULTIPOLYGON text regardless
// of whether it was authored as a single polygon.
func (g Geometry) MultiPolygonText() (string, error) {
	switch g.Type {
	case "Polygon":
		p, err := g.AsPolygon()
		if err != nil {
			return "", err
		}
		return PolygonAsMultiPolygonWKT(p)
	case "MultiPolygon":
		mp, err := g.AsMultiPolygon()
		if err != nil {
			return "", err
		}
		return MultiPolygonWKT(mp)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedGeometry, g.Type)
	}
}

// OuterCentroid computes the centroid of the geometry's outer ring. For a
// MultiPolygon the first polygon's outer ring is used.
func (g Geometry) OuterCentroid() (lon, lat float64, err error) {
	switch g.Type {
	case "Polygon":
		p, err := g.AsPolygon()
		if err != nil {
			return 0, 0, err
		}
		if len(p) == 0 {
			return 0, 0, ErrEmptyRing
		}
		return Centroid(p[0])
	case "MultiPolygon":
		mp, err := g.AsMultiPolygon()
		if err != nil {
			return 0, 0, err
		}
		if len(mp) == 0 || len(mp[0]) == 0 {
			return 0, 0, ErrEmptyRing
		}
		return Centroid(mp[0][0])
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedGeometry, g.Type)
	}
}

// ReadFeatureCollection reads and parses a GeoJSON file.
func ReadFeatureCollection(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return &fc, nil
}

// GeoJSONFiles lists the .geojson files in a directory, sorted by name.
// A missing directory yields an empty list, not an error.
func GeoJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".geojson") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// CityDirs lists the subdirectories of a cities directory, sorted by name.
func CityDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ZoneName derives a zone name from its filename:
// casa-mirador.geojson -> casa-mirador.
func ZoneName(filename string) string {
	return strings.TrimSuffix(filename, ".geojson")
}

var titleCaser = cases.Title(language.Und)

// DisplayName formats a slug for display: nuevo-laredo -> Nuevo Laredo.
func DisplayName(slug string) string {
	return titleCaser.String(strings.ReplaceAll(slug, "-", " "))
}
