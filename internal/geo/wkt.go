package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedGeometry is returned for geometry kinds other than
	// Polygon and MultiPolygon.
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")

	// ErrEmptyRing is returned when a centroid is requested for a ring
	// with no coordinates.
	ErrEmptyRing = errors.New("ring has no coordinates")

	// ErrDegenerateRing is returned for rings with fewer than 3 distinct
	// vertices before closure.
	ErrDegenerateRing = errors.New("ring needs at least 3 distinct vertices")
)

// Ring is a sequence of [longitude, latitude] pairs. The first ring of a
// polygon is its outer boundary, any following rings are holes.
type Ring [][]float64

// Polygon is a list of rings.
type Polygon []Ring

// MultiPolygon is a list of polygons.
type MultiPolygon []Polygon

// formatCoord renders one coordinate pair as "lon lat". FormatFloat with
// precision -1 emits the shortest representation that round-trips, so the
// same input always serializes to the same bytes.
func formatCoord(coord []float64) string {
	return strconv.FormatFloat(coord[0], 'f', -1, 64) + " " + strconv.FormatFloat(coord[1], 'f', -1, 64)
}

// closeRing validates a ring and guarantees the closing duplicate vertex.
// Rings authored without the explicit closing point get one appended, so
// both forms serialize identically.
func closeRing(ring Ring) (Ring, error) {
	if len(ring) == 0 {
		return nil, ErrEmptyRing
	}
	first, last := ring[0], ring[len(ring)-1]
	closed := len(ring) > 1 && first[0] == last[0] && first[1] == last[1]

	vertices := len(ring)
	if closed {
		vertices--
	}
	if vertices < 3 {
		return nil, ErrDegenerateRing
	}
	if closed {
		return ring, nil
	}
	out := make(Ring, 0, len(ring)+1)
	out = append(out, ring...)
	out = append(out, first)
	return out, nil
}

func ringText(ring Ring) (string, error) {
	ring, err := closeRing(ring)
	if err != nil {
		return "", err
	}
	points := make([]string, len(ring))
	for i, coord := range ring {
		points[i] = formatCoord(coord)
	}
	return "(" + strings.Join(points, ", ") + ")", nil
}

func polygonBody(p Polygon) (string, error) {
	rings := make([]string, len(p))
	for i, ring := range p {
		text, err := ringText(ring)
		if err != nil {
			return "", fmt.Errorf("ring %d: %w", i, err)
		}
		rings[i] = text
	}
	return strings.Join(rings, ", "), nil
}

// PolygonWKT serializes a polygon as POLYGON((...), (...)) text.
func PolygonWKT(p Polygon) (string, error) {
	body, err := polygonBody(p)
	if err != nil {
		return "", err
	}
	return "POLYGON(" + body + ")", nil
}

// MultiPolygonWKT serializes a multi-polygon as MULTIPOLYGON(((...)), ...) text.
func MultiPolygonWKT(mp MultiPolygon) (string, error) {
	polygons := make([]string, len(mp))
	for i, p := range mp {
		body, err := polygonBody(p)
		if err != nil {
			return "", fmt.Errorf("polygon %d: %w", i, err)
		}
		polygons[i] = "(" + body + ")"
	}
	return "MULTIPOLYGON(" + strings.Join(polygons, ", ") + ")", nil
}

// PolygonAsMultiPolygonWKT wraps a single polygon in one extra nesting
// level. City boundaries are stored as multi-polygons even when authored
// as a single polygon.
func PolygonAsMultiPolygonWKT(p Polygon) (string, error) {
	body, err := polygonBody(p)
	if err != nil {
		return "", err
	}
	return "MULTIPOLYGON((" + body + "))", nil
}

// Centroid returns the unweighted arithmetic mean of the ring's vertices
// as (lon, lat). The closing duplicate vertex, when present, is excluded
// so it does not skew the mean. This is an approximation for placing a
// representative marker, not an area-weighted centroid.
func Centroid(ring Ring) (lon, lat float64, err error) {
	if len(ring) == 0 {
		return 0, 0, ErrEmptyRing
	}
	vertices := ring
	first, last := ring[0], ring[len(ring)-1]
	if len(ring) > 1 && first[0] == last[0] && first[1] == last[1] {
		vertices = ring[:len(ring)-1]
	}
	var totalLon, totalLat float64
	for _, coord := range vertices {
		totalLon += coord[0]
		totalLat += coord[1]
	}
	n := float64(len(vertices))
	return totalLon / n, totalLat / n, nil
}
