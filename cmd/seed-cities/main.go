// Seeds or refreshes one city boundary from a GeoJSON file. The boundary
// is stored as a MultiPolygon even when the file holds a single polygon,
// and the center point is the unweighted centroid of the outer ring.
//
// Usage:
//
//	go run ./cmd/seed-cities -file data/cities/nuevo-laredo.geojson \
//	  -name "Nuevo Laredo" -country Mexico -state Tamaulipas \
//	  -timezone America/Mexico_City
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ElComedor/Geo-Backend/internal/db"
	"github.com/ElComedor/Geo-Backend/internal/geo"
	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load(".env.local")

	file := flag.String("file", "", "path to the city boundary .geojson file")
	name := flag.String("name", "", "city name (default: derived from the filename)")
	country := flag.String("country", "", "country name")
	state := flag.String("state", "", "state or province")
	timezone := flag.String("timezone", "", "IANA timezone, e.g. America/Mexico_City")
	dsn := flag.String("database-url", "", "Postgres DSN (default: DATABASE_URL)")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}
	cityName := *name
	if cityName == "" {
		slug := strings.TrimSuffix(filepath.Base(*file), ".geojson")
		cityName = geo.DisplayName(slug)
	}

	fc, err := geo.ReadFeatureCollection(*file)
	if err != nil {
		log.Fatalf("Read %s: %v", *file, err)
	}
	if len(fc.Features) == 0 {
		log.Fatalf("No features found in %s", *file)
	}
	geometry := fc.Features[0].Geometry

	wkt, err := geometry.MultiPolygonText()
	if err != nil {
		log.Fatalf("Convert boundary: %v", err)
	}
	lon, lat, err := geometry.OuterCentroid()
	if err != nil {
		log.Fatalf("Compute centroid: %v", err)
	}
	log.Printf("Calculated centroid: %v, %v", lat, lon)

	conn, err := db.Connect(envOr(*dsn))
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}
	if err := spatial.Init(conn); err != nil {
		log.Fatalf("Spatial setup error: %v", err)
	}

	store := spatial.NewStore(conn)
	city, err := store.UpsertCity(context.Background(), cityName, *country, *state, *timezone, wkt, lon, lat)
	if err != nil {
		log.Fatalf("Upsert city: %v", err)
	}

	fmt.Printf("City %q seeded (%s)\n", city.Name, city.ID)
}

func envOr(dsn string) string {
	if dsn != "" {
		return dsn
	}
	return os.Getenv("DATABASE_URL")
}
