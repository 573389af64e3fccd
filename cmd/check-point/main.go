// Operator tool: resolve one coordinate against the live store and print
// the verdict.
//
//	go run ./cmd/check-point -lat 27.4764 -lng -99.5164
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ElComedor/Geo-Backend/internal/db"
	"github.com/ElComedor/Geo-Backend/internal/geofence"
	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load(".env.local")

	lat := flag.Float64("lat", 0, "latitude")
	lng := flag.Float64("lng", 0, "longitude")
	flag.Parse()

	conn, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	store := spatial.NewStore(conn)
	resolver := geofence.NewResolver(store)

	resolution, err := resolver.Resolve(context.Background(), spatial.Point{Latitude: *lat, Longitude: *lng})
	if err != nil {
		log.Fatalf("Resolve error: %v", err)
	}

	fmt.Printf("Point (%v, %v): %s\n", *lat, *lng, resolution.Outcome)
	fmt.Println("  " + resolution.Message)
	if resolution.City != nil {
		fmt.Printf("  City: %s (%s)\n", resolution.City.Name, resolution.City.ID)
	}
	if resolution.Zone != nil {
		fmt.Printf("  Zone: %s (%s)\n", resolution.Zone.Name, resolution.Zone.ID)
	}
}
