// Reconciles the zone geometry tree into the store: zones with files are
// inserted or updated, zones without files are removed, broken files are
// skipped and counted. Cities must be seeded first (see cmd/seed-cities).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/ElComedor/Geo-Backend/internal/authoring"
	"github.com/ElComedor/Geo-Backend/internal/config"
	"github.com/ElComedor/Geo-Backend/internal/db"
	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	dir := flag.String("dir", cfg.CitiesDir, "cities directory (one subdirectory per city)")
	flag.Parse()

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}
	if err := spatial.Init(conn); err != nil {
		log.Fatalf("Spatial setup error: %v", err)
	}

	store := spatial.NewStore(conn)
	summary, err := authoring.Run(context.Background(), store, *dir)
	if err != nil {
		log.Fatalf("Zone authoring failed: %v", err)
	}

	fmt.Println("Summary:")
	fmt.Printf("  Zones added:   %d\n", summary.Added)
	fmt.Printf("  Zones updated: %d\n", summary.Updated)
	fmt.Printf("  Zones removed: %d\n", summary.Removed)
	fmt.Printf("  Zones skipped: %d\n", summary.Skipped)
}
