package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/ElComedor/Geo-Backend/internal/auth"
	"github.com/ElComedor/Geo-Backend/internal/config"
	"github.com/ElComedor/Geo-Backend/internal/db"
	"github.com/ElComedor/Geo-Backend/internal/geofence"
	"github.com/ElComedor/Geo-Backend/internal/locations"
	"github.com/ElComedor/Geo-Backend/internal/middleware"
	"github.com/ElComedor/Geo-Backend/internal/spatial"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := spatial.Init(conn); err != nil {
		log.Fatal("Failed to set up spatial tables: ", err)
	}
	if err := auth.Init(conn); err != nil {
		log.Fatal("Failed to set up auth tables: ", err)
	}

	store := spatial.NewStore(conn)
	resolver := geofence.NewResolver(store)
	locationService := locations.NewService(store, cfg.ProximityThresholdMeters)
	sessions := auth.SessionInfo{DB: conn}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes(auth.NewHandler(conn), sessions))
	r.Mount("/api/geofencing", geofence.SetupRoutes(
		geofence.NewHandler(resolver, store),
		sessions,
		rate.Limit(cfg.RateLimitPerSecond),
		cfg.RateLimitBurst,
	))
	r.Mount("/api/customers", locations.SetupRoutes(locations.NewHandler(locationService, store)))

	log.Printf("Server listening on port :%s...", cfg.Port)
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
