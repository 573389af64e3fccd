package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Config holds service and authoring settings. Values come from an
// optional YAML file (CONFIG_FILE, default config.yaml if present) with
// environment variables taking precedence.
type Config struct {
	Port           string   `yaml:"port"`
	DatabaseURL    string   `yaml:"-"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// CitiesDir is the root of the zone authoring tree:
	// <cities_dir>/<city-slug>/<zone-slug>.geojson
	CitiesDir string `yaml:"cities_dir"`

	// ProximityThresholdMeters overrides the location dedup threshold.
	// Zero means the built-in default.
	ProximityThresholdMeters float64 `yaml:"proximity_threshold_meters"`

	RateLimitPerSecond float64 `yaml:"rate_limit_per_second"`
	RateLimitBurst     int     `yaml:"rate_limit_burst"`
}

func defaults() Config {
	return Config{
		Port:               "5050",
		AllowedOrigins:     []string{"http://localhost:5173"},
		CitiesDir:          "data/cities",
		RateLimitPerSecond: 5,
		RateLimitBurst:     10,
	}
}

// Load builds the configuration from defaults, the YAML file and the
// environment, in that order.
func Load() (Config, error) {
	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// no config file, defaults apply
	default:
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitAndTrim(origins)
	}
	if dir := os.Getenv("CITIES_DIR"); dir != "" {
		cfg.CitiesDir = dir
	}
	if raw := os.Getenv("PROXIMITY_THRESHOLD_METERS"); raw != "" {
		threshold, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse PROXIMITY_THRESHOLD_METERS: %w", err)
		}
		cfg.ProximityThresholdMeters = threshold
	}

	return cfg, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
