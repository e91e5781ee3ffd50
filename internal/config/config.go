// Package config collects every tunable of the commute assistant in one
// struct, so nothing reads module-level constants at call time and tests can
// vary the values freely.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pendler.kildedal.dk/internal/schedule"
)

// Backend names accepted in PENDLER_BACKEND.
const (
	BackendHafas = "hafas"
	BackendOba   = "oba"
)

// Config holds all settings. The zero value is not usable; build it with
// Load.
type Config struct {
	Port int
	Env  string

	// Backend selects the journey-planning protocol.
	Backend string

	// HAFAS settings. Empty values fall back to the client defaults
	// (Rejseplanen's endpoint and public access ID).
	HafasEndpoint string
	HafasAccessID string

	// OneBusAway settings, only used with Backend=oba.
	ObaBaseURL string
	ObaAPIKey  string

	// The fixed commute. DestinationFallbacks are tried in order when the
	// primary query finds nothing; the upstream is picky about diacritics.
	OriginQuery          string
	DestinationQuery     string
	DestinationFallbacks []string

	TripLimit      int
	WalkTime       time.Duration
	MaxStationWait time.Duration
}

// Load reads the configuration from the environment, with a .env file merged
// in first when present.
func Load() (*Config, error) {
	// .env is optional; a personal tool usually runs off plain env vars.
	_ = godotenv.Load()

	defaults := schedule.DefaultOptions()

	cfg := &Config{
		Port:          4000,
		Env:           getenvDefault("PENDLER_ENV", "development"),
		Backend:       strings.ToLower(getenvDefault("PENDLER_BACKEND", BackendHafas)),
		HafasEndpoint: os.Getenv("PENDLER_HAFAS_ENDPOINT"),
		HafasAccessID: os.Getenv("PENDLER_HAFAS_ACCESS_ID"),
		ObaBaseURL:    os.Getenv("PENDLER_OBA_BASE_URL"),
		ObaAPIKey:     os.Getenv("PENDLER_OBA_API_KEY"),

		OriginQuery:          getenvDefault("PENDLER_ORIGIN", "Kildedal St."),
		DestinationQuery:     getenvDefault("PENDLER_DESTINATION", "Fuglsang Allé"),
		DestinationFallbacks: []string{"Fuglsang Alle", "Fuglsang"},

		TripLimit:      6,
		WalkTime:       defaults.WalkTime,
		MaxStationWait: defaults.MaxStationWait,
	}

	if fallbacks := os.Getenv("PENDLER_DESTINATION_FALLBACKS"); fallbacks != "" {
		cfg.DestinationFallbacks = splitList(fallbacks)
	}

	var err error
	if cfg.Port, err = getenvInt("PENDLER_PORT", cfg.Port); err != nil {
		return nil, err
	}
	if cfg.TripLimit, err = getenvInt("PENDLER_TRIP_LIMIT", cfg.TripLimit); err != nil {
		return nil, err
	}

	walk, err := getenvInt("PENDLER_WALK_MINUTES", int(cfg.WalkTime.Minutes()))
	if err != nil {
		return nil, err
	}
	wait, err := getenvInt("PENDLER_MAX_WAIT_MINUTES", int(cfg.MaxStationWait.Minutes()))
	if err != nil {
		return nil, err
	}
	if walk < 0 || wait < 0 {
		return nil, fmt.Errorf("walk and wait minutes must not be negative")
	}
	cfg.WalkTime = time.Duration(walk) * time.Minute
	cfg.MaxStationWait = time.Duration(wait) * time.Minute

	switch cfg.Backend {
	case BackendHafas:
	case BackendOba:
		if cfg.ObaBaseURL == "" {
			return nil, fmt.Errorf("PENDLER_OBA_BASE_URL is required with the oba backend")
		}
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, BackendHafas, BackendOba)
	}

	return cfg, nil
}

// ScheduleOptions exposes the leave-by tunables in the form the schedule
// package consumes.
func (c *Config) ScheduleOptions() schedule.Options {
	return schedule.Options{WalkTime: c.WalkTime, MaxStationWait: c.MaxStationWait}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
