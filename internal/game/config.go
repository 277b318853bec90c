package game

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/samdwyer/tilequest/internal/telemetry"
	"github.com/samdwyer/tilequest/internal/world"
)

// Config holds game configuration options, read from TILEQUEST_* variables.
type Config struct {
	// Seed for random number generation. Used for reproducible dungeon
	// generation and encounter rolls. A seed of 0 means a random seed.
	Seed int64 `env:"TILEQUEST_SEED" envDefault:"0"`

	// MapDir is a directory of YAML maps. Empty uses the embedded maps.
	MapDir   string `env:"TILEQUEST_MAP_DIR"`
	StartMap string `env:"TILEQUEST_START_MAP" envDefault:"town"`
	// StartX and StartY override the start map's start point when both are
	// non-negative.
	StartX int `env:"TILEQUEST_START_X" envDefault:"-1"`
	StartY int `env:"TILEQUEST_START_Y" envDefault:"-1"`

	// GeneratedMaps are map names built by the dungeon generator instead of
	// being loaded.
	GeneratedMaps []string `env:"TILEQUEST_GENERATED_MAPS" envDefault:"crypt" envSeparator:","`

	// EncounterRate is the chance per step of a random encounter in a zone.
	EncounterRate float64 `env:"TILEQUEST_ENCOUNTER_RATE" envDefault:"0.08"`

	LogLevel string `env:"TILEQUEST_LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"TILEQUEST_LOG_FILE"`

	TelemetryEnabled  bool   `env:"TILEQUEST_TELEMETRY"`
	TelemetryEndpoint string `env:"TILEQUEST_TELEMETRY_ENDPOINT"`
	TelemetryInsecure bool   `env:"TILEQUEST_TELEMETRY_INSECURE"`

	// WatchMaps reloads the active map when its file in MapDir changes.
	WatchMaps bool `env:"TILEQUEST_WATCH_MAPS"`
}

// LoadConfig parses the configuration from the environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.EncounterRate < 0 || cfg.EncounterRate > 1 {
		return Config{}, fmt.Errorf("parse env: encounter rate %v out of range [0, 1]", cfg.EncounterRate)
	}
	return cfg, nil
}

// StartPoint returns the configured start override, if any.
func (c Config) StartPoint() (world.Point, bool) {
	if c.StartX < 0 || c.StartY < 0 {
		return world.Point{}, false
	}
	return world.Pt(c.StartX, c.StartY), true
}

// Telemetry returns the tracing options.
func (c Config) Telemetry() telemetry.Options {
	return telemetry.Options{
		Enabled:  c.TelemetryEnabled,
		Endpoint: c.TelemetryEndpoint,
		Insecure: c.TelemetryInsecure,
	}
}
