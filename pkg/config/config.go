package config

import "time"

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel          string   // sets the log level (zap log level values)
	LogFormat         string   // text vs json
	LogFilter         string   // zapfilter rules applied to the log output
	EnableTelemetry   bool     // enable telemetry
	DataDirs          []string // directories searched for track files
	MinSpacing        float64  // minimum distance between accepted boundary points
	DisplayWidth      float64  // target width of the minimap
	DisplayHeight     float64  // target height of the minimap
	Stretch           bool     // if true, minimap axes are scaled independently
	HeadingWindow     int      // number of heading samples averaged (1 = none)
	SpawnSpacing      int      // driveline indices between two grid positions
	Workers           int      // max number of concurrent kart queries per tick
	Laps              int      // number of laps of a race
	PreviewExpiration string   // duration after which cached track previews are rebuilt
)

// Config holds the configuration values which are used by the application
type Config struct {
	DataDirs          []string
	MinSpacing        float64
	DisplayWidth      float64
	DisplayHeight     float64
	Stretch           bool
	HeadingWindow     int
	SpawnSpacing      int
	Workers           int
	Laps              int
	PreviewExpiration time.Duration
}

func DefaultConfig() Config {
	return Config{
		DataDirs:          []string{"."},
		MinSpacing:        1.5,
		DisplayWidth:      100,
		DisplayHeight:     100,
		HeadingWindow:     1,
		SpawnSpacing:      1,
		Workers:           4,
		Laps:              3,
		PreviewExpiration: 5 * time.Minute,
	}
}

// FromFlags collects the values bound to the CLI flags.
// Invalid or unset values fall back to the defaults.
func FromFlags() Config {
	cfg := DefaultConfig()
	if len(DataDirs) > 0 {
		cfg.DataDirs = DataDirs
	}
	if MinSpacing > 0 {
		cfg.MinSpacing = MinSpacing
	}
	if DisplayWidth > 0 {
		cfg.DisplayWidth = DisplayWidth
	}
	if DisplayHeight > 0 {
		cfg.DisplayHeight = DisplayHeight
	}
	cfg.Stretch = Stretch
	if HeadingWindow > 0 {
		cfg.HeadingWindow = HeadingWindow
	}
	if SpawnSpacing > 0 {
		cfg.SpawnSpacing = SpawnSpacing
	}
	if Workers > 0 {
		cfg.Workers = Workers
	}
	if Laps > 0 {
		cfg.Laps = Laps
	}
	if d, err := time.ParseDuration(PreviewExpiration); err == nil && d > 0 {
		cfg.PreviewExpiration = d
	}
	return cfg
}
