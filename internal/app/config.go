package app

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// StartDir is the directory the project root search and unit reference
	// resolution start from.
	StartDir string
	// Units are the unit references to build. An empty reference means the
	// unit at StartDir itself.
	Units []string
	// Release selects the release variant; the default is debug.
	Release bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.StartDir == "" {
		cfg.StartDir = "."
	}
	if len(cfg.Units) == 0 {
		// Build the unit at the start directory.
		cfg.Units = []string{""}
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}
