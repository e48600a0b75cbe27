// Package am holds application configuration: a layered TOML setup
// (defaults < system < user < project < environment) with UI-driven
// writes going to a dedicated file so hand-edited configs are never
// clobbered.
package am

// Config represents the core leantwin configuration
type Config struct {
	Repository RepositoryConfig `mapstructure:"repository"`
	Server     ServerConfig     `mapstructure:"server"`
	Tracker    TrackerConfig    `mapstructure:"tracker"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

// RepositoryConfig configures the SPARQL repository connection
type RepositoryConfig struct {
	URL    string   `mapstructure:"url"`    // SPARQL endpoint, e.g. http://localhost:7200/repositories/plant
	Prefix string   `mapstructure:"prefix"` // PREFIX declaration used for all queries
	Recent []string `mapstructure:"recent"` // Recently used endpoints, most recent first
}

// ServerConfig configures the leantwin web server
type ServerConfig struct {
	Port           *int     `mapstructure:"port"` // Server port: nil = default 8420, 0 is invalid (omit for default)
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	LogTheme       string   `mapstructure:"log_theme"` // Color theme: gruvbox, everforest
}

// Server port constants
const (
	DefaultServerPort  = 8420 // Development port, above the privileged range
	FallbackServerPort = 8421 // Fallback when the default is taken
)

// TrackerConfig configures the background task pool
type TrackerConfig struct {
	Workers int `mapstructure:"workers"` // Concurrent background workers (default: 4)
}

// StorageConfig configures on-disk project storage
type StorageConfig struct {
	Dir string `mapstructure:"dir"` // Project directory holding settings, tags, tree and datasheets/
}

// MaxRecentRepositories caps the recent-endpoint list.
const MaxRecentRepositories = 5

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
