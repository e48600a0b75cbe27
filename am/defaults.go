package am

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DefaultPrefix is the prefix declaration used until the user sets
// their own repository namespace.
const DefaultPrefix = "PREFIX ex: <http://example.org/pumps#>"

// SetDefaults registers every configuration default on v. Defaults
// sit below all config files and environment variables.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("repository.url", "")
	v.SetDefault("repository.prefix", DefaultPrefix)
	v.SetDefault("repository.recent", []string{})

	v.SetDefault("server.allowed_origins", []string{
		"http://localhost:5173",
		"http://localhost:8420",
	})
	v.SetDefault("server.log_theme", "gruvbox")

	v.SetDefault("tracker.workers", 4)

	v.SetDefault("storage.dir", defaultStorageDir())
}

// defaultStorageDir is ~/.leantwin/project, falling back to a
// relative directory when the home directory cannot be resolved.
func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "leantwin-project"
	}
	return filepath.Join(home, ".leantwin", "project")
}

// UserConfigDir returns ~/.leantwin, the per-user config location.
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".leantwin")
}
