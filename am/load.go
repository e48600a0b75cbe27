package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/plantworks/leantwin/errors"
)

var (
	globalMu      sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
)

// Load reads the leantwin configuration using Viper. The result is
// cached; call Reset to force a reload.
func Load() (*Config, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViperLocked()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() *viper.Viper {
	globalMu.Lock()
	defer globalMu.Unlock()
	return initViperLocked()
}

// LoadFromFile loads configuration from a specific file path,
// bypassing the layered search. Used by tests and the config CLI.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing and
// config reloads)
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
	viperInstance = nil
}

// initViperLocked initializes Viper with configuration sources and
// defaults. Caller holds globalMu.
func initViperLocked() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	v.SetEnvPrefix("LEANTWIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Merge configs in precedence order: system -> user -> UI-managed
	// -> project. Environment variables sit above all files.
	mergeConfigFiles(v)

	viperInstance = v
	return v
}

// findProjectConfig searches for leantwin.toml or config.toml by
// walking up the directory tree. Preference: leantwin.toml over
// config.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		ltPath := filepath.Join(dir, "leantwin.toml")
		if _, err := os.Stat(ltPath); err == nil {
			return ltPath
		}

		configPath := filepath.Join(dir, "config.toml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfigFiles merges configuration files lowest precedence
// first: system < user < UI-managed < project.
func mergeConfigFiles(v *viper.Viper) {
	userDir := UserConfigDir()
	if userDir != "" {
		os.MkdirAll(userDir, DefaultDirPermissions)
	}

	configPaths := []string{
		"/etc/leantwin/config.toml",
	}
	if userDir != "" {
		configPaths = append(configPaths,
			filepath.Join(userDir, "leantwin.toml"),
			UIConfigPath(),
		)
	}
	if projectConfig := findProjectConfig(); projectConfig != "" {
		configPaths = append(configPaths, projectConfig)
	}

	for _, configPath := range configPaths {
		if configPath == "" {
			continue
		}
		if _, err := os.Stat(configPath); err != nil {
			continue
		}
		tempViper := viper.New()
		tempViper.SetConfigFile(configPath)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}
		for key, value := range tempViper.AllSettings() {
			v.Set(key, value)
		}
	}
}

// Get returns a configuration value using dot notation
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// GetString returns a configuration value as string using dot notation
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetInt returns a configuration value as int using dot notation
func GetInt(key string) int {
	return GetViper().GetInt(key)
}

// ServerPort resolves the configured port, applying the default when
// the config omits it.
func (c *Config) ServerPort() int {
	if c.Server.Port == nil {
		return DefaultServerPort
	}
	return *c.Server.Port
}
