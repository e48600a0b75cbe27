package am

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/logger"
	"github.com/plantworks/leantwin/store"
)

// UI-driven settings changes land in a dedicated file so they never
// clobber a hand-edited config. The file sits between the user and
// project layers in precedence.

// UIConfigPath returns ~/.leantwin/leantwin_from_ui.toml.
func UIConfigPath() string {
	dir := UserConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "leantwin_from_ui.toml")
}

// createBackup rotates .back1/.back2/.back3 before a config write.
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		logger.Warnw("failed to delete old config backup", "path", back3, "error", err)
	}
	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}
	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// loadOrInitializeUIConfig loads the UI config file, or starts an
// empty document if it doesn't exist yet.
func loadOrInitializeUIConfig() (map[string]interface{}, string, error) {
	configPath := UIConfigPath()
	if configPath == "" {
		return nil, "", errors.New("could not determine home directory")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return nil, "", errors.Wrap(err, "failed to create .leantwin directory")
	}

	var config map[string]interface{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, "", errors.Wrap(err, "failed to parse UI config")
		}
	} else {
		config = make(map[string]interface{})
	}

	return config, configPath, nil
}

// saveUIConfig writes the config with a backup, marking the write so
// the watcher does not trigger a reload loop.
func saveUIConfig(config map[string]interface{}, configPath string) error {
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	globalWatcherMu.Lock()
	if globalWatcher != nil {
		globalWatcher.MarkOwnWrite()
	}
	globalWatcherMu.Unlock()

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to write UI config")
	}
	return nil
}

func section(config map[string]interface{}, name string) map[string]interface{} {
	if s, ok := config[name].(map[string]interface{}); ok {
		return s
	}
	s := make(map[string]interface{})
	config[name] = s
	return s
}

// UpdateLogTheme updates server.log_theme in the UI config.
func UpdateLogTheme(theme string) error {
	config, configPath, err := loadOrInitializeUIConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load UI config")
	}
	section(config, "server")["log_theme"] = theme
	return saveUIConfig(config, configPath)
}

// UpdateRepository updates the repository URL and prefix in the UI
// config and pushes the URL onto the recent list.
func UpdateRepository(url, prefix string) error {
	config, configPath, err := loadOrInitializeUIConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load UI config")
	}
	repo := section(config, "repository")
	repo["url"] = url
	if prefix != "" {
		repo["prefix"] = prefix
	}
	repo["recent"] = PushRecent(toStrings(repo["recent"]), url)
	return saveUIConfig(config, configPath)
}

// UpdateTrackerWorkers updates tracker.workers in the UI config.
func UpdateTrackerWorkers(workers int) error {
	if workers < 1 {
		return errors.NewInvalidRequestError("tracker workers must be positive, got %d", workers)
	}
	config, configPath, err := loadOrInitializeUIConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load UI config")
	}
	section(config, "tracker")["workers"] = workers
	return saveUIConfig(config, configPath)
}

// UpdateStorageDir updates storage.dir in the UI config.
func UpdateStorageDir(dir string) error {
	config, configPath, err := loadOrInitializeUIConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load UI config")
	}
	section(config, "storage")["dir"] = dir
	return saveUIConfig(config, configPath)
}

// PushRecent puts url at the head of the recent list, dropping
// duplicates and capping at MaxRecentRepositories. An empty url
// leaves the list unchanged.
func PushRecent(recent []string, url string) []string {
	if url == "" {
		return recent
	}
	out := []string{url}
	for _, r := range recent {
		if r == url {
			continue
		}
		out = append(out, r)
		if len(out) == MaxRecentRepositories {
			break
		}
	}
	return out
}

func toStrings(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// IsBackupPath reports whether path is one of the rotating config
// backups, re-exported for the watcher.
func IsBackupPath(path string) bool {
	return store.IsBackupFile(filepath.Base(path))
}
