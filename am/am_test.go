package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, DefaultPrefix, cfg.Repository.Prefix)
	assert.Empty(t, cfg.Repository.URL)
	assert.Equal(t, 4, cfg.Tracker.Workers)
	assert.Equal(t, "gruvbox", cfg.Server.LogTheme)
	assert.NotEmpty(t, cfg.Storage.Dir)
	assert.Equal(t, DefaultServerPort, cfg.ServerPort())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leantwin.toml")
	content := `
[repository]
url = "http://graphdb:7200/repositories/plant"
prefix = "PREFIX plant: <http://plant.example.org#>"

[server]
port = 9000
log_theme = "everforest"

[tracker]
workers = 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://graphdb:7200/repositories/plant", cfg.Repository.URL)
	assert.Equal(t, "PREFIX plant: <http://plant.example.org#>", cfg.Repository.Prefix)
	assert.Equal(t, 9000, cfg.ServerPort())
	assert.Equal(t, "everforest", cfg.Server.LogTheme)
	assert.Equal(t, 8, cfg.Tracker.Workers)
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leantwin.toml")
	require.NoError(t, os.WriteFile(path, []byte("[repository]\nurl = \"http://x:7200/repositories/p\"\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefix, cfg.Repository.Prefix)
	assert.Equal(t, 4, cfg.Tracker.Workers)
	assert.Equal(t, DefaultServerPort, cfg.ServerPort())
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestPushRecent(t *testing.T) {
	assert.Equal(t, []string{"a"}, PushRecent(nil, "a"))
	assert.Equal(t, []string{"b", "a"}, PushRecent([]string{"a"}, "b"))

	// Re-adding an existing entry moves it to the front.
	assert.Equal(t, []string{"a", "b", "c"}, PushRecent([]string{"b", "a", "c"}, "a"))

	// Capped at MaxRecentRepositories.
	full := []string{"e1", "e2", "e3", "e4", "e5"}
	got := PushRecent(full, "new")
	assert.Len(t, got, MaxRecentRepositories)
	assert.Equal(t, "new", got[0])
	assert.NotContains(t, got, "e5")

	assert.Equal(t, []string{"a"}, PushRecent([]string{"a"}, ""), "empty URL ignored")
}

func TestIsBackupPath(t *testing.T) {
	assert.True(t, IsBackupPath("/home/x/.leantwin/leantwin_from_ui.toml.back1"))
	assert.False(t, IsBackupPath("/home/x/.leantwin/leantwin_from_ui.toml"))
}

func TestSectionCreatesAndReuses(t *testing.T) {
	config := map[string]interface{}{}
	s := section(config, "server")
	s["log_theme"] = "gruvbox"

	again := section(config, "server")
	assert.Equal(t, "gruvbox", again["log_theme"])
}
