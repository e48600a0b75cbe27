package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Theme string   `json:"theme"`
	Tags  []string `json:"tags"`
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	def := testDoc{Theme: "clam"}
	got := Load(filepath.Join(t.TempDir(), "nope.json"), def)
	assert.Equal(t, def, got)
}

func TestLoadMalformedReturnsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	def := testDoc{Theme: "clam"}
	got := Load(path, def)
	assert.Equal(t, def, got)
}

func TestDumpLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	want := testDoc{Theme: "dark", Tags: []string{"Pump-101", "Valve-7"}}

	require.NoError(t, Dump(path, want))
	got := Load(path, testDoc{})
	assert.Equal(t, want, got)
}

func TestDumpLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	require.NoError(t, Dump(path, testDoc{Theme: "a"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestDumpRotatesBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	for _, theme := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, Dump(path, testDoc{Theme: theme}))
	}

	assert.Equal(t, testDoc{Theme: "five"}, Load(path, testDoc{}))
	assert.Equal(t, testDoc{Theme: "four"}, Load(path+".back1", testDoc{}))
	assert.Equal(t, testDoc{Theme: "three"}, Load(path+".back2", testDoc{}))
	assert.Equal(t, testDoc{Theme: "two"}, Load(path+".back3", testDoc{}))

	// Only three generations are kept.
	_, err := os.Stat(path + ".back4")
	assert.True(t, os.IsNotExist(err))
}

func TestIsBackupFile(t *testing.T) {
	assert.True(t, IsBackupFile("tags.json.back1"))
	assert.True(t, IsBackupFile("config.toml.back3"))
	assert.False(t, IsBackupFile("tags.json"))
	assert.False(t, IsBackupFile("backup.json"))
}
