// Package store persists the small JSON documents that make up a project:
// settings.json, tags.json and project.json. Writes are atomic (temp
// sibling + rename) so a concurrent reader never observes a partial
// document, and the previous content is kept in rotating backups.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/plantworks/leantwin/errors"
)

// Load parses the JSON document at path into def and returns it. On any
// failure (missing file, malformed JSON, unreadable path) the default is
// returned unchanged. Load never fails: a broken document is treated as
// an empty one.
func Load[T any](path string, def T) T {
	data, err := os.ReadFile(path)
	if err != nil {
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def
	}
	return v
}

// Dump writes v as indented JSON to path. The document is written to a
// temporary sibling first and moved into place with os.Rename, which is
// atomic on the same filesystem. The previous content is rotated into
// .back1/.back2/.back3 before replacement.
func Dump(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal document")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	if err := rotateBackups(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to close temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}

// rotateBackups keeps the last three generations of a document:
// .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
func rotateBackups(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // No file to back up
	}

	back3 := path + ".back3"
	back2 := path + ".back2"
	back1 := path + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete oldest backup")
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

	content, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read document for backup")
	}
	if err := os.WriteFile(back1, content, 0o644); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}
	return nil
}

// IsBackupFile reports whether name looks like one of our rotating
// backups. Used by the config watcher to ignore backup churn.
func IsBackupFile(name string) bool {
	switch filepath.Ext(name) {
	case ".back1", ".back2", ".back3":
		return true
	}
	return false
}
