// Package project persists a working session to its storage
// directory: settings.json, tags.json and project.json side by side
// with the datasheets/ folder. A whole project can be packaged into a
// single zip archive and restored from one.
package project

import (
	"github.com/plantworks/leantwin/hierarchy"
	"github.com/plantworks/leantwin/registry"
	"github.com/plantworks/leantwin/store"
)

// Document filenames inside the storage directory.
const (
	SettingsFile = "settings.json"
	TagsFile     = "tags.json"
	TreeFile     = "project.json"
	DatasheetDir = "datasheets"
)

// Settings is the settings.json document: UI theme plus the
// repository connection the project was last used with.
type Settings struct {
	Theme              string   `json:"theme"`
	RepositoryURL      string   `json:"repository_url"`
	Prefix             string   `json:"prefix"`
	RecentRepositories []string `json:"recent_repositories"`
}

// Documents bundles the three persisted JSON documents.
type Documents struct {
	Settings Settings
	Tags     map[string]registry.Association
	Tree     hierarchy.Document
}

// Save writes all three documents into dir. Each write is atomic with
// rotating backups, so a crash mid-save never leaves a torn project.
func Save(dir string, docs Documents) error {
	if err := store.Dump(pathIn(dir, SettingsFile), docs.Settings); err != nil {
		return err
	}
	if err := store.Dump(pathIn(dir, TagsFile), docs.Tags); err != nil {
		return err
	}
	return store.Dump(pathIn(dir, TreeFile), docs.Tree)
}

// Load reads the project documents from dir. Missing or malformed
// documents fall back to empty defaults; a broken project dir opens
// as an empty project rather than failing.
func Load(dir string) Documents {
	return Documents{
		Settings: store.Load(pathIn(dir, SettingsFile), Settings{}),
		Tags:     store.Load(pathIn(dir, TagsFile), map[string]registry.Association{}),
		Tree:     store.Load(pathIn(dir, TreeFile), hierarchy.NewTree().Serialize()),
	}
}
