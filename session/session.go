// Package session owns the application state of one open project:
// configuration, tag registry, node catalog, hierarchy tree,
// datasheet library and the repository client. It replaces scattered
// globals with one context object constructed at startup and passed
// to every component that needs it.
package session

import (
	"path/filepath"
	"sync"

	"github.com/plantworks/leantwin/am"
	"github.com/plantworks/leantwin/catalog"
	"github.com/plantworks/leantwin/datasheet"
	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/hierarchy"
	"github.com/plantworks/leantwin/logger"
	"github.com/plantworks/leantwin/project"
	"github.com/plantworks/leantwin/registry"
	"github.com/plantworks/leantwin/sparql"
)

// DefaultTheme matches a fresh project before the user picks one.
const DefaultTheme = "clam"

// Session is safe for concurrent use; the embedded registry and
// catalog carry their own locks, everything else is guarded here.
type Session struct {
	cfg *am.Config
	dir string

	Registry *registry.Registry
	Catalog  *catalog.Catalog
	Library  *datasheet.Library

	mu         sync.RWMutex
	settings   project.Settings
	tree       *hierarchy.Tree
	client     *sparql.Client
	activeNode string
}

// New opens the project in cfg.Storage.Dir, restoring whatever
// documents exist there. A missing or broken project opens empty.
func New(cfg *am.Config) (*Session, error) {
	dir := cfg.Storage.Dir
	reg := registry.New()

	lib, err := datasheet.NewLibrary(filepath.Join(dir, project.DatasheetDir), reg)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		dir:      dir,
		Registry: reg,
		Catalog:  catalog.New(),
		Library:  lib,
	}
	s.restore(project.Load(dir))

	// Config supplies the connection when the project has none yet.
	if s.settings.RepositoryURL == "" && cfg.Repository.URL != "" {
		s.settings.RepositoryURL = cfg.Repository.URL
		s.settings.Prefix = cfg.Repository.Prefix
		s.settings.RecentRepositories = append([]string(nil), cfg.Repository.Recent...)
	}

	if s.settings.RepositoryURL != "" {
		client, err := sparql.NewClient(s.settings.RepositoryURL, s.settings.Prefix)
		if err != nil {
			logger.Warnw("stored repository connection is invalid, starting disconnected",
				"url", s.settings.RepositoryURL, "error", err)
		} else {
			s.client = client
		}
	}

	return s, nil
}

// restore replaces in-memory state from loaded documents. Caller must
// not hold the lock.
func (s *Session) restore(docs project.Documents) {
	s.Registry.Restore(docs.Tags)

	tree, err := hierarchy.Deserialize(docs.Tree)
	if err != nil {
		logger.Warnw("stored hierarchy is invalid, starting with an empty tree", "error", err)
		tree = hierarchy.NewTree()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = docs.Settings
	if s.settings.Theme == "" {
		s.settings.Theme = DefaultTheme
	}
	s.tree = tree
	s.activeNode = ""
}

// Dir returns the project storage directory.
func (s *Session) Dir() string { return s.dir }

// Settings returns a copy of the current settings document.
func (s *Session) Settings() project.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.settings
	out.RecentRepositories = append([]string(nil), s.settings.RecentRepositories...)
	return out
}

// SetTheme updates the UI theme.
func (s *Session) SetTheme(theme string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Theme = theme
}

// Client returns the repository client, or ErrServiceUnavailable when
// no repository is connected yet.
func (s *Session) Client() (*sparql.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrServiceUnavailable, "no repository connected"),
			"set a repository URL and prefix first")
	}
	return s.client, nil
}

// SetRepository connects the session to a repository. The previous
// catalog content is dropped since it describes another repository.
func (s *Session) SetRepository(url, prefix string) error {
	client, err := sparql.NewClient(url, prefix)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.client = client
	s.settings.RepositoryURL = url
	s.settings.Prefix = prefix
	s.settings.RecentRepositories = am.PushRecent(s.settings.RecentRepositories, url)
	s.activeNode = ""
	s.mu.Unlock()

	s.Catalog.Clear()

	// Best effort: remember the connection for future sessions.
	if err := am.UpdateRepository(url, prefix); err != nil {
		logger.Warnw("failed to persist repository connection", "error", err)
	}
	return nil
}

// ActiveNode returns the current paste target, empty when unset.
func (s *Session) ActiveNode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeNode
}

// SetActiveNode designates the paste target explicitly.
func (s *Session) SetActiveNode(node string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeNode = node
}

// ApplyTagSelection selects a tag: when the tag maps to exactly one
// node that node becomes active, otherwise the active node is cleared
// as ambiguous. Returns the association and the resulting active
// node.
func (s *Session) ApplyTagSelection(tag string) (registry.Association, string, error) {
	a, ok := s.Registry.Get(tag)
	if !ok {
		return registry.Association{}, "", errors.NewNotFoundError("tag %q", tag)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(a.Nodes) == 1 {
		s.activeNode = a.Nodes[0]
	} else {
		s.activeNode = ""
	}
	return a, s.activeNode, nil
}
