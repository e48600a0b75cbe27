package session

import (
	"github.com/plantworks/leantwin/project"
)

// Save writes the three project documents to the storage directory.
func (s *Session) Save() error {
	return project.Save(s.dir, s.documents())
}

// ExportArchive saves the project and packages it, datasheets
// included, into a zip archive at zipPath.
func (s *Session) ExportArchive(zipPath string) error {
	if err := s.Save(); err != nil {
		return err
	}
	return project.Export(s.dir, zipPath)
}

// ImportArchive unpacks an archive into the storage directory and
// reloads the session state from it. In-memory state is replaced.
func (s *Session) ImportArchive(zipPath string) error {
	if err := project.Import(zipPath, s.dir); err != nil {
		return err
	}
	s.restore(project.Load(s.dir))
	return nil
}

func (s *Session) documents() project.Documents {
	s.mu.RLock()
	settings := s.settings
	settings.RecentRepositories = append([]string(nil), s.settings.RecentRepositories...)
	tree := s.tree.Serialize()
	s.mu.RUnlock()

	return project.Documents{
		Settings: settings,
		Tags:     s.Registry.Snapshot(),
		Tree:     tree,
	}
}
