package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantworks/leantwin/am"
	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/hierarchy"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := &am.Config{}
	cfg.Storage.Dir = t.TempDir()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestNewSessionEmptyProject(t *testing.T) {
	s := newTestSession(t)

	assert.Empty(t, s.Registry.ListTags())
	assert.Equal(t, DefaultTheme, s.Settings().Theme)
	assert.Empty(t, s.ActiveNode())

	_, err := s.Client()
	assert.True(t, errors.Is(err, errors.ErrServiceUnavailable))
}

func TestApplyTagSelectionActiveNodeRules(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Registry.CreateOrUpdate("P-101", "Pump-101", ""))
	require.NoError(t, s.Registry.CreateOrUpdate("MULTI", "Pump-101", ""))
	require.NoError(t, s.Registry.CreateOrUpdate("MULTI", "Pump-102", ""))
	require.NoError(t, s.Registry.CreateOrUpdate("BARE", "", ""))

	// Exactly one node: becomes active.
	a, active, err := s.ApplyTagSelection("P-101")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pump-101"}, a.Nodes)
	assert.Equal(t, "Pump-101", active)
	assert.Equal(t, "Pump-101", s.ActiveNode())

	// Ambiguous: cleared.
	_, active, err = s.ApplyTagSelection("MULTI")
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Empty(t, s.ActiveNode())

	// No nodes: cleared too.
	s.SetActiveNode("Pump-101")
	_, active, err = s.ApplyTagSelection("BARE")
	require.NoError(t, err)
	assert.Empty(t, active)

	_, _, err = s.ApplyTagSelection("missing")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestTreeOperationsThroughSession(t *testing.T) {
	s := newTestSession(t)
	root := s.TreeRootID()

	plant, err := s.InsertTreeNode(root, "Refinery", hierarchy.TypePlant)
	require.NoError(t, err)
	unit, err := s.InsertTreeNode(plant.ID, "Unit 100", hierarchy.TypeUnit)
	require.NoError(t, err)

	eq, err := s.InsertIntoBucket(unit.ID, "Pump-101", hierarchy.TypeEquipment, hierarchy.TypeEquipmentBucket)
	require.NoError(t, err)

	// Second insert reuses the same bucket.
	_, err = s.InsertIntoBucket(unit.ID, "Pump-102", hierarchy.TypeEquipment, hierarchy.TypeEquipmentBucket)
	require.NoError(t, err)

	bucket, err := s.EnsureBucket(unit.ID, hierarchy.TypeEquipmentBucket)
	require.NoError(t, err)
	assert.Len(t, bucket.Children(), 2)

	require.NoError(t, s.SetNodeOpen(eq.ID, false))
	require.NoError(t, s.RenameTreeNode(eq.ID, "Pump-101A"))
	n, ok := s.FindTreeNode(eq.ID)
	require.True(t, ok)
	assert.Equal(t, "Pump-101A", n.Text)

	require.NoError(t, s.RemoveTreeNode(plant.ID))
	_, ok = s.FindTreeNode(eq.ID)
	assert.False(t, ok)
}

func TestSaveAndReopen(t *testing.T) {
	cfg := &am.Config{}
	cfg.Storage.Dir = t.TempDir()

	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Registry.CreateOrUpdate("P-101", "Pump-101", "pump.xlsx"))
	root := s.TreeRootID()
	_, err = s.InsertTreeNode(root, "Refinery", hierarchy.TypePlant)
	require.NoError(t, err)
	s.SetTheme("dark")
	require.NoError(t, s.Save())

	reopened, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"P-101"}, reopened.Registry.ListTags())
	assert.Equal(t, "dark", reopened.Settings().Theme)

	doc := reopened.TreeDocument()
	require.Len(t, doc.Children, 1)
	assert.Equal(t, "Refinery", doc.Children[0].Text)
}

func TestExportImportArchive(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Registry.CreateOrUpdate("P-101", "Pump-101", ""))
	zipPath := filepath.Join(t.TempDir(), "plant.zip")
	require.NoError(t, s.ExportArchive(zipPath))

	other := newTestSession(t)
	require.NoError(t, other.Registry.CreateOrUpdate("DOOMED", "", ""))
	require.NoError(t, other.ImportArchive(zipPath))

	assert.Equal(t, []string{"P-101"}, other.Registry.ListTags())
}

func TestSetRepositoryMaintainsRecentList(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	s := newTestSession(t)

	first := "http://graphdb:7200/repositories/plant"
	second := "http://graphdb:7200/repositories/lab"
	require.NoError(t, s.SetRepository(first, am.DefaultPrefix))
	require.NoError(t, s.SetRepository(second, am.DefaultPrefix))
	require.NoError(t, s.SetRepository(first, am.DefaultPrefix))

	// Newest first, duplicates collapsed.
	assert.Equal(t, []string{first, second}, s.Settings().RecentRepositories)
}

func TestConfigSeedsRepositorySettings(t *testing.T) {
	cfg := &am.Config{}
	cfg.Storage.Dir = t.TempDir()
	cfg.Repository.URL = "http://graphdb:7200/repositories/plant"
	cfg.Repository.Prefix = "PREFIX ex: <http://example.org/pumps#>"

	s, err := New(cfg)
	require.NoError(t, err)

	st := s.Settings()
	assert.Equal(t, cfg.Repository.URL, st.RepositoryURL)

	client, err := s.Client()
	require.NoError(t, err)
	assert.Equal(t, cfg.Repository.URL, client.Endpoint())
}
