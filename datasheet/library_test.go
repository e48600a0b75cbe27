package datasheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/registry"
)

func newTestLibrary(t *testing.T) (*Library, *registry.Registry) {
	t.Helper()
	reg := registry.New()
	lib, err := NewLibrary(t.TempDir(), reg)
	require.NoError(t, err)
	return lib, reg
}

// writeWorkbook creates a real .xlsx file in the library directory.
func writeWorkbook(t *testing.T, lib *Library, name string, cells map[string]string) {
	t.Helper()
	f := excelize.NewFile()
	for cell, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, value))
	}
	require.NoError(t, f.SaveAs(filepath.Join(lib.Dir(), name)))
	require.NoError(t, f.Close())
}

func TestListOnlySpreadsheets(t *testing.T) {
	lib, _ := newTestLibrary(t)
	writeWorkbook(t, lib, "b.xlsx", nil)
	writeWorkbook(t, lib, "a.xlsx", nil)
	require.NoError(t, os.WriteFile(filepath.Join(lib.Dir(), "notes.txt"), []byte("x"), 0o644))

	names, err := lib.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.xlsx", "b.xlsx"}, names)
}

func TestSplitAssignedUnassigned(t *testing.T) {
	lib, reg := newTestLibrary(t)
	writeWorkbook(t, lib, "pump.xlsx", nil)
	writeWorkbook(t, lib, "valve.xlsx", nil)
	require.NoError(t, reg.CreateOrUpdate("P-101", "Pump-101", "pump.xlsx"))

	assigned, unassigned, err := lib.Split()
	require.NoError(t, err)
	assert.Equal(t, []string{"pump.xlsx"}, assigned)
	assert.Equal(t, []string{"valve.xlsx"}, unassigned)
}

func TestImport(t *testing.T) {
	lib, _ := newTestLibrary(t)

	external := filepath.Join(t.TempDir(), "generic.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SaveAs(external))
	require.NoError(t, f.Close())

	name, err := lib.Import(external, false)
	require.NoError(t, err)
	assert.Equal(t, "generic.xlsx", name)

	_, err = lib.Import(external, false)
	assert.True(t, errors.Is(err, errors.ErrFileExists))

	_, err = lib.Import(external, true)
	assert.NoError(t, err, "overwrite allowed when requested")
}

func TestCloneTemplateScenario(t *testing.T) {
	// Create tag "Pump-101" with node "Pump_12" and template
	// "generic.xlsx": the clone lands as "Pump_12_datasheet.xlsx" and
	// the tag references both the node and the new file.
	lib, reg := newTestLibrary(t)
	writeWorkbook(t, lib, "generic.xlsx", map[string]string{"A1": "Template"})

	newName, err := lib.CloneTemplate("generic.xlsx", "Pump_12", "", false)
	require.NoError(t, err)
	assert.Equal(t, "Pump_12_datasheet.xlsx", newName)

	require.NoError(t, reg.CreateOrUpdate("Pump-101", "Pump_12", newName))
	a, ok := reg.Get("Pump-101")
	require.True(t, ok)
	assert.Equal(t, []string{"Pump_12"}, a.Nodes)
	assert.Equal(t, []string{"Pump_12_datasheet.xlsx"}, a.Datasheets)

	// Clone carries the template content.
	v, err := lib.ReadCell(newName, "Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Template", v)
}

func TestCloneTemplateOverwriteGuard(t *testing.T) {
	lib, _ := newTestLibrary(t)
	writeWorkbook(t, lib, "generic.xlsx", nil)

	_, err := lib.CloneTemplate("generic.xlsx", "Pump_12", "", false)
	require.NoError(t, err)

	_, err = lib.CloneTemplate("generic.xlsx", "Pump_12", "", false)
	assert.True(t, errors.Is(err, errors.ErrFileExists))

	_, err = lib.CloneTemplate("generic.xlsx", "Pump_12", "", true)
	assert.NoError(t, err)

	_, err = lib.CloneTemplate("missing.xlsx", "Pump_12", "", false)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestRemoveCascadesThroughRegistry(t *testing.T) {
	lib, reg := newTestLibrary(t)
	writeWorkbook(t, lib, "pump.xlsx", nil)
	require.NoError(t, reg.CreateOrUpdate("P-101", "Pump-101", "pump.xlsx"))
	require.NoError(t, reg.CreateOrUpdate("P-102", "Pump-102", "pump.xlsx"))
	require.NoError(t, reg.CreateOrUpdate("V-7", "Valve-7", "valve.xlsx"))

	affected, err := lib.Remove("pump.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"P-101", "P-102"}, affected)

	_, statErr := os.Stat(filepath.Join(lib.Dir(), "pump.xlsx"))
	assert.True(t, os.IsNotExist(statErr))

	// Untouched tag keeps its reference.
	v, _ := reg.Get("V-7")
	assert.Equal(t, []string{"valve.xlsx"}, v.Datasheets)

	_, err = lib.Remove("pump.xlsx")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestPathRejectsEscapes(t *testing.T) {
	lib, _ := newTestLibrary(t)
	for _, bad := range []string{"../evil.xlsx", "sub/dir.xlsx", "", ".hidden.xlsx", "notes.txt"} {
		_, err := lib.Path(bad)
		assert.Error(t, err, bad)
	}
}

func TestWriteCellWithUnit(t *testing.T) {
	lib, _ := newTestLibrary(t)
	writeWorkbook(t, lib, "pump.xlsx", nil)

	require.NoError(t, lib.WriteCell("pump.xlsx", "Sheet1", "B2", "42.5", "m3/h"))

	v, err := lib.ReadCell("pump.xlsx", "Sheet1", "B2")
	require.NoError(t, err)
	assert.Equal(t, "42.5", v)

	u, err := lib.ReadCell("pump.xlsx", "Sheet1", "C2")
	require.NoError(t, err)
	assert.Equal(t, "m3/h", u)
}

func TestSheetNames(t *testing.T) {
	lib, _ := newTestLibrary(t)
	writeWorkbook(t, lib, "pump.xlsx", nil)

	sheets, err := lib.SheetNames("pump.xlsx")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sheet1"}, sheets)
}

func TestNewWorkbook(t *testing.T) {
	lib, _ := newTestLibrary(t)
	require.NoError(t, lib.NewWorkbook("fresh.xlsx", false))
	assert.True(t, errors.Is(lib.NewWorkbook("fresh.xlsx", false), errors.ErrFileExists))

	sheets, err := lib.SheetNames("fresh.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, sheets)
}

func TestLegacyWorkbookNotEditable(t *testing.T) {
	lib, _ := newTestLibrary(t)
	require.NoError(t, os.WriteFile(filepath.Join(lib.Dir(), "old.xls"), []byte("legacy"), 0o644))

	names, err := lib.List()
	require.NoError(t, err)
	assert.Contains(t, names, "old.xls")

	_, err = lib.SheetNames("old.xls")
	assert.True(t, errors.IsInvalidRequestError(err))
}
