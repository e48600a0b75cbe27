package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantworks/leantwin/errors"
)

func TestCreateOrUpdateAppendsWithoutDuplicates(t *testing.T) {
	r := New()

	require.NoError(t, r.CreateOrUpdate("P-101", "Pump-101", "pump.xlsx"))
	require.NoError(t, r.CreateOrUpdate("P-101", "Pump-101", ""))
	require.NoError(t, r.CreateOrUpdate("P-101", "Pump-101-Spare", "pump.xlsx"))

	a, ok := r.Get("P-101")
	require.True(t, ok)
	assert.Equal(t, []string{"Pump-101", "Pump-101-Spare"}, a.Nodes)
	assert.Equal(t, []string{"pump.xlsx"}, a.Datasheets)
}

func TestCreateBareTag(t *testing.T) {
	r := New()
	require.NoError(t, r.CreateOrUpdate("P-101", "", ""))

	a, ok := r.Get("P-101")
	require.True(t, ok)
	assert.Empty(t, a.Nodes)
	assert.Empty(t, a.Datasheets)
}

func TestCreateOrUpdateRejectsEmptyTag(t *testing.T) {
	r := New()
	err := r.CreateOrUpdate("", "Pump-101", "")
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestGetReturnsCopy(t *testing.T) {
	r := New()
	require.NoError(t, r.CreateOrUpdate("P-101", "Pump-101", ""))

	a, _ := r.Get("P-101")
	a.Nodes[0] = "mutated"

	again, _ := r.Get("P-101")
	assert.Equal(t, []string{"Pump-101"}, again.Nodes)
}

func TestDelete(t *testing.T) {
	r := New()
	require.NoError(t, r.CreateOrUpdate("P-101", "", ""))
	require.NoError(t, r.Delete("P-101"))

	_, ok := r.Get("P-101")
	assert.False(t, ok)

	assert.True(t, errors.IsNotFoundError(r.Delete("P-101")))
}

func TestListTagsSorted(t *testing.T) {
	r := New()
	for _, tag := range []string{"V-7", "P-101", "E-2"} {
		require.NoError(t, r.CreateOrUpdate(tag, "", ""))
	}
	assert.Equal(t, []string{"E-2", "P-101", "V-7"}, r.ListTags())
}

func TestRemoveDatasheetEverywhere(t *testing.T) {
	r := New()
	require.NoError(t, r.CreateOrUpdate("P-101", "Pump-101", "pump.xlsx"))
	require.NoError(t, r.CreateOrUpdate("P-102", "Pump-102", "pump.xlsx"))
	require.NoError(t, r.CreateOrUpdate("V-7", "Valve-7", "valve.xlsx"))

	affected := r.RemoveDatasheetEverywhere("pump.xlsx")
	assert.Equal(t, []string{"P-101", "P-102"}, affected)

	a, _ := r.Get("P-101")
	assert.Empty(t, a.Datasheets)
	assert.Equal(t, []string{"Pump-101"}, a.Nodes)

	v, _ := r.Get("V-7")
	assert.Equal(t, []string{"valve.xlsx"}, v.Datasheets)

	assert.Empty(t, r.RemoveDatasheetEverywhere("absent.xlsx"))
}

func TestAssignedDatasheets(t *testing.T) {
	r := New()
	require.NoError(t, r.CreateOrUpdate("P-101", "", "pump.xlsx"))
	require.NoError(t, r.CreateOrUpdate("V-7", "", "valve.xlsx"))

	assigned := r.AssignedDatasheets()
	assert.Contains(t, assigned, "pump.xlsx")
	assert.Contains(t, assigned, "valve.xlsx")
	assert.NotContains(t, assigned, "other.xlsx")
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	r := New()
	require.NoError(t, r.CreateOrUpdate("P-101", "Pump-101", "pump.xlsx"))

	snap := r.Snapshot()

	fresh := New()
	fresh.Restore(snap)
	a, ok := fresh.Get("P-101")
	require.True(t, ok)
	assert.Equal(t, []string{"Pump-101"}, a.Nodes)
	assert.Equal(t, []string{"pump.xlsx"}, a.Datasheets)

	// Mutating the snapshot must not leak into the registry.
	snap["P-101"].Nodes[0] = "mutated"
	b, _ := fresh.Get("P-101")
	assert.Equal(t, "Pump-101", b.Nodes[0])
}
