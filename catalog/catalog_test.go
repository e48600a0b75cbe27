package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommitAndGet(t *testing.T) {
	c := New()
	gen := c.Begin()

	assert.True(t, c.Commit(gen, KindAll, []string{"Pump_2", "Pump_1", "Pump_1"}))
	assert.Equal(t, []string{"Pump_1", "Pump_2"}, c.Get(KindAll))
}

func TestStaleGenerationDiscarded(t *testing.T) {
	c := New()
	old := c.Begin()
	fresh := c.Begin()

	assert.True(t, c.Commit(fresh, KindAll, []string{"Pump_2"}))
	assert.False(t, c.Commit(old, KindAll, []string{"Stale_1"}), "superseded fetch must be discarded")
	assert.Equal(t, []string{"Pump_2"}, c.Get(KindAll))
}

func TestGetReturnsCopy(t *testing.T) {
	c := New()
	gen := c.Begin()
	c.Commit(gen, KindEquipment, []string{"Pump_1"})

	list := c.Get(KindEquipment)
	list[0] = "mutated"
	assert.Equal(t, []string{"Pump_1"}, c.Get(KindEquipment))
}

func TestGetUnfetchedKindEmpty(t *testing.T) {
	c := New()
	assert.Empty(t, c.Get(KindAsset))
}

func TestCounts(t *testing.T) {
	c := New()
	gen := c.Begin()
	c.Commit(gen, KindAll, []string{"a", "b", "c"})
	c.Commit(gen, KindEquipment, []string{"a"})

	counts := c.Counts()
	assert.Equal(t, 3, counts[KindAll])
	assert.Equal(t, 1, counts[KindEquipment])
}

func TestClearInvalidatesInFlightFetch(t *testing.T) {
	c := New()
	gen := c.Begin()
	c.Commit(gen, KindAll, []string{"a"})

	c.Clear()
	assert.Empty(t, c.Get(KindAll))
	assert.False(t, c.Commit(gen, KindAll, []string{"b"}))
}

func TestNormalizeLocalNames(t *testing.T) {
	in := []string{"Pump_2", "", "Pump_1", "Pump_2", "Valve-7"}
	assert.Equal(t, []string{"Pump_1", "Pump_2", "Valve-7"}, NormalizeLocalNames(in))
	assert.Equal(t, []string{"Pump_2", "", "Pump_1", "Pump_2", "Valve-7"}, in, "input untouched")
}
