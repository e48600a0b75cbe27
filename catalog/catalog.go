// Package catalog caches the node lists fetched from the repository:
// everything under the prefix plus the categorized equipment,
// sub-equipment and asset subsets. Lists go stale the moment a new
// fetch begins; a generation counter makes sure a slow fetch that was
// superseded cannot overwrite fresher results.
package catalog

import (
	"sort"
	"sync"
)

// Kind selects one of the cached lists.
type Kind string

const (
	KindAll          Kind = "all"
	KindEquipment    Kind = "equipment"
	KindSubEquipment Kind = "sub_equipment"
	KindAsset        Kind = "asset"
)

// Kinds lists every cached category, KindAll first.
func Kinds() []Kind {
	return []Kind{KindAll, KindEquipment, KindSubEquipment, KindAsset}
}

// Generation identifies one fetch cycle. Results are only committed
// when their generation is still the latest.
type Generation uint64

// Catalog is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	gen   Generation
	lists map[Kind][]string
}

func New() *Catalog {
	return &Catalog{lists: make(map[Kind][]string)}
}

// Begin starts a new fetch cycle and returns its generation. Every
// earlier generation becomes stale immediately.
func (c *Catalog) Begin() Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// Commit stores names under kind if gen is still current. Returns
// false when the result was stale and discarded. Names are normalized
// before storage.
func (c *Catalog) Commit(gen Generation, kind Kind, names []string) bool {
	normalized := NormalizeLocalNames(names)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.lists[kind] = normalized
	return true
}

// Get returns a copy of the cached list for kind, empty when nothing
// has been fetched yet.
func (c *Catalog) Get(kind Kind) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.lists[kind]...)
}

// Counts returns the size of each cached list.
func (c *Catalog) Counts() map[Kind]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	counts := make(map[Kind]int, len(c.lists))
	for k, v := range c.lists {
		counts[k] = len(v)
	}
	return counts
}

// Clear drops every cached list and invalidates in-flight fetches.
func (c *Catalog) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lists = make(map[Kind][]string)
}

// NormalizeLocalNames sorts and deduplicates a list of local names,
// dropping empties. The input is not modified.
func NormalizeLocalNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
