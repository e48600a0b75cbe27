// Package registry keeps the tag associations at the heart of the
// digital twin: each plant tag maps to the semantic nodes it stands
// for and the datasheet files documenting it. The registry is the
// in-memory working copy; persistence goes through Snapshot/Restore
// and the store package.
package registry

import (
	"sort"
	"sync"

	"github.com/plantworks/leantwin/errors"
)

// Association holds one tag's links. Order is insertion order, the
// way associations were made.
type Association struct {
	Nodes      []string `json:"nodes"`
	Datasheets []string `json:"datasheets"`
}

func (a Association) clone() Association {
	return Association{
		Nodes:      append([]string(nil), a.Nodes...),
		Datasheets: append([]string(nil), a.Datasheets...),
	}
}

// Registry is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	tags map[string]Association
}

func New() *Registry {
	return &Registry{tags: make(map[string]Association)}
}

// CreateOrUpdate ensures tag exists and appends node and datasheet to
// its association. Empty node or datasheet arguments are skipped, and
// duplicates are not appended, so calling with both empty just
// creates a bare tag.
func (r *Registry) CreateOrUpdate(tag, node, datasheet string) error {
	if tag == "" {
		return errors.NewInvalidRequestError("tag name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.tags[tag]
	if node != "" && !contains(a.Nodes, node) {
		a.Nodes = append(a.Nodes, node)
	}
	if datasheet != "" && !contains(a.Datasheets, datasheet) {
		a.Datasheets = append(a.Datasheets, datasheet)
	}
	r.tags[tag] = a
	return nil
}

// Get returns a copy of tag's association.
func (r *Registry) Get(tag string) (Association, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.tags[tag]
	if !ok {
		return Association{}, false
	}
	return a.clone(), true
}

// Delete removes a tag and its association entirely.
func (r *Registry) Delete(tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tags[tag]; !ok {
		return errors.NewNotFoundError("tag %q", tag)
	}
	delete(r.tags, tag)
	return nil
}

// ListTags returns all tag names sorted.
func (r *Registry) ListTags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.tags))
	for t := range r.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// AssignedDatasheets returns the set of datasheet files referenced by
// any tag. Used to split the library into assigned and unassigned.
func (r *Registry) AssignedDatasheets() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	assigned := make(map[string]struct{})
	for _, a := range r.tags {
		for _, d := range a.Datasheets {
			assigned[d] = struct{}{}
		}
	}
	return assigned
}

// RemoveDatasheetEverywhere un-tags a file from every association and
// returns the tags that referenced it. Removing a file from the
// library cascades through here.
func (r *Registry) RemoveDatasheetEverywhere(datasheet string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected []string
	for tag, a := range r.tags {
		idx := -1
		for i, d := range a.Datasheets {
			if d == datasheet {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		a.Datasheets = append(a.Datasheets[:idx], a.Datasheets[idx+1:]...)
		r.tags[tag] = a
		affected = append(affected, tag)
	}
	sort.Strings(affected)
	return affected
}

// Snapshot returns a deep copy of all associations, keyed by tag.
// The copy marshals directly as tags.json.
func (r *Registry) Snapshot() map[string]Association {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Association, len(r.tags))
	for t, a := range r.tags {
		out[t] = a.clone()
	}
	return out
}

// Restore replaces the registry content with the given snapshot.
func (r *Registry) Restore(tags map[string]Association) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tags = make(map[string]Association, len(tags))
	for t, a := range tags {
		r.tags[t] = a.clone()
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
