// Package hierarchy models the plant containment tree: Plant under a
// fixed root, Units and Areas below, Equipment, Sub-Equipment and
// Assets at the bottom, with typed bucket nodes grouping same-typed
// children. A static adjacency table decides which insertions are
// legal; everything else is rejected.
package hierarchy

import (
	"github.com/google/uuid"

	"github.com/plantworks/leantwin/errors"
)

// RootLabel is the display text of the fixed tree root.
const RootLabel = "Plant Hierarchy"

// Node is one tree entry. Nodes are owned by their Tree and addressed
// by ID; do not share them across trees.
type Node struct {
	ID   string
	Text string
	Type NodeType
	Open bool

	// transient marks info annotations, which are skipped on
	// serialization.
	transient bool

	parent   *Node
	children []*Node
}

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Parent returns the node's parent, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Tree is an ordered forest under a fixed root node. Not safe for
// concurrent use; the session serializes access.
type Tree struct {
	root  *Node
	index map[string]*Node
}

// NewTree returns a tree holding only the root node.
func NewTree() *Tree {
	root := &Node{
		ID:   uuid.NewString(),
		Text: RootLabel,
		Type: TypeRoot,
		Open: true,
	}
	return &Tree{
		root:  root,
		index: map[string]*Node{root.ID: root},
	}
}

// Root returns the fixed root node.
func (t *Tree) Root() *Node { return t.root }

// Find returns the node with the given ID.
func (t *Tree) Find(id string) (*Node, bool) {
	n, ok := t.index[id]
	return n, ok
}

// InsertChild adds a child of the given type under parentID. The
// insertion is rejected with ErrTypeNotAllowed when the adjacency
// table forbids it.
func (t *Tree) InsertChild(parentID, label string, typ NodeType) (*Node, error) {
	parent, ok := t.index[parentID]
	if !ok {
		return nil, errors.NewNotFoundError("hierarchy node %s", parentID)
	}
	if !Valid(typ) || typ == TypeInfo || typ == TypeRoot {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "cannot insert node of type %q", typ)
	}
	if !CanContain(parent.Type, typ) {
		return nil, errors.Wrapf(errors.ErrTypeNotAllowed,
			"%s may not contain %s", parent.Type, typ)
	}

	child := &Node{
		ID:     uuid.NewString(),
		Text:   label,
		Type:   typ,
		Open:   defaultOpen(typ),
		parent: parent,
	}
	parent.children = append(parent.children, child)
	t.index[child.ID] = child
	return child, nil
}

// EnsureBucket returns owner's bucket of the given type, creating it
// on first use. Idempotent: at most one bucket of each type exists
// per owner.
func (t *Tree) EnsureBucket(ownerID string, bucketType NodeType) (*Node, error) {
	if !IsBucket(bucketType) {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "%q is not a bucket type", bucketType)
	}
	owner, ok := t.index[ownerID]
	if !ok {
		return nil, errors.NewNotFoundError("hierarchy node %s", ownerID)
	}
	for _, c := range owner.children {
		if c.Type == bucketType {
			return c, nil
		}
	}
	return t.InsertChild(ownerID, bucketLabels[bucketType], bucketType)
}

// AttachInfo hangs a transient annotation under a node. Annotations
// bypass the adjacency table and never survive serialization.
func (t *Tree) AttachInfo(ownerID, text string) (*Node, error) {
	owner, ok := t.index[ownerID]
	if !ok {
		return nil, errors.NewNotFoundError("hierarchy node %s", ownerID)
	}
	info := &Node{
		ID:        uuid.NewString(),
		Text:      text,
		Type:      TypeInfo,
		transient: true,
		parent:    owner,
	}
	owner.children = append(owner.children, info)
	t.index[info.ID] = info
	return info, nil
}

// SetOpen toggles a node's expanded state.
func (t *Tree) SetOpen(id string, open bool) error {
	n, ok := t.index[id]
	if !ok {
		return errors.NewNotFoundError("hierarchy node %s", id)
	}
	n.Open = open
	return nil
}

// Rename updates a node's display text. The root label is fixed.
func (t *Tree) Rename(id, text string) error {
	n, ok := t.index[id]
	if !ok {
		return errors.NewNotFoundError("hierarchy node %s", id)
	}
	if n == t.root {
		return errors.Wrap(errors.ErrInvalidRequest, "cannot rename the root")
	}
	n.Text = text
	return nil
}

// Remove deletes the subtree rooted at id. The root itself cannot be
// removed.
func (t *Tree) Remove(id string) error {
	n, ok := t.index[id]
	if !ok {
		return errors.NewNotFoundError("hierarchy node %s", id)
	}
	if n == t.root {
		return errors.Wrap(errors.ErrInvalidRequest, "cannot remove the root")
	}

	parent := n.parent
	for i, c := range parent.children {
		if c == n {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	t.unindex(n)
	return nil
}

func (t *Tree) unindex(n *Node) {
	delete(t.index, n.ID)
	for _, c := range n.children {
		t.unindex(c)
	}
}

// Walk visits every node depth-first, root included, in insertion
// order. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(*Node) bool) {
	var visit func(*Node) bool
	visit = func(n *Node) bool {
		if !fn(n) {
			return false
		}
		for _, c := range n.children {
			if !visit(c) {
				return false
			}
		}
		return true
	}
	visit(t.root)
}

// Size returns the number of nodes, root included.
func (t *Tree) Size() int { return len(t.index) }
