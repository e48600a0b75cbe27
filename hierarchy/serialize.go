package hierarchy

import (
	"github.com/plantworks/leantwin/errors"
)

// Document is the persisted form of one tree node, marshaled into
// project.json. Info annotations are excluded.
type Document struct {
	Text     string     `json:"text"`
	Type     NodeType   `json:"type"`
	Open     bool       `json:"open"`
	Children []Document `json:"children,omitempty"`
}

// Serialize renders the whole tree as a recursive document rooted at
// the fixed root node.
func (t *Tree) Serialize() Document {
	return serializeNode(t.root)
}

func serializeNode(n *Node) Document {
	doc := Document{Text: n.Text, Type: n.Type, Open: n.Open}
	for _, c := range n.children {
		if c.transient {
			continue
		}
		doc.Children = append(doc.Children, serializeNode(c))
	}
	return doc
}

// Deserialize rebuilds a tree from a persisted document. The document
// must be rooted at a root-typed node and respect the adjacency
// table; anything else is rejected so the caller can fall back to an
// empty tree.
func Deserialize(doc Document) (*Tree, error) {
	if doc.Type != TypeRoot {
		return nil, errors.Wrapf(errors.ErrInvalidRequest,
			"document root has type %q, expected %q", doc.Type, TypeRoot)
	}

	t := NewTree()
	t.root.Text = doc.Text
	t.root.Open = doc.Open
	for _, child := range doc.Children {
		if err := restoreNode(t, t.root.ID, child); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func restoreNode(t *Tree, parentID string, doc Document) error {
	if doc.Type == TypeInfo {
		// Stale annotation from a hand-edited document. Drop it.
		return nil
	}
	n, err := t.InsertChild(parentID, doc.Text, doc.Type)
	if err != nil {
		return err
	}
	n.Open = doc.Open
	for _, child := range doc.Children {
		if err := restoreNode(t, n.ID, child); err != nil {
			return err
		}
	}
	return nil
}
