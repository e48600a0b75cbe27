package session

import (
	"github.com/plantworks/leantwin/hierarchy"
)

// Hierarchy tree access. The tree itself is not concurrency-safe, so
// every operation goes through the session lock.

// TreeDocument returns the serialized tree.
func (s *Session) TreeDocument() hierarchy.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Serialize()
}

// InsertTreeNode inserts a typed child under parentID.
func (s *Session) InsertTreeNode(parentID, label string, typ hierarchy.NodeType) (*hierarchy.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.InsertChild(parentID, label, typ)
}

// EnsureBucket returns (creating on first use) the typed bucket under
// ownerID.
func (s *Session) EnsureBucket(ownerID string, bucketType hierarchy.NodeType) (*hierarchy.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.EnsureBucket(ownerID, bucketType)
}

// InsertIntoBucket places a node of elemType inside the matching
// bucket under ownerID, creating the bucket on first use.
func (s *Session) InsertIntoBucket(ownerID, label string, elemType, bucketType hierarchy.NodeType) (*hierarchy.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, err := s.tree.EnsureBucket(ownerID, bucketType)
	if err != nil {
		return nil, err
	}
	return s.tree.InsertChild(bucket.ID, label, elemType)
}

// RemoveTreeNode deletes the subtree rooted at id.
func (s *Session) RemoveTreeNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Remove(id)
}

// SetNodeOpen toggles a node's expanded state.
func (s *Session) SetNodeOpen(id string, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.SetOpen(id, open)
}

// RenameTreeNode updates a node's display text.
func (s *Session) RenameTreeNode(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Rename(id, text)
}

// FindTreeNode looks a node up by ID.
func (s *Session) FindTreeNode(id string) (*hierarchy.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Find(id)
}

// TreeRootID returns the fixed root's ID.
func (s *Session) TreeRootID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Root().ID
}

// AttachTreeInfo hangs a transient annotation under a node.
func (s *Session) AttachTreeInfo(ownerID, text string) (*hierarchy.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.AttachInfo(ownerID, text)
}
