package server

import (
	"net/http"

	"github.com/plantworks/leantwin/hierarchy"
)

// HandleTree serves GET /api/hierarchy (the serialized tree plus the
// root ID) and POST /api/hierarchy (insert a node, optionally through
// its type bucket).
func (s *TwinServer) HandleTree(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"root_id": s.session.TreeRootID(),
			"tree":    s.session.TreeDocument(),
		})

	case http.MethodPost:
		var req struct {
			ParentID string `json:"parent_id"`
			Label    string `json:"label"`
			Type     string `json:"type"`
			Bucket   string `json:"bucket"` // bucket type, empty for direct insert
		}
		if readJSON(w, r, &req) != nil {
			return
		}
		if req.ParentID == "" {
			req.ParentID = s.session.TreeRootID()
		}

		var (
			node *hierarchy.Node
			err  error
		)
		if req.Bucket != "" {
			node, err = s.session.InsertIntoBucket(req.ParentID, req.Label,
				hierarchy.NodeType(req.Type), hierarchy.NodeType(req.Bucket))
		} else {
			node, err = s.session.InsertTreeNode(req.ParentID, req.Label,
				hierarchy.NodeType(req.Type))
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTreeNodeResponse(node))

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleTreeNode serves one node: GET, PATCH (rename/open), DELETE
// /api/hierarchy/{id}, and POST /api/hierarchy/{id}/info for a
// transient annotation.
func (s *TwinServer) HandleTreeNode(w http.ResponseWriter, r *http.Request) {
	parts := extractPathParts(r.URL.Path, "/api/hierarchy/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "missing node id")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "info" {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req struct {
			Text string `json:"text"`
		}
		if readJSON(w, r, &req) != nil {
			return
		}
		node, err := s.session.AttachTreeInfo(id, req.Text)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, newTreeNodeResponse(node))
		return
	}

	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "unknown hierarchy resource")
		return
	}

	switch r.Method {
	case http.MethodGet:
		node, ok := s.session.FindTreeNode(id)
		if !ok {
			writeError(w, http.StatusNotFound, "node "+id+" not found")
			return
		}
		writeJSON(w, http.StatusOK, newTreeNodeResponse(node))

	case http.MethodPatch:
		var req struct {
			Text *string `json:"text"`
			Open *bool   `json:"open"`
		}
		if readJSON(w, r, &req) != nil {
			return
		}
		if req.Text != nil {
			if err := s.session.RenameTreeNode(id, *req.Text); err != nil {
				writeDomainError(w, err)
				return
			}
		}
		if req.Open != nil {
			if err := s.session.SetNodeOpen(id, *req.Open); err != nil {
				writeDomainError(w, err)
				return
			}
		}
		node, ok := s.session.FindTreeNode(id)
		if !ok {
			writeError(w, http.StatusNotFound, "node "+id+" not found")
			return
		}
		writeJSON(w, http.StatusOK, newTreeNodeResponse(node))

	case http.MethodDelete:
		if err := s.session.RemoveTreeNode(id); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
