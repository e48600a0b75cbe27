package server

import (
	"net/http"
)

// HandleTags serves GET /api/tags (the full registry, sorted) and
// POST /api/tags (create or extend an association).
func (s *TwinServer) HandleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tags := s.session.Registry.ListTags()
		out := make([]tagResponse, 0, len(tags))
		for _, tag := range tags {
			a, _ := s.session.Registry.Get(tag)
			out = append(out, tagResponse{Tag: tag, Association: a})
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req struct {
			Tag       string `json:"tag"`
			Node      string `json:"node"`
			Datasheet string `json:"datasheet"`
		}
		if readJSON(w, r, &req) != nil {
			return
		}
		if err := s.session.Registry.CreateOrUpdate(req.Tag, req.Node, req.Datasheet); err != nil {
			writeDomainError(w, err)
			return
		}
		a, _ := s.session.Registry.Get(req.Tag)
		writeJSON(w, http.StatusOK, tagResponse{Tag: req.Tag, Association: a})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleTag serves one tag: GET/DELETE /api/tags/{tag} and
// POST /api/tags/{tag}/select, which applies the active-node rule.
func (s *TwinServer) HandleTag(w http.ResponseWriter, r *http.Request) {
	parts := extractPathParts(r.URL.Path, "/api/tags/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "missing tag")
		return
	}
	tag := parts[0]

	if len(parts) == 2 && parts[1] == "select" {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		a, active, err := s.session.ApplyTagSelection(tag)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"tag":         tag,
			"association": a,
			"active_node": active,
		})
		return
	}

	if len(parts) != 1 {
		writeError(w, http.StatusNotFound, "unknown tag resource")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a, ok := s.session.Registry.Get(tag)
		if !ok {
			writeError(w, http.StatusNotFound, "tag "+tag+" not found")
			return
		}
		writeJSON(w, http.StatusOK, tagResponse{Tag: tag, Association: a})

	case http.MethodDelete:
		if err := s.session.Registry.Delete(tag); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": tag})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
