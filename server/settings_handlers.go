package server

import (
	"net/http"
)

// HandleSettings serves GET /api/settings (the project settings
// document) and PUT /api/settings (theme and repository connection).
// Changing the repository reconnects the SPARQL client and invalidates
// the catalog.
func (s *TwinServer) HandleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.session.Settings())

	case http.MethodPut:
		var req struct {
			Theme         *string `json:"theme"`
			RepositoryURL *string `json:"repository_url"`
			Prefix        *string `json:"prefix"`
		}
		if readJSON(w, r, &req) != nil {
			return
		}

		if req.Theme != nil {
			s.session.SetTheme(*req.Theme)
		}

		if req.RepositoryURL != nil {
			prefix := s.session.Settings().Prefix
			if req.Prefix != nil {
				prefix = *req.Prefix
			}
			if err := s.session.SetRepository(*req.RepositoryURL, prefix); err != nil {
				writeDomainError(w, err)
				return
			}
			s.broadcastCatalogUpdate()
		}

		writeJSON(w, http.StatusOK, s.session.Settings())

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
