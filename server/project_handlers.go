package server

import (
	"net/http"
)

// HandleProjectSave writes the three project documents: POST
// /api/project/save.
func (s *TwinServer) HandleProjectSave(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	if err := s.session.Save(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"dir": s.session.Dir()})
}

// HandleProjectExport packages the project into a zip archive: POST
// /api/project/export {"path": ...}.
func (s *TwinServer) HandleProjectExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Path string `json:"path"`
	}
	if readJSON(w, r, &req) != nil {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path must not be empty")
		return
	}
	if err := s.session.ExportArchive(req.Path); err != nil {
		writeDomainError(w, err)
		return
	}
	s.logger.Infow("Project exported", "path", req.Path)
	writeJSON(w, http.StatusOK, map[string]string{"path": req.Path})
}

// HandleProjectImport replaces the project from an archive: POST
// /api/project/import {"path": ...}. The in-memory session state is
// reloaded and clients are told to refresh.
func (s *TwinServer) HandleProjectImport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Path string `json:"path"`
	}
	if readJSON(w, r, &req) != nil {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path must not be empty")
		return
	}
	if err := s.session.ImportArchive(req.Path); err != nil {
		writeDomainError(w, err)
		return
	}

	s.paste.Cancel()
	s.broadcastCatalogUpdate()
	s.logger.Infow("Project imported", "path", req.Path)
	writeJSON(w, http.StatusOK, map[string]string{"dir": s.session.Dir()})
}
