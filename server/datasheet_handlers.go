package server

import (
	"net/http"
)

// HandleDatasheets serves GET /api/datasheets (the library split into
// assigned and unassigned files) and POST /api/datasheets (import an
// external spreadsheet, clone a template, or create a blank workbook).
func (s *TwinServer) HandleDatasheets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		assigned, unassigned, err := s.session.Library.Split()
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if assigned == nil {
			assigned = []string{}
		}
		if unassigned == nil {
			unassigned = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{
			"assigned":   assigned,
			"unassigned": unassigned,
		})

	case http.MethodPost:
		var req struct {
			Action    string `json:"action"` // "import", "clone", "new"
			Path      string `json:"path"`   // import source
			Template  string `json:"template"`
			Node      string `json:"node"`
			Name      string `json:"name"`
			Tag       string `json:"tag"` // optional: tag the result
			Overwrite bool   `json:"overwrite"`
		}
		if readJSON(w, r, &req) != nil {
			return
		}

		var (
			name string
			err  error
		)
		switch req.Action {
		case "import":
			name, err = s.session.Library.Import(req.Path, req.Overwrite)
		case "clone":
			name, err = s.session.Library.CloneTemplate(req.Template, req.Node, req.Name, req.Overwrite)
		case "new":
			name = req.Name
			err = s.session.Library.NewWorkbook(req.Name, req.Overwrite)
		default:
			writeError(w, http.StatusBadRequest, "unknown action "+req.Action)
			return
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}

		// Cloning for a node under a tag records both associations.
		if req.Tag != "" {
			if err := s.session.Registry.CreateOrUpdate(req.Tag, req.Node, name); err != nil {
				writeDomainError(w, err)
				return
			}
		}
		writeJSON(w, http.StatusCreated, map[string]string{"name": name})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleDatasheet serves one library file:
// DELETE /api/datasheets/{name}, GET .../sheets, POST .../cell.
func (s *TwinServer) HandleDatasheet(w http.ResponseWriter, r *http.Request) {
	parts := extractPathParts(r.URL.Path, "/api/datasheets/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "missing datasheet name")
		return
	}
	name := parts[0]

	switch {
	case len(parts) == 1:
		if !requireMethod(w, r, http.MethodDelete) {
			return
		}
		affected, err := s.session.Library.Remove(name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if affected == nil {
			affected = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"deleted":       name,
			"untagged_from": affected,
		})

	case len(parts) == 2 && parts[1] == "sheets":
		if !requireMethod(w, r, http.MethodGet) {
			return
		}
		sheets, err := s.session.Library.SheetNames(name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"name":   name,
			"sheets": sheets,
		})

	case len(parts) == 2 && parts[1] == "cell":
		switch r.Method {
		case http.MethodGet:
			sheet := r.URL.Query().Get("sheet")
			cell := r.URL.Query().Get("cell")
			value, err := s.session.Library.ReadCell(name, sheet, cell)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{
				"sheet": sheet,
				"cell":  cell,
				"value": value,
			})

		case http.MethodPost:
			var req struct {
				Sheet string `json:"sheet"`
				Cell  string `json:"cell"`
				Value string `json:"value"`
				Unit  string `json:"unit"`
			}
			if readJSON(w, r, &req) != nil {
				return
			}
			if err := s.session.Library.WriteCell(name, req.Sheet, req.Cell, req.Value, req.Unit); err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{
				"name":  name,
				"sheet": req.Sheet,
				"cell":  req.Cell,
			})

		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}

	default:
		writeError(w, http.StatusNotFound, "unknown datasheet resource")
	}
}
