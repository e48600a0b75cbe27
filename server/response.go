package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/plantworks/leantwin/errors"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return errors.Wrap(err, "failed to encode JSON")
	}
	return nil
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeDomainError maps domain sentinel errors onto HTTP status codes
// and includes any user-facing hints.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFoundError(err):
		status = http.StatusNotFound
	case errors.IsInvalidRequestError(err),
		errors.Is(err, errors.ErrTypeNotAllowed),
		errors.Is(err, errors.ErrNoActiveNode):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrFileExists):
		status = http.StatusConflict
	case errors.Is(err, errors.ErrServiceUnavailable),
		errors.Is(err, errors.ErrEndpointUnreachable):
		status = http.StatusServiceUnavailable
	}

	body := map[string]string{"error": err.Error()}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		body["hint"] = strings.Join(hints, "; ")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// readJSON reads and decodes a JSON request body
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return err
	}
	return nil
}

// requireMethod checks if the request method matches the expected method
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// extractPathParts extracts path segments after removing a prefix
func extractPathParts(urlPath, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(urlPath, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
