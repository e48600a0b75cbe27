package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// setupRoutes configures all HTTP handlers on the server's own mux.
func (s *TwinServer) setupRoutes() {
	s.mux.HandleFunc("/ws", s.corsMiddleware(s.HandleWebSocket))
	s.mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))
	s.mux.HandleFunc("/api/status", s.corsMiddleware(s.HandleStatus))

	s.mux.HandleFunc("/api/nodes/fetch", s.corsMiddleware(s.HandleNodesFetch))
	s.mux.HandleFunc("/api/nodes/", s.corsMiddleware(s.HandleNodeProperties)) // /api/nodes/{node}/properties
	s.mux.HandleFunc("/api/nodes", s.corsMiddleware(s.HandleNodes))
	s.mux.HandleFunc("/api/graph", s.corsMiddleware(s.HandleGraph))

	s.mux.HandleFunc("/api/tags/", s.corsMiddleware(s.HandleTag)) // /api/tags/{tag}[/select]
	s.mux.HandleFunc("/api/tags", s.corsMiddleware(s.HandleTags))

	s.mux.HandleFunc("/api/hierarchy/", s.corsMiddleware(s.HandleTreeNode)) // /api/hierarchy/{id}
	s.mux.HandleFunc("/api/hierarchy", s.corsMiddleware(s.HandleTree))

	s.mux.HandleFunc("/api/datasheets/", s.corsMiddleware(s.HandleDatasheet)) // /api/datasheets/{name}[/sheets|/cell]
	s.mux.HandleFunc("/api/datasheets", s.corsMiddleware(s.HandleDatasheets))

	s.mux.HandleFunc("/api/paste/arm", s.corsMiddleware(s.HandlePasteArm))
	s.mux.HandleFunc("/api/paste/drop", s.corsMiddleware(s.HandlePasteDrop))
	s.mux.HandleFunc("/api/paste/cancel", s.corsMiddleware(s.HandlePasteCancel))
	s.mux.HandleFunc("/api/paste", s.corsMiddleware(s.HandlePasteStatus))

	s.mux.HandleFunc("/api/settings", s.corsMiddleware(s.HandleSettings))
	s.mux.HandleFunc("/api/project/save", s.corsMiddleware(s.HandleProjectSave))
	s.mux.HandleFunc("/api/project/export", s.corsMiddleware(s.HandleProjectExport))
	s.mux.HandleFunc("/api/project/import", s.corsMiddleware(s.HandleProjectImport))
}

// corsMiddleware adds CORS headers using the configured allowed
// origins, sharing the origin validation with WebSocket upgrades.
func (s *TwinServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// originAllowed validates an Origin header against the configured
// allowed origins. Prefix matching admits any port on a listed host.
func (s *TwinServer) originAllowed(origin string) bool {
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		return strings.HasPrefix(origin, "http://localhost") ||
			strings.HasPrefix(origin, "https://localhost")
	}
	for _, a := range allowed {
		if strings.HasPrefix(origin, a) {
			return true
		}
	}
	return false
}

// upgrader builds a WebSocket upgrader bound to the server's origin
// check.
func (s *TwinServer) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  2048,
		WriteBufferSize: 2048,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Direct WebSocket clients send no Origin header.
			if origin == "" {
				return true
			}
			return s.originAllowed(origin)
		},
	}
}
