package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/plantworks/leantwin/graph"
	"github.com/plantworks/leantwin/internal/version"
)

// HandleWebSocket upgrades the connection and starts the read/write
// pumps.
func (s *TwinServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		server:  s,
		conn:    conn,
		send:    make(chan *graph.Graph, ClientQueueSize),
		sendMsg: make(chan interface{}, ClientQueueSize),
		id:      fmt.Sprintf("%s_%d", r.RemoteAddr, time.Now().UnixNano()),
	}

	// Version info goes out before the pumps start, avoiding
	// concurrent writes on the connection.
	versionInfo := version.Get()
	versionMsg := map[string]interface{}{
		"type":    "version",
		"version": versionInfo.Version,
		"commit":  versionInfo.Short(),
	}
	if err := conn.WriteJSON(versionMsg); err != nil {
		s.logger.Debugw("Failed to send version info",
			"client_id", client.id,
			"error", err,
		)
	}

	s.register <- client

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
}

// HandleHealth reports liveness.
func (s *TwinServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": version.Get().Version,
		"uptime":  time.Since(startTime).String(),
	})
}

var startTime = time.Now()

// HandleStatus reports the session state in one round trip: the UI's
// status bar content.
func (s *TwinServer) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	settings := s.session.Settings()
	_, clientErr := s.session.Client()

	counts := make(map[string]int)
	for kind, n := range s.session.Catalog.Counts() {
		counts[string(kind)] = n
	}

	doc := s.session.TreeDocument()
	treeNodes := countTreeNodes(doc.Children) + 1

	writeJSON(w, http.StatusOK, statusResponse{
		Repository: settings.RepositoryURL,
		Connected:  clientErr == nil,
		ActiveNode: s.session.ActiveNode(),
		Catalog:    counts,
		Clients:    s.clientCount(),
		Tags:       len(s.session.Registry.ListTags()),
		TreeNodes:  treeNodes,
		Paste:      s.paste.State(),
	})
}
