package server

import (
	"time"

	"github.com/plantworks/leantwin/graph"
	"github.com/plantworks/leantwin/hierarchy"
	"github.com/plantworks/leantwin/registry"
)

const (
	// MaxClients is the maximum number of concurrent WebSocket clients
	MaxClients = 32
	// ClientQueueSize is the size of per-client send queues
	ClientQueueSize = 64
	// ShutdownTimeout is how long to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
)

// ServerState represents the server lifecycle state
type ServerState int

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// ClientMessage represents an incoming WebSocket message
type ClientMessage struct {
	Type      string `json:"type"`      // "select", "clear", "set_verbosity", "ping"
	Selection string `json:"selection"` // Node selection text for "select"
	Verbosity int    `json:"verbosity"` // For "set_verbosity"
}

// TaskAccepted is the 202 response body for work handed to the tracker.
type TaskAccepted struct {
	Handle string `json:"handle"`
	Name   string `json:"name"`
}

// TaskDoneMessage is broadcast when tracked background work finishes.
type TaskDoneMessage struct {
	Type      string `json:"type"` // "task_done"
	Handle    string `json:"handle"`
	Name      string `json:"name"`
	Error     string `json:"error,omitempty"`
	Duration  string `json:"duration"`
	Timestamp int64  `json:"timestamp"`
}

// CatalogUpdateMessage is broadcast after a repository fetch commits
// new node lists.
type CatalogUpdateMessage struct {
	Type      string         `json:"type"` // "catalog_update"
	Counts    map[string]int `json:"counts"`
	Timestamp int64          `json:"timestamp"`
}

// PasteStatusMessage is broadcast whenever the paste session changes.
type PasteStatusMessage struct {
	Type      string `json:"type"` // "paste_status"
	State     string `json:"state"`
	Node      string `json:"node,omitempty"`
	Property  string `json:"property,omitempty"`
	Value     string `json:"value,omitempty"`
	Unit      string `json:"unit,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// graphEnvelope wraps a graph for the WebSocket wire format.
type graphEnvelope struct {
	Type  string       `json:"type"` // "graph"
	Graph *graph.Graph `json:"graph"`
}

// statusResponse is the /api/status body.
type statusResponse struct {
	Repository string         `json:"repository"`
	Connected  bool           `json:"connected"`
	ActiveNode string         `json:"active_node"`
	Catalog    map[string]int `json:"catalog"`
	Clients    int            `json:"clients"`
	Tags       int            `json:"tags"`
	TreeNodes  int            `json:"tree_nodes"`
	Paste      string         `json:"paste"`
}

// tagResponse is one tag with its association.
type tagResponse struct {
	Tag         string               `json:"tag"`
	Association registry.Association `json:"association"`
}

// treeNodeResponse describes one hierarchy node for the front end.
type treeNodeResponse struct {
	ID     string             `json:"id"`
	Text   string             `json:"text"`
	Type   hierarchy.NodeType `json:"type"`
	Open   bool               `json:"open"`
	Parent string             `json:"parent,omitempty"`
}

func newTreeNodeResponse(n *hierarchy.Node) treeNodeResponse {
	resp := treeNodeResponse{
		ID:   n.ID,
		Text: n.Text,
		Type: n.Type,
		Open: n.Open,
	}
	if p := n.Parent(); p != nil {
		resp.Parent = p.ID
	}
	return resp
}
