package graph

import (
	"time"
)

// Graph is the structure shipped to the visualization front end.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
	Meta  Meta   `json:"meta"`
}

// Node is one entity in the rendered graph.
type Node struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`            // "equipment", "sub_equipment", "asset", "value" or "untyped"
	Label    string                 `json:"label"`           // Display label, usually the local name
	Visible  bool                   `json:"visible"`         // Backend controls visibility
	Group    int                    `json:"group,omitempty"` // For coloring/clustering
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Link is one relationship between nodes.
type Link struct {
	Source string  `json:"source"` // Node ID
	Target string  `json:"target"` // Node ID
	Type   string  `json:"type"`   // Predicate local name (e.g. "feeds", "hasPart")
	Weight float64 `json:"value"`  // Link strength/weight (D3 uses "value")
	Label  string  `json:"label,omitempty"`
}

// Meta carries graph-level context for the front end.
type Meta struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Stats       Stats             `json:"stats"`
	Config      map[string]string `json:"config"`
	NodeTypes   []NodeTypeInfo    `json:"node_types"`
	Predicates  []PredicateInfo   `json:"predicates"`
}

// NodeTypeInfo describes one node type present in the graph with its
// visual configuration.
type NodeTypeInfo struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
	Count int    `json:"count,omitempty"`
}

// PredicateInfo describes one predicate present in the graph.
type PredicateInfo struct {
	Type  string `json:"type"`
	Count int    `json:"count,omitempty"`
}

// Stats provides graph statistics.
type Stats struct {
	TotalNodes int `json:"total_nodes,omitempty"`
	TotalEdges int `json:"total_edges,omitempty"`
}
