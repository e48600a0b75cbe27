package graph

import (
	"context"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/logger"
	"github.com/plantworks/leantwin/sparql"
)

// BuildFromSelection builds a graph around the nodes named in the
// selection text. The selection is whitespace-separated node names,
// one or more lines, shell-style quoting allowed. An empty selection
// yields an empty graph with a hint instead of an error.
func (b *Builder) BuildFromSelection(ctx context.Context, selection string) (*Graph, error) {
	trimmed := strings.TrimSpace(selection)
	if trimmed == "" {
		b.logger.Debugw("Empty selection received")
		return emptyGraph("", "Select nodes to see their neighborhood..."), nil
	}

	nodes, err := parseSelection(trimmed)
	if err != nil {
		b.logger.Warnw("Selection rejected", "selection", trimmed, "error", err)
		g := emptyGraph(trimmed, "Invalid selection: "+err.Error())
		g.Meta.Config["error"] = err.Error()
		return g, err
	}
	if len(nodes) == 0 {
		return emptyGraph("", "Select nodes to see their neighborhood..."), nil
	}

	b.logger.Debugw("Building graph from selection", "node_count", len(nodes))
	if logger.ShouldLogQueries(b.verbosity) {
		b.logger.Debugw("Selection nodes", "nodes", nodes)
	}

	triples, err := b.client.Neighborhood(ctx, nodes)
	if err != nil {
		b.logger.Errorw("Neighborhood query failed", "error", err)
		g := emptyGraph(trimmed, "Query failed: "+err.Error())
		g.Meta.Config["error"] = err.Error()
		return g, err
	}

	g := b.buildFromTriples(triples, trimmed)
	b.logger.Infow("Graph built",
		"nodes", len(g.Nodes),
		"links", len(g.Links),
	)
	return g, nil
}

// parseSelection splits the selection text into node names, honoring
// quotes, and validates each as a safe identifier.
func parseSelection(selection string) ([]string, error) {
	var names []string
	for _, line := range strings.Split(selection, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		args, err := shellquote.Split(line)
		if err != nil {
			// Unbalanced quotes; fall back to a simple split.
			args = strings.Fields(line)
		}
		names = append(names, args...)
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !sparql.ValidIdentifier(n) {
			return nil, errors.Wrapf(errors.ErrInvalidQuery, "invalid node name %q", n)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func emptyGraph(selection, description string) *Graph {
	return &Graph{
		Nodes: []Node{},
		Links: []Link{},
		Meta: Meta{
			GeneratedAt: time.Now(),
			Stats:       Stats{},
			Config: map[string]string{
				"selection":   selection,
				"description": description,
			},
		},
	}
}
