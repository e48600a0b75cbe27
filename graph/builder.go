// Package graph turns SPARQL neighborhood results into the node/link
// structure the visualization front end renders. Selections come in
// as free text (node names, quoted where needed), get validated, and
// the triples touching those nodes are folded into a deduplicated
// graph with per-type display metadata.
package graph

import (
	"go.uber.org/zap"

	"github.com/plantworks/leantwin/catalog"
	"github.com/plantworks/leantwin/sparql"
)

// Builder builds graphs from repository neighborhoods. Node types are
// resolved against the catalog's categorized lists.
type Builder struct {
	client    *sparql.Client
	catalog   *catalog.Catalog
	verbosity int
	logger    *zap.SugaredLogger
}

// NewBuilder creates a graph builder bound to one repository client.
func NewBuilder(client *sparql.Client, cat *catalog.Catalog, verbosity int, logger *zap.SugaredLogger) *Builder {
	return &Builder{
		client:    client,
		catalog:   cat,
		verbosity: verbosity,
		logger:    logger.Named("graph.builder"),
	}
}
