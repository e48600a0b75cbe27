package server

import (
	"context"
	"net/http"

	"github.com/plantworks/leantwin/catalog"
	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/sparql"
	"github.com/plantworks/leantwin/tracker"
)

// catalogClasses maps catalog kinds to the repository classes their
// instances are queried by. KindAll is fetched from the prefix base
// instead.
var catalogClasses = map[catalog.Kind]string{
	catalog.KindEquipment:    "Equipment",
	catalog.KindSubEquipment: "SubEquipment",
	catalog.KindAsset:        "Asset",
}

// HandleNodesFetch starts a repository fetch: all resources under the
// prefix plus the categorized class instances. Stale generations are
// discarded by the catalog, so overlapping fetches are harmless.
func (s *TwinServer) HandleNodesFetch(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	client, err := s.session.Client()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	gen := s.session.Catalog.Begin()
	h, err := s.tracker.Submit("catalog fetch", func(ctx context.Context) (any, error) {
		return s.fetchCatalog(ctx, client, gen)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.tracker.Track(h, func(res tracker.Result) {
		s.broadcastTaskDone(res)
		if res.Err == nil {
			s.broadcastCatalogUpdate()
		}
	})

	writeJSON(w, http.StatusAccepted, TaskAccepted{
		Handle: string(h),
		Name:   "catalog fetch",
	})
}

// fetchCatalog pulls every node list and commits each under the fetch
// generation. A commit refused as stale aborts the rest of the fetch.
func (s *TwinServer) fetchCatalog(ctx context.Context, client *sparql.Client, gen catalog.Generation) (map[string]int, error) {
	all, err := client.FetchResources(ctx)
	if err != nil {
		return nil, err
	}
	if !s.session.Catalog.Commit(gen, catalog.KindAll, all) {
		s.logger.Debugw("Catalog fetch superseded, discarding results")
		return nil, nil
	}

	for kind, class := range catalogClasses {
		names, err := client.InstancesOf(ctx, class)
		if err != nil {
			return nil, err
		}
		if !s.session.Catalog.Commit(gen, kind, names) {
			s.logger.Debugw("Catalog fetch superseded, discarding results",
				"kind", kind)
			return nil, nil
		}
	}

	counts := make(map[string]int)
	for kind, n := range s.session.Catalog.Counts() {
		counts[string(kind)] = n
	}
	s.logger.Infow("Catalog fetch complete", "counts", counts)
	return counts, nil
}

// HandleNodes returns a cached catalog list: GET /api/nodes?kind=all.
func (s *TwinServer) HandleNodes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	kind := catalog.Kind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = catalog.KindAll
	}

	valid := false
	for _, k := range catalog.Kinds() {
		if k == kind {
			valid = true
			break
		}
	}
	if !valid {
		writeError(w, http.StatusBadRequest, "unknown catalog kind "+string(kind))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"kind":  kind,
		"nodes": s.session.Catalog.Get(kind),
	})
}

// HandleNodeProperties serves GET /api/nodes/{node}/properties (the
// filtered property list) and GET /api/nodes/{node}/properties/{prop}
// (the property's value and unit, the paste preview).
func (s *TwinServer) HandleNodeProperties(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	parts := extractPathParts(r.URL.Path, "/api/nodes/")
	if len(parts) < 2 || parts[1] != "properties" {
		writeError(w, http.StatusNotFound, "unknown node resource")
		return
	}
	node := parts[0]

	client, err := s.session.Client()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	switch len(parts) {
	case 2:
		res, err := s.awaitResult("node properties", func(ctx context.Context) (any, error) {
			return client.NodeProperties(ctx, node)
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if res.Err != nil {
			writeDomainError(w, res.Err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"node":       node,
			"properties": res.Value,
		})

	case 3:
		prop := parts[2]
		res, err := s.awaitResult("property value", func(ctx context.Context) (any, error) {
			value, unit, found, err := client.PropertyValue(ctx, node, prop)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, errors.NewNotFoundError("property %q on node %q", prop, node)
			}
			return map[string]string{"value": value, "unit": unit}, nil
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if res.Err != nil {
			writeDomainError(w, res.Err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"node":     node,
			"property": prop,
			"result":   res.Value,
		})

	default:
		writeError(w, http.StatusNotFound, "unknown node resource")
	}
}
