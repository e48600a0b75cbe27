package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/plantworks/leantwin/catalog"
	"github.com/plantworks/leantwin/sparql"
)

// buildFromTriples folds neighborhood triples into a deduplicated
// graph. IRI objects become nodes and labeled links; literal objects
// become metadata on their subject; blank-node objects become "value"
// nodes so hasValue/hasUnit structures stay visible. Repeated
// relationships accumulate link weight.
func (b *Builder) buildFromTriples(triples []sparql.Triple, selection string) *Graph {
	g := &Graph{
		Nodes: []Node{},
		Links: []Link{},
		Meta: Meta{
			GeneratedAt: time.Now(),
			Stats:       Stats{},
			Config: map[string]string{
				"selection":   selection,
				"description": fmt.Sprintf("Neighborhood of: %s", selection),
			},
		},
	}

	nodeMap := make(map[string]*Node)
	linkMap := make(map[string]*Link)

	ensureNode := func(term sparql.Term) string {
		label := sparql.LocalName(term.Value)
		if term.Type == "bnode" {
			label = term.Value
		}
		id := normalizeNodeID(label)
		if _, exists := nodeMap[id]; !exists {
			nodeMap[id] = &Node{
				ID:      id,
				Type:    b.nodeType(term, label),
				Label:   label,
				Visible: true,
				Metadata: map[string]interface{}{
					"original_id": term.Value,
				},
			}
		}
		return id
	}

	for _, t := range triples {
		subjectID := ensureNode(t.Subject)
		predicate := sparql.LocalName(t.Predicate.Value)

		if t.Object.Type == "literal" {
			// Literal values hang off the subject as metadata rather
			// than creating leaf nodes.
			nodeMap[subjectID].Metadata[predicate] = t.Object.Value
			continue
		}

		objectID := ensureNode(t.Object)
		linkID := fmt.Sprintf("%s_%s_%s", subjectID, predicate, objectID)
		if l, exists := linkMap[linkID]; exists {
			l.Weight += linkWeightIncrement
			continue
		}
		linkMap[linkID] = &Link{
			Source: subjectID,
			Target: objectID,
			Type:   predicate,
			Weight: defaultLinkWeight,
			Label:  predicate,
		}
	}

	// Deterministic ordering, sorted by ID.
	nodeIDs := make([]string, 0, len(nodeMap))
	for id := range nodeMap {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)
	for _, id := range nodeIDs {
		g.Nodes = append(g.Nodes, *nodeMap[id])
	}

	linkIDs := make([]string, 0, len(linkMap))
	for id := range linkMap {
		linkIDs = append(linkIDs, id)
	}
	sort.Strings(linkIDs)
	for _, id := range linkIDs {
		g.Links = append(g.Links, *linkMap[id])
	}

	g.Meta.Stats.TotalNodes = len(g.Nodes)
	g.Meta.Stats.TotalEdges = len(g.Links)
	g.Meta.NodeTypes = collectNodeTypeInfo(g.Nodes)
	g.Meta.Predicates = collectPredicateInfo(g.Links)

	return g
}

// nodeType resolves a term's display type from the catalog's
// categorized lists. Blank nodes are value containers; anything not
// categorized is untyped.
func (b *Builder) nodeType(term sparql.Term, label string) string {
	if term.Type == "bnode" {
		return typeValue
	}
	for _, kind := range []catalog.Kind{catalog.KindEquipment, catalog.KindSubEquipment, catalog.KindAsset} {
		for _, name := range b.catalog.Get(kind) {
			if name == label {
				switch kind {
				case catalog.KindEquipment:
					return typeEquipment
				case catalog.KindSubEquipment:
					return typeSubEquipment
				case catalog.KindAsset:
					return typeAsset
				}
			}
		}
	}
	return typeUntyped
}

// collectNodeTypeInfo counts nodes per type and attaches the display
// palette. Most common types first, ties broken by name for stable
// output.
func collectNodeTypeInfo(nodes []Node) []NodeTypeInfo {
	counts := make(map[string]int)
	for _, n := range nodes {
		counts[n.Type]++
	}

	infos := make([]NodeTypeInfo, 0, len(counts))
	for typ, count := range counts {
		label := typeLabels[typ]
		if label == "" {
			label = typ
		}
		infos = append(infos, NodeTypeInfo{
			Type:  typ,
			Label: label,
			Color: typeColors[typ],
			Count: count,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Count != infos[j].Count {
			return infos[i].Count > infos[j].Count
		}
		return infos[i].Type < infos[j].Type
	})
	return infos
}

func collectPredicateInfo(links []Link) []PredicateInfo {
	counts := make(map[string]int)
	for _, l := range links {
		counts[l.Type]++
	}

	infos := make([]PredicateInfo, 0, len(counts))
	for typ, count := range counts {
		infos = append(infos, PredicateInfo{Type: typ, Count: count})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Count != infos[j].Count {
			return infos[i].Count > infos[j].Count
		}
		return infos[i].Type < infos[j].Type
	})
	return infos
}
