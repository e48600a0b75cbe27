package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plantworks/leantwin/catalog"
	"github.com/plantworks/leantwin/sparql"
)

const testPrefix = "PREFIX ex: <http://example.org/pumps#>"

func testBuilder(t *testing.T, bindings string) *Builder {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		fmt.Fprintf(w, `{"results":{"bindings":[%s]}}`, bindings)
	}))
	t.Cleanup(srv.Close)

	client, err := sparql.NewClient(srv.URL, testPrefix)
	require.NoError(t, err)

	cat := catalog.New()
	gen := cat.Begin()
	cat.Commit(gen, catalog.KindEquipment, []string{"Pump-101"})
	cat.Commit(gen, catalog.KindAsset, []string{"Tank-1"})

	return NewBuilder(client, cat, 0, zap.NewNop().Sugar())
}

func TestBuildFromSelectionEmpty(t *testing.T) {
	b := testBuilder(t, "")

	g, err := b.BuildFromSelection(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Links)
	assert.Contains(t, g.Meta.Config["description"], "Select nodes")
}

func TestBuildFromSelectionInvalidName(t *testing.T) {
	b := testBuilder(t, "")

	g, err := b.BuildFromSelection(context.Background(), "Pump-101 } ?s ?p ?o")
	require.Error(t, err)
	assert.Empty(t, g.Nodes)
	assert.NotEmpty(t, g.Meta.Config["error"])
}

func TestBuildFoldsTriples(t *testing.T) {
	b := testBuilder(t, `
		{"subject":{"type":"uri","value":"http://example.org/pumps#Pump-101"},
		 "predicate":{"type":"uri","value":"http://example.org/pumps#feeds"},
		 "object":{"type":"uri","value":"http://example.org/pumps#Tank-1"}},
		{"subject":{"type":"uri","value":"http://example.org/pumps#Pump-101"},
		 "predicate":{"type":"uri","value":"http://example.org/pumps#feeds"},
		 "object":{"type":"uri","value":"http://example.org/pumps#Tank-1"}},
		{"subject":{"type":"uri","value":"http://example.org/pumps#Pump-101"},
		 "predicate":{"type":"uri","value":"http://example.org/pumps#manufacturer"},
		 "object":{"type":"literal","value":"ACME"}},
		{"subject":{"type":"uri","value":"http://example.org/pumps#Pump-101"},
		 "predicate":{"type":"uri","value":"http://example.org/pumps#flowRate"},
		 "object":{"type":"bnode","value":"b0"}}`)

	g, err := b.BuildFromSelection(context.Background(), "Pump-101")
	require.NoError(t, err)

	// Pump-101, Tank-1 and the blank value node; the literal folds
	// into metadata instead of creating a node.
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Links, 2)

	byID := make(map[string]Node)
	for _, n := range g.Nodes {
		byID[n.ID] = n
	}

	pump := byID["pump-101"]
	assert.Equal(t, "equipment", pump.Type)
	assert.Equal(t, "Pump-101", pump.Label)
	assert.Equal(t, "ACME", pump.Metadata["manufacturer"])

	assert.Equal(t, "asset", byID["tank-1"].Type)
	assert.Equal(t, "value", byID["b0"].Type)

	var feeds Link
	for _, l := range g.Links {
		if l.Type == "feeds" {
			feeds = l
		}
	}
	assert.Equal(t, "pump-101", feeds.Source)
	assert.Equal(t, "tank-1", feeds.Target)
	assert.Equal(t, defaultLinkWeight+linkWeightIncrement, feeds.Weight,
		"duplicate relationship accumulates weight")

	assert.Equal(t, 3, g.Meta.Stats.TotalNodes)
	assert.Equal(t, 2, g.Meta.Stats.TotalEdges)
	require.NotEmpty(t, g.Meta.NodeTypes)
	assert.NotEmpty(t, g.Meta.Predicates)
}

func TestNodeTypeInfoCountsAndColors(t *testing.T) {
	nodes := []Node{
		{ID: "a", Type: "equipment"},
		{ID: "b", Type: "equipment"},
		{ID: "c", Type: "untyped"},
	}
	infos := collectNodeTypeInfo(nodes)
	require.Len(t, infos, 2)
	assert.Equal(t, "equipment", infos[0].Type)
	assert.Equal(t, 2, infos[0].Count)
	assert.Equal(t, "Equipment", infos[0].Label)
	assert.NotEmpty(t, infos[0].Color)
}

func TestParseSelection(t *testing.T) {
	names, err := parseSelection("Pump-101 Valve-7\nTank-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pump-101", "Valve-7", "Tank-1"}, names)

	// Duplicates collapse.
	names, err = parseSelection("Pump-101 Pump-101")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pump-101"}, names)

	_, err = parseSelection(`Pump-101 "bad name"`)
	assert.Error(t, err)
}

func TestNormalizeNodeID(t *testing.T) {
	assert.Equal(t, "pump_101_a", normalizeNodeID("Pump 101/A"))
	assert.Equal(t, "pump-101", normalizeNodeID("Pump-101"))
}
