package sparql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrefix(t *testing.T) {
	p, err := ParsePrefix("PREFIX ex: <http://example.org/pumps#>")
	require.NoError(t, err)
	assert.Equal(t, "ex", p.Label)
	assert.Equal(t, "http://example.org/pumps#", p.Base)

	_, err = ParsePrefix("ex: <http://example.org#>")
	assert.Error(t, err)

	_, err = ParsePrefix("PREFIX ex: http://example.org#")
	assert.Error(t, err)

	_, err = ParsePrefix("PREFIX ex: <http://example.org#> . DROP ALL")
	assert.Error(t, err)
}

func TestValidIdentifier(t *testing.T) {
	for _, ok := range []string{"Pump-101", "P_12.1", "Valve7", "sub_equipment"} {
		assert.True(t, ValidIdentifier(ok), ok)
	}
	for _, bad := range []string{"", "Pump 101", "a} ?s ?p ?o {", `x"y`, "-lead", "tag\n"} {
		assert.False(t, ValidIdentifier(bad), bad)
	}
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "Pump-101", LocalName("http://example.org/pumps#Pump-101"))
	assert.Equal(t, "Pump-101", LocalName("http://example.org/pumps/Pump-101"))
	assert.Equal(t, "Pump-101", LocalName("Pump-101"))
	assert.Equal(t, "", LocalName("http://example.org/pumps#"))
}

func TestQueryBuilders(t *testing.T) {
	p, err := ParsePrefix("PREFIX ex: <http://example.org#>")
	require.NoError(t, err)

	q := AllResourcesQuery(p)
	assert.Contains(t, q, `STRSTARTS(STR(?resource), "http://example.org#")`)
	assert.Contains(t, q, "ISIRI(?resource)")

	q = InstancesOfQuery(p, "Equipment")
	assert.Contains(t, q, "?node a ex:Equipment .")
	assert.Contains(t, q, "ORDER BY ?node")

	q = NodePropertiesQuery(p, "Pump-101")
	assert.Contains(t, q, "ex:Pump-101 ?p ?o .")
	assert.Contains(t, q, "FILTER (isLiteral(?o) || isBlank(?o))")

	q = ValueUnitQuery(p, "Pump-101", "flowRate")
	assert.Contains(t, q, "ex:Pump-101 ex:flowRate ?bnode .")
	assert.Contains(t, q, "?bnode ex:hasValue ?value .")
	assert.Contains(t, q, "OPTIONAL { ?bnode ex:hasUnit ?unit . }")

	q = NeighborhoodQuery(p, []string{"Pump-101", "Valve-7"})
	assert.Contains(t, q, "sameTerm(?subject, ex:Pump-101) || sameTerm(?object, ex:Pump-101)")
	assert.Contains(t, q, "sameTerm(?subject, ex:Valve-7) || sameTerm(?object, ex:Valve-7)")
}
