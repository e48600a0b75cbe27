package sparql

import (
	"fmt"
	"strings"
)

// Query builders. Every builder returns the full query text including
// the prefix declaration where one is needed, ready for Select.

// AllResourcesQuery lists every IRI under the prefix base that appears
// as subject or object anywhere in the repository.
func AllResourcesQuery(p Prefix) string {
	return fmt.Sprintf(`SELECT DISTINCT ?resource WHERE { { ?resource ?p ?o . } UNION { ?s ?p ?resource . } FILTER(ISIRI(?resource) && STRSTARTS(STR(?resource), %q)) } ORDER BY ?resource`, p.Base)
}

// InstancesOfQuery lists instances of a class in the prefix namespace,
// e.g. class "Equipment" for ?node a ex:Equipment.
func InstancesOfQuery(p Prefix, class string) string {
	return fmt.Sprintf(`%s
SELECT DISTINCT ?node WHERE {
    ?node a %s:%s .
} ORDER BY ?node`, p.Raw, p.Label, class)
}

// NodePropertiesQuery lists the direct properties of a node whose
// objects are literals or blank nodes. Structural predicates are
// filtered afterwards, see filteredProperty.
func NodePropertiesQuery(p Prefix, node string) string {
	return fmt.Sprintf(`%s
SELECT DISTINCT ?p WHERE {
    %s:%s ?p ?o .
    FILTER (isLiteral(?o) || isBlank(?o))
}`, p.Raw, p.Label, node)
}

// ValueUnitQuery reads the value/unit pair behind a property whose
// object is a blank node carrying hasValue and, optionally, hasUnit.
func ValueUnitQuery(p Prefix, node, prop string) string {
	return fmt.Sprintf(`%s SELECT ?value ?unit WHERE { %[2]s:%[3]s %[2]s:%[4]s ?bnode . ?bnode %[2]s:hasValue ?value . OPTIONAL { ?bnode %[2]s:hasUnit ?unit . } }`,
		p.Raw, p.Label, node, prop)
}

// NeighborhoodQuery fetches every triple touching any of the given
// nodes, as subject or object.
func NeighborhoodQuery(p Prefix, nodes []string) string {
	conds := make([]string, 0, len(nodes))
	for _, n := range nodes {
		conds = append(conds, fmt.Sprintf("sameTerm(?subject, %[1]s:%[2]s) || sameTerm(?object, %[1]s:%[2]s)", p.Label, n))
	}
	return fmt.Sprintf("%s\nSELECT ?subject ?predicate ?object WHERE { ?subject ?predicate ?object . FILTER(%s) }",
		p.Raw, strings.Join(conds, " || "))
}

// filteredProperty reports whether a predicate local name is plumbing
// rather than an engineering property.
func filteredProperty(local string) bool {
	switch local {
	case "hasValue", "hasUnit", "a", "type":
		return true
	}
	return false
}
