package sparql

import (
	"regexp"
	"strings"

	"github.com/plantworks/leantwin/errors"
)

// Prefix is a parsed SPARQL prefix declaration such as
// "PREFIX ex: <http://example.org/pumps#>". Queries interpolate the
// label and base, so both are validated at parse time.
type Prefix struct {
	// Label is the short name, e.g. "ex".
	Label string
	// Base is the IRI between the angle brackets.
	Base string
	// Raw is the original declaration, emitted verbatim at the top of
	// generated queries.
	Raw string
}

var prefixRe = regexp.MustCompile(`^PREFIX\s+([A-Za-z][A-Za-z0-9_-]*):\s*<([^<>"{}|^\x60\\ ]+)>$`)

// ParsePrefix validates and parses a prefix declaration. Anything that
// does not match the single-declaration PREFIX form is rejected with
// ErrInvalidQuery.
func ParsePrefix(s string) (Prefix, error) {
	s = strings.TrimSpace(s)
	m := prefixRe.FindStringSubmatch(s)
	if m == nil {
		return Prefix{}, errors.Wrapf(errors.ErrInvalidQuery,
			"malformed prefix %q (expected e.g. PREFIX ex: <http://example.org#>)", s)
	}
	return Prefix{Label: m[1], Base: m[2], Raw: s}, nil
}

var identRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// ValidIdentifier reports whether name is safe to interpolate into a
// query as a prefixed local name. Plant tags like "Pump-101" and
// "P_12.1" pass; anything with whitespace, quotes or SPARQL syntax
// does not.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}

func checkIdentifiers(names ...string) error {
	for _, n := range names {
		if !ValidIdentifier(n) {
			return errors.Wrapf(errors.ErrInvalidQuery, "unsafe identifier %q", n)
		}
	}
	return nil
}

// LocalName strips an IRI down to the fragment after the last '#',
// then after the last '/'. "http://example.org/pumps#Pump-101"
// becomes "Pump-101".
func LocalName(iri string) string {
	if i := strings.LastIndex(iri, "#"); i >= 0 {
		iri = iri[i+1:]
	}
	if i := strings.LastIndex(iri, "/"); i >= 0 {
		iri = iri[i+1:]
	}
	return iri
}
