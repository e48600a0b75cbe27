// Package sparql talks to a SPARQL 1.1 endpoint over the standard
// protocol and exposes the handful of query shapes leantwin needs:
// resource discovery, class categorization, property listing,
// value/unit preview, and neighborhood extraction for graph building.
//
// Requests are rate limited so a misbehaving caller cannot hammer the
// triplestore, and every blocking call takes a context.
package sparql

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/plantworks/leantwin/errors"
	"github.com/plantworks/leantwin/internal/httpclient"
	"github.com/plantworks/leantwin/logger"
)

// Term is one RDF term in a SPARQL JSON results binding.
type Term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// Binding maps variable names to terms for one result row.
type Binding map[string]Term

// Triple is one subject/predicate/object row from a neighborhood query.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

type resultsDoc struct {
	Results struct {
		Bindings []Binding `json:"bindings"`
	} `json:"results"`
}

// Client executes queries against one repository endpoint.
type Client struct {
	endpoint string
	prefix   Prefix
	http     *httpclient.Client
	limiter  *rate.Limiter
}

// NewClient builds a client for the given repository URL and prefix
// declaration. The endpoint URL is validated up front so a bad
// repository setting fails fast instead of on the first query.
func NewClient(endpoint, prefixDecl string) (*Client, error) {
	hc := httpclient.New(httpclient.Options{Timeout: 30 * time.Second})
	if _, err := hc.ValidateURL(endpoint); err != nil {
		return nil, errors.Wrap(err, "repository URL")
	}
	p, err := ParsePrefix(prefixDecl)
	if err != nil {
		return nil, err
	}
	return &Client{
		endpoint: endpoint,
		prefix:   p,
		http:     hc,
		// 5 queries/second sustained, bursts of 10. Categorization
		// issues three queries back to back and must not trip this.
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}, nil
}

// Endpoint returns the repository URL this client queries.
func (c *Client) Endpoint() string { return c.endpoint }

// Prefix returns the parsed prefix declaration.
func (c *Client) Prefix() Prefix { return c.prefix }

// Select runs a SELECT query and returns its bindings. Endpoint
// failures wrap ErrEndpointUnreachable so callers can distinguish a
// dead triplestore from a bad query.
func (c *Client) Select(ctx context.Context, query string) ([]Binding, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit wait")
	}

	logger.Debugw("executing SPARQL query", "endpoint", c.endpoint, "query", query)

	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build query request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrEndpointUnreachable, "query %s: %v", c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read query response")
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusBadRequest {
			return nil, errors.Wrapf(errors.ErrInvalidQuery, "endpoint rejected query: %s",
				strings.TrimSpace(string(body)))
		}
		return nil, errors.Wrapf(errors.ErrEndpointUnreachable, "endpoint returned %s", resp.Status)
	}

	var doc resultsDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse query results")
	}
	return doc.Results.Bindings, nil
}

// FetchResources lists the local names of every resource under the
// prefix base, sorted and deduplicated.
func (c *Client) FetchResources(ctx context.Context) ([]string, error) {
	bindings, err := c.Select(ctx, AllResourcesQuery(c.prefix))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(bindings))
	names := make([]string, 0, len(bindings))
	for _, b := range bindings {
		name := LocalName(b["resource"].Value)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// InstancesOf lists the local names of instances of a class, e.g.
// "Equipment" or "SubEquipment".
func (c *Client) InstancesOf(ctx context.Context, class string) ([]string, error) {
	if err := checkIdentifiers(class); err != nil {
		return nil, err
	}
	bindings, err := c.Select(ctx, InstancesOfQuery(c.prefix, class))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(bindings))
	for _, b := range bindings {
		names = append(names, LocalName(b["node"].Value))
	}
	return names, nil
}

// NodeProperties lists the engineering properties of a node: direct
// predicates whose objects are literals or blank nodes, minus the
// hasValue/hasUnit/type plumbing. Sorted, deduplicated local names.
func (c *Client) NodeProperties(ctx context.Context, node string) ([]string, error) {
	if err := checkIdentifiers(node); err != nil {
		return nil, err
	}
	bindings, err := c.Select(ctx, NodePropertiesQuery(c.prefix, node))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, b := range bindings {
		local := LocalName(b["p"].Value)
		if filteredProperty(local) {
			continue
		}
		seen[local] = struct{}{}
	}
	props := make([]string, 0, len(seen))
	for p := range seen {
		props = append(props, p)
	}
	sort.Strings(props)
	return props, nil
}

// PropertyValue reads the live value and unit behind node's property.
// found is false when the property has no blank-node value; unit may
// be empty even when found.
func (c *Client) PropertyValue(ctx context.Context, node, prop string) (value, unit string, found bool, err error) {
	if err := checkIdentifiers(node, prop); err != nil {
		return "", "", false, err
	}
	bindings, err := c.Select(ctx, ValueUnitQuery(c.prefix, node, prop))
	if err != nil {
		return "", "", false, err
	}
	if len(bindings) == 0 {
		return "", "", false, nil
	}
	b := bindings[0]
	value = b["value"].Value
	if u, ok := b["unit"]; ok {
		unit = u.Value
	}
	return value, unit, true, nil
}

// Neighborhood fetches every triple touching any of the given nodes.
func (c *Client) Neighborhood(ctx context.Context, nodes []string) ([]Triple, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	if err := checkIdentifiers(nodes...); err != nil {
		return nil, err
	}
	bindings, err := c.Select(ctx, NeighborhoodQuery(c.prefix, nodes))
	if err != nil {
		return nil, err
	}
	triples := make([]Triple, 0, len(bindings))
	for _, b := range bindings {
		triples = append(triples, Triple{
			Subject:   b["subject"],
			Predicate: b["predicate"],
			Object:    b["object"],
		})
	}
	return triples, nil
}
