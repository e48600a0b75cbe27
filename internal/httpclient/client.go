// Package httpclient provides the HTTP client used to talk to SPARQL
// endpoints. It bounds every request with a timeout, restricts URL
// schemes to http/https, and caps redirect chains. Endpoints on private
// networks are allowed by default because GraphDB and Fuseki almost
// always run on the LAN; StrictPublicOnly exists for deployments that
// proxy to remote triplestores.
package httpclient

import (
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/plantworks/leantwin/errors"
)

const defaultMaxRedirects = 5

// Client wraps http.Client with URL validation suited to endpoint
// traffic. Use New for LAN endpoints and NewStrict when only public
// hosts should be reachable.
type Client struct {
	*http.Client

	allowedSchemes  []string
	maxRedirects    int
	blockPrivateIPs bool
}

// Options customizes endpoint validation.
type Options struct {
	// Timeout bounds the whole request including body read.
	// Zero means 30 seconds.
	Timeout time.Duration

	// MaxRedirects caps redirect chains. Zero means 5.
	MaxRedirects int

	// StrictPublicOnly rejects localhost and private-range hosts.
	// Off by default: triplestores normally live on the LAN.
	StrictPublicOnly bool
}

// New returns a client with the given options applied.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	maxRedirects := opts.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = defaultMaxRedirects
	}

	c := &Client{
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		allowedSchemes:  []string{"http", "https"},
		maxRedirects:    maxRedirects,
		blockPrivateIPs: opts.StrictPublicOnly,
	}

	c.Client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= c.maxRedirects {
			return errors.Newf("stopped after %d redirects", c.maxRedirects)
		}
		if err := c.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	return c
}

// validateURL checks scheme, hostname presence, and (in strict mode)
// private-range hosts before a request goes out.
func (c *Client) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range c.allowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
	}

	if u.User != nil {
		return errors.New("URL must not embed credentials")
	}

	hostname := u.Hostname()
	if hostname == "" {
		return errors.New("URL missing hostname")
	}

	if c.blockPrivateIPs {
		if isLocalhost(hostname) {
			return errors.Newf("localhost endpoint %q rejected in strict mode", hostname)
		}
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return errors.Newf("private endpoint address %s rejected in strict mode", hostname)
		}
	}

	return nil
}

// ValidateURL parses and validates an endpoint URL string. Used by the
// config layer to reject bad repository URLs before they are saved.
func (c *Client) ValidateURL(urlStr string) (*url.URL, error) {
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid endpoint URL")
	}
	if err := c.validateURL(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Get issues a validated GET request.
func (c *Client) Get(urlStr string) (*http.Response, error) {
	if _, err := c.ValidateURL(urlStr); err != nil {
		return nil, err
	}
	return c.Client.Get(urlStr)
}

// Do executes req after validating its URL.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.validateURL(req.URL); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

func isPrivateIP(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4.IsPrivate() || ip4.IsLoopback() || ip4.IsLinkLocalUnicast() ||
			ip4.IsMulticast() || ip4.IsUnspecified()
	}
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() ||
		ip.IsMulticast() || ip.IsUnspecified()
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "localhost.localdomain" ||
		strings.HasSuffix(hostname, ".localhost")
}
