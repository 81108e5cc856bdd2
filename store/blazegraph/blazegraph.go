// Package blazegraph implements the store interfaces against a Blazegraph
// server, one namespace per repository. Namespaces are provisioned lazily:
// a query against a missing namespace creates it, loads the configured
// fixture payloads and retries once.
package blazegraph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clearrights/repository/errs"
	"github.com/clearrights/repository/store"
)

// Fixture is an RDF payload loaded into every freshly provisioned
// namespace, for example the ontology and the initial common assertions.
type Fixture struct {
	Name        string
	ContentType string
	Data        []byte
}

// Client talks to one Blazegraph server.
type Client struct {
	baseURL  string
	http     *http.Client
	logger   *slog.Logger
	metrics  *metrics
	fixtures []Fixture
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithFixtures sets the payloads loaded into new namespaces, in order.
func WithFixtures(fixtures ...Fixture) Option {
	return func(c *Client) { c.fixtures = fixtures }
}

// New creates a client for the server at baseURL, for example
// "http://localhost:9999/bigdata".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  slog.Default(),
		metrics: sharedMetrics,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ store.Opener = (*Client)(nil)

// Open returns a handle on the repository's namespace. No I/O happens
// until the handle is used.
func (c *Client) Open(repositoryID string) store.Repository {
	return &namespace{client: c, id: repositoryID}
}

func (c *Client) namespaceURL(id string) string {
	return c.baseURL + "/namespace/" + url.PathEscape(id) + "/sparql"
}

// namespace is a store.Repository bound to one Blazegraph namespace.
type namespace struct {
	client *Client
	id     string
}

var _ store.Repository = (*namespace)(nil)

func (n *namespace) ID() string { return n.id }

func (n *namespace) Query(ctx context.Context, query, accept string) ([]byte, error) {
	body := url.Values{"query": {query}}.Encode()
	return n.do(ctx, "query", body, "application/x-www-form-urlencoded", accept)
}

func (n *namespace) Update(ctx context.Context, update string) error {
	body := url.Values{"update": {update}}.Encode()
	_, err := n.do(ctx, "update", body, "application/x-www-form-urlencoded", "")
	return err
}

func (n *namespace) Store(ctx context.Context, payload []byte, contentType string) error {
	_, err := n.do(ctx, "store", string(payload), contentType, "")
	return err
}

// do posts to the namespace endpoint, provisioning the namespace and
// retrying once if the server reports it missing.
func (n *namespace) do(ctx context.Context, op, body, contentType, accept string) ([]byte, error) {
	out, status, err := n.client.post(ctx, op, n.client.namespaceURL(n.id), body, contentType, accept)
	if status == http.StatusNotFound {
		if perr := n.client.provision(ctx, n.id); perr != nil {
			return nil, perr
		}
		out, status, err = n.client.post(ctx, op, n.client.namespaceURL(n.id), body, contentType, accept)
	}
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, errs.Repositoryf("%s failed with status %d: %s", op, status, truncate(out))
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, op, endpoint, body, contentType, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, 0, errs.Repositoryf("build request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, "error", time.Since(start))
		return nil, 0, errs.Repositoryf("%s: %v", op, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	c.metrics.observe(op, fmt.Sprint(resp.StatusCode), time.Since(start))
	if err != nil {
		return nil, resp.StatusCode, errs.Repositoryf("%s: read response: %v", op, err)
	}
	return out, resp.StatusCode, nil
}

// provision creates the namespace and loads the fixture payloads. A
// conflict means another writer won the race; that is fine.
func (c *Client) provision(ctx context.Context, id string) error {
	c.logger.Info("provisioning namespace", "namespace", id)

	props := "com.bigdata.rdf.sail.namespace=" + id + "\n" +
		"com.bigdata.rdf.store.AbstractTripleStore.quads=false\n" +
		"com.bigdata.rdf.store.AbstractTripleStore.textIndex=true\n"
	out, status, err := c.post(ctx, "provision", c.baseURL+"/namespace", props, "text/plain", "")
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusConflict {
		return errs.Repositoryf("provision namespace %s: status %d: %s", id, status, truncate(out))
	}

	for _, f := range c.fixtures {
		out, status, err := c.post(ctx, "fixture", c.namespaceURL(id), string(f.Data), f.ContentType, "")
		if err != nil {
			return err
		}
		if status < 200 || status > 299 {
			return errs.Repositoryf("load fixture %s into %s: status %d: %s", f.Name, id, status, truncate(out))
		}
		c.logger.Debug("loaded fixture", "namespace", id, "fixture", f.Name)
	}
	return nil
}

func truncate(b []byte) string {
	const max = 512
	s := string(bytes.TrimSpace(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
