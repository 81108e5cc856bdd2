// Package index notifies the external index service about repository
// changes. Notifications are fire-and-forget: they run detached from the
// request and failures are logged, never surfaced to the caller.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Notifier tells the index service what changed.
type Notifier interface {
	// NotifyChange signals that the repository's content changed.
	NotifyChange(ctx context.Context, repositoryID string) error

	// DeleteAssets asks the index to drop the assets identified by the
	// parallel source id type and value lists.
	DeleteAssets(ctx context.Context, repositoryID string, sourceIDTypes, sourceIDs []string) error
}

// HTTP is a Notifier talking to the index service's REST API.
type HTTP struct {
	baseURL string
	token   string
	client  *http.Client
}

// Option configures an HTTP notifier.
type Option func(*HTTP)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(h *HTTP) { h.token = token }
}

// WithClient overrides the default HTTP client.
func WithClient(c *http.Client) Option {
	return func(h *HTTP) { h.client = c }
}

// NewHTTP creates a notifier for the index service at baseURL.
func NewHTTP(baseURL string, opts ...Option) *HTTP {
	h := &HTTP{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

var _ Notifier = (*HTTP)(nil)

func (h *HTTP) NotifyChange(ctx context.Context, repositoryID string) error {
	body, err := json.Marshal(map[string]string{"id": repositoryID})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/notifications", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return h.do(req)
}

func (h *HTTP) DeleteAssets(ctx context.Context, repositoryID string, sourceIDTypes, sourceIDs []string) error {
	endpoint := h.baseURL + "/entity-types/asset/id-types/" + url.PathEscape(strings.Join(sourceIDTypes, ",")) +
		"/ids/" + url.PathEscape(strings.Join(sourceIDs, ",")) +
		"/repositories/" + url.PathEscape(repositoryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return h.do(req)
}

func (h *HTTP) do(req *http.Request) error {
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("index: %s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	return nil
}

// Detach runs fn in the background with its own deadline, recovering from
// panics and logging failures. Use it for notifications that must not
// block or fail the request that triggered them.
func Detach(logger *slog.Logger, name string, fn func(context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("detached call panicked", "call", name, "panic", fmt.Sprint(r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := fn(ctx); err != nil {
			logger.Error("detached call failed", "call", name, "error", err)
		}
	}()
}

// Nop is a Notifier that does nothing, for deployments without an index
// service and for tests.
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) NotifyChange(context.Context, string) error                    { return nil }
func (Nop) DeleteAssets(context.Context, string, []string, []string) error { return nil }
