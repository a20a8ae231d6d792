// Package httpfetch is the HTTP implementation of the core's fetch
// contracts: a page client that translates a cursor and limit into one GET
// against the list endpoint, and a generic call helper for mutation
// endpoints. Every failure (connection error, timeout, non-2xx status,
// undecodable body) surfaces as a *gridcache.TransportError.
//
// The package carries no retry logic; retries belong to the session
// controller.
package httpfetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/rs/zerolog"

	gridcache "github.com/nrfta/gridcache-go"
)

// Transport is the shared HTTP plumbing: base URL, client, credential
// source. One Transport serves any number of page clients and mutation
// calls against the same API.
type Transport struct {
	baseURL string
	http    *http.Client
	tokens  gridcache.TokenSource
	log     zerolog.Logger
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) {
		t.http = c
	}
}

// WithTokenSource sets the bearer credential source.
func WithTokenSource(ts gridcache.TokenSource) TransportOption {
	return func(t *Transport) {
		t.tokens = ts
	}
}

// WithLogger sets the transport's logger.
func WithLogger(log zerolog.Logger) TransportOption {
	return func(t *Transport) {
		t.log = log
	}
}

// NewTransport creates a Transport for the given base URL.
func NewTransport(baseURL string, opts ...TransportOption) *Transport {
	t := &Transport{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// errorBody is the API's non-2xx response shape.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// do performs one request and decodes a 2xx body into out (unless out is
// nil). Exactly one HTTP exchange per invocation.
func (t *Transport) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "marshal %s request", op)
		}
		reader = bytes.NewReader(data)
	}

	u := t.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return errors.Wrapf(err, "build %s request", op)
	}
	req.Header.Set("Content-Type", "application/json")

	if t.tokens != nil {
		token, err := t.tokens.Token(ctx)
		if err != nil {
			return &gridcache.TransportError{Op: op, Err: errors.Wrap(err, "resolve credential")}
		}
		if token != nil {
			req.Header.Set("Authorization", "Bearer "+*token)
		}
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return &gridcache.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)

		msg := eb.Error
		if eb.Details != "" {
			msg += ": " + eb.Details
		}
		return &gridcache.TransportError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &gridcache.TransportError{Op: op, Status: resp.StatusCode, Err: errors.Wrap(err, "decode body")}
		}
	}

	return nil
}

// Call performs one mutation request and decodes the entity the server
// returns.
func Call[Out any](ctx context.Context, t *Transport, op, method, path string, body any) (*Out, error) {
	var out Out
	if err := t.do(ctx, op, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PageClient fetches typed pages from one list endpoint. It implements
// gridcache.PageFetcher[T]. The filter query is fixed at construction: one
// client per list-session cache key.
type PageClient[T any] struct {
	t      *Transport
	op     string
	path   string
	filter url.Values
}

// NewPageClient creates a page client for the list endpoint at path, with
// the given fixed filter parameters (may be nil).
func NewPageClient[T any](t *Transport, op, path string, filter url.Values) *PageClient[T] {
	return &PageClient[T]{t: t, op: op, path: path, filter: filter}
}

// FetchPage performs one GET {path}?cursor=…&limit=… and returns the typed
// page. A nil cursor requests the first page.
func (c *PageClient[T]) FetchPage(ctx context.Context, cursor *string, limit int) (gridcache.Page[T], error) {
	query := url.Values{}
	for name, vals := range c.filter {
		query[name] = vals
	}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != nil {
		query.Set("cursor", *cursor)
	}

	var page gridcache.Page[T]
	if err := c.t.do(ctx, c.op, http.MethodGet, c.path, query, nil, &page); err != nil {
		return gridcache.Page[T]{}, err
	}

	page.Normalize()
	return page, nil
}
