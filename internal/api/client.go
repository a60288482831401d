// Package api is the gateway to the Pac Poupança REST API. Every request goes
// through Client.Do, which attaches the bearer token, tags the request with an
// id, and turns failures into the typed errors in errors.go.
package api

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

	"github.com/google/uuid"

	"github.com/theirongolddev/poupa/internal/logging"
)

const (
	maxBodySize      = 1 << 20 // 1 MB
	defaultUserAgent = "poupa/1.0"
)

// TokenStore is where the client reads the bearer token and clears it on a
// forced logout.
type TokenStore interface {
	Token() string
	ClearToken() error
}

// Client talks to the REST API.
type Client struct {
	baseURL        string
	tokens         TokenStore
	http           *http.Client
	timeout        time.Duration
	onUnauthorized func()
	userAgent      string
	log            *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a per-request deadline. Zero, the default, means requests
// wait as long as the caller's context allows.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = logging.For(l, logging.ComponentAPI) }
}

// WithUnauthorizedHandler registers fn to run after the token has been
// cleared because the server rejected it.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client rooted at baseURL (e.g. "http://localhost:5000/api").
// tokens may be nil, in which case every request is unauthenticated.
func NewClient(baseURL string, tokens TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:    tokens,
		http:      &http.Client{},
		userAgent: defaultUserAgent,
		log:       logging.For(nil, logging.ComponentAPI),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends one request and decodes a 2xx JSON body into out. body, when
// non-nil, is JSON-encoded. out may be nil when the response is ignored.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encoding request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("api: creating request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	log := c.log.With(logging.FieldRequestID, reqID, logging.FieldMethod, method, logging.FieldPath, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", logging.FieldError, err)
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		log.Warn("reading response failed", logging.FieldError, err)
		return &NetworkError{Method: method, Path: path, Err: err}
	}

	log.Debug("request done",
		logging.FieldStatus, resp.StatusCode,
		logging.FieldDuration, time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusUnprocessableEntity:
		c.forceLogout(log)
		return &AuthError{Status: resp.StatusCode, Message: serverMessage(data)}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &HTTPError{Status: resp.StatusCode, Message: serverMessage(data)}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s %s: empty body", ErrMalformedResponse, method, path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformedResponse, method, path, err)
	}
	return nil
}

// forceLogout clears the token and notifies the handler. It runs for every
// rejected request, including a failed login.
func (c *Client) forceLogout(log *slog.Logger) {
	log.Info("token rejected, clearing session")
	if c.tokens != nil {
		if err := c.tokens.ClearToken(); err != nil {
			log.Warn("clearing token failed", logging.FieldError, err)
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}

// serverMessage pulls the "error" or "message" field out of an error body.
func serverMessage(data []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Msg     string `json:"msg"` // flask-jwt-extended
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	switch {
	case body.Error != "":
		return body.Error
	case body.Message != "":
		return body.Message
	default:
		return body.Msg
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, body, out)
}
