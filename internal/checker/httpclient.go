package checker

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// ProxyResolver resolves a per-check forward-proxy setting to a URL. The
// real implementation (secret-manager-backed) is an external collaborator
// out of this module's scope; NoopProxyResolver is the default.
type ProxyResolver interface {
	Resolve(ctx context.Context, proxySetting string) (string, error)
}

// NoopProxyResolver returns the input unchanged — used when no proxy
// resolution collaborator is wired in.
type NoopProxyResolver struct{}

func (NoopProxyResolver) Resolve(_ context.Context, proxySetting string) (string, error) {
	return proxySetting, nil
}

// BoundedClientConfig configures a BoundedClient. DefaultTimeout is
// accepted but not applied to requests: a request is bounded by its
// context deadline (Execute sets one per check) and by the client's
// fixed 5-minute timeout.
type BoundedClientConfig struct {
	MaxResponseBodyBytes     int
	MaxJSONResponseBodyBytes int // defaults to MaxResponseBodyBytes when 0
	UserAgent                string
	DefaultTimeout           time.Duration
	ProxyResolver            ProxyResolver
}

// BoundedClient wraps *http.Client with a per-response byte budget that
// depends on the response's Content-Type, annotating truncation instead
// of ever buffering an unbounded body.
type BoundedClient struct {
	client                   *http.Client
	maxResponseBodyBytes     int
	maxJSONResponseBodyBytes int
	userAgent                string
	proxyResolver            ProxyResolver
}

// NewBoundedClient builds a BoundedClient. max limits must be > 0.
func NewBoundedClient(cfg BoundedClientConfig) (*BoundedClient, error) {
	if cfg.MaxResponseBodyBytes <= 0 {
		return nil, fmt.Errorf("max_response_body_bytes must be greater than 0")
	}
	jsonLimit := cfg.MaxJSONResponseBodyBytes
	if jsonLimit <= 0 {
		jsonLimit = cfg.MaxResponseBodyBytes
	}

	resolver := cfg.ProxyResolver
	if resolver == nil {
		resolver = NoopProxyResolver{}
	}

	timeout := cfg.DefaultTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &BoundedClient{
		client: &http.Client{
			// Per-check timeouts are enforced via context in Execute; this
			// is a safety net against a hung transport.
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
			},
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		maxResponseBodyBytes:     cfg.MaxResponseBodyBytes,
		maxJSONResponseBodyBytes: jsonLimit,
		userAgent:                cfg.UserAgent,
		proxyResolver:            resolver,
	}, nil
}

// BoundedResponse is the result of a bounded Do call.
type BoundedResponse struct {
	StatusCode          int
	Header              http.Header
	Body                []byte
	BodyTruncatedByClient bool
	BodyLimitBytes      int
	BodySizeBytes       int
}

type doOptions struct {
	stream bool
}

// DoOption customizes a single Do call.
type DoOption func(*doOptions)

// Stream sets the stream flag on a Do call. Do does not read the flag:
// it always returns a bounded, buffered body. DoStream is the call that
// returns the raw, unbuffered *http.Response.
func Stream() DoOption {
	return func(o *doOptions) { o.stream = true }
}

// Do executes req, annotating the User-Agent, and returns a body capped
// at the content-type-appropriate byte budget, with or without Stream().
func (c *BoundedClient) Do(ctx context.Context, req *http.Request, opts ...DoOption) (BoundedResponse, error) {
	var o doOptions
	for _, opt := range opts {
		opt(&o)
	}

	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req = req.WithContext(ctx)

	resp, err := c.client.Do(req)
	if err != nil {
		return BoundedResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	limit := c.bodyLimitFor(resp.Header.Get("Content-Type"))
	body, truncated, err := readLimited(resp.Body, limit)
	if err != nil {
		return BoundedResponse{}, fmt.Errorf("read response body: %w", err)
	}

	out := BoundedResponse{
		StatusCode:     resp.StatusCode,
		Header:         resp.Header,
		Body:           body,
		BodyLimitBytes: limit,
		BodySizeBytes:  len(body),
	}
	if truncated {
		out.BodyTruncatedByClient = true
	}
	return out, nil
}

// DoStream executes req and returns the live, unbuffered response. The
// caller must close resp.Body.
func (c *BoundedClient) DoStream(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.client.Do(req.WithContext(ctx))
}

func (c *BoundedClient) bodyLimitFor(contentType string) int {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return c.maxJSONResponseBodyBytes
	}
	return c.maxResponseBodyBytes
}

// readLimited reads at most maxBytes from r. If more is available, it
// stops reading and reports truncation; the caller's deferred Close()
// releases the underlying connection either way.
func readLimited(r io.Reader, maxBytes int) ([]byte, bool, error) {
	if maxBytes <= 0 {
		return nil, true, nil
	}

	// Read one byte beyond the limit so we can distinguish "body was
	// exactly maxBytes" from "body was larger and got truncated".
	limited := io.LimitReader(r, int64(maxBytes)+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, false, err
	}

	if len(body) > maxBytes {
		return body[:maxBytes], true, nil
	}
	return body, false, nil
}
