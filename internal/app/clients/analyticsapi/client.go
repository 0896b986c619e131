// Package analyticsapi is the HTTP client for the recruitment backend's
// employer analytics endpoint.
package analyticsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dalemusser/talenthub/internal/app/system/analytics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxBody caps how much of a response is read.
const maxBody = 4 << 20

// Client calls GET <endpoint>?period=<period>. It implements analytics.API.
type Client struct {
	endpoint *url.URL
	http     *http.Client
	log      *zap.Logger
}

// Config describes the backend endpoint.
type Config struct {
	// Endpoint is the absolute analytics URL, e.g. https://api.example.com/api/employer/analytics/.
	Endpoint string
	// Timeout bounds one request; zero leaves only the caller's context.
	Timeout time.Duration
	// Transport is the base round tripper; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// ErrBadEndpoint is returned for relative or non-http endpoints.
var ErrBadEndpoint = errors.New("analyticsapi: endpoint must be an absolute http(s) URL")

// New validates cfg and builds a client without credentials.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrBadEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	return &Client{
		endpoint: u,
		http:     &http.Client{Transport: base, Timeout: cfg.Timeout},
		log:      logger,
	}, nil
}

// WithTokens returns a copy of the client that authenticates every request
// with a bearer token from ts.
func (c *Client) WithTokens(ts oauth2.TokenSource) *Client {
	if ts == nil {
		return c
	}
	cp := *c
	cp.http = &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: c.http.Transport},
		Timeout:   c.http.Timeout,
	}
	return &cp
}

// GetAnalytics performs exactly one request.
//
// Network and read failures, and non-2xx responses whose body is not an
// envelope with a status, are *analytics.TransportError. A 2xx body that
// does not decode is *analytics.MalformedError. Every other body is returned
// as-is for analytics.Unwrap to judge, so the server's message reaches the
// user.
func (c *Client) GetAnalytics(ctx context.Context, q analytics.Query) (*analytics.Envelope, error) {
	u := *c.endpoint
	params := u.Query()
	params.Set("period", q.Period)
	u.RawQuery = params.Encode()

	reqID := uuid.NewString()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &analytics.TransportError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("analytics request failed", zap.String("request_id", reqID), zap.Error(err))
		return nil, &analytics.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &analytics.TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	c.log.Debug("analytics response",
		zap.String("request_id", reqID),
		zap.String("period", q.Period),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	var env analytics.Envelope
	decodeErr := json.Unmarshal(body, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && env.Status != "" {
			return &env, nil
		}
		return nil, &analytics.TransportError{Err: fmt.Errorf("unexpected HTTP status %s", resp.Status)}
	}
	// A 2xx object without a status still goes through Unwrap so its
	// message is kept.
	if decodeErr != nil {
		return nil, &analytics.MalformedError{Err: decodeErr}
	}
	return &env, nil
}
