package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/revo/commerce-sync/internal/domain/sync"
)

// apiNamespace is the fixed REST namespace every path is joined under
const apiNamespace = "/wp-json/wc/v3/"

// maxResponseSize is the maximum allowed response size from the store (10MB)
const maxResponseSize = 10 * 1024 * 1024

var (
	// ErrRequestExhausted indicates all attempts for one logical request failed
	ErrRequestExhausted = errors.New("woocommerce: request failed after all attempts")
)

// Response is the structured result of one store request. OK is false for
// any non-2xx status; the body is carried raw for the caller to decode.
type Response struct {
	OK     bool
	Status int
	Data   json.RawMessage
}

// Decode unmarshals the response body into out
func (r *Response) Decode(out any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, out)
}

// HealthStatus is the result of the healthcheck probe
type HealthStatus struct {
	OK         bool   `json:"ok"`
	HTTPStatus int    `json:"http_status"`
	Detail     string `json:"detail,omitempty"`
}

// Client talks to one external store's REST API. Synchronous per call: one
// logical request may perform several sequential attempts, with no internal
// concurrency. Callers wanting parallel fetches fan out externally against
// their own rate-limit budget.
type Client struct {
	config     *Config
	policy     RetryPolicy
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a store client from a validated configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := DefaultRetryPolicy()
	policy.MaxAttempts = config.MaxAttempts
	return &Client{
		config:     config,
		policy:     policy,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized store root
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Get performs a GET against the store API
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.doRequest(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST with a JSON body against the store API
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPost, path, nil, body)
}

// Healthcheck probes the store with the cheapest authenticated read the API
// offers: one product, one page.
func (c *Client) Healthcheck(ctx context.Context) HealthStatus {
	query := url.Values{}
	query.Set("per_page", "1")
	query.Set("page", "1")

	resp, err := c.Get(ctx, "products", query)
	if err != nil {
		return HealthStatus{OK: false, Detail: err.Error()}
	}
	status := HealthStatus{OK: resp.OK, HTTPStatus: resp.Status}
	if !resp.OK {
		status.Detail = fmt.Sprintf("store responded with status %d", resp.Status)
	}
	return status
}

// doRequest runs one logical request: transient failures (transport errors,
// 429, >=500) are retried with backoff up to MaxAttempts, any other non-2xx
// is returned as a structured non-ok response without retry. Each attempt
// gets its own deadline; a timed-out attempt counts toward MaxAttempts.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (*Response, error) {
	reqURL, err := c.buildURL(path, query)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("woocommerce: failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			wait := c.policy.Backoff(attempt - 1)
			c.logger.Debug("retrying store request",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		resp, retryable, err := c.attempt(ctx, method, reqURL, payload)
		if err == nil {
			return resp, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %v", ErrRequestExhausted, lastErr)
}

// attempt performs a single HTTP exchange. The bool result reports whether
// the failure is transient and worth another attempt.
func (c *Client) attempt(ctx context.Context, method, reqURL string, payload []byte) (*Response, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, reqURL, bodyReader)
	if err != nil {
		return nil, false, fmt.Errorf("woocommerce: failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.applyAuth(req)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("woocommerce: request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("woocommerce: failed to read response: %w", err)
	}

	if IsRetryableStatus(httpResp.StatusCode) {
		return nil, true, fmt.Errorf("woocommerce: store responded with status %d", httpResp.StatusCode)
	}

	return &Response{
		OK:     httpResp.StatusCode >= 200 && httpResp.StatusCode < 300,
		Status: httpResp.StatusCode,
		Data:   data,
	}, false, nil
}

// buildURL joins the path under the API namespace and attaches the query,
// plus credentials when the store runs in query-string fallback mode.
func (c *Client) buildURL(path string, query url.Values) (string, error) {
	full := c.config.BaseURL + apiNamespace + strings.TrimLeft(path, "/")
	u, err := url.Parse(full)
	if err != nil {
		return "", fmt.Errorf("woocommerce: invalid request path %q: %w", path, err)
	}

	values := url.Values{}
	for k, vs := range query {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	if c.config.AuthMode == domain.AuthModeQuerystringFallback {
		values.Set("consumer_key", c.config.Credentials.ConsumerKey)
		values.Set("consumer_secret", c.config.Credentials.ConsumerSecret)
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

// applyAuth attaches credentials as a Basic header for basic_https and as a
// compatibility default for every mode that is not the query-string escape
// hatch (oauth1 stores accept key/secret Basic auth over HTTPS).
func (c *Client) applyAuth(req *http.Request) {
	if c.config.AuthMode == domain.AuthModeQuerystringFallback {
		return
	}
	req.SetBasicAuth(c.config.Credentials.ConsumerKey, c.config.Credentials.ConsumerSecret)
}
