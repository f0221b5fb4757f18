// Package dispatch sends control-plane action envelopes to the external
// sync worker over HTTP and normalizes its responses.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	domain "github.com/revo/commerce-sync/internal/domain/sync"
	"github.com/revo/commerce-sync/internal/infrastructure/telemetry"
)

// maxResponseSize caps what the worker may send back (10MB)
const maxResponseSize = 10 * 1024 * 1024

const (
	tenantHeader    = "X-Tenant-ID"
	workerKeyHeader = "X-Worker-Key"
)

var (
	// ErrMissingEndpoint indicates the worker endpoint is not configured
	ErrMissingEndpoint = errors.New("dispatch: worker endpoint is required")
	// ErrMissingTenant indicates the caller supplied no tenant context
	ErrMissingTenant = errors.New("dispatch: tenant id is required")
)

// workerEnvelope is the ok/error frame every worker response carries
type workerEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Hint  string `json:"hint,omitempty"`
}

// HTTPDispatcher implements the worker boundary port over plain HTTP: one
// POST per action, tenant identity on a header, shared key auth.
type HTTPDispatcher struct {
	endpoint   string
	workerKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ domain.Dispatcher = (*HTTPDispatcher)(nil)

// NewHTTPDispatcher creates a dispatcher for the worker at endpoint
func NewHTTPDispatcher(endpoint, workerKey string, timeout time.Duration, logger *zap.Logger) (*HTTPDispatcher, error) {
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPDispatcher{
		endpoint:   endpoint,
		workerKey:  workerKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Dispatch sends one {action, ...payload} envelope and decodes the response
// into out. Any transport failure or non-ok response comes back as a single
// normalized error whose message is already bounded and display-safe.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, tenantID string, action domain.Action, payload map[string]any, out any) error {
	if tenantID == "" {
		return ErrMissingTenant
	}
	if !action.IsValid() {
		return domain.ErrActionUnknown
	}

	ctx, span := telemetry.StartSpan(ctx, "worker.dispatch",
		telemetry.WithAttribute("action", action.String()),
	)
	defer span.End()

	envelope := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		envelope[k] = v
	}
	envelope["action"] = action.String()

	body, err := json.Marshal(envelope)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("dispatch: failed to encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("dispatch: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tenantHeader, tenantID)
	if d.workerKey != "" {
		req.Header.Set(workerKeyHeader, d.workerKey)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		normalized := domain.NormalizeWorkerError(err.Error(), "")
		telemetry.RecordError(span, normalized)
		return normalized
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		normalized := domain.NormalizeWorkerError(err.Error(), "")
		telemetry.RecordError(span, normalized)
		return normalized
	}

	var frame workerEnvelope
	_ = json.Unmarshal(data, &frame)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !frame.OK {
		d.logger.Warn("worker action failed",
			zap.String("action", action.String()),
			zap.Int("status", resp.StatusCode),
		)
		normalized := domain.NormalizeWorkerError(frame.Error, frame.Hint)
		telemetry.RecordError(span, normalized)
		return normalized
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			normalized := domain.NormalizeWorkerError("invalid worker response", err.Error())
			telemetry.RecordError(span, normalized)
			return normalized
		}
	}
	return nil
}
