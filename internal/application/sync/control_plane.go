// Package sync contains the application services of the commerce sync
// engine: the typed control-plane façade over the worker boundary and the
// client-side health evaluation helpers.
package sync

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domain "github.com/revo/commerce-sync/internal/domain/sync"
	"github.com/revo/commerce-sync/internal/infrastructure/telemetry"
)

const (
	// DefaultWorkerLimit is how many items one inline worker run processes
	DefaultWorkerLimit = 5
	// MaxWorkerLimit caps an inline worker run
	MaxWorkerLimit = 20
	// DefaultMapListLimit is the default page size for product-map listings
	DefaultMapListLimit = 120
)

// ControlPlane is the typed façade the rest of the application calls to
// trigger and observe synchronization. Every operation sends exactly one
// action envelope through the dispatcher; the worker owns execution,
// persistence, and health policy. Errors coming back are already normalized
// and bounded, safe to surface to callers as-is.
type ControlPlane struct {
	dispatcher domain.Dispatcher
	logger     *zap.Logger
}

// NewControlPlane creates the control-plane service
func NewControlPlane(dispatcher domain.Dispatcher, logger *zap.Logger) *ControlPlane {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ControlPlane{dispatcher: dispatcher, logger: logger}
}

// ListStores lists the tenant's connected stores
func (s *ControlPlane) ListStores(ctx context.Context, tenantID string) (*StoresListResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "list_stores")
	defer span.End()

	var out StoresListResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionStoresList, nil, &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// StoreStatus fetches the full status snapshot for one store
func (s *ControlPlane) StoreStatus(ctx context.Context, tenantID, storeID string) (*StoreStatusResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "store_status",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
	)
	defer span.End()

	var out StoreStatusResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionStoreStatus, storePayload(storeID), &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// Healthcheck asks the worker to probe the store's API
func (s *ControlPlane) Healthcheck(ctx context.Context, tenantID, storeID string) (*HealthcheckResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "healthcheck",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
	)
	defer span.End()

	var out HealthcheckResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionHealthcheck, storePayload(storeID), &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// RegisterWebhooks (re)registers the store's webhooks pointing at the receiver
func (s *ControlPlane) RegisterWebhooks(ctx context.Context, tenantID, storeID string) (*WebhooksRegisterResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "register_webhooks",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
	)
	defer span.End()

	var out WebhooksRegisterResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionWebhooksRegister, storePayload(storeID), &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// BuildProductMap rebuilds the SKU-to-external-id correspondence table
func (s *ControlPlane) BuildProductMap(ctx context.Context, tenantID, storeID string) (*ProductMapBuildResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "build_product_map",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
	)
	defer span.End()

	var out ProductMapBuildResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionProductMapBuild, storePayload(storeID), &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// ListProductMap lists product-map rows for one store. A non-positive limit
// falls back to the default page size.
func (s *ControlPlane) ListProductMap(ctx context.Context, tenantID, storeID string, limit int) (*ProductMapListResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	if limit <= 0 {
		limit = DefaultMapListLimit
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "list_product_map",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
	)
	defer span.End()

	payload := storePayload(storeID)
	payload["limit"] = limit
	var out ProductMapListResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionProductMapList, payload, &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// SyncStock forces a stock sync for explicit SKUs
func (s *ControlPlane) SyncStock(ctx context.Context, tenantID, storeID string, skus []string) (*ForceSyncResult, error) {
	return s.forceSync(ctx, tenantID, storeID, domain.ActionSyncStock, "sync_stock", skus)
}

// SyncPrice forces a price sync for explicit SKUs
func (s *ControlPlane) SyncPrice(ctx context.Context, tenantID, storeID string, skus []string) (*ForceSyncResult, error) {
	return s.forceSync(ctx, tenantID, storeID, domain.ActionSyncPrice, "sync_price", skus)
}

func (s *ControlPlane) forceSync(ctx context.Context, tenantID, storeID string, action domain.Action, method string, skus []string) (*ForceSyncResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	cleaned, err := normalizeSKUs(skus)
	if err != nil {
		return nil, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", method,
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
		telemetry.WithAttribute(telemetry.SpanAttrSkuCount, len(cleaned)),
	)
	defer span.End()

	payload := storePayload(storeID)
	payload["skus"] = cleaned
	var out ForceSyncResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, action, payload, &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// ReconcileOrder replays a specific external order through the import path
func (s *ControlPlane) ReconcileOrder(ctx context.Context, tenantID, storeID string, orderID int64) (*ReconcileOrderResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	if orderID <= 0 {
		return nil, domain.ErrOrderIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "reconcile_order",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
		telemetry.WithAttribute("order_id", orderID),
	)
	defer span.End()

	payload := storePayload(storeID)
	payload["order_id"] = orderID
	var out ReconcileOrderResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionReconcileOrders, payload, &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// PauseStore pauses all sync activity for a store
func (s *ControlPlane) PauseStore(ctx context.Context, tenantID, storeID string) (*PauseResult, error) {
	return s.setPaused(ctx, tenantID, storeID, domain.ActionStorePause, "pause_store")
}

// UnpauseStore resumes sync activity for a store
func (s *ControlPlane) UnpauseStore(ctx context.Context, tenantID, storeID string) (*PauseResult, error) {
	return s.setPaused(ctx, tenantID, storeID, domain.ActionStoreUnpause, "unpause_store")
}

func (s *ControlPlane) setPaused(ctx context.Context, tenantID, storeID string, action domain.Action, method string) (*PauseResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", method,
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
	)
	defer span.End()

	var out PauseResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, action, storePayload(storeID), &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// RunWorker runs the worker inline for up to limit items. The limit is
// clamped to [1, 20]; non-positive values fall back to the default of 5.
func (s *ControlPlane) RunWorker(ctx context.Context, tenantID, storeID string, limit int) (*WorkerRunResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	if limit <= 0 {
		limit = DefaultWorkerLimit
	}
	if limit > MaxWorkerLimit {
		limit = MaxWorkerLimit
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "run_worker",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
		telemetry.WithAttribute("limit", limit),
	)
	defer span.End()

	payload := storePayload(storeID)
	payload["limit"] = limit
	var out WorkerRunResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionWorkerRun, payload, &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// RequeueJob asks the worker to move a dead job back to queued
func (s *ControlPlane) RequeueJob(ctx context.Context, tenantID, storeID, jobID string) (*RequeueJobResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	if jobID == "" {
		return nil, domain.ErrJobIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "requeue_job",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
		telemetry.WithAttribute(telemetry.SpanAttrJobID, jobID),
	)
	defer span.End()

	payload := storePayload(storeID)
	payload["job_id"] = jobID
	var out RequeueJobResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionJobsRequeue, payload, &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// ListRuns lists catalog runs for one store
func (s *ControlPlane) ListRuns(ctx context.Context, tenantID, storeID string) (*RunsListResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "list_runs",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
	)
	defer span.End()

	var out RunsListResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionRunsList, storePayload(storeID), &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

// GetRun fetches one run with its items. Counts and the retry gate are
// recomputed locally from the item list.
func (s *ControlPlane) GetRun(ctx context.Context, tenantID, storeID, runID string) (*RunGetResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	if runID == "" {
		return nil, domain.ErrRunIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "get_run",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
		telemetry.WithAttribute(telemetry.SpanAttrRunID, runID),
	)
	defer span.End()

	payload := storePayload(storeID)
	payload["run_id"] = runID
	var out RunGetResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionRunsGet, payload, &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	out.Run.Counts = domain.ComputeRunCounts(out.Run.Items)
	out.Run.AllowRetryFailed = domain.ShouldAllowRetryFailed(out.Run.Items)
	return &out, nil
}

// RetryFailedRun asks the worker to spawn a new run scoped to the failed
// items of the given run
func (s *ControlPlane) RetryFailedRun(ctx context.Context, tenantID, storeID, runID string) (*RetryFailedResult, error) {
	if storeID == "" {
		return nil, domain.ErrStoreIDRequired
	}
	if runID == "" {
		return nil, domain.ErrRunIDRequired
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "control_plane", "retry_failed_run",
		telemetry.WithAttribute(telemetry.SpanAttrStoreID, storeID),
		telemetry.WithAttribute(telemetry.SpanAttrRunID, runID),
	)
	defer span.End()

	payload := storePayload(storeID)
	payload["run_id"] = runID
	var out RetryFailedResult
	if err := s.dispatcher.Dispatch(ctx, tenantID, domain.ActionRunsRetryFailed, payload, &out); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return &out, nil
}

func storePayload(storeID string) map[string]any {
	return map[string]any{"store_id": storeID}
}

// normalizeSKUs trims, drops empties, and dedupes while preserving order.
// An empty result is an error: a forced sync with no SKUs is a caller bug.
func normalizeSKUs(skus []string) ([]string, error) {
	seen := make(map[string]struct{}, len(skus))
	cleaned := make([]string, 0, len(skus))
	for _, sku := range skus {
		sku = strings.TrimSpace(sku)
		if sku == "" {
			continue
		}
		if _, dup := seen[sku]; dup {
			continue
		}
		seen[sku] = struct{}{}
		cleaned = append(cleaned, sku)
	}
	if len(cleaned) == 0 {
		return nil, domain.ErrSkuListEmpty
	}
	return cleaned, nil
}
