package sync

import (
	"time"

	domain "github.com/revo/commerce-sync/internal/domain/sync"
)

// Typed response shapes for the worker's action envelopes. The control plane
// is a pass-through: these mirror the worker's payloads field for field so
// callers stay strongly typed without this layer inferring anything.

// StoreSummary is one connected store as listed by the worker
type StoreSummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	Paused     bool       `json:"paused"`
	AuthMode   string     `json:"auth_mode,omitempty"`
	LastSyncAt *time.Time `json:"last_sync_at,omitempty"`
}

// StoresListResult is the response to stores.list
type StoresListResult struct {
	OK     bool           `json:"ok"`
	Stores []StoreSummary `json:"stores"`
}

// HealthSnapshot is the store reachability probe result inside a status
type HealthSnapshot struct {
	Reachable  bool       `json:"reachable"`
	HTTPStatus int        `json:"http_status,omitempty"`
	CheckedAt  *time.Time `json:"checked_at,omitempty"`
	Detail     string     `json:"detail,omitempty"`
}

// QueueDepth is the job count per status for one store
type QueueDepth struct {
	Queued  int `json:"queued"`
	Running int `json:"running"`
	Error   int `json:"error"`
	Dead    int `json:"dead"`
}

// WebhookFreshness reports how recently the store delivered a webhook
type WebhookFreshness struct {
	Registered     bool       `json:"registered"`
	LastReceivedAt *time.Time `json:"last_received_at,omitempty"`
}

// OrderImportFreshness reports how recently an order was imported
type OrderImportFreshness struct {
	LastImportedAt *time.Time `json:"last_imported_at,omitempty"`
}

// MapQuality summarizes the SKU-to-external-id product map
type MapQuality struct {
	Mapped    int `json:"mapped"`
	Unmapped  int `json:"unmapped"`
	Conflicts int `json:"conflicts"`
}

// LogLine is one recent worker log entry
type LogLine struct {
	At      time.Time `json:"at"`
	Level   string    `json:"level"`
	Message string    `json:"message"`
}

// StoreStatusResult is the full status snapshot for one store (stores.status)
type StoreStatusResult struct {
	OK              bool                  `json:"ok"`
	Store           StoreSummary          `json:"store"`
	Health          HealthSnapshot        `json:"health"`
	Queue           QueueDepth            `json:"queue"`
	Webhooks        WebhookFreshness      `json:"webhooks"`
	Orders          OrderImportFreshness  `json:"orders"`
	Map             MapQuality            `json:"map"`
	Recommendations []string              `json:"recommendations,omitempty"`
	RecentErrors    []string              `json:"recent_errors,omitempty"`
	RecentWebhooks  []domain.WebhookEvent `json:"recent_webhooks,omitempty"`
	RecentJobs      []domain.SyncJob      `json:"recent_jobs,omitempty"`
	RecentLogs      []LogLine             `json:"recent_logs,omitempty"`
}

// HealthcheckResult is the response to stores.healthcheck
type HealthcheckResult struct {
	OK         bool   `json:"ok"`
	Reachable  bool   `json:"reachable"`
	HTTPStatus int    `json:"http_status,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// WebhooksRegisterResult is the response to stores.webhooks.register
type WebhooksRegisterResult struct {
	OK         bool     `json:"ok"`
	Registered []string `json:"registered"`
}

// ProductMapRow is one SKU correspondence in the product map
type ProductMapRow struct {
	SKU        string     `json:"sku"`
	ExternalID string     `json:"external_id,omitempty"`
	LocalID    string     `json:"local_id,omitempty"`
	Status     string     `json:"status"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ProductMapBuildResult is the response to stores.product_map.build
type ProductMapBuildResult struct {
	OK        bool `json:"ok"`
	Created   int  `json:"created"`
	Updated   int  `json:"updated"`
	Conflicts int  `json:"conflicts"`
}

// ProductMapListResult is the response to stores.product_map.list
type ProductMapListResult struct {
	OK   bool            `json:"ok"`
	Rows []ProductMapRow `json:"rows"`
}

// ForceSyncResult is the response to stores.sync.stock / stores.sync.price
type ForceSyncResult struct {
	OK     bool   `json:"ok"`
	JobID  string `json:"job_id,omitempty"`
	Queued int    `json:"queued"`
}

// ReconcileOrderResult is the response to stores.reconcile.orders
type ReconcileOrderResult struct {
	OK       bool  `json:"ok"`
	OrderID  int64 `json:"order_id"`
	Imported bool  `json:"imported"`
}

// PauseResult is the response to stores.pause / stores.unpause
type PauseResult struct {
	OK     bool `json:"ok"`
	Paused bool `json:"paused"`
}

// WorkerRunResult is the response to stores.worker.run
type WorkerRunResult struct {
	OK        bool `json:"ok"`
	Processed int  `json:"processed"`
	Remaining int  `json:"remaining"`
}

// RequeueJobResult is the response to stores.jobs.requeue
type RequeueJobResult struct {
	OK  bool           `json:"ok"`
	Job domain.SyncJob `json:"job"`
}

// RunSummary is one catalog run as listed by the worker
type RunSummary struct {
	ID        string               `json:"id"`
	Type      domain.RunType       `json:"type"`
	Status    domain.RunStatus     `json:"status"`
	Counts    domain.RunItemCounts `json:"counts"`
	CreatedAt time.Time            `json:"created_at"`
}

// RunsListResult is the response to stores.runs.list
type RunsListResult struct {
	OK   bool         `json:"ok"`
	Runs []RunSummary `json:"runs"`
}

// RunDetail is a run with its full item list. Counts and the retry gate are
// recomputed locally from the items so the UI never re-derives them.
type RunDetail struct {
	ID               string               `json:"id"`
	Type             domain.RunType       `json:"type"`
	Status           domain.RunStatus     `json:"status"`
	CreatedAt        time.Time            `json:"created_at"`
	RetryOfRunID     string               `json:"retry_of_run_id,omitempty"`
	Items            []domain.RunItem     `json:"items"`
	Counts           domain.RunItemCounts `json:"counts"`
	AllowRetryFailed bool                 `json:"allow_retry_failed"`
}

// RunGetResult is the response to stores.runs.get
type RunGetResult struct {
	OK  bool      `json:"ok"`
	Run RunDetail `json:"run"`
}

// RetryFailedResult is the response to stores.runs.retry_failed
type RetryFailedResult struct {
	OK       bool   `json:"ok"`
	NewRunID string `json:"new_run_id"`
	Items    int    `json:"items"`
}
