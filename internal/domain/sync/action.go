package sync

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Control-plane actions — the closed envelope vocabulary of the worker boundary
// ---------------------------------------------------------------------------

// Action identifies one worker operation. The set is closed so caller and
// worker cannot drift apart on action strings.
type Action string

const (
	ActionStoresList       Action = "stores.list"
	ActionStoreStatus      Action = "stores.status"
	ActionHealthcheck      Action = "stores.healthcheck"
	ActionWebhooksRegister Action = "stores.webhooks.register"
	ActionProductMapBuild  Action = "stores.product_map.build"
	ActionProductMapList   Action = "stores.product_map.list"
	ActionSyncStock        Action = "stores.sync.stock"
	ActionSyncPrice        Action = "stores.sync.price"
	ActionReconcileOrders  Action = "stores.reconcile.orders"
	ActionStorePause       Action = "stores.pause"
	ActionStoreUnpause     Action = "stores.unpause"
	ActionWorkerRun        Action = "stores.worker.run"
	ActionJobsRequeue      Action = "stores.jobs.requeue"
	ActionRunsList         Action = "stores.runs.list"
	ActionRunsGet          Action = "stores.runs.get"
	ActionRunsRetryFailed  Action = "stores.runs.retry_failed"
)

// IsValid returns true if the action belongs to the closed set
func (a Action) IsValid() bool {
	switch a {
	case ActionStoresList, ActionStoreStatus, ActionHealthcheck,
		ActionWebhooksRegister, ActionProductMapBuild, ActionProductMapList,
		ActionSyncStock, ActionSyncPrice, ActionReconcileOrders,
		ActionStorePause, ActionStoreUnpause, ActionWorkerRun,
		ActionJobsRequeue, ActionRunsList, ActionRunsGet, ActionRunsRetryFailed:
		return true
	}
	return false
}

// String returns the string representation of Action
func (a Action) String() string {
	return string(a)
}

// Dispatcher is the port to the external worker boundary. One call sends one
// {action, store_id?, ...payload} envelope and decodes the worker's ok-or-error
// response into out. Implementations own transport, tenant propagation, and
// error normalization; callers receive either decoded data or one normalized
// error.
type Dispatcher interface {
	Dispatch(ctx context.Context, tenantID string, action Action, payload map[string]any, out any) error
}

// ---------------------------------------------------------------------------
// Worker error normalization
// ---------------------------------------------------------------------------

// maxWorkerErrorLength bounds what reaches UI/toast layers and logs
const maxWorkerErrorLength = 500

// genericWorkerError stands in when the worker gave no message
const genericWorkerError = "sync action failed"

// NormalizeWorkerError collapses a worker failure into a single bounded
// error: the worker-provided message (or a generic fallback) plus an optional
// " (hint)" suffix, truncated to 500 characters. Guarantees no unbounded or
// binary payload leaks into the message.
func NormalizeWorkerError(message, hint string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = genericWorkerError
	}
	if h := strings.TrimSpace(hint); h != "" {
		msg = msg + " (" + h + ")"
	}
	if len(msg) > maxWorkerErrorLength {
		// back up to a rune boundary so the cut never produces invalid UTF-8
		cut := maxWorkerErrorLength
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return errors.New(msg)
}
