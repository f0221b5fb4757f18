package sync

import (
	"time"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Catalog run tracking — bulk import/export runs and their per-item outcomes
// ---------------------------------------------------------------------------

// RunType represents the kind of bulk catalog run
type RunType string

const (
	// RunTypeExport pushes local products to the external store
	RunTypeExport RunType = "EXPORT"
	// RunTypeImport pulls external products into the local catalog
	RunTypeImport RunType = "IMPORT"
	// RunTypeSyncPrice pushes recalculated prices for mapped products
	RunTypeSyncPrice RunType = "SYNC_PRICE"
	// RunTypeSyncStock pushes recalculated stock for mapped products
	RunTypeSyncStock RunType = "SYNC_STOCK"
)

// IsValid returns true if the run type is valid
func (t RunType) IsValid() bool {
	switch t {
	case RunTypeExport, RunTypeImport, RunTypeSyncPrice, RunTypeSyncStock:
		return true
	}
	return false
}

// String returns the string representation of RunType
func (t RunType) String() string {
	return string(t)
}

// RunItemStatus represents the lifecycle state of one run item.
// planned -> {done | skipped | failed}; terminal after that. A retry never
// reopens an item — it spawns a new item in a new run.
type RunItemStatus string

const (
	RunItemStatusPlanned RunItemStatus = "planned"
	RunItemStatusDone    RunItemStatus = "done"
	RunItemStatusSkipped RunItemStatus = "skipped"
	RunItemStatusFailed  RunItemStatus = "failed"
)

// IsValid returns true if the status is valid
func (s RunItemStatus) IsValid() bool {
	switch s {
	case RunItemStatusPlanned, RunItemStatusDone, RunItemStatusSkipped, RunItemStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if no further transition is allowed
func (s RunItemStatus) IsTerminal() bool {
	return s == RunItemStatusDone || s == RunItemStatusSkipped || s == RunItemStatusFailed
}

// String returns the string representation of RunItemStatus
func (s RunItemStatus) String() string {
	return string(s)
}

// RunItemAction represents what the run planned to do with the item
type RunItemAction string

const (
	RunItemActionCreate RunItemAction = "create"
	RunItemActionUpdate RunItemAction = "update"
	RunItemActionSkip   RunItemAction = "skip"
	RunItemActionBlock  RunItemAction = "block"
)

// IsValid returns true if the action is valid
func (a RunItemAction) IsValid() bool {
	switch a {
	case RunItemActionCreate, RunItemActionUpdate, RunItemActionSkip, RunItemActionBlock:
		return true
	}
	return false
}

// String returns the string representation of RunItemAction
func (a RunItemAction) String() string {
	return string(a)
}

// RunItem is one SKU's planned work inside a run. Immutable once written
// except for its status transition.
type RunItem struct {
	SKU               string        `json:"sku"`
	LocalProductID    string        `json:"local_product_id,omitempty"`
	ExternalProductID string        `json:"external_product_id,omitempty"`
	Action            RunItemAction `json:"action"`
	Status            RunItemStatus `json:"status"`
	ErrorCode         string        `json:"error_code,omitempty"`
	Hint              string        `json:"hint,omitempty"`
}

// MarkDone transitions a planned item to done
func (i *RunItem) MarkDone() error {
	if i.Status.IsTerminal() {
		return ErrRunItemTerminal
	}
	i.Status = RunItemStatusDone
	return nil
}

// MarkSkipped transitions a planned item to skipped
func (i *RunItem) MarkSkipped() error {
	if i.Status.IsTerminal() {
		return ErrRunItemTerminal
	}
	i.Status = RunItemStatusSkipped
	return nil
}

// MarkFailed transitions a planned item to failed, recording the error
func (i *RunItem) MarkFailed(errorCode, hint string) error {
	if i.Status.IsTerminal() {
		return ErrRunItemTerminal
	}
	i.Status = RunItemStatusFailed
	i.ErrorCode = errorCode
	i.Hint = hint
	return nil
}

// RunItemCounts is the aggregate tally of item statuses for one run
type RunItemCounts struct {
	Planned int `json:"planned"`
	Done    int `json:"done"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Total returns the number of counted items
func (c RunItemCounts) Total() int {
	return c.Planned + c.Done + c.Skipped + c.Failed
}

// ComputeRunCounts tallies item statuses. Tolerates empty or partially
// populated item lists; items with an unknown status are counted as planned,
// matching how a half-written row should read while a run is in flight.
func ComputeRunCounts(items []RunItem) RunItemCounts {
	var counts RunItemCounts
	for _, item := range items {
		switch item.Status {
		case RunItemStatusDone:
			counts.Done++
		case RunItemStatusSkipped:
			counts.Skipped++
		case RunItemStatusFailed:
			counts.Failed++
		default:
			counts.Planned++
		}
	}
	return counts
}

// ShouldAllowRetryFailed returns true iff at least one item failed.
// Retrying with zero failed items would be a useless duplicate run; the UI
// gates the action on this instead of re-deriving the rule.
func ShouldAllowRetryFailed(items []RunItem) bool {
	return ComputeRunCounts(items).Failed > 0
}

// RunStatus is the derived aggregate state of a run
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusDone    RunStatus = "done"
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// String returns the string representation of RunStatus
func (s RunStatus) String() string {
	return string(s)
}

// SyncRun is one bulk catalog invocation and its immutable audit trail of
// items. Runs are never mutated in place once their items are terminal; a
// retry creates a new run referencing only the failed items.
type SyncRun struct {
	ID           uuid.UUID  `json:"id"`
	StoreID      string     `json:"store_id"`
	Type         RunType    `json:"type"`
	RetryOfRunID *uuid.UUID `json:"retry_of_run_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Items        []RunItem  `json:"items"`
}

// NewSyncRun creates a run with every item starting as planned
func NewSyncRun(storeID string, runType RunType, items []RunItem) (*SyncRun, error) {
	if storeID == "" {
		return nil, ErrStoreIDRequired
	}
	if !runType.IsValid() {
		return nil, ErrInvalidRunType
	}
	if len(items) == 0 {
		return nil, ErrRunNoItems
	}
	planned := make([]RunItem, len(items))
	for i, item := range items {
		item.Status = RunItemStatusPlanned
		item.ErrorCode = ""
		item.Hint = ""
		planned[i] = item
	}
	return &SyncRun{
		ID:        uuid.New(),
		StoreID:   storeID,
		Type:      runType,
		CreatedAt: time.Now(),
		Items:     planned,
	}, nil
}

// Counts returns the aggregate item tally for this run
func (r *SyncRun) Counts() RunItemCounts {
	return ComputeRunCounts(r.Items)
}

// Status derives the aggregate run state from its items: still running while
// any item is planned, then done / partial / failed by outcome mix.
func (r *SyncRun) Status() RunStatus {
	counts := r.Counts()
	if counts.Planned > 0 {
		return RunStatusRunning
	}
	if counts.Failed == 0 {
		return RunStatusDone
	}
	if counts.Done > 0 || counts.Skipped > 0 {
		return RunStatusPartial
	}
	return RunStatusFailed
}

// NewRetryRun builds a fresh run containing only this run's failed items,
// reset to planned. The source run is left untouched — it stays in history
// exactly as it finished. Errors when there is nothing to retry.
func (r *SyncRun) NewRetryRun() (*SyncRun, error) {
	failed := make([]RunItem, 0)
	for _, item := range r.Items {
		if item.Status == RunItemStatusFailed {
			failed = append(failed, item)
		}
	}
	if len(failed) == 0 {
		return nil, ErrRunNoFailedItems
	}
	retry, err := NewSyncRun(r.StoreID, r.Type, failed)
	if err != nil {
		return nil, err
	}
	sourceID := r.ID
	retry.RetryOfRunID = &sourceID
	return retry, nil
}
