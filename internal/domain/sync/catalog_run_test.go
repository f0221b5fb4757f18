package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRunCounts(t *testing.T) {
	tests := []struct {
		name  string
		items []RunItem
		want  RunItemCounts
	}{
		{"nil items", nil, RunItemCounts{}},
		{"empty items", []RunItem{}, RunItemCounts{}},
		{
			"mixed statuses",
			[]RunItem{
				{SKU: "A", Status: RunItemStatusDone},
				{SKU: "B", Status: RunItemStatusDone},
				{SKU: "C", Status: RunItemStatusFailed},
				{SKU: "D", Status: RunItemStatusSkipped},
				{SKU: "E", Status: RunItemStatusPlanned},
			},
			RunItemCounts{Planned: 1, Done: 2, Skipped: 1, Failed: 1},
		},
		{
			"unknown status counts as planned",
			[]RunItem{{SKU: "A", Status: "half-written"}, {SKU: "B"}},
			RunItemCounts{Planned: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRunCounts(tt.items)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.items), got.Total())
		})
	}
}

func TestShouldAllowRetryFailed(t *testing.T) {
	assert.False(t, ShouldAllowRetryFailed(nil))
	assert.False(t, ShouldAllowRetryFailed([]RunItem{{Status: RunItemStatusDone}}))
	assert.True(t, ShouldAllowRetryFailed([]RunItem{{Status: RunItemStatusFailed}}))
}

func TestRunItemTransitions(t *testing.T) {
	t.Run("planned to done", func(t *testing.T) {
		item := RunItem{SKU: "A", Status: RunItemStatusPlanned}
		require.NoError(t, item.MarkDone())
		assert.Equal(t, RunItemStatusDone, item.Status)
	})

	t.Run("planned to failed records error", func(t *testing.T) {
		item := RunItem{SKU: "A", Status: RunItemStatusPlanned}
		require.NoError(t, item.MarkFailed("EXT_409", "sku already exists"))
		assert.Equal(t, RunItemStatusFailed, item.Status)
		assert.Equal(t, "EXT_409", item.ErrorCode)
		assert.Equal(t, "sku already exists", item.Hint)
	})

	t.Run("terminal items reject transitions", func(t *testing.T) {
		item := RunItem{SKU: "A", Status: RunItemStatusDone}
		assert.ErrorIs(t, item.MarkFailed("X", ""), ErrRunItemTerminal)
		assert.ErrorIs(t, item.MarkSkipped(), ErrRunItemTerminal)
		assert.ErrorIs(t, item.MarkDone(), ErrRunItemTerminal)
	})
}

func TestNewSyncRun(t *testing.T) {
	t.Run("valid run starts all planned", func(t *testing.T) {
		run, err := NewSyncRun("store-1", RunTypeExport, []RunItem{
			{SKU: "A", Action: RunItemActionCreate, Status: RunItemStatusFailed, ErrorCode: "stale"},
			{SKU: "B", Action: RunItemActionUpdate},
		})
		require.NoError(t, err)
		assert.NotEqual(t, run.ID.String(), "00000000-0000-0000-0000-000000000000")
		assert.Equal(t, RunStatusRunning, run.Status())
		for _, item := range run.Items {
			assert.Equal(t, RunItemStatusPlanned, item.Status)
			assert.Empty(t, item.ErrorCode)
		}
	})

	t.Run("rejects missing store", func(t *testing.T) {
		_, err := NewSyncRun("", RunTypeExport, []RunItem{{SKU: "A"}})
		assert.ErrorIs(t, err, ErrStoreIDRequired)
	})

	t.Run("rejects invalid type", func(t *testing.T) {
		_, err := NewSyncRun("store-1", "bogus", []RunItem{{SKU: "A"}})
		assert.ErrorIs(t, err, ErrInvalidRunType)
	})

	t.Run("rejects empty items", func(t *testing.T) {
		_, err := NewSyncRun("store-1", RunTypeImport, nil)
		assert.ErrorIs(t, err, ErrRunNoItems)
	})
}

func TestSyncRunStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []RunItem
		want  RunStatus
	}{
		{"all planned", []RunItem{{Status: RunItemStatusPlanned}}, RunStatusRunning},
		{"all done", []RunItem{{Status: RunItemStatusDone}, {Status: RunItemStatusSkipped}}, RunStatusDone},
		{"mixed outcome", []RunItem{{Status: RunItemStatusDone}, {Status: RunItemStatusFailed}}, RunStatusPartial},
		{"all failed", []RunItem{{Status: RunItemStatusFailed}}, RunStatusFailed},
		{"failed but still running", []RunItem{{Status: RunItemStatusFailed}, {Status: RunItemStatusPlanned}}, RunStatusRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &SyncRun{Items: tt.items}
			assert.Equal(t, tt.want, run.Status())
		})
	}
}

func TestNewRetryRun(t *testing.T) {
	source, err := NewSyncRun("store-1", RunTypeSyncStock, []RunItem{
		{SKU: "A", Action: RunItemActionUpdate},
		{SKU: "B", Action: RunItemActionUpdate},
		{SKU: "C", Action: RunItemActionCreate},
	})
	require.NoError(t, err)
	require.NoError(t, source.Items[0].MarkDone())
	require.NoError(t, source.Items[1].MarkFailed("EXT_500", "store unavailable"))
	require.NoError(t, source.Items[2].MarkFailed("EXT_500", "store unavailable"))

	retry, err := source.NewRetryRun()
	require.NoError(t, err)

	assert.NotEqual(t, source.ID, retry.ID)
	require.NotNil(t, retry.RetryOfRunID)
	assert.Equal(t, source.ID, *retry.RetryOfRunID)
	assert.Equal(t, source.Type, retry.Type)

	// retry contains only the failed SKUs, reset to planned
	require.Len(t, retry.Items, 2)
	assert.Equal(t, "B", retry.Items[0].SKU)
	assert.Equal(t, "C", retry.Items[1].SKU)
	for _, item := range retry.Items {
		assert.Equal(t, RunItemStatusPlanned, item.Status)
		assert.Empty(t, item.ErrorCode)
	}

	// source run is untouched
	assert.Equal(t, RunStatusPartial, source.Status())
	assert.Equal(t, RunItemStatusFailed, source.Items[1].Status)

	t.Run("nothing to retry errors", func(t *testing.T) {
		clean, err := NewSyncRun("store-1", RunTypeExport, []RunItem{{SKU: "A"}})
		require.NoError(t, err)
		require.NoError(t, clean.Items[0].MarkDone())
		_, err = clean.NewRetryRun()
		assert.ErrorIs(t, err, ErrRunNoFailedItems)
	})
}
