package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		attempt int
		base    time.Duration
	}{
		{"first attempt", 1, 30 * time.Second},
		{"second attempt doubles", 2, time.Minute},
		{"attempt below one treated as one", 0, 30 * time.Second},
		{"curve caps at one hour", 10, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delay := JobRetryDelay(tt.attempt)
			assert.GreaterOrEqual(t, delay, tt.base)
			assert.Less(t, delay, tt.base+JobRetryJitter)
		})
	}
}

func TestSyncJobRequeue(t *testing.T) {
	t.Run("dead job moves back to queued", func(t *testing.T) {
		nextRun := time.Now().Add(time.Hour)
		job := &SyncJob{
			ID:        "job-1",
			Status:    JobStatusDead,
			Attempts:  7,
			NextRunAt: &nextRun,
			LastError: "store unreachable",
		}
		require.NoError(t, job.Requeue())
		assert.Equal(t, JobStatusQueued, job.Status)
		assert.Nil(t, job.NextRunAt)
		assert.Empty(t, job.LastError)
		// attempt accounting belongs to the worker
		assert.Equal(t, 7, job.Attempts)
	})

	t.Run("non-dead jobs refuse requeue", func(t *testing.T) {
		for _, status := range []JobStatus{JobStatusQueued, JobStatusRunning, JobStatusError} {
			job := &SyncJob{ID: "job-1", Status: status}
			assert.ErrorIs(t, job.Requeue(), ErrJobNotDead, "status %s", status)
		}
	})
}

func TestCredentialsRedacted(t *testing.T) {
	assert.Equal(t, "(unset)", Credentials{}.Redacted())

	redacted := Credentials{ConsumerKey: "ck_1234567890abcdef", ConsumerSecret: "cs_secret"}.Redacted()
	assert.NotContains(t, redacted, "1234567890abcdef")
	assert.Contains(t, redacted, "ck_123")

	short := Credentials{ConsumerKey: "ck_12"}.Redacted()
	assert.Equal(t, "ck***", short)

	// keys too short for a prefix are fully masked, never sliced
	assert.Equal(t, "*", Credentials{ConsumerKey: "k"}.Redacted())
	assert.Equal(t, "**", Credentials{ConsumerKey: "ck"}.Redacted())
	assert.Equal(t, "ck*", Credentials{ConsumerKey: "ck_"}.Redacted())
}
