package sync

import (
	"math/rand"
	"time"
)

// ---------------------------------------------------------------------------
// SyncJob — read model of the worker's durable queue entries
// ---------------------------------------------------------------------------

// JobStatus represents the lifecycle state of a queued sync job
type JobStatus string

const (
	// JobStatusQueued means the job is waiting for a worker slot
	JobStatusQueued JobStatus = "queued"
	// JobStatusRunning means a worker currently owns the job
	JobStatusRunning JobStatus = "running"
	// JobStatusError means the last attempt failed and the job is scheduled
	// for another attempt at next_run_at
	JobStatusError JobStatus = "error"
	// JobStatusDead means the job exhausted its attempts and needs manual requeue
	JobStatusDead JobStatus = "dead"
)

// IsValid returns true if the status is valid
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusQueued, JobStatusRunning, JobStatusError, JobStatusDead:
		return true
	}
	return false
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// Job retry curve. The worker owns scheduling; these constants document the
// curve it applies so status views can explain next_run_at to operators.
const (
	JobRetryBaseDelay = 30 * time.Second
	JobRetryMaxDelay  = time.Hour
	JobRetryJitter    = 2 * time.Second
)

// JobRetryDelay returns the wait before the given attempt number (1-based):
// exponential from 30s, capped at 1h, plus up to 2s of random jitter.
func JobRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := JobRetryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= JobRetryMaxDelay {
			delay = JobRetryMaxDelay
			break
		}
	}
	return delay + time.Duration(rand.Int63n(int64(JobRetryJitter)))
}

// SyncJob is one queue entry owned by the worker boundary. This core only
// reads job lists and may request a dead job be requeued; it never writes
// jobs directly.
type SyncJob struct {
	ID        string     `json:"id"`
	StoreID   string     `json:"store_id"`
	Type      string     `json:"type"`
	Status    JobStatus  `json:"status"`
	Attempts  int        `json:"attempts"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Requeue moves a dead job back to queued so the worker picks it up again.
// Clears the schedule and the recorded error; whether attempts reset is the
// worker's decision, so they are left untouched here.
func (j *SyncJob) Requeue() error {
	if j.Status != JobStatusDead {
		return ErrJobNotDead
	}
	j.Status = JobStatusQueued
	j.NextRunAt = nil
	j.LastError = ""
	return nil
}
