package sync

import (
	"fmt"
	"time"

	domain "github.com/revo/commerce-sync/internal/domain/sync"
)

// Severity ranks a health finding
type Severity string

const (
	SeverityOK       Severity = "ok"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Finding codes
const (
	FindingWorkerLag        = "WORKER_LAG"
	FindingWebhookStale     = "WEBHOOK_STALE"
	FindingAuthFailing      = "AUTH_FAILING"
	FindingErrorRate        = "ERROR_RATE"
	FindingMapConflicts     = "MAP_CONFLICTS"
	FindingOrderImportStale = "ORDER_IMPORT_STALE"
)

// Finding is one health observation derived from a store status snapshot
type Finding struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Thresholds are the tunables of health evaluation. All values must be set;
// use DefaultThresholds or map them from configuration.
type Thresholds struct {
	WorkerErrorCritical   int
	WorkerQueuedWarning   int
	WebhookStaleWarning   time.Duration
	WebhookStaleCritical  time.Duration
	ErrorRateWarnJobs     int
	ErrorRateWarnRatio    float64
	ErrorRateCriticalJobs int
	ErrorRateCritRatio    float64
	OrderImportWarning    time.Duration
	OrderImportCritical   time.Duration
}

// DefaultThresholds returns the stock thresholds
func DefaultThresholds() Thresholds {
	return Thresholds{
		WorkerErrorCritical:   5,
		WorkerQueuedWarning:   10,
		WebhookStaleWarning:   60 * time.Minute,
		WebhookStaleCritical:  180 * time.Minute,
		ErrorRateWarnJobs:     2,
		ErrorRateWarnRatio:    0.2,
		ErrorRateCriticalJobs: 3,
		ErrorRateCritRatio:    0.5,
		OrderImportWarning:    120 * time.Minute,
		OrderImportCritical:   360 * time.Minute,
	}
}

// HealthReport is the evaluated health of one store
type HealthReport struct {
	Severity Severity  `json:"severity"`
	Findings []Finding `json:"findings"`
}

// EvaluateHealth derives findings from a status snapshot. It is purely
// client-side: the worker reports raw numbers, this decides what they mean.
// The report severity is the worst finding severity, or ok with no findings.
func EvaluateHealth(status *StoreStatusResult, th Thresholds, now time.Time) HealthReport {
	report := HealthReport{Severity: SeverityOK}
	if status == nil {
		return report
	}

	add := func(f Finding) {
		report.Findings = append(report.Findings, f)
		if severityRank(f.Severity) > severityRank(report.Severity) {
			report.Severity = f.Severity
		}
	}

	if f, ok := evalWorkerLag(status.Queue, th); ok {
		add(f)
	}
	if f, ok := evalWebhookFreshness(status.Webhooks, th, now); ok {
		add(f)
	}
	if f, ok := evalAuth(status.Health); ok {
		add(f)
	}
	if f, ok := evalErrorRate(status.RecentJobs, th); ok {
		add(f)
	}
	if status.Map.Conflicts > 0 {
		add(Finding{
			Code:     FindingMapConflicts,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d product map conflicts need manual resolution", status.Map.Conflicts),
		})
	}
	if f, ok := evalOrderImport(status.Orders, th, now); ok {
		add(f)
	}

	return report
}

func evalWorkerLag(q QueueDepth, th Thresholds) (Finding, bool) {
	stuck := q.Error + q.Dead
	if stuck >= th.WorkerErrorCritical {
		return Finding{
			Code:     FindingWorkerLag,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("%d jobs stuck in error or dead state", stuck),
		}, true
	}
	if q.Queued >= th.WorkerQueuedWarning {
		return Finding{
			Code:     FindingWorkerLag,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d jobs waiting in queue", q.Queued),
		}, true
	}
	return Finding{}, false
}

func evalWebhookFreshness(w WebhookFreshness, th Thresholds, now time.Time) (Finding, bool) {
	// unregistered webhooks are reported elsewhere; staleness only applies
	// once a delivery has ever arrived
	if !w.Registered || w.LastReceivedAt == nil {
		return Finding{}, false
	}
	age := now.Sub(*w.LastReceivedAt)
	switch {
	case age >= th.WebhookStaleCritical:
		return Finding{
			Code:     FindingWebhookStale,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("no webhook received for %s", formatAge(age)),
		}, true
	case age >= th.WebhookStaleWarning:
		return Finding{
			Code:     FindingWebhookStale,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("no webhook received for %s", formatAge(age)),
		}, true
	}
	return Finding{}, false
}

func evalAuth(h HealthSnapshot) (Finding, bool) {
	if h.HTTPStatus == 401 || h.HTTPStatus == 403 {
		return Finding{
			Code:     FindingAuthFailing,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("store API rejected credentials (HTTP %d)", h.HTTPStatus),
		}, true
	}
	return Finding{}, false
}

func evalErrorRate(jobs []domain.SyncJob, th Thresholds) (Finding, bool) {
	if len(jobs) == 0 {
		return Finding{}, false
	}
	failed := 0
	for _, j := range jobs {
		if j.Status == domain.JobStatusError || j.Status == domain.JobStatusDead {
			failed++
		}
	}
	ratio := float64(failed) / float64(len(jobs))
	if failed >= th.ErrorRateCriticalJobs && ratio >= th.ErrorRateCritRatio {
		return Finding{
			Code:     FindingErrorRate,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("%d of %d recent jobs failed", failed, len(jobs)),
		}, true
	}
	if failed >= th.ErrorRateWarnJobs && ratio >= th.ErrorRateWarnRatio {
		return Finding{
			Code:     FindingErrorRate,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("%d of %d recent jobs failed", failed, len(jobs)),
		}, true
	}
	return Finding{}, false
}

func evalOrderImport(o OrderImportFreshness, th Thresholds, now time.Time) (Finding, bool) {
	if o.LastImportedAt == nil {
		return Finding{}, false
	}
	age := now.Sub(*o.LastImportedAt)
	switch {
	case age >= th.OrderImportCritical:
		return Finding{
			Code:     FindingOrderImportStale,
			Severity: SeverityCritical,
			Message:  fmt.Sprintf("no order imported for %s", formatAge(age)),
		}, true
	case age >= th.OrderImportWarning:
		return Finding{
			Code:     FindingOrderImportStale,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("no order imported for %s", formatAge(age)),
		}, true
	}
	return Finding{}, false
}

func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

func formatAge(d time.Duration) string {
	if d >= 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
