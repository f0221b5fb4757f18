package sync

import "time"

// ---------------------------------------------------------------------------
// WebhookEvent — read model of inbound platform notifications
// ---------------------------------------------------------------------------

// WebhookProcessStatus represents how far an inbound webhook delivery got
type WebhookProcessStatus string

const (
	WebhookStatusReceived  WebhookProcessStatus = "received"
	WebhookStatusProcessed WebhookProcessStatus = "processed"
	WebhookStatusError     WebhookProcessStatus = "error"
	WebhookStatusIgnored   WebhookProcessStatus = "ignored"
)

// IsValid returns true if the status is valid
func (s WebhookProcessStatus) IsValid() bool {
	switch s {
	case WebhookStatusReceived, WebhookStatusProcessed, WebhookStatusError, WebhookStatusIgnored:
		return true
	}
	return false
}

// String returns the string representation of WebhookProcessStatus
func (s WebhookProcessStatus) String() string {
	return string(s)
}

// WebhookEvent is one inbound notification from the external platform.
// Produced by the webhook receiver, read here purely for diagnostics.
type WebhookEvent struct {
	ID            string               `json:"id"`
	StoreID       string               `json:"store_id"`
	Topic         string               `json:"topic"`
	ExternalID    string               `json:"external_id,omitempty"`
	ProcessStatus WebhookProcessStatus `json:"process_status"`
	ErrorCode     string               `json:"error_code,omitempty"`
	LastError     string               `json:"last_error,omitempty"`
	ReceivedAt    time.Time            `json:"received_at"`
}
