package sync

import "errors"

// ---------------------------------------------------------------------------
// Sync Domain Errors
// ---------------------------------------------------------------------------

var (
	// Store errors
	ErrStoreIDRequired    = errors.New("sync: store id is required")
	ErrStoreNotConfigured = errors.New("sync: store not configured")

	// Credential errors
	ErrCredentialsMissingKey    = errors.New("sync: consumer key is required")
	ErrCredentialsMissingSecret = errors.New("sync: consumer secret is required")
	ErrCredentialsMissingURL    = errors.New("sync: store base URL is required")
	ErrInvalidAuthMode          = errors.New("sync: invalid auth mode")

	// Run errors
	ErrRunNoItems       = errors.New("sync: run has no items")
	ErrRunNoFailedItems = errors.New("sync: run has no failed items to retry")
	ErrRunItemTerminal  = errors.New("sync: run item already in terminal status")
	ErrInvalidRunType   = errors.New("sync: invalid run type")

	// Job errors
	ErrJobNotDead = errors.New("sync: only dead jobs can be requeued")

	// Control-plane errors
	ErrActionUnknown   = errors.New("sync: unknown control-plane action")
	ErrSkuListEmpty    = errors.New("sync: sku list is empty")
	ErrOrderIDRequired = errors.New("sync: external order id is required")
	ErrJobIDRequired   = errors.New("sync: job id is required")
	ErrRunIDRequired   = errors.New("sync: run id is required")
)
