// Package sync holds the domain model of the external commerce
// synchronization engine: normalized store settings with legacy fallback,
// catalog run tracking with partial-failure semantics, and the read models
// of the worker's job queue and webhook inbox.
package sync
