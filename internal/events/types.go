// Package events provides event management functionality.
package events

// EventType represents different event types
type EventType string

const (
	// Cache lifecycle events
	CacheCleared       EventType = "CACHE_CLEARED"
	CacheStatusChanged EventType = "CACHE_STATUS_CHANGED"

	// System events
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)
