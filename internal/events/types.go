// internal/events/types.go
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

const (
	// Catalog events
	CatalogLoaded EventType = "catalog.loaded"

	// Swap events
	SwapSubmitted EventType = "swap.submitted"
	SwapSucceeded EventType = "swap.succeeded"
	SwapFailed    EventType = "swap.failed"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// NewBase stamps an event of type t with the current time.
func NewBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, EventTime: time.Now()}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// CatalogLoadedEvent is emitted once the token catalog is ready.
type CatalogLoadedEvent struct {
	BaseEvent
	Tokens  int
	Symbols []string
}

// SwapDetails identifies the quote being submitted. Amounts are the
// displayed strings.
type SwapDetails struct {
	FromSymbol string
	ToSymbol   string
	FromAmount string
	ToAmount   string
	Rate       string
}

// SwapSubmittedEvent is emitted when a confirmation starts.
type SwapSubmittedEvent struct {
	BaseEvent
	Swap SwapDetails
}

// SwapSucceededEvent is emitted when the simulated transaction lands.
type SwapSucceededEvent struct {
	BaseEvent
	TxID  uuid.UUID
	Swap  SwapDetails
	Delay time.Duration
}

// SwapFailedEvent is emitted when the simulated transaction fails or the
// caller stops waiting.
type SwapFailedEvent struct {
	BaseEvent
	TxID  uuid.UUID
	Swap  SwapDetails
	Error error
}
