package domain

import (
	"time"
)

// EventType represents the type of domain event
type EventType int

const (
	EventTokenAdded EventType = iota
	EventTokenUpdated
	EventTokenRemoved
	EventMarketReconciled
	EventPersisted
)

func (t EventType) String() string {
	switch t {
	case EventTokenAdded:
		return "token.added"
	case EventTokenUpdated:
		return "token.updated"
	case EventTokenRemoved:
		return "token.removed"
	case EventMarketReconciled:
		return "market.reconciled"
	case EventPersisted:
		return "state.persisted"
	default:
		return "unknown"
	}
}

// Event represents a domain event
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent creates a new domain event
func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Event data structures

// TokenChangedData describes a membership change applied by a command.
type TokenChangedData struct {
	ID         TokenID    `json:"id"`
	Membership Membership `json:"membership"`
}

// MarketReconciledData describes one merged market snapshot.
type MarketReconciledData struct {
	Updated int       `json:"updated"`
	Missing []TokenID `json:"missing,omitempty"`
}

// PersistedData describes a successful snapshot write.
type PersistedData struct {
	Path   string `json:"path"`
	Tokens int    `json:"tokens"`
}
