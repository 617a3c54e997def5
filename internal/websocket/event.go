package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the kind of change the event describes
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeUpdated   EventType = "updated"
	EventTypeDisbursed EventType = "disbursed"
	EventTypeCompleted EventType = "completed"
)

// EntityType represents the entity the event is about
type EntityType string

const (
	EntityTypeLoan      EntityType = "loan"
	EntityTypeRepayment EntityType = "repayment"
	EntityTypeUnmatched EntityType = "unmatched_payment"
)

// Event represents a WebSocket event message sent to back-office clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "repayment.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "repayment"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RepaymentCreated creates a repayment.created event
func RepaymentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeRepayment, payload)
}

// LoanUpdated creates a loan.updated event
func LoanUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeLoan, payload)
}

// LoanDisbursed creates a loan.disbursed event
func LoanDisbursed(payload interface{}) Event {
	return NewEvent(EventTypeDisbursed, EntityTypeLoan, payload)
}

// LoanCompleted creates a loan.completed event
func LoanCompleted(payload interface{}) Event {
	return NewEvent(EventTypeCompleted, EntityTypeLoan, payload)
}

// UnmatchedPaymentCreated creates an unmatched_payment.created event
func UnmatchedPaymentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeUnmatched, payload)
}
