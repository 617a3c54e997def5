package websocket

import "github.com/google/uuid"

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to all clients connected to the specified organization
	Publish(organizationID uuid.UUID, event Event)

	// PublishAll sends an event to every connected client regardless of
	// organization. Used for events that cannot be attributed to one tenant,
	// such as payments held before any loan matched.
	PublishAll(event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting the event to the organization
func (h *Hub) Publish(organizationID uuid.UUID, event Event) {
	h.Broadcast(organizationID, event)
}

// PublishAll implements EventPublisher by broadcasting to every organization
func (h *Hub) PublishAll(event Event) {
	h.BroadcastAll(event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(organizationID uuid.UUID, event Event) {}

// PublishAll does nothing
func (n *NoOpPublisher) PublishAll(event Event) {}
