package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	OrganizationID() uuid.UUID
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by organization
// It is safe for concurrent use
type Hub struct {
	// organizations maps organization ID to a map of client ID to client
	organizations map[uuid.UUID]map[string]ClientInterface
	mu            sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		organizations: make(map[uuid.UUID]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its organization
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	orgID := client.OrganizationID()
	clientID := client.ID()

	if h.organizations[orgID] == nil {
		h.organizations[orgID] = make(map[string]ClientInterface)
	}

	h.organizations[orgID][clientID] = client

	log.Debug().
		Str("organization_id", orgID.String()).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	orgID := client.OrganizationID()
	clientID := client.ID()

	if clients, ok := h.organizations[orgID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			// Clean up empty organization maps
			if len(clients) == 0 {
				delete(h.organizations, orgID)
			}

			log.Debug().
				Str("organization_id", orgID.String()).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to all clients in a specific organization
func (h *Hub) Broadcast(organizationID uuid.UUID, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("organization_id", organizationID.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.organizations[organizationID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	// Send to each client asynchronously
	for _, client := range clientsCopy {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("organization_id", organizationID.String()).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("organization_id", organizationID.String()).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// BroadcastAll sends an event to every connected client across all organizations
func (h *Hub) BroadcastAll(event Event) {
	h.mu.RLock()
	orgIDs := make([]uuid.UUID, 0, len(h.organizations))
	for orgID := range h.organizations {
		orgIDs = append(orgIDs, orgID)
	}
	h.mu.RUnlock()

	for _, orgID := range orgIDs {
		h.Broadcast(orgID, event)
	}
}

// ClientCount returns the number of clients connected to an organization
func (h *Hub) ClientCount(organizationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.organizations[organizationID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all organizations
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.organizations {
		total += len(clients)
	}
	return total
}
