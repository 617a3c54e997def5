package websocket

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id             string
	organizationID uuid.UUID
	messages       [][]byte
	mu             sync.Mutex
	closed         bool
}

func newMockClient(id string, organizationID uuid.UUID) *mockClient {
	return &mockClient{
		id:             id,
		organizationID: organizationID,
		messages:       make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) OrganizationID() uuid.UUID {
	return m.organizationID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	org1 := uuid.New()
	org2 := uuid.New()

	client1 := newMockClient("client-1", org1)
	client2 := newMockClient("client-2", org1)
	client3 := newMockClient("client-3", org2)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(org1))
	assert.Equal(t, 1, hub.ClientCount(org2))
	assert.Equal(t, 0, hub.ClientCount(uuid.New()))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(org1))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(org1))
	assert.Equal(t, 0, hub.ClientCount(org2))
}

func TestHub_Broadcast_OrganizationIsolation(t *testing.T) {
	hub := NewHub()

	org1 := uuid.New()
	org2 := uuid.New()

	client1a := newMockClient("client-1a", org1)
	client1b := newMockClient("client-1b", org1)
	client2 := newMockClient("client-2", org2)

	hub.Register(client1a)
	hub.Register(client1b)
	hub.Register(client2)

	evt := RepaymentCreated(map[string]interface{}{"transId": "TX1"})
	hub.Broadcast(org1, evt)

	// Give goroutines time to process
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client1a.GetMessages(), 1, "client1a should receive 1 message")
	assert.Len(t, client1b.GetMessages(), 1, "client1b should receive 1 message")
	assert.Len(t, client2.GetMessages(), 0, "client2 should not receive messages")
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", uuid.New())
	client2 := newMockClient("client-2", uuid.New())

	hub.Register(client1)
	hub.Register(client2)

	evt := UnmatchedPaymentCreated(map[string]interface{}{"transId": "TX1"})
	hub.BroadcastAll(evt)

	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client1.GetMessages(), 1)
	assert.Len(t, client2.GetMessages(), 1)
}

func TestHub_Broadcast_NoClients(t *testing.T) {
	hub := NewHub()

	// Should not panic with no registered clients
	hub.Broadcast(uuid.New(), LoanUpdated(map[string]interface{}{}))
}
