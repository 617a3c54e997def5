package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypes(t *testing.T) {
	tests := []struct {
		event    Event
		wantType string
		entity   EntityType
	}{
		{RepaymentCreated(nil), "repayment.created", EntityTypeRepayment},
		{LoanUpdated(nil), "loan.updated", EntityTypeLoan},
		{LoanDisbursed(nil), "loan.disbursed", EntityTypeLoan},
		{LoanCompleted(nil), "loan.completed", EntityTypeLoan},
		{UnmatchedPaymentCreated(nil), "unmatched_payment.created", EntityTypeUnmatched},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.wantType, tt.event.Type)
		assert.Equal(t, tt.entity, tt.event.Entity)
		assert.False(t, tt.event.Timestamp.IsZero())
	}
}

func TestEventToJSON(t *testing.T) {
	evt := RepaymentCreated(map[string]interface{}{"transId": "TX1", "amount": "150.00"})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "repayment.created", decoded["type"])
	assert.Equal(t, "repayment", decoded["entity"])

	payload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "TX1", payload["transId"])
}
