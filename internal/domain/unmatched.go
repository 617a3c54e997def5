package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnmatchedStatus tracks manual reconciliation of a held payment
type UnmatchedStatus string

const (
	UnmatchedPending  UnmatchedStatus = "pending"
	UnmatchedResolved UnmatchedStatus = "resolved"
)

// UnmatchedPayment is the holding-area record for a payment that could not be
// applied: no loan matched, or allocation failed after retries. The webhook
// still acknowledges the gateway; staff reconcile these records by hand.
type UnmatchedPayment struct {
	ID        uuid.UUID       `json:"id"`
	TransID   string          `json:"transId"`
	BillRef   string          `json:"billRef,omitempty"`
	MSISDN    string          `json:"msisdn,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Payload   []byte          `json:"payload,omitempty"`
	Reason    string          `json:"reason"`
	Status    UnmatchedStatus `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

type UnmatchedPaymentRepository interface {
	Create(record *UnmatchedPayment) (*UnmatchedPayment, error)
	GetPending() ([]*UnmatchedPayment, error)
	Resolve(id uuid.UUID) (*UnmatchedPayment, error)
}
