package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionMethod tags where a repayment came from
type CollectionMethod string

const (
	MethodMobileMoney CollectionMethod = "mobile_money"
	MethodCash        CollectionMethod = "cash"
)

// Repayment is an append-only ledger entry for one settled external
// transaction. TransID is the payment network's transaction id and must be
// unique across the whole ledger: it is the idempotency key for the webhook.
// Repayments are never mutated or deleted.
type Repayment struct {
	ID                  uuid.UUID        `json:"id"`
	LoanID              uuid.UUID        `json:"loanId"`
	BorrowerID          uuid.UUID        `json:"borrowerId"`
	TransID             string           `json:"transId"`
	Amount              decimal.Decimal  `json:"amount"`
	PaymentDate         time.Time        `json:"paymentDate"`
	Method              CollectionMethod `json:"method"`
	BalanceAfterPayment decimal.Decimal  `json:"balanceAfterPayment"`
	CreatedAt           time.Time        `json:"createdAt"`
}

type RepaymentRepository interface {
	// ExistsByTransID checks the whole ledger, not a single loan
	ExistsByTransID(transID string) (bool, error)
	// CreateTx appends a ledger entry within the caller's transaction.
	// Returns ErrDuplicateTransaction when the trans id is already recorded.
	CreateTx(tx interface{}, repayment *Repayment) (*Repayment, error)
	GetByLoanID(loanID uuid.UUID) ([]*Repayment, error)
}
