package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus describes how much of an installment has been paid.
// Paid, Partial and Unpaid are persisted; Overdue depends on the clock and is
// overlaid at read time by EffectiveStatus.
type InstallmentStatus string

const (
	InstallmentUnpaid  InstallmentStatus = "unpaid"
	InstallmentPartial InstallmentStatus = "partial"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
)

// Installment is one scheduled partial repayment of a loan. Installments are
// created as a batch at disbursement and mutated only by payment allocation;
// they are never deleted. Invariant: 0 <= PaidAmount <= ExpectedAmount.
type Installment struct {
	ID                uuid.UUID         `json:"id"`
	LoanID            uuid.UUID         `json:"loanId"`
	InstallmentNumber int32             `json:"installmentNumber"`
	ExpectedAmount    decimal.Decimal   `json:"expectedAmount"`
	PaidAmount        decimal.Decimal   `json:"paidAmount"`
	DueDate           time.Time         `json:"dueDate"`
	Status            InstallmentStatus `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// AmountDue returns the unpaid remainder of the installment
func (i *Installment) AmountDue() decimal.Decimal {
	return i.ExpectedAmount.Sub(i.PaidAmount)
}

// EffectiveStatus derives the status from paid amount, expected amount and
// due date. Paid wins over Overdue: a fully settled installment is never late.
func (i *Installment) EffectiveStatus(now time.Time) InstallmentStatus {
	if i.PaidAmount.Equal(i.ExpectedAmount) {
		return InstallmentPaid
	}
	if i.DueDate.Before(truncateToDay(now)) {
		return InstallmentOverdue
	}
	if i.PaidAmount.GreaterThan(decimal.Zero) {
		return InstallmentPartial
	}
	return InstallmentUnpaid
}

// StoredStatus is the time-independent status written to the store
func StoredStatus(paid, expected decimal.Decimal) InstallmentStatus {
	if paid.Equal(expected) {
		return InstallmentPaid
	}
	if paid.GreaterThan(decimal.Zero) {
		return InstallmentPartial
	}
	return InstallmentUnpaid
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type InstallmentRepository interface {
	GetByLoanID(loanID uuid.UUID) ([]*Installment, error)
	// CreateBatchTx inserts a full schedule within the caller's transaction
	CreateBatchTx(tx interface{}, installments []*Installment) error
	CountByLoanTx(tx interface{}, loanID uuid.UUID) (int64, error)
	// GetOutstandingByLoanTx returns not-fully-paid installments ordered by
	// ascending due date, within the caller's transaction
	GetOutstandingByLoanTx(tx interface{}, loanID uuid.UUID) ([]*Installment, error)
	// SumPaidByLoanTx recomputes the loan's total paid amount from the
	// installment rows, within the caller's transaction
	SumPaidByLoanTx(tx interface{}, loanID uuid.UUID) (decimal.Decimal, error)
	// UpdatePaymentTx writes a new paid amount and status within the
	// caller's transaction
	UpdatePaymentTx(tx interface{}, id uuid.UUID, paidAmount decimal.Decimal, status InstallmentStatus) error
}
