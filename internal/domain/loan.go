package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLoanPrincipalInvalid    = errors.New("loan principal must be positive")
	ErrLoanTotalPayableInvalid = errors.New("total payable must be at least the principal")
	ErrLoanDurationInvalid     = errors.New("loan duration must be at least 1 installment")
	ErrLoanCycleInvalid        = errors.New("repayment cycle must be weekly or monthly")
	ErrLoanStatusTransition    = errors.New("invalid loan status transition")
	ErrLoanNotDisbursable      = errors.New("loan must be approved before disbursement")
)

// LoanStatus is the lifecycle state of a loan. Transitions are monotonic:
// draft → pending_approval → approved → active → completed, with rejected
// reachable from pending_approval or approved. Loans are never deleted.
type LoanStatus string

const (
	LoanStatusDraft           LoanStatus = "draft"
	LoanStatusPendingApproval LoanStatus = "pending_approval"
	LoanStatusApproved        LoanStatus = "approved"
	LoanStatusActive          LoanStatus = "active"
	LoanStatusCompleted       LoanStatus = "completed"
	LoanStatusRejected        LoanStatus = "rejected"
)

// RepaymentCycle is the cadence installments are due on
type RepaymentCycle string

const (
	CycleWeekly  RepaymentCycle = "weekly"
	CycleMonthly RepaymentCycle = "monthly"
)

// Loan is the central lending record. TotalPayable is principal plus interest,
// fixed at creation; Duration is the number of installments the schedule will
// carry once the loan is disbursed.
type Loan struct {
	ID                uuid.UUID       `json:"id"`
	OrganizationID    uuid.UUID       `json:"organizationId"`
	BorrowerID        uuid.UUID       `json:"borrowerId"`
	ProductID         uuid.UUID       `json:"productId"`
	BranchID          *uuid.UUID      `json:"branchId,omitempty"`
	OfficerID         *uuid.UUID      `json:"officerId,omitempty"`
	Principal         decimal.Decimal `json:"principal"`
	TotalPayable      decimal.Decimal `json:"totalPayable"`
	InstallmentAmount decimal.Decimal `json:"installmentAmount"`
	Duration          int32           `json:"duration"`
	RepaymentCycle    RepaymentCycle  `json:"repaymentCycle"`
	Status            LoanStatus      `json:"status"`
	IssueDate         *time.Time      `json:"issueDate,omitempty"`
	LastPaymentDate   *time.Time      `json:"lastPaymentDate,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (l *Loan) Validate() error {
	if l.Principal.LessThanOrEqual(decimal.Zero) {
		return ErrLoanPrincipalInvalid
	}
	if l.TotalPayable.LessThan(l.Principal) {
		return ErrLoanTotalPayableInvalid
	}
	if l.Duration < 1 {
		return ErrLoanDurationInvalid
	}
	if l.RepaymentCycle != CycleWeekly && l.RepaymentCycle != CycleMonthly {
		return ErrLoanCycleInvalid
	}
	return nil
}

// loanTransitions lists the allowed next states for each status
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusDraft:           {LoanStatusPendingApproval},
	LoanStatusPendingApproval: {LoanStatusApproved, LoanStatusRejected},
	LoanStatusApproved:        {LoanStatusActive, LoanStatusRejected},
	LoanStatusActive:          {LoanStatusCompleted},
	LoanStatusCompleted:       {},
	LoanStatusRejected:        {},
}

// CanTransitionTo reports whether moving to the given status is allowed
func (l *Loan) CanTransitionTo(next LoanStatus) bool {
	for _, s := range loanTransitions[l.Status] {
		if s == next {
			return true
		}
	}
	return false
}

type LoanRepository interface {
	Create(loan *Loan) (*Loan, error)
	GetByID(id uuid.UUID) (*Loan, error)
	GetByIDTx(tx interface{}, id uuid.UUID) (*Loan, error)
	GetAllByOrganization(organizationID uuid.UUID, status *LoanStatus) ([]*Loan, error)
	// GetLatestActiveByBorrower returns the borrower's most recently issued
	// active loan, or ErrLoanNotFound
	GetLatestActiveByBorrower(borrowerID uuid.UUID) (*Loan, error)
	UpdateStatus(id uuid.UUID, status LoanStatus) (*Loan, error)
	// DisburseTx flips the loan to active and stamps the issue date within
	// the caller's transaction
	DisburseTx(tx interface{}, id uuid.UUID, issueDate time.Time) error
	// UpdateAfterPaymentTx updates status and last payment date within the
	// caller's transaction
	UpdateAfterPaymentTx(tx interface{}, id uuid.UUID, status LoanStatus, lastPayment time.Time) error
}
