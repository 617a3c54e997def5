package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// maxAllocationAttempts bounds retries when the store aborts the
// serializable transaction on a concurrent conflict
const maxAllocationAttempts = 3

// Allocator applies a payment to a loan's installment schedule
type Allocator interface {
	Allocate(ctx context.Context, loanID, borrowerID uuid.UUID, transID string, amount decimal.Decimal, paymentDate time.Time) (*AllocationOutcome, error)
}

// AllocationOutcome reports the committed result of one payment
type AllocationOutcome struct {
	RepaymentID  uuid.UUID
	LoanStatus   domain.LoanStatus
	BalanceAfter decimal.Decimal
}

// InstallmentUpdate is one installment's new state in an allocation plan
type InstallmentUpdate struct {
	ID         uuid.UUID
	PaidAmount decimal.Decimal
	Status     domain.InstallmentStatus
}

// AllocationPlan is the computed effect of applying a payment, before any
// write happens
type AllocationPlan struct {
	Updates      []InstallmentUpdate
	TotalPaid    decimal.Decimal
	BalanceAfter decimal.Decimal
	Completed    bool
}

// ComputeAllocation distributes a payment across outstanding installments in
// the order given (callers pass them ascending by due date) — the waterfall:
// each installment is filled to its expected amount before the next is
// touched, and a final partial fill stops the walk.
//
// alreadyPaid is the sum of paid amounts across every installment of the
// loan, recomputed from the installment rows rather than read from a cached
// loan-level counter. Any amount left after all installments are full is
// absorbed at the loan level: no installment ever exceeds its expected
// amount, and the excess shows up only through the balance/Completed math.
func ComputeAllocation(outstanding []*domain.Installment, alreadyPaid, payment, totalPayable decimal.Decimal) AllocationPlan {
	plan := AllocationPlan{}

	remaining := payment
	for _, inst := range outstanding {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		amountDue := inst.AmountDue()
		if remaining.GreaterThanOrEqual(amountDue) {
			plan.Updates = append(plan.Updates, InstallmentUpdate{
				ID:         inst.ID,
				PaidAmount: inst.ExpectedAmount,
				Status:     domain.InstallmentPaid,
			})
			remaining = remaining.Sub(amountDue)
		} else {
			plan.Updates = append(plan.Updates, InstallmentUpdate{
				ID:         inst.ID,
				PaidAmount: inst.PaidAmount.Add(remaining),
				Status:     domain.InstallmentPartial,
			})
			remaining = decimal.Zero
		}
	}

	plan.TotalPaid = alreadyPaid.Add(payment)
	plan.BalanceAfter = totalPayable.Sub(plan.TotalPaid)
	plan.Completed = plan.BalanceAfter.LessThanOrEqual(decimal.Zero)
	return plan
}

// AllocationService runs the waterfall inside a serializable store
// transaction. All reads and writes for one payment happen in that single
// transaction; a conflict aborts the whole attempt and it is retried from
// the first read, so no partial effect is ever visible.
type AllocationService struct {
	pool            *pgxpool.Pool
	loanRepo        domain.LoanRepository
	installmentRepo domain.InstallmentRepository
	repaymentRepo   domain.RepaymentRepository
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(pool *pgxpool.Pool, loanRepo domain.LoanRepository, installmentRepo domain.InstallmentRepository, repaymentRepo domain.RepaymentRepository) *AllocationService {
	return &AllocationService{
		pool:            pool,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		repaymentRepo:   repaymentRepo,
	}
}

// Allocate applies the payment and appends the repayment ledger entry
func (s *AllocationService) Allocate(ctx context.Context, loanID, borrowerID uuid.UUID, transID string, amount decimal.Decimal, paymentDate time.Time) (*AllocationOutcome, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		outcome, err := s.allocateOnce(ctx, loanID, borrowerID, transID, amount, paymentDate)
		if err == nil {
			return outcome, nil
		}
		if !isSerializationFailure(err) {
			return nil, err
		}
		lastErr = err
		log.Warn().
			Err(err).
			Str("trans_id", transID).
			Str("loan_id", loanID.String()).
			Int("attempt", attempt).
			Msg("Allocation transaction conflicted, retrying")
	}
	return nil, fmt.Errorf("allocation retries exhausted: %w", lastErr)
}

func (s *AllocationService) allocateOnce(ctx context.Context, loanID, borrowerID uuid.UUID, transID string, amount decimal.Decimal, paymentDate time.Time) (*AllocationOutcome, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Re-read everything inside the transaction; nothing read before it counts
	loan, err := s.loanRepo.GetByIDTx(tx, loanID)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.installmentRepo.GetOutstandingByLoanTx(tx, loan.ID)
	if err != nil {
		return nil, err
	}
	alreadyPaid, err := s.installmentRepo.SumPaidByLoanTx(tx, loan.ID)
	if err != nil {
		return nil, err
	}

	plan := ComputeAllocation(outstanding, alreadyPaid, amount, loan.TotalPayable)

	for _, update := range plan.Updates {
		if err := s.installmentRepo.UpdatePaymentTx(tx, update.ID, update.PaidAmount, update.Status); err != nil {
			return nil, err
		}
	}

	newStatus := loan.Status
	if plan.Completed && loan.CanTransitionTo(domain.LoanStatusCompleted) {
		newStatus = domain.LoanStatusCompleted
	}
	if err := s.loanRepo.UpdateAfterPaymentTx(tx, loan.ID, newStatus, paymentDate); err != nil {
		return nil, err
	}

	repayment, err := s.repaymentRepo.CreateTx(tx, &domain.Repayment{
		LoanID:              loan.ID,
		BorrowerID:          borrowerID,
		TransID:             transID,
		Amount:              amount,
		PaymentDate:         paymentDate,
		Method:              domain.MethodMobileMoney,
		BalanceAfterPayment: plan.BalanceAfter,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &AllocationOutcome{
		RepaymentID:  repayment.ID,
		LoanStatus:   newStatus,
		BalanceAfter: plan.BalanceAfter,
	}, nil
}

// isSerializationFailure reports whether the store aborted the transaction
// because a concurrently committed transaction touched the same rows
// (serialization_failure or deadlock_detected)
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
