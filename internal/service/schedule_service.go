package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// ScheduleService generates installment schedules and runs disbursement
type ScheduleService struct {
	pool            *pgxpool.Pool
	loanRepo        domain.LoanRepository
	installmentRepo domain.InstallmentRepository
	eventPublisher  websocket.EventPublisher
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(pool *pgxpool.Pool, loanRepo domain.LoanRepository, installmentRepo domain.InstallmentRepository) *ScheduleService {
	return &ScheduleService{
		pool:            pool,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ScheduleService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// GenerateSchedule builds the ordered installment sequence for a loan
// disbursed at the given moment. Deterministic: the same inputs always yield
// the same schedule. Each installment's expected amount is the equal division
// totalPayable / duration rounded to cents; the division remainder is not
// folded into the last installment, so across the full schedule up to one
// cent per installment can go unbilled (known limitation, kept as designed).
func GenerateSchedule(loanID uuid.UUID, totalPayable decimal.Decimal, duration int32, cycle domain.RepaymentCycle, disbursedAt time.Time) []*domain.Installment {
	if duration < 1 {
		return nil
	}

	expected := totalPayable.Div(decimal.NewFromInt(int64(duration))).Round(2)

	installments := make([]*domain.Installment, duration)
	for i := int32(1); i <= duration; i++ {
		installments[i-1] = &domain.Installment{
			LoanID:            loanID,
			InstallmentNumber: i,
			ExpectedAmount:    expected,
			PaidAmount:        decimal.Zero,
			DueDate:           dueDate(disbursedAt, cycle, int(i)),
			Status:            domain.InstallmentUnpaid,
		}
	}
	return installments
}

// dueDate adds n calendar intervals to the disbursement date. The first
// installment is never due on the disbursement date itself.
func dueDate(disbursedAt time.Time, cycle domain.RepaymentCycle, n int) time.Time {
	if cycle == domain.CycleWeekly {
		return disbursedAt.AddDate(0, 0, 7*n)
	}
	return disbursedAt.AddDate(0, n, 0)
}

// Disburse flips an approved loan to active, stamps the issue date and
// writes the full installment schedule, all in one transaction. A loan that
// already has installments cannot be disbursed again.
func (s *ScheduleService) Disburse(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusApproved {
		return nil, domain.ErrLoanNotDisbursable
	}

	now := time.Now()
	schedule := GenerateSchedule(loan.ID, loan.TotalPayable, loan.Duration, loan.RepaymentCycle, now)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	count, err := s.installmentRepo.CountByLoanTx(tx, loan.ID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, domain.ErrScheduleExists
	}

	if err := s.installmentRepo.CreateBatchTx(tx, schedule); err != nil {
		return nil, err
	}
	if err := s.loanRepo.DisburseTx(tx, loan.ID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	loan.Status = domain.LoanStatusActive
	loan.IssueDate = &now

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(loan.OrganizationID, websocket.LoanDisbursed(loan))
	}

	return loan, nil
}
