package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// LoanService handles the loan lifecycle up to disbursement, plus reads
type LoanService struct {
	loanRepo        domain.LoanRepository
	borrowerRepo    domain.BorrowerRepository
	installmentRepo domain.InstallmentRepository
	repaymentRepo   domain.RepaymentRepository
	eventPublisher  websocket.EventPublisher
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo domain.LoanRepository, borrowerRepo domain.BorrowerRepository, installmentRepo domain.InstallmentRepository, repaymentRepo domain.RepaymentRepository) *LoanService {
	return &LoanService{
		loanRepo:        loanRepo,
		borrowerRepo:    borrowerRepo,
		installmentRepo: installmentRepo,
		repaymentRepo:   repaymentRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LoanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// LoanDetail is a loan together with its schedule, installment statuses
// overlaid against the clock
type LoanDetail struct {
	Loan         *domain.Loan          `json:"loan"`
	Installments []*domain.Installment `json:"installments"`
}

// CreateLoan validates and registers a loan awaiting approval. The quoted
// installment amount is the equal split of the total payable.
func (s *LoanService) CreateLoan(loan *domain.Loan) (*domain.Loan, error) {
	if err := loan.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.borrowerRepo.GetByID(loan.BorrowerID); err != nil {
		return nil, err
	}

	loan.InstallmentAmount = loan.TotalPayable.Div(decimal.NewFromInt(int64(loan.Duration))).Round(2)
	loan.Status = domain.LoanStatusPendingApproval

	created, err := s.loanRepo.Create(loan)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(created.OrganizationID, websocket.LoanUpdated(created))
	}
	return created, nil
}

// GetLoan returns the loan with its installment schedule. Installment
// statuses are the effective ones: an unpaid installment past its due date
// reads as overdue without that ever being written back.
func (s *LoanService) GetLoan(id uuid.UUID) (*LoanDetail, error) {
	loan, err := s.loanRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	installments, err := s.installmentRepo.GetByLoanID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, inst := range installments {
		inst.Status = inst.EffectiveStatus(now)
	}

	return &LoanDetail{Loan: loan, Installments: installments}, nil
}

// GetLoans lists an organization's loans, optionally filtered by status
func (s *LoanService) GetLoans(organizationID uuid.UUID, status *domain.LoanStatus) ([]*domain.Loan, error) {
	return s.loanRepo.GetAllByOrganization(organizationID, status)
}

// Approve moves a pending loan to approved
func (s *LoanService) Approve(id uuid.UUID) (*domain.Loan, error) {
	return s.transition(id, domain.LoanStatusApproved)
}

// Reject declines a loan that has not yet been disbursed
func (s *LoanService) Reject(id uuid.UUID) (*domain.Loan, error) {
	return s.transition(id, domain.LoanStatusRejected)
}

func (s *LoanService) transition(id uuid.UUID, next domain.LoanStatus) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !loan.CanTransitionTo(next) {
		return nil, domain.ErrLoanStatusTransition
	}

	updated, err := s.loanRepo.UpdateStatus(id, next)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(updated.OrganizationID, websocket.LoanUpdated(updated))
	}
	return updated, nil
}

// GetRepayments returns the loan's ledger entries
func (s *LoanService) GetRepayments(loanID uuid.UUID) ([]*domain.Repayment, error) {
	if _, err := s.loanRepo.GetByID(loanID); err != nil {
		return nil, err
	}
	return s.repaymentRepo.GetByLoanID(loanID)
}
