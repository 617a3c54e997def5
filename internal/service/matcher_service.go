package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/util"
)

// Matcher resolves an inbound payment to the loan it funds
type Matcher interface {
	// Match returns the funding loan, or domain.ErrPaymentUnresolved when
	// neither the reference nor the phone number leads to one
	Match(billRef, msisdn string) (*domain.Loan, error)
}

// MatcherService implements the two-tier resolution strategy: an explicit
// account reference wins outright; otherwise the payer's phone number falls
// back to their most recently issued active loan.
type MatcherService struct {
	loanRepo     domain.LoanRepository
	borrowerRepo domain.BorrowerRepository
}

// NewMatcherService creates a new MatcherService
func NewMatcherService(loanRepo domain.LoanRepository, borrowerRepo domain.BorrowerRepository) *MatcherService {
	return &MatcherService{
		loanRepo:     loanRepo,
		borrowerRepo: borrowerRepo,
	}
}

// Match resolves a payment to a loan, reference first, phone second
func (s *MatcherService) Match(billRef, msisdn string) (*domain.Loan, error) {
	// Tier 1: the reference is a literal loan id
	if billRef != "" {
		if loanID, err := uuid.Parse(billRef); err == nil {
			loan, err := s.loanRepo.GetByID(loanID)
			if err == nil {
				return loan, nil
			}
			if !errors.Is(err, domain.ErrLoanNotFound) {
				return nil, err
			}
			// Unknown reference: fall through to phone matching
		}
	}

	// Tier 2: normalized phone → borrower → most recent active loan
	phone, ok := util.NormalizePhone(msisdn)
	if !ok {
		return nil, domain.ErrPaymentUnresolved
	}

	borrower, err := s.borrowerRepo.GetByPhone(phone)
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return nil, domain.ErrPaymentUnresolved
		}
		return nil, err
	}

	loan, err := s.loanRepo.GetLatestActiveByBorrower(borrower.ID)
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return nil, domain.ErrPaymentUnresolved
		}
		return nil, err
	}
	return loan, nil
}
