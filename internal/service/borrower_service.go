package service

import (
	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
)

// BorrowerService handles borrower registration and reads
type BorrowerService struct {
	borrowerRepo domain.BorrowerRepository
}

// NewBorrowerService creates a new BorrowerService
func NewBorrowerService(borrowerRepo domain.BorrowerRepository) *BorrowerService {
	return &BorrowerService{borrowerRepo: borrowerRepo}
}

// CreateBorrower validates and registers a borrower
func (s *BorrowerService) CreateBorrower(borrower *domain.Borrower) (*domain.Borrower, error) {
	if err := borrower.Validate(); err != nil {
		return nil, err
	}
	return s.borrowerRepo.Create(borrower)
}

// GetBorrower returns one borrower by id
func (s *BorrowerService) GetBorrower(id uuid.UUID) (*domain.Borrower, error) {
	return s.borrowerRepo.GetByID(id)
}

// GetBorrowers lists an organization's borrowers
func (s *BorrowerService) GetBorrowers(organizationID uuid.UUID) ([]*domain.Borrower, error) {
	return s.borrowerRepo.GetAllByOrganization(organizationID)
}
