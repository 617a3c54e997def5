package service

import (
	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
)

// UnmatchedService exposes the reconciliation holding area to staff
type UnmatchedService struct {
	unmatchedRepo domain.UnmatchedPaymentRepository
}

// NewUnmatchedService creates a new UnmatchedService
func NewUnmatchedService(unmatchedRepo domain.UnmatchedPaymentRepository) *UnmatchedService {
	return &UnmatchedService{unmatchedRepo: unmatchedRepo}
}

// GetPending lists payments still awaiting manual reconciliation
func (s *UnmatchedService) GetPending() ([]*domain.UnmatchedPayment, error) {
	return s.unmatchedRepo.GetPending()
}

// Resolve marks a held payment as reconciled. The money movement itself is
// handled outside the system (typically a manually recorded repayment), so
// resolving only closes the record.
func (s *UnmatchedService) Resolve(id uuid.UUID) (*domain.UnmatchedPayment, error) {
	return s.unmatchedRepo.Resolve(id)
}
