package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrBorrowerNameEmpty    = errors.New("borrower name is required")
	ErrBorrowerPhoneEmpty   = errors.New("borrower phone is required")
	ErrBorrowerPhoneInvalid = errors.New("borrower phone must be in local format")
)

// Borrower is a registered client of the organization. The phone number is
// stored in canonical local format (leading 0) and is the fallback key for
// matching inbound payments.
type Borrower struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organizationId"`
	BranchID       *uuid.UUID `json:"branchId,omitempty"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Phone          string     `json:"phone"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (b *Borrower) Validate() error {
	if b.FirstName == "" && b.LastName == "" {
		return ErrBorrowerNameEmpty
	}
	if b.Phone == "" {
		return ErrBorrowerPhoneEmpty
	}
	if b.Phone[0] != '0' {
		return ErrBorrowerPhoneInvalid
	}
	return nil
}

// FullName returns the borrower's display name
func (b *Borrower) FullName() string {
	switch {
	case b.FirstName == "":
		return b.LastName
	case b.LastName == "":
		return b.FirstName
	default:
		return b.FirstName + " " + b.LastName
	}
}

type BorrowerRepository interface {
	Create(borrower *Borrower) (*Borrower, error)
	GetByID(id uuid.UUID) (*Borrower, error)
	GetByPhone(phone string) (*Borrower, error)
	GetAllByOrganization(organizationID uuid.UUID) ([]*Borrower, error)
}
