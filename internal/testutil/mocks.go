package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/kopahq/kopa-backend/internal/notify"
	"github.com/kopahq/kopa-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// MockBorrowerRepository is a mock implementation of domain.BorrowerRepository
type MockBorrowerRepository struct {
	Borrowers map[uuid.UUID]*domain.Borrower
	ByPhone   map[string]*domain.Borrower
}

// NewMockBorrowerRepository creates a new MockBorrowerRepository
func NewMockBorrowerRepository() *MockBorrowerRepository {
	return &MockBorrowerRepository{
		Borrowers: make(map[uuid.UUID]*domain.Borrower),
		ByPhone:   make(map[string]*domain.Borrower),
	}
}

// Create creates a new borrower
func (m *MockBorrowerRepository) Create(borrower *domain.Borrower) (*domain.Borrower, error) {
	borrower.ID = uuid.New()
	borrower.CreatedAt = time.Now()
	m.AddBorrower(borrower)
	return borrower, nil
}

// GetByID retrieves a borrower by ID
func (m *MockBorrowerRepository) GetByID(id uuid.UUID) (*domain.Borrower, error) {
	if b, ok := m.Borrowers[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBorrowerNotFound
}

// GetByPhone retrieves a borrower by canonical local phone number
func (m *MockBorrowerRepository) GetByPhone(phone string) (*domain.Borrower, error) {
	if b, ok := m.ByPhone[phone]; ok {
		return b, nil
	}
	return nil, domain.ErrBorrowerNotFound
}

// GetAllByOrganization lists an organization's borrowers
func (m *MockBorrowerRepository) GetAllByOrganization(organizationID uuid.UUID) ([]*domain.Borrower, error) {
	var out []*domain.Borrower
	for _, b := range m.Borrowers {
		if b.OrganizationID == organizationID {
			out = append(out, b)
		}
	}
	return out, nil
}

// AddBorrower adds a borrower to the mock repository (helper for tests)
func (m *MockBorrowerRepository) AddBorrower(borrower *domain.Borrower) {
	m.Borrowers[borrower.ID] = borrower
	m.ByPhone[borrower.Phone] = borrower
}

// MockLoanRepository is a mock implementation of domain.LoanRepository
type MockLoanRepository struct {
	Loans map[uuid.UUID]*domain.Loan
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{Loans: make(map[uuid.UUID]*domain.Loan)}
}

// Create creates a new loan
func (m *MockLoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	loan.ID = uuid.New()
	loan.CreatedAt = time.Now()
	m.Loans[loan.ID] = loan
	return loan, nil
}

// GetByID retrieves a loan by ID
func (m *MockLoanRepository) GetByID(id uuid.UUID) (*domain.Loan, error) {
	if l, ok := m.Loans[id]; ok {
		return l, nil
	}
	return nil, domain.ErrLoanNotFound
}

// GetByIDTx retrieves a loan by ID within a transaction
func (m *MockLoanRepository) GetByIDTx(tx interface{}, id uuid.UUID) (*domain.Loan, error) {
	return m.GetByID(id)
}

// GetAllByOrganization lists an organization's loans
func (m *MockLoanRepository) GetAllByOrganization(organizationID uuid.UUID, status *domain.LoanStatus) ([]*domain.Loan, error) {
	var out []*domain.Loan
	for _, l := range m.Loans {
		if l.OrganizationID != organizationID {
			continue
		}
		if status != nil && l.Status != *status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// GetLatestActiveByBorrower returns the borrower's most recently issued active loan
func (m *MockLoanRepository) GetLatestActiveByBorrower(borrowerID uuid.UUID) (*domain.Loan, error) {
	var latest *domain.Loan
	for _, l := range m.Loans {
		if l.BorrowerID != borrowerID || l.Status != domain.LoanStatusActive || l.IssueDate == nil {
			continue
		}
		if latest == nil || l.IssueDate.After(*latest.IssueDate) {
			latest = l
		}
	}
	if latest == nil {
		return nil, domain.ErrLoanNotFound
	}
	return latest, nil
}

// UpdateStatus updates a loan's status
func (m *MockLoanRepository) UpdateStatus(id uuid.UUID, status domain.LoanStatus) (*domain.Loan, error) {
	l, ok := m.Loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now()
	return l, nil
}

// DisburseTx flips the loan to active and stamps the issue date
func (m *MockLoanRepository) DisburseTx(tx interface{}, id uuid.UUID, issueDate time.Time) error {
	l, ok := m.Loans[id]
	if !ok {
		return domain.ErrLoanNotFound
	}
	l.Status = domain.LoanStatusActive
	l.IssueDate = &issueDate
	return nil
}

// UpdateAfterPaymentTx updates status and last payment date
func (m *MockLoanRepository) UpdateAfterPaymentTx(tx interface{}, id uuid.UUID, status domain.LoanStatus, lastPayment time.Time) error {
	l, ok := m.Loans[id]
	if !ok {
		return domain.ErrLoanNotFound
	}
	l.Status = status
	l.LastPaymentDate = &lastPayment
	return nil
}

// AddLoan adds a loan to the mock repository (helper for tests)
func (m *MockLoanRepository) AddLoan(loan *domain.Loan) {
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	m.Loans[loan.ID] = loan
}

// MockInstallmentRepository is a mock implementation of domain.InstallmentRepository
type MockInstallmentRepository struct {
	Installments map[uuid.UUID]*domain.Installment
}

// NewMockInstallmentRepository creates a new MockInstallmentRepository
func NewMockInstallmentRepository() *MockInstallmentRepository {
	return &MockInstallmentRepository{Installments: make(map[uuid.UUID]*domain.Installment)}
}

// GetByLoanID lists a loan's installments ordered by installment number
func (m *MockInstallmentRepository) GetByLoanID(loanID uuid.UUID) ([]*domain.Installment, error) {
	out := m.byLoan(loanID)
	sortInstallments(out, func(a, b *domain.Installment) bool {
		return a.InstallmentNumber < b.InstallmentNumber
	})
	return out, nil
}

// CreateBatchTx inserts a full schedule
func (m *MockInstallmentRepository) CreateBatchTx(tx interface{}, installments []*domain.Installment) error {
	for _, inst := range installments {
		if inst.ID == uuid.Nil {
			inst.ID = uuid.New()
		}
		m.Installments[inst.ID] = inst
	}
	return nil
}

// CountByLoanTx counts a loan's installments
func (m *MockInstallmentRepository) CountByLoanTx(tx interface{}, loanID uuid.UUID) (int64, error) {
	return int64(len(m.byLoan(loanID))), nil
}

// GetOutstandingByLoanTx lists not-fully-paid installments ordered by due date
func (m *MockInstallmentRepository) GetOutstandingByLoanTx(tx interface{}, loanID uuid.UUID) ([]*domain.Installment, error) {
	var out []*domain.Installment
	for _, inst := range m.byLoan(loanID) {
		if inst.PaidAmount.LessThan(inst.ExpectedAmount) {
			out = append(out, inst)
		}
	}
	sortInstallments(out, func(a, b *domain.Installment) bool {
		return a.DueDate.Before(b.DueDate)
	})
	return out, nil
}

// SumPaidByLoanTx recomputes the loan's total paid amount
func (m *MockInstallmentRepository) SumPaidByLoanTx(tx interface{}, loanID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, inst := range m.byLoan(loanID) {
		sum = sum.Add(inst.PaidAmount)
	}
	return sum, nil
}

// UpdatePaymentTx writes a new paid amount and status
func (m *MockInstallmentRepository) UpdatePaymentTx(tx interface{}, id uuid.UUID, paidAmount decimal.Decimal, status domain.InstallmentStatus) error {
	inst, ok := m.Installments[id]
	if !ok {
		return domain.ErrInstallmentNotFound
	}
	inst.PaidAmount = paidAmount
	inst.Status = status
	return nil
}

// AddInstallment adds an installment to the mock repository (helper for tests)
func (m *MockInstallmentRepository) AddInstallment(inst *domain.Installment) {
	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	m.Installments[inst.ID] = inst
}

func (m *MockInstallmentRepository) byLoan(loanID uuid.UUID) []*domain.Installment {
	var out []*domain.Installment
	for _, inst := range m.Installments {
		if inst.LoanID == loanID {
			out = append(out, inst)
		}
	}
	return out
}

func sortInstallments(installments []*domain.Installment, less func(a, b *domain.Installment) bool) {
	for i := 1; i < len(installments); i++ {
		for j := i; j > 0 && less(installments[j], installments[j-1]); j-- {
			installments[j], installments[j-1] = installments[j-1], installments[j]
		}
	}
}

// MockRepaymentRepository is a mock implementation of domain.RepaymentRepository
type MockRepaymentRepository struct {
	Repayments map[string]*domain.Repayment
}

// NewMockRepaymentRepository creates a new MockRepaymentRepository
func NewMockRepaymentRepository() *MockRepaymentRepository {
	return &MockRepaymentRepository{Repayments: make(map[string]*domain.Repayment)}
}

// ExistsByTransID checks whether a transaction id is already recorded
func (m *MockRepaymentRepository) ExistsByTransID(transID string) (bool, error) {
	_, ok := m.Repayments[transID]
	return ok, nil
}

// CreateTx appends a ledger entry, rejecting duplicate transaction ids
func (m *MockRepaymentRepository) CreateTx(tx interface{}, repayment *domain.Repayment) (*domain.Repayment, error) {
	if _, ok := m.Repayments[repayment.TransID]; ok {
		return nil, domain.ErrDuplicateTransaction
	}
	repayment.ID = uuid.New()
	repayment.CreatedAt = time.Now()
	m.Repayments[repayment.TransID] = repayment
	return repayment, nil
}

// GetByLoanID lists a loan's ledger entries
func (m *MockRepaymentRepository) GetByLoanID(loanID uuid.UUID) ([]*domain.Repayment, error) {
	var out []*domain.Repayment
	for _, r := range m.Repayments {
		if r.LoanID == loanID {
			out = append(out, r)
		}
	}
	return out, nil
}

// AddRepayment adds a repayment to the mock repository (helper for tests)
func (m *MockRepaymentRepository) AddRepayment(repayment *domain.Repayment) {
	m.Repayments[repayment.TransID] = repayment
}

// MockUnmatchedRepository is a mock implementation of domain.UnmatchedPaymentRepository
type MockUnmatchedRepository struct {
	Records map[uuid.UUID]*domain.UnmatchedPayment
}

// NewMockUnmatchedRepository creates a new MockUnmatchedRepository
func NewMockUnmatchedRepository() *MockUnmatchedRepository {
	return &MockUnmatchedRepository{Records: make(map[uuid.UUID]*domain.UnmatchedPayment)}
}

// Create parks a payment in the holding area
func (m *MockUnmatchedRepository) Create(record *domain.UnmatchedPayment) (*domain.UnmatchedPayment, error) {
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	m.Records[record.ID] = record
	return record, nil
}

// GetPending lists payments still awaiting reconciliation
func (m *MockUnmatchedRepository) GetPending() ([]*domain.UnmatchedPayment, error) {
	var out []*domain.UnmatchedPayment
	for _, r := range m.Records {
		if r.Status == domain.UnmatchedPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// Resolve marks a held payment as reconciled
func (m *MockUnmatchedRepository) Resolve(id uuid.UUID) (*domain.UnmatchedPayment, error) {
	r, ok := m.Records[id]
	if !ok {
		return nil, domain.ErrUnmatchedNotFound
	}
	r.Status = domain.UnmatchedResolved
	return r, nil
}

// AddRecord adds an unmatched payment to the mock repository (helper for tests)
func (m *MockUnmatchedRepository) AddRecord(record *domain.UnmatchedPayment) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.Records[record.ID] = record
}

// MockNotifier is a mock implementation of notify.Notifier
type MockNotifier struct {
	Sent []notify.BalanceNotification
	Err  error
}

// SendBalanceNotification records the notification
func (m *MockNotifier) SendBalanceNotification(ctx context.Context, phone string, n notify.BalanceNotification) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, n)
	return nil
}

// MockArchive is a mock implementation of storage.ArchiveRepository
type MockArchive struct {
	Payloads [][]byte
	Err      error
}

// Archive records the payload
func (m *MockArchive) Archive(ctx context.Context, transID string, receivedAt time.Time, payload []byte) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Payloads = append(m.Payloads, payload)
	return "callbacks/test/" + transID + ".json", nil
}

// CaptureEventPublisher records published events for assertions
type CaptureEventPublisher struct {
	Events    []websocket.Event
	AllEvents []websocket.Event
}

// Publish records an organization-scoped event
func (p *CaptureEventPublisher) Publish(organizationID uuid.UUID, event websocket.Event) {
	p.Events = append(p.Events, event)
}

// PublishAll records a broadcast event
func (p *CaptureEventPublisher) PublishAll(event websocket.Event) {
	p.AllEvents = append(p.AllEvents, event)
}
