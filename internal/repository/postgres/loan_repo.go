package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kopahq/kopa-backend/internal/domain"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, organization_id, borrower_id, product_id, branch_id, officer_id,
	principal, total_payable, installment_amount, duration, repayment_cycle,
	status, issue_date, last_payment_date, created_at, updated_at`

// Create inserts a new loan
func (r *LoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	ctx := context.Background()

	principal, err := decimalToPgNumeric(loan.Principal)
	if err != nil {
		return nil, err
	}
	totalPayable, err := decimalToPgNumeric(loan.TotalPayable)
	if err != nil {
		return nil, err
	}
	installmentAmount, err := decimalToPgNumeric(loan.InstallmentAmount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO loans (organization_id, borrower_id, product_id, branch_id, officer_id,
			principal, total_payable, installment_amount, duration, repayment_cycle, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+loanColumns,
		loan.OrganizationID, loan.BorrowerID, loan.ProductID, loan.BranchID, loan.OfficerID,
		principal, totalPayable, installmentAmount, loan.Duration, string(loan.RepaymentCycle), string(loan.Status),
	)
	return scanLoan(row)
}

// GetByID retrieves a loan by id
func (r *LoanRepository) GetByID(id uuid.UUID) (*domain.Loan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	return scanLoan(row)
}

// GetByIDTx retrieves a loan by id within a transaction
func (r *LoanRepository) GetByIDTx(tx interface{}, id uuid.UUID) (*domain.Loan, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}
	ctx := context.Background()
	row := pgxTx.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
	return scanLoan(row)
}

// GetAllByOrganization retrieves loans for an organization, optionally
// filtered by status, newest first
func (r *LoanRepository) GetAllByOrganization(organizationID uuid.UUID, status *domain.LoanStatus) ([]*domain.Loan, error) {
	ctx := context.Background()

	query := `SELECT ` + loanColumns + ` FROM loans WHERE organization_id = $1`
	args := []any{organizationID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLoans(rows)
}

// GetLatestActiveByBorrower returns the borrower's most recently issued
// active loan. This is the tie-break for phone-matched payments when a
// borrower has several historical loans.
func (r *LoanRepository) GetLatestActiveByBorrower(borrowerID uuid.UUID) (*domain.Loan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		SELECT `+loanColumns+` FROM loans
		WHERE borrower_id = $1 AND status = $2
		ORDER BY issue_date DESC
		LIMIT 1`, borrowerID, string(domain.LoanStatusActive))
	return scanLoan(row)
}

// UpdateStatus moves the loan to a new lifecycle status
func (r *LoanRepository) UpdateStatus(id uuid.UUID, status domain.LoanStatus) (*domain.Loan, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE loans SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+loanColumns, id, string(status))
	return scanLoan(row)
}

// DisburseTx flips the loan to active and stamps the issue date within the
// caller's transaction
func (r *LoanRepository) DisburseTx(tx interface{}, id uuid.UUID, issueDate time.Time) error {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return errors.New("invalid transaction type")
	}
	ctx := context.Background()
	tag, err := pgxTx.Exec(ctx, `
		UPDATE loans SET status = $2, issue_date = $3, updated_at = now()
		WHERE id = $1`, id, string(domain.LoanStatusActive), issueDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

// UpdateAfterPaymentTx updates the loan's status and last payment date within
// the caller's transaction
func (r *LoanRepository) UpdateAfterPaymentTx(tx interface{}, id uuid.UUID, status domain.LoanStatus, lastPayment time.Time) error {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return errors.New("invalid transaction type")
	}
	ctx := context.Background()
	tag, err := pgxTx.Exec(ctx, `
		UPDATE loans SET status = $2, last_payment_date = $3, updated_at = now()
		WHERE id = $1`, id, string(status), lastPayment)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		l                 domain.Loan
		principal         pgtype.Numeric
		totalPayable      pgtype.Numeric
		installmentAmount pgtype.Numeric
		cycle             string
		status            string
		issueDate         pgtype.Date
		lastPayment       pgtype.Timestamptz
	)
	err := row.Scan(&l.ID, &l.OrganizationID, &l.BorrowerID, &l.ProductID, &l.BranchID, &l.OfficerID,
		&principal, &totalPayable, &installmentAmount, &l.Duration, &cycle,
		&status, &issueDate, &lastPayment, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	l.Principal = pgNumericToDecimal(principal)
	l.TotalPayable = pgNumericToDecimal(totalPayable)
	l.InstallmentAmount = pgNumericToDecimal(installmentAmount)
	l.RepaymentCycle = domain.RepaymentCycle(cycle)
	l.Status = domain.LoanStatus(status)
	if issueDate.Valid {
		l.IssueDate = &issueDate.Time
	}
	if lastPayment.Valid {
		l.LastPaymentDate = &lastPayment.Time
	}
	return &l, nil
}

func scanLoans(rows pgx.Rows) ([]*domain.Loan, error) {
	var result []*domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
