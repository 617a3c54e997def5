package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kopahq/kopa-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// InstallmentRepository implements domain.InstallmentRepository using PostgreSQL
type InstallmentRepository struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepository creates a new InstallmentRepository
func NewInstallmentRepository(pool *pgxpool.Pool) *InstallmentRepository {
	return &InstallmentRepository{pool: pool}
}

const installmentColumns = `id, loan_id, installment_number, expected_amount, paid_amount,
	due_date, status, created_at, updated_at`

// GetByLoanID retrieves all installments of a loan ordered by installment number
func (r *InstallmentRepository) GetByLoanID(loanID uuid.UUID) ([]*domain.Installment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+installmentColumns+` FROM installments
		WHERE loan_id = $1
		ORDER BY installment_number ASC`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstallments(rows)
}

// CreateBatchTx inserts a full schedule within the caller's transaction.
// All rows land together with the loan's status flip or not at all.
func (r *InstallmentRepository) CreateBatchTx(tx interface{}, installments []*domain.Installment) error {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return errors.New("invalid transaction type")
	}
	ctx := context.Background()

	for _, inst := range installments {
		expected, err := decimalToPgNumeric(inst.ExpectedAmount)
		if err != nil {
			return err
		}
		paid, err := decimalToPgNumeric(inst.PaidAmount)
		if err != nil {
			return err
		}
		_, err = pgxTx.Exec(ctx, `
			INSERT INTO installments (loan_id, installment_number, expected_amount, paid_amount, due_date, status)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			inst.LoanID, inst.InstallmentNumber, expected, paid, inst.DueDate, string(inst.Status))
		if err != nil {
			return err
		}
	}
	return nil
}

// CountByLoanTx counts a loan's installments within the caller's transaction
func (r *InstallmentRepository) CountByLoanTx(tx interface{}, loanID uuid.UUID) (int64, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return 0, errors.New("invalid transaction type")
	}
	ctx := context.Background()
	var count int64
	err := pgxTx.QueryRow(ctx, `SELECT COUNT(*) FROM installments WHERE loan_id = $1`, loanID).Scan(&count)
	return count, err
}

// GetOutstandingByLoanTx returns not-fully-paid installments in ascending
// due-date order within the caller's transaction. The ordering is the
// waterfall: the allocation walk consumes these oldest-due first.
func (r *InstallmentRepository) GetOutstandingByLoanTx(tx interface{}, loanID uuid.UUID) ([]*domain.Installment, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}
	ctx := context.Background()
	rows, err := pgxTx.Query(ctx, `
		SELECT `+installmentColumns+` FROM installments
		WHERE loan_id = $1 AND paid_amount < expected_amount
		ORDER BY due_date ASC`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanInstallments(rows)
}

// SumPaidByLoanTx recomputes the loan's total paid amount from the
// installment rows within the caller's transaction. Summing the source of
// truth, instead of trusting a loan-level counter, anchors the balance math.
func (r *InstallmentRepository) SumPaidByLoanTx(tx interface{}, loanID uuid.UUID) (decimal.Decimal, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return decimal.Zero, errors.New("invalid transaction type")
	}
	ctx := context.Background()
	var total pgtype.Numeric
	err := pgxTx.QueryRow(ctx, `
		SELECT COALESCE(SUM(paid_amount), 0) FROM installments WHERE loan_id = $1`, loanID).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// UpdatePaymentTx writes a new paid amount and status within the caller's
// transaction
func (r *InstallmentRepository) UpdatePaymentTx(tx interface{}, id uuid.UUID, paidAmount decimal.Decimal, status domain.InstallmentStatus) error {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return errors.New("invalid transaction type")
	}
	ctx := context.Background()

	paid, err := decimalToPgNumeric(paidAmount)
	if err != nil {
		return err
	}
	tag, err := pgxTx.Exec(ctx, `
		UPDATE installments SET paid_amount = $2, status = $3, updated_at = now()
		WHERE id = $1`, id, paid, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInstallmentNotFound
	}
	return nil
}

func scanInstallments(rows pgx.Rows) ([]*domain.Installment, error) {
	var result []*domain.Installment
	for rows.Next() {
		var (
			inst     domain.Installment
			expected pgtype.Numeric
			paid     pgtype.Numeric
			dueDate  pgtype.Date
			status   string
		)
		err := rows.Scan(&inst.ID, &inst.LoanID, &inst.InstallmentNumber, &expected, &paid,
			&dueDate, &status, &inst.CreatedAt, &inst.UpdatedAt)
		if err != nil {
			return nil, err
		}
		inst.ExpectedAmount = pgNumericToDecimal(expected)
		inst.PaidAmount = pgNumericToDecimal(paid)
		inst.DueDate = dueDate.Time
		inst.Status = domain.InstallmentStatus(status)
		result = append(result, &inst)
	}
	return result, rows.Err()
}
