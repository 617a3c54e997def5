package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kopahq/kopa-backend/internal/domain"
)

// RepaymentRepository implements domain.RepaymentRepository using PostgreSQL.
// The repayments table carries a unique index on trans_id, so a concurrent
// duplicate that slips past the dedup pre-check aborts inside the allocation
// transaction instead of double-applying.
type RepaymentRepository struct {
	pool *pgxpool.Pool
}

// NewRepaymentRepository creates a new RepaymentRepository
func NewRepaymentRepository(pool *pgxpool.Pool) *RepaymentRepository {
	return &RepaymentRepository{pool: pool}
}

const repaymentColumns = `id, loan_id, borrower_id, trans_id, amount, payment_date,
	method, balance_after, created_at`

// ExistsByTransID checks the whole ledger for the transaction id
func (r *RepaymentRepository) ExistsByTransID(transID string) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM repayments WHERE trans_id = $1)`, transID).Scan(&exists)
	return exists, err
}

// CreateTx appends a ledger entry within the caller's transaction
func (r *RepaymentRepository) CreateTx(tx interface{}, repayment *domain.Repayment) (*domain.Repayment, error) {
	pgxTx, ok := tx.(pgx.Tx)
	if !ok {
		return nil, errors.New("invalid transaction type")
	}
	ctx := context.Background()

	amount, err := decimalToPgNumeric(repayment.Amount)
	if err != nil {
		return nil, err
	}
	balanceAfter, err := decimalToPgNumeric(repayment.BalanceAfterPayment)
	if err != nil {
		return nil, err
	}

	row := pgxTx.QueryRow(ctx, `
		INSERT INTO repayments (loan_id, borrower_id, trans_id, amount, payment_date, method, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+repaymentColumns,
		repayment.LoanID, repayment.BorrowerID, repayment.TransID, amount,
		repayment.PaymentDate, string(repayment.Method), balanceAfter,
	)
	created, err := scanRepayment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateTransaction
		}
		return nil, err
	}
	return created, nil
}

// GetByLoanID retrieves a loan's repayments, newest first
func (r *RepaymentRepository) GetByLoanID(loanID uuid.UUID) ([]*domain.Repayment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+repaymentColumns+` FROM repayments
		WHERE loan_id = $1
		ORDER BY payment_date DESC`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Repayment
	for rows.Next() {
		rep, err := scanRepayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}

func scanRepayment(row pgx.Row) (*domain.Repayment, error) {
	var (
		rep          domain.Repayment
		amount       pgtype.Numeric
		balanceAfter pgtype.Numeric
		method       string
	)
	err := row.Scan(&rep.ID, &rep.LoanID, &rep.BorrowerID, &rep.TransID, &amount,
		&rep.PaymentDate, &method, &balanceAfter, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	rep.Amount = pgNumericToDecimal(amount)
	rep.BalanceAfterPayment = pgNumericToDecimal(balanceAfter)
	rep.Method = domain.CollectionMethod(method)
	return &rep, nil
}
