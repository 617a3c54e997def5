package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kopahq/kopa-backend/internal/domain"
)

// UnmatchedPaymentRepository implements domain.UnmatchedPaymentRepository
// using PostgreSQL
type UnmatchedPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewUnmatchedPaymentRepository creates a new UnmatchedPaymentRepository
func NewUnmatchedPaymentRepository(pool *pgxpool.Pool) *UnmatchedPaymentRepository {
	return &UnmatchedPaymentRepository{pool: pool}
}

const unmatchedColumns = `id, trans_id, bill_ref, msisdn, amount, payload, reason, status, created_at`

// Create writes a holding-area record for a payment that could not be applied
func (r *UnmatchedPaymentRepository) Create(record *domain.UnmatchedPayment) (*domain.UnmatchedPayment, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(record.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO unmatched_payments (trans_id, bill_ref, msisdn, amount, payload, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+unmatchedColumns,
		record.TransID, record.BillRef, record.MSISDN, amount, record.Payload,
		record.Reason, string(domain.UnmatchedPending),
	)
	return scanUnmatched(row)
}

// GetPending retrieves records awaiting manual reconciliation, oldest first
func (r *UnmatchedPaymentRepository) GetPending() ([]*domain.UnmatchedPayment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+unmatchedColumns+` FROM unmatched_payments
		WHERE status = $1
		ORDER BY created_at ASC`, string(domain.UnmatchedPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.UnmatchedPayment
	for rows.Next() {
		rec, err := scanUnmatched(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Resolve marks a holding-area record as manually reconciled
func (r *UnmatchedPaymentRepository) Resolve(id uuid.UUID) (*domain.UnmatchedPayment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		UPDATE unmatched_payments SET status = $2
		WHERE id = $1
		RETURNING `+unmatchedColumns, id, string(domain.UnmatchedResolved))
	return scanUnmatched(row)
}

func scanUnmatched(row pgx.Row) (*domain.UnmatchedPayment, error) {
	var (
		rec    domain.UnmatchedPayment
		amount pgtype.Numeric
		status string
	)
	err := row.Scan(&rec.ID, &rec.TransID, &rec.BillRef, &rec.MSISDN, &amount,
		&rec.Payload, &rec.Reason, &status, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUnmatchedNotFound
		}
		return nil, err
	}
	rec.Amount = pgNumericToDecimal(amount)
	rec.Status = domain.UnmatchedStatus(status)
	return &rec, nil
}
