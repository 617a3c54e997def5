package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kopahq/kopa-backend/internal/domain"
)

// BorrowerRepository implements domain.BorrowerRepository using PostgreSQL
type BorrowerRepository struct {
	pool *pgxpool.Pool
}

// NewBorrowerRepository creates a new BorrowerRepository
func NewBorrowerRepository(pool *pgxpool.Pool) *BorrowerRepository {
	return &BorrowerRepository{pool: pool}
}

const borrowerColumns = `id, organization_id, branch_id, first_name, last_name, phone, created_at, updated_at`

// Create inserts a new borrower
func (r *BorrowerRepository) Create(borrower *domain.Borrower) (*domain.Borrower, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO borrowers (organization_id, branch_id, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+borrowerColumns,
		borrower.OrganizationID, borrower.BranchID, borrower.FirstName, borrower.LastName, borrower.Phone,
	)
	return scanBorrower(row)
}

// GetByID retrieves a borrower by id
func (r *BorrowerRepository) GetByID(id uuid.UUID) (*domain.Borrower, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+borrowerColumns+` FROM borrowers WHERE id = $1`, id)
	return scanBorrower(row)
}

// GetByPhone retrieves the borrower whose stored phone equals the given
// normalized local-format number. At most one is expected.
func (r *BorrowerRepository) GetByPhone(phone string) (*domain.Borrower, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+borrowerColumns+` FROM borrowers WHERE phone = $1 LIMIT 1`, phone)
	return scanBorrower(row)
}

// GetAllByOrganization retrieves all borrowers for an organization
func (r *BorrowerRepository) GetAllByOrganization(organizationID uuid.UUID) ([]*domain.Borrower, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+borrowerColumns+` FROM borrowers
		WHERE organization_id = $1
		ORDER BY created_at DESC`, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Borrower
	for rows.Next() {
		b, err := scanBorrower(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func scanBorrower(row pgx.Row) (*domain.Borrower, error) {
	var b domain.Borrower
	err := row.Scan(&b.ID, &b.OrganizationID, &b.BranchID, &b.FirstName, &b.LastName, &b.Phone, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, err
	}
	return &b, nil
}
