package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/persistence"
)

// SupportFilter narrows unregistered-support listings.
type SupportFilter struct {
	SubmitterEmail *string
	Approved       *bool
	PendingOnly    bool
}

// SupportRepository persists unregistered-support claims.
type SupportRepository interface {
	Create(ctx context.Context, entry *domain.UnregisteredSupport) error
	Update(ctx context.Context, entry *domain.UnregisteredSupport) error
	GetByID(ctx context.Context, id string) (*domain.UnregisteredSupport, error)
	List(ctx context.Context, filter SupportFilter) ([]domain.UnregisteredSupport, error)
}

type supportRepository struct {
	pool *pgxpool.Pool
}

// NewSupportRepository instantiates repository.
func NewSupportRepository(pool *pgxpool.Pool) SupportRepository {
	return &supportRepository{pool: pool}
}

const supportColumns = `id, area, fixture, description, support_type, evidence_ref,
               submitter_name, submitter_email, approved, review_comment, reviewed_by, reviewed_at, created_at`

func (r *supportRepository) Create(ctx context.Context, entry *domain.UnregisteredSupport) error {
	const query = `
        INSERT INTO unregistered_support (area, fixture, description, support_type, evidence_ref,
                                          submitter_name, submitter_email)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`

	q := persistence.QuerierFrom(ctx, r.pool)
	return q.QueryRow(ctx, query,
		entry.Area,
		entry.Fixture,
		entry.Description,
		entry.SupportType,
		entry.EvidenceRef,
		entry.SubmitterName,
		entry.SubmitterEmail,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *supportRepository) Update(ctx context.Context, entry *domain.UnregisteredSupport) error {
	const query = `
        UPDATE unregistered_support SET approved=$1, review_comment=$2, reviewed_by=$3, reviewed_at=$4
        WHERE id=$5`

	q := persistence.QuerierFrom(ctx, r.pool)
	cmd, err := q.Exec(ctx, query,
		entry.Approved,
		entry.ReviewComment,
		entry.ReviewedBy,
		entry.ReviewedAt,
		entry.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *supportRepository) GetByID(ctx context.Context, id string) (*domain.UnregisteredSupport, error) {
	const query = `SELECT ` + supportColumns + ` FROM unregistered_support WHERE id=$1`

	q := persistence.QuerierFrom(ctx, r.pool)
	var entry domain.UnregisteredSupport
	if err := scanSupport(q.QueryRow(ctx, query, id), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *supportRepository) List(ctx context.Context, filter SupportFilter) ([]domain.UnregisteredSupport, error) {
	query := `SELECT ` + supportColumns + ` FROM unregistered_support WHERE 1=1`
	args := []any{}

	if filter.SubmitterEmail != nil {
		args = append(args, *filter.SubmitterEmail)
		query += ` AND submitter_email=$1`
	}
	if filter.Approved != nil {
		args = append(args, *filter.Approved)
		if len(args) == 1 {
			query += ` AND approved=$1`
		} else {
			query += ` AND approved=$2`
		}
	}
	if filter.PendingOnly {
		query += ` AND approved IS NULL`
	}
	query += ` ORDER BY created_at DESC`

	q := persistence.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.UnregisteredSupport
	for rows.Next() {
		var entry domain.UnregisteredSupport
		if err := scanSupport(rows, &entry); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanSupport(row pgx.Row, entry *domain.UnregisteredSupport) error {
	return row.Scan(
		&entry.ID,
		&entry.Area,
		&entry.Fixture,
		&entry.Description,
		&entry.SupportType,
		&entry.EvidenceRef,
		&entry.SubmitterName,
		&entry.SubmitterEmail,
		&entry.Approved,
		&entry.ReviewComment,
		&entry.ReviewedBy,
		&entry.ReviewedAt,
		&entry.CreatedAt,
	)
}
