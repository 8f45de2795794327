package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/persistence"
)

// ExtraTimeRepository persists extra-time requests.
type ExtraTimeRepository interface {
	Create(ctx context.Context, req *domain.ExtraTimeRequest) error
	Update(ctx context.Context, req *domain.ExtraTimeRequest) error
	GetByID(ctx context.Context, id string) (*domain.ExtraTimeRequest, error)
	List(ctx context.Context) ([]domain.ExtraTimeRequest, error)
	Delete(ctx context.Context, id string) error
}

type extraTimeRepository struct {
	pool *pgxpool.Pool
}

// NewExtraTimeRepository instantiates repository.
func NewExtraTimeRepository(pool *pgxpool.Pool) ExtraTimeRepository {
	return &extraTimeRepository{pool: pool}
}

const extraTimeColumns = `id, requester_name, engineer_name, reason, hours, date, start_time, end_time,
               status, review_comment, created_by, created_at, updated_by, updated_at`

func (r *extraTimeRepository) Create(ctx context.Context, req *domain.ExtraTimeRequest) error {
	const query = `
        INSERT INTO extra_time_requests (requester_name, engineer_name, reason, hours, date,
                                         start_time, end_time, status, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`

	q := persistence.QuerierFrom(ctx, r.pool)
	return q.QueryRow(ctx, query,
		req.RequesterName,
		req.EngineerName,
		req.Reason,
		req.Hours,
		req.Date,
		req.StartTime,
		req.EndTime,
		req.Status,
		req.CreatedBy,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *extraTimeRepository) Update(ctx context.Context, req *domain.ExtraTimeRequest) error {
	const query = `
        UPDATE extra_time_requests SET status=$1, review_comment=$2, updated_by=$3, updated_at=NOW()
        WHERE id=$4`

	q := persistence.QuerierFrom(ctx, r.pool)
	cmd, err := q.Exec(ctx, query, req.Status, req.ReviewComment, req.UpdatedBy, req.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *extraTimeRepository) GetByID(ctx context.Context, id string) (*domain.ExtraTimeRequest, error) {
	const query = `SELECT ` + extraTimeColumns + ` FROM extra_time_requests WHERE id=$1`

	q := persistence.QuerierFrom(ctx, r.pool)
	var req domain.ExtraTimeRequest
	if err := scanExtraTime(q.QueryRow(ctx, query, id), &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *extraTimeRepository) List(ctx context.Context) ([]domain.ExtraTimeRequest, error) {
	const query = `SELECT ` + extraTimeColumns + ` FROM extra_time_requests ORDER BY created_at DESC`

	q := persistence.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ExtraTimeRequest
	for rows.Next() {
		var req domain.ExtraTimeRequest
		if err := scanExtraTime(rows, &req); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

func (r *extraTimeRepository) Delete(ctx context.Context, id string) error {
	q := persistence.QuerierFrom(ctx, r.pool)
	cmd, err := q.Exec(ctx, `DELETE FROM extra_time_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanExtraTime(row pgx.Row, req *domain.ExtraTimeRequest) error {
	return row.Scan(
		&req.ID,
		&req.RequesterName,
		&req.EngineerName,
		&req.Reason,
		&req.Hours,
		&req.Date,
		&req.StartTime,
		&req.EndTime,
		&req.Status,
		&req.ReviewComment,
		&req.CreatedBy,
		&req.CreatedAt,
		&req.UpdatedBy,
		&req.UpdatedAt,
	)
}
