package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/persistence"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Area          *string
	Statuses      []domain.Status
	AssignedEmail *string
	ReporterEmail *string
	Pending       *bool
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Limit         int
	Offset        int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, reporter_name, reporter_email, area, fixture, problem_type, other_description,
               priority, status, resolved, pending_user_confirmation,
               assigned_to_name, assigned_to_email, assigned_at,
               resolution_details, supported_by, resolved_at, exp_awarded, elapsed_ms,
               comments, changelog, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (reporter_name, reporter_email, area, fixture, problem_type, other_description,
                             priority, status, resolved, pending_user_confirmation, comments, changelog)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`

	comments, changelog, err := marshalEmbedded(ticket)
	if err != nil {
		return err
	}

	q := persistence.QuerierFrom(ctx, r.pool)
	return q.QueryRow(ctx, query,
		ticket.ReporterName,
		ticket.ReporterEmail,
		ticket.Area,
		ticket.Fixture,
		ticket.ProblemType,
		ticket.OtherDescription,
		ticket.Priority,
		ticket.Status,
		ticket.Resolved,
		ticket.PendingUserConfirmation,
		comments,
		changelog,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET status=$1, resolved=$2, pending_user_confirmation=$3,
            assigned_to_name=$4, assigned_to_email=$5, assigned_at=$6,
            resolution_details=$7, supported_by=$8, resolved_at=$9, exp_awarded=$10, elapsed_ms=$11,
            comments=$12, changelog=$13, updated_at=NOW()
        WHERE id=$14`

	comments, changelog, err := marshalEmbedded(ticket)
	if err != nil {
		return err
	}

	q := persistence.QuerierFrom(ctx, r.pool)
	cmd, err := q.Exec(ctx, query,
		ticket.Status,
		ticket.Resolved,
		ticket.PendingUserConfirmation,
		ticket.AssignedToName,
		ticket.AssignedToEmail,
		ticket.AssignedAt,
		ticket.ResolutionDetails,
		ticket.SupportedBy,
		ticket.ResolvedAt,
		ticket.ExpAwarded,
		ticket.ElapsedMs,
		comments,
		changelog,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`

	q := persistence.QuerierFrom(ctx, r.pool)
	var ticket domain.Ticket
	if err := scanTicket(q.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Area != nil {
		args = append(args, *filter.Area)
		clauses = append(clauses, fmt.Sprintf("area=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssignedEmail != nil {
		args = append(args, *filter.AssignedEmail)
		clauses = append(clauses, fmt.Sprintf("assigned_to_email=$%d", len(args)))
	}
	if filter.ReporterEmail != nil {
		args = append(args, *filter.ReporterEmail)
		clauses = append(clauses, fmt.Sprintf("reporter_email=$%d", len(args)))
	}
	if filter.Pending != nil {
		args = append(args, *filter.Pending)
		clauses = append(clauses, fmt.Sprintf("pending_user_confirmation=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY created_at DESC", base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	q := persistence.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	q := persistence.QuerierFrom(ctx, r.pool)
	cmd, err := q.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func marshalEmbedded(ticket *domain.Ticket) ([]byte, []byte, error) {
	commentSlice := ticket.Comments
	if commentSlice == nil {
		commentSlice = []domain.Comment{}
	}
	changelogSlice := ticket.Changelog
	if changelogSlice == nil {
		changelogSlice = []domain.ChangelogEntry{}
	}
	comments, err := json.Marshal(commentSlice)
	if err != nil {
		return nil, nil, err
	}
	changelog, err := json.Marshal(changelogSlice)
	if err != nil {
		return nil, nil, err
	}
	return comments, changelog, nil
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	var comments, changelog []byte
	if err := row.Scan(
		&ticket.ID,
		&ticket.ReporterName,
		&ticket.ReporterEmail,
		&ticket.Area,
		&ticket.Fixture,
		&ticket.ProblemType,
		&ticket.OtherDescription,
		&ticket.Priority,
		&ticket.Status,
		&ticket.Resolved,
		&ticket.PendingUserConfirmation,
		&ticket.AssignedToName,
		&ticket.AssignedToEmail,
		&ticket.AssignedAt,
		&ticket.ResolutionDetails,
		&ticket.SupportedBy,
		&ticket.ResolvedAt,
		&ticket.ExpAwarded,
		&ticket.ElapsedMs,
		&comments,
		&changelog,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return err
	}
	if err := json.Unmarshal(comments, &ticket.Comments); err != nil {
		return err
	}
	return json.Unmarshal(changelog, &ticket.Changelog)
}

func collectTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
