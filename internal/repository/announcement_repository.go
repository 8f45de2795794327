package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/persistence"
)

// AnnouncementRepository persists the published change feed.
type AnnouncementRepository interface {
	Create(ctx context.Context, entry *domain.Announcement) error
	Update(ctx context.Context, entry *domain.Announcement) error
	GetByID(ctx context.Context, id string) (*domain.Announcement, error)
	List(ctx context.Context, area *string) ([]domain.Announcement, error)
}

type announcementRepository struct {
	pool *pgxpool.Pool
}

// NewAnnouncementRepository instantiates repository.
func NewAnnouncementRepository(pool *pgxpool.Pool) AnnouncementRepository {
	return &announcementRepository{pool: pool}
}

const announcementColumns = `id, title, description, area, author_name, author_role, comments, updates, created_at`

func (r *announcementRepository) Create(ctx context.Context, entry *domain.Announcement) error {
	const query = `
        INSERT INTO announcements (title, description, area, author_name, author_role, comments, updates)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`

	comments, updates, err := marshalAnnouncementEmbedded(entry)
	if err != nil {
		return err
	}

	q := persistence.QuerierFrom(ctx, r.pool)
	return q.QueryRow(ctx, query,
		entry.Title,
		entry.Description,
		entry.Area,
		entry.AuthorName,
		entry.AuthorRole,
		comments,
		updates,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *announcementRepository) Update(ctx context.Context, entry *domain.Announcement) error {
	const query = `UPDATE announcements SET comments=$1, updates=$2 WHERE id=$3`

	comments, updates, err := marshalAnnouncementEmbedded(entry)
	if err != nil {
		return err
	}

	q := persistence.QuerierFrom(ctx, r.pool)
	cmd, err := q.Exec(ctx, query, comments, updates, entry.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *announcementRepository) GetByID(ctx context.Context, id string) (*domain.Announcement, error) {
	const query = `SELECT ` + announcementColumns + ` FROM announcements WHERE id=$1`

	q := persistence.QuerierFrom(ctx, r.pool)
	var entry domain.Announcement
	if err := scanAnnouncement(q.QueryRow(ctx, query, id), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *announcementRepository) List(ctx context.Context, area *string) ([]domain.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements`
	args := []any{}
	if area != nil {
		query += ` WHERE area=$1`
		args = append(args, *area)
	}
	query += ` ORDER BY created_at DESC`

	q := persistence.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Announcement
	for rows.Next() {
		var entry domain.Announcement
		if err := scanAnnouncement(rows, &entry); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func marshalAnnouncementEmbedded(entry *domain.Announcement) ([]byte, []byte, error) {
	commentSlice := entry.Comments
	if commentSlice == nil {
		commentSlice = []domain.AnnouncementComment{}
	}
	updateSlice := entry.Updates
	if updateSlice == nil {
		updateSlice = []domain.AnnouncementUpdate{}
	}
	comments, err := json.Marshal(commentSlice)
	if err != nil {
		return nil, nil, err
	}
	updates, err := json.Marshal(updateSlice)
	if err != nil {
		return nil, nil, err
	}
	return comments, updates, nil
}

func scanAnnouncement(row pgx.Row, entry *domain.Announcement) error {
	var comments, updates []byte
	if err := row.Scan(
		&entry.ID,
		&entry.Title,
		&entry.Description,
		&entry.Area,
		&entry.AuthorName,
		&entry.AuthorRole,
		&comments,
		&updates,
		&entry.CreatedAt,
	); err != nil {
		return err
	}
	if err := json.Unmarshal(comments, &entry.Comments); err != nil {
		return err
	}
	return json.Unmarshal(updates, &entry.Updates)
}
