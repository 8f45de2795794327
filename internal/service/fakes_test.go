package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/repository"
)

type fakeUserRepo struct {
	users map[string]*domain.User // keyed by id
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for i, u := range users {
		if u.ID == "" {
			u.ID = "user-" + strconv.Itoa(i+1)
		}
		copied := *u
		repo.users[u.ID] = &copied
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = "user-" + strconv.Itoa(len(r.users)+1)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			copied := *u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateExperience(_ context.Context, id string, exp, level, ticketsSolved int) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Exp = exp
	u.Level = level
	u.TicketsSolved = ticketsSolved
	return nil
}

func (r *fakeUserRepo) UpdateLevel(_ context.Context, id string, level int) error {
	u, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Level = level
	return nil
}

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = "ticket-" + strconv.Itoa(r.nextID)
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *t
	copied.Comments = append([]domain.Comment(nil), t.Comments...)
	copied.Changelog = append([]domain.ChangelogEntry(nil), t.Changelog...)
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	out := []domain.Ticket{}
	for _, t := range r.tickets {
		if filter.Area != nil && t.Area != *filter.Area {
			continue
		}
		if filter.AssignedEmail != nil && t.AssignedToEmail != *filter.AssignedEmail {
			continue
		}
		if filter.Pending != nil && t.PendingUserConfirmation != *filter.Pending {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, st := range filter.Statuses {
				if t.Status == st {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if filter.CreatedFrom != nil && t.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

type fakeSupportRepo struct {
	entries map[string]*domain.UnregisteredSupport
	nextID  int
}

func newFakeSupportRepo() *fakeSupportRepo {
	return &fakeSupportRepo{entries: map[string]*domain.UnregisteredSupport{}}
}

func (r *fakeSupportRepo) Create(_ context.Context, entry *domain.UnregisteredSupport) error {
	r.nextID++
	entry.ID = "support-" + strconv.Itoa(r.nextID)
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *fakeSupportRepo) Update(_ context.Context, entry *domain.UnregisteredSupport) error {
	if _, ok := r.entries[entry.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *fakeSupportRepo) GetByID(_ context.Context, id string) (*domain.UnregisteredSupport, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *e
	return &copied, nil
}

func (r *fakeSupportRepo) List(_ context.Context, filter repository.SupportFilter) ([]domain.UnregisteredSupport, error) {
	out := []domain.UnregisteredSupport{}
	for _, e := range r.entries {
		if filter.SubmitterEmail != nil && !strings.EqualFold(e.SubmitterEmail, *filter.SubmitterEmail) {
			continue
		}
		if filter.Approved != nil {
			if e.Approved == nil || *e.Approved != *filter.Approved {
				continue
			}
		}
		if filter.PendingOnly && e.Approved != nil {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

type fakeExtraTimeRepo struct {
	requests map[string]*domain.ExtraTimeRequest
	nextID   int
}

func newFakeExtraTimeRepo() *fakeExtraTimeRepo {
	return &fakeExtraTimeRepo{requests: map[string]*domain.ExtraTimeRequest{}}
}

func (r *fakeExtraTimeRepo) Create(_ context.Context, req *domain.ExtraTimeRequest) error {
	r.nextID++
	req.ID = "extra-" + strconv.Itoa(r.nextID)
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeExtraTimeRepo) Update(_ context.Context, req *domain.ExtraTimeRequest) error {
	if _, ok := r.requests[req.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *req
	r.requests[req.ID] = &copied
	return nil
}

func (r *fakeExtraTimeRepo) GetByID(_ context.Context, id string) (*domain.ExtraTimeRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *req
	return &copied, nil
}

func (r *fakeExtraTimeRepo) List(_ context.Context) ([]domain.ExtraTimeRequest, error) {
	out := make([]domain.ExtraTimeRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, *req)
	}
	return out, nil
}

func (r *fakeExtraTimeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.requests[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.requests, id)
	return nil
}

type fakeAnnouncementRepo struct {
	entries map[string]*domain.Announcement
	nextID  int
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{entries: map[string]*domain.Announcement{}}
}

func (r *fakeAnnouncementRepo) Create(_ context.Context, entry *domain.Announcement) error {
	r.nextID++
	entry.ID = "announcement-" + strconv.Itoa(r.nextID)
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *fakeAnnouncementRepo) Update(_ context.Context, entry *domain.Announcement) error {
	if _, ok := r.entries[entry.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *entry
	r.entries[entry.ID] = &copied
	return nil
}

func (r *fakeAnnouncementRepo) GetByID(_ context.Context, id string) (*domain.Announcement, error) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *entry
	copied.Comments = append([]domain.AnnouncementComment(nil), entry.Comments...)
	copied.Updates = append([]domain.AnnouncementUpdate(nil), entry.Updates...)
	return &copied, nil
}

func (r *fakeAnnouncementRepo) List(_ context.Context, area *string) ([]domain.Announcement, error) {
	out := []domain.Announcement{}
	for _, entry := range r.entries {
		if area != nil && entry.Area != *area {
			continue
		}
		out = append(out, *entry)
	}
	return out, nil
}

// fakeTx runs the function without any transaction semantics.
type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
