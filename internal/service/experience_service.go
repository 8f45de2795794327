package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/repository"
)

// ExperienceService is the single write path for experience. Ticket
// resolution, co-resolver credit and unregistered support all go through
// Award so exp, level and the solved counter are always written together.
type ExperienceService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewExperienceService constructs the service.
func NewExperienceService(users repository.UserRepository, logger *zap.Logger) *ExperienceService {
	return &ExperienceService{users: users, logger: logger}
}

// AwardResult reports the outcome of one experience grant.
type AwardResult struct {
	User      *domain.User
	Amount    int
	LeveledUp bool
	NewLevel  domain.ExperienceLevel
}

// Award grants amount experience to the user identified by email and
// recomputes the level in the same statement. incrementsSolved is true only
// for the user who actually resolved a ticket or had a support claim
// approved; co-resolver credit leaves the counter alone.
func (s *ExperienceService) Award(ctx context.Context, email string, amount int, incrementsSolved bool) (*AwardResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	newExp := user.Exp + amount
	newTier := domain.CalculateLevel(newExp)
	solved := user.TicketsSolved
	if incrementsSolved {
		solved++
	}

	if err := s.users.UpdateExperience(ctx, user.ID, newExp, newTier.Level, solved); err != nil {
		return nil, err
	}

	leveledUp := newTier.Level > user.Level
	user.Exp = newExp
	user.Level = newTier.Level
	user.TicketsSolved = solved

	if leveledUp {
		s.logger.Info("engineer leveled up",
			zap.String("email", email),
			zap.Int("level", newTier.Level),
			zap.String("level_name", newTier.Name))
	}

	return &AwardResult{
		User:      user,
		Amount:    amount,
		LeveledUp: leveledUp,
		NewLevel:  newTier,
	}, nil
}

// RecalculateLevels repairs drift between exp and level across all
// accounts. Returns how many records were corrected.
func (s *ExperienceService) RecalculateLevels(ctx context.Context) (int, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for i := range users {
		expected := domain.CalculateLevel(users[i].Exp).Level
		if users[i].Level == expected {
			continue
		}
		if err := s.users.UpdateLevel(ctx, users[i].ID, expected); err != nil {
			return fixed, err
		}
		s.logger.Warn("level drift corrected",
			zap.String("email", users[i].Email),
			zap.Int("stored_level", users[i].Level),
			zap.Int("expected_level", expected))
		fixed++
	}
	return fixed, nil
}
