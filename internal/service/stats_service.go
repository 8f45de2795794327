package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/domain"
	"github.com/fixtrack/fixtrack/internal/repository"
	apperrors "github.com/fixtrack/fixtrack/pkg/util"
)

const (
	statsCacheTTL    = 60 * time.Second
	statsCachePrefix = "fixtrack:stats:"
)

// StatsService computes read-only aggregations over the ticket collection.
// Results are cached in Redis; refresh recomputes and overwrites the entry.
type StatsService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	cache   *redis.Client
	logger  *zap.Logger
}

// NewStatsService constructs the service. cache may be nil; aggregation
// then runs on every call.
func NewStatsService(tickets repository.TicketRepository, users repository.UserRepository, cache *redis.Client, logger *zap.Logger) *StatsService {
	return &StatsService{tickets: tickets, users: users, cache: cache, logger: logger}
}

// EngineerStats summarizes one engineer's ticket load.
type EngineerStats struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Assigned int    `json:"assigned"`
	Open     int    `json:"open"`
	Pending  int    `json:"pending"`
	Resolved int    `json:"resolved"`
}

// EngineerXP is one leaderboard row.
type EngineerXP struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Exp             int    `json:"exp"`
	ExpDisplay      string `json:"expDisplay"`
	Level           int    `json:"level"`
	LevelName       string `json:"levelName"`
	NextLevel       int    `json:"nextLevel,omitempty"`
	NextLevelName   string `json:"nextLevelName,omitempty"`
	ProgressPercent int    `json:"progressPercent"`
	TicketsSolved   int    `json:"ticketsSolved"`
}

// EngineerDetailedStats adds priority and timing breakdowns.
type EngineerDetailedStats struct {
	Name            string         `json:"name"`
	Email           string         `json:"email"`
	ByPriority      map[string]int `json:"byPriority"`
	ResolvedCount   int            `json:"resolvedCount"`
	AvgResolutionMs int64          `json:"avgResolutionMs"`
}

// PeriodStats aggregates one 30-day window.
type PeriodStats struct {
	Created         int            `json:"created"`
	Resolved        int            `json:"resolved"`
	Closed          int            `json:"closed"`
	ByPriority      map[string]int `json:"byPriority"`
	AvgResolutionMs int64          `json:"avgResolutionMs"`
}

// TeamStats is the period-over-period comparison.
type TeamStats struct {
	Current  PeriodStats `json:"current"`
	Previous PeriodStats `json:"previous"`
}

// EngineerOverview returns per-engineer ticket counts.
func (s *StatsService) EngineerOverview(ctx context.Context, refresh bool) ([]EngineerStats, error) {
	var cached []EngineerStats
	if s.fromCache(ctx, "engineers", refresh, &cached) {
		return cached, nil
	}

	engineers, err := s.users.ListByRole(ctx, domain.RoleIngeniero)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]EngineerStats, 0, len(engineers))
	for _, eng := range engineers {
		row := EngineerStats{Name: eng.Name, Email: eng.Email, Resolved: eng.TicketsSolved}
		for i := range tickets {
			if tickets[i].AssignedToEmail != eng.Email {
				continue
			}
			row.Assigned++
			switch {
			case tickets[i].PendingUserConfirmation:
				row.Pending++
			case tickets[i].Status == domain.StatusAbierto:
				row.Open++
			}
		}
		result = append(result, row)
	}

	s.toCache(ctx, "engineers", result)
	return result, nil
}

// Leaderboard returns engineers ordered by experience.
func (s *StatsService) Leaderboard(ctx context.Context, refresh bool) ([]EngineerXP, error) {
	var cached []EngineerXP
	if s.fromCache(ctx, "xp", refresh, &cached) {
		return cached, nil
	}

	engineers, err := s.users.ListByRole(ctx, domain.RoleIngeniero)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]EngineerXP, 0, len(engineers))
	for _, eng := range engineers {
		progress := domain.CalculateLevelProgress(eng.Exp)
		result = append(result, EngineerXP{
			Name:            eng.Name,
			Email:           eng.Email,
			Exp:             eng.Exp,
			ExpDisplay:      domain.FormatExperience(eng.Exp),
			Level:           progress.CurrentLevel,
			LevelName:       progress.CurrentLevelName,
			NextLevel:       progress.NextLevel,
			NextLevelName:   progress.NextLevelName,
			ProgressPercent: progress.ProgressPercent,
			TicketsSolved:   eng.TicketsSolved,
		})
	}

	s.toCache(ctx, "xp", result)
	return result, nil
}

// DetailedStats returns per-engineer priority and timing breakdowns over
// resolved tickets.
func (s *StatsService) DetailedStats(ctx context.Context, refresh bool) ([]EngineerDetailedStats, error) {
	var cached []EngineerDetailedStats
	if s.fromCache(ctx, "detailed", refresh, &cached) {
		return cached, nil
	}

	engineers, err := s.users.ListByRole(ctx, domain.RoleIngeniero)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]EngineerDetailedStats, 0, len(engineers))
	for _, eng := range engineers {
		row := EngineerDetailedStats{
			Name:       eng.Name,
			Email:      eng.Email,
			ByPriority: map[string]int{},
		}
		var totalMs int64
		for i := range tickets {
			t := &tickets[i]
			if t.AssignedToEmail != eng.Email || !t.Resolved {
				continue
			}
			row.ByPriority[string(t.Priority)]++
			row.ResolvedCount++
			totalMs += t.ElapsedMs
		}
		if row.ResolvedCount > 0 {
			row.AvgResolutionMs = totalMs / int64(row.ResolvedCount)
		}
		result = append(result, row)
	}

	s.toCache(ctx, "detailed", result)
	return result, nil
}

// TeamStats compares the last 30 days against the 30 days before that.
func (s *StatsService) TeamStats(ctx context.Context, refresh bool) (*TeamStats, error) {
	var cached TeamStats
	if s.fromCache(ctx, "team", refresh, &cached) {
		return &cached, nil
	}

	now := time.Now()
	currentFrom := now.AddDate(0, 0, -30)
	previousFrom := now.AddDate(0, 0, -60)

	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{CreatedFrom: &previousFrom})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &TeamStats{
		Current:  PeriodStats{ByPriority: map[string]int{}},
		Previous: PeriodStats{ByPriority: map[string]int{}},
	}
	var currentMs, previousMs int64
	for i := range tickets {
		t := &tickets[i]
		period := &stats.Previous
		totalMs := &previousMs
		if t.CreatedAt.After(currentFrom) {
			period = &stats.Current
			totalMs = &currentMs
		}
		period.Created++
		period.ByPriority[string(t.Priority)]++
		if t.Resolved {
			period.Resolved++
			*totalMs += t.ElapsedMs
		}
		if t.Status == domain.StatusCerrado {
			period.Closed++
		}
	}
	if stats.Current.Resolved > 0 {
		stats.Current.AvgResolutionMs = currentMs / int64(stats.Current.Resolved)
	}
	if stats.Previous.Resolved > 0 {
		stats.Previous.AvgResolutionMs = previousMs / int64(stats.Previous.Resolved)
	}

	s.toCache(ctx, "team", stats)
	return stats, nil
}

func (s *StatsService) fromCache(ctx context.Context, key string, refresh bool, dest any) bool {
	if s.cache == nil || refresh {
		return false
	}
	raw, err := s.cache.Get(ctx, statsCachePrefix+key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("stats cache entry unreadable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *StatsService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCachePrefix+key, raw, statsCacheTTL).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
