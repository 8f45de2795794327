package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/domain"
)

func TestAwardUpdatesExpLevelAndCounterTogether(t *testing.T) {
	userRepo := newFakeUserRepo(engineer("Pedro", "pedro@test.mx", 8))
	svc := NewExperienceService(userRepo, zap.NewNop())

	result, err := svc.Award(context.Background(), "pedro@test.mx", 6, true)
	require.NoError(t, err)

	assert.Equal(t, 14, result.User.Exp)
	assert.Equal(t, 2, result.User.Level)
	assert.Equal(t, 1, result.User.TicketsSolved)
	assert.True(t, result.LeveledUp)
	assert.Equal(t, "Aprendiz", result.NewLevel.Name)

	stored, err := userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Equal(t, 14, stored.Exp)
	assert.Equal(t, 2, stored.Level)
	assert.Equal(t, 1, stored.TicketsSolved)
}

func TestAwardWithoutCounterIncrement(t *testing.T) {
	userRepo := newFakeUserRepo(engineer("Marta", "marta@test.mx", 0))
	svc := NewExperienceService(userRepo, zap.NewNop())

	result, err := svc.Award(context.Background(), "marta@test.mx", 3, false)
	require.NoError(t, err)

	assert.Equal(t, 3, result.User.Exp)
	assert.Zero(t, result.User.TicketsSolved)
	assert.False(t, result.LeveledUp)
}

func TestAwardUnknownUser(t *testing.T) {
	svc := NewExperienceService(newFakeUserRepo(), zap.NewNop())

	_, err := svc.Award(context.Background(), "nadie@test.mx", 4, true)
	require.Error(t, err)
}

func TestRecalculateLevelsRepairsDrift(t *testing.T) {
	drifted := engineer("Pedro", "pedro@test.mx", 120)
	drifted.Level = 2 // stale
	ok := engineer("Marta", "marta@test.mx", 30)

	userRepo := newFakeUserRepo(drifted, ok)
	svc := NewExperienceService(userRepo, zap.NewNop())

	fixed, err := svc.RecalculateLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	stored, err := userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Equal(t, domain.CalculateLevel(120).Level, stored.Level)
}
