package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/domain"
)

func newSupportFixture(t *testing.T, users ...*domain.User) (*SupportService, *fakeSupportRepo, *fakeUserRepo) {
	t.Helper()
	userRepo := newFakeUserRepo(users...)
	supportRepo := newFakeSupportRepo()
	svc := NewSupportService(SupportDependencies{
		SupportRepo: supportRepo,
		Experience:  NewExperienceService(userRepo, zap.NewNop()),
		Tx:          fakeTx{},
		Logger:      zap.NewNop(),
	})
	return svc, supportRepo, userRepo
}

func TestSubmitSupportStartsPending(t *testing.T) {
	svc, _, _ := newSupportFixture(t)
	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}

	entry, err := svc.Submit(context.Background(), actor, SubmitSupportInput{
		Area:        "TELEMATICS",
		Fixture:     "FX-80",
		Description: "apoyo fuera de turno",
	})
	require.NoError(t, err)

	assert.True(t, entry.Pending())
	assert.Equal(t, "pedro@test.mx", entry.SubmitterEmail)
}

func TestSubmitSupportValidatesArea(t *testing.T) {
	svc, _, _ := newSupportFixture(t)
	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}

	_, err := svc.Submit(context.Background(), actor, SubmitSupportInput{
		Area:        "NOPE",
		Description: "algo",
	})
	require.Error(t, err)
}

func TestApproveSupportGrantsFlatExperience(t *testing.T) {
	submitter := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, userRepo := newSupportFixture(t, submitter)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	entry, err := svc.Submit(context.Background(), actor, SubmitSupportInput{
		Area:        "ICT",
		Description: "apoyo nocturno",
	})
	require.NoError(t, err)

	reviewer := Actor{Name: "Gloria", Email: "gloria@test.mx", Role: domain.RoleGerente}
	approved, err := svc.Approve(context.Background(), reviewer, entry.ID)
	require.NoError(t, err)

	require.NotNil(t, approved.Approved)
	assert.True(t, *approved.Approved)
	assert.Equal(t, "Gloria", approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)

	stored, err := userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Equal(t, domain.ExpUnregisteredSupport, stored.Exp)
	assert.Equal(t, 1, stored.TicketsSolved)

	// terminal: a second review conflicts
	_, err = svc.Approve(context.Background(), reviewer, entry.ID)
	require.Error(t, err)
	_, err = svc.Reject(context.Background(), reviewer, entry.ID, "tarde")
	require.Error(t, err)
}

func TestRejectSupportIsTerminalWithoutGrant(t *testing.T) {
	submitter := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, userRepo := newSupportFixture(t, submitter)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	entry, err := svc.Submit(context.Background(), actor, SubmitSupportInput{
		Area:        "ICT",
		Description: "sin evidencia",
	})
	require.NoError(t, err)

	reviewer := Actor{Name: "Gloria", Email: "gloria@test.mx", Role: domain.RoleGerente}
	rejected, err := svc.Reject(context.Background(), reviewer, entry.ID, "falta evidencia")
	require.NoError(t, err)

	require.NotNil(t, rejected.Approved)
	assert.False(t, *rejected.Approved)
	assert.Equal(t, "falta evidencia", rejected.ReviewComment)

	stored, err := userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Zero(t, stored.Exp)
	assert.Zero(t, stored.TicketsSolved)

	_, err = svc.Approve(context.Background(), reviewer, entry.ID)
	require.Error(t, err)
}

func TestReviewSupportRequiresPrivilege(t *testing.T) {
	svc, _, _ := newSupportFixture(t, engineer("Pedro", "pedro@test.mx", 0))

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	entry, err := svc.Submit(context.Background(), actor, SubmitSupportInput{
		Area:        "ICT",
		Description: "apoyo",
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), actor, entry.ID)
	require.Error(t, err)

	supervisor := Actor{Name: "Sofia", Email: "sofia@test.mx", Role: domain.RoleSupervisor}
	_, err = svc.Reject(context.Background(), supervisor, entry.ID, "no")
	require.Error(t, err)
}

func TestListSupportScopesEngineersToOwnClaims(t *testing.T) {
	svc, _, _ := newSupportFixture(t)

	pedro := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	marta := Actor{Name: "Marta", Email: "marta@test.mx", Role: domain.RoleIngeniero}

	_, err := svc.Submit(context.Background(), pedro, SubmitSupportInput{Area: "ICT", Description: "uno"})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), marta, SubmitSupportInput{Area: "SMT", Description: "dos"})
	require.NoError(t, err)

	own, err := svc.List(context.Background(), pedro)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "pedro@test.mx", own[0].SubmitterEmail)

	reviewer := Actor{Name: "Gloria", Email: "gloria@test.mx", Role: domain.RoleGerente}
	all, err := svc.List(context.Background(), reviewer)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
