package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixtrack/fixtrack/internal/domain"
)

func newTicketFixture(t *testing.T, users ...*domain.User) (*TicketService, *fakeTicketRepo, *fakeUserRepo, *fakeSupportRepo) {
	t.Helper()
	userRepo := newFakeUserRepo(users...)
	ticketRepo := newFakeTicketRepo()
	supportRepo := newFakeSupportRepo()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  ticketRepo,
		UserRepo:    userRepo,
		SupportRepo: supportRepo,
		Experience:  NewExperienceService(userRepo, zap.NewNop()),
		Tx:          fakeTx{},
		Logger:      zap.NewNop(),
	})
	return svc, ticketRepo, userRepo, supportRepo
}

func engineer(name, email string, exp int) *domain.User {
	return &domain.User{
		Name:  name,
		Email: email,
		Role:  domain.RoleIngeniero,
		Exp:   exp,
		Level: domain.CalculateLevel(exp).Level,
	}
}

func TestSubmitTicketSeedsChangelog(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	actor := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), actor, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-104",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityMedia,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAbierto, ticket.Status)
	assert.False(t, ticket.Resolved)
	require.Len(t, ticket.Changelog, 1)
	assert.Equal(t, 1, ticket.Changelog[0].ID)
	assert.Equal(t, "Ticket creado", ticket.Changelog[0].Action)
	assert.Equal(t, "Laura", ticket.Changelog[0].User)
}

func TestSubmitTicketRejectsNonSubmittableArea(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	actor := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	_, err := svc.SubmitTicket(context.Background(), actor, SubmitTicketInput{
		Area:        "TELEMATICS",
		Fixture:     "FX-104",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityMedia,
	})
	require.Error(t, err)
}

func TestSubmitTicketOtherRequiresDescription(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	actor := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	_, err := svc.SubmitTicket(context.Background(), actor, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-104",
		ProblemType: domain.ProblemTypeOther,
		Priority:    domain.PriorityBaja,
	})
	require.Error(t, err)

	_, err = svc.SubmitTicket(context.Background(), actor, SubmitTicketInput{
		Area:             "SMT",
		Fixture:          "FX-104",
		ProblemType:      domain.ProblemTypeOther,
		OtherDescription: "cable dañado",
		Priority:         domain.PriorityBaja,
	})
	require.NoError(t, err)
}

func TestResolveTicketAwardsByPriority(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, userRepo, _ := newTicketFixture(t, resolver)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "ICT",
		Fixture:     "FX-22",
		ProblemType: "Software",
		Priority:    domain.PriorityAlta,
	})
	require.NoError(t, err)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	resolved, err := svc.ResolveTicket(context.Background(), actor, ticket.ID, "Se reemplazó el sensor", "")
	require.NoError(t, err)

	assert.True(t, resolved.Resolved)
	assert.True(t, resolved.PendingUserConfirmation)
	assert.Equal(t, domain.StatusResuelto, resolved.Status)
	assert.Equal(t, domain.ExpPriorityAlta, resolved.ExpAwarded)
	assert.Contains(t, resolved.ResolutionDetails, "Se reemplazó el sensor")
	assert.Contains(t, resolved.ResolutionDetails, "Tiempo de resolución:")

	// creation entry plus resolved, resolution and elapsed entries
	require.Len(t, resolved.Changelog, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, changelogIDs(resolved.Changelog))

	stored, err := userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Equal(t, domain.ExpPriorityAlta, stored.Exp)
	assert.Equal(t, 1, stored.TicketsSolved)
}

func TestResolveTicketCreditsSupporterWithoutCounter(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	supporter := engineer("Marta", "marta@test.mx", 0)
	svc, _, userRepo, _ := newTicketFixture(t, resolver, supporter)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "ICT",
		Fixture:     "FX-22",
		ProblemType: "Software",
		Priority:    domain.PriorityAlta,
	})
	require.NoError(t, err)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	resolved, err := svc.ResolveTicket(context.Background(), actor, ticket.ID, "Ajuste de firmware", "Marta")
	require.NoError(t, err)

	// the supporter credit adds one more entry
	require.Len(t, resolved.Changelog, 5)

	storedSupporter, err := userRepo.GetByEmail(context.Background(), "marta@test.mx")
	require.NoError(t, err)
	assert.Equal(t, domain.ExpPriorityAlta/2, storedSupporter.Exp)
	assert.Equal(t, 0, storedSupporter.TicketsSolved)

	storedResolver, err := userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Equal(t, domain.ExpPriorityAlta, storedResolver.Exp)
	assert.Equal(t, 1, storedResolver.TicketsSolved)
}

func TestResolveTicketUnknownSupporterEarnsNothing(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, _, _ := newTicketFixture(t, resolver)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "EOL",
		Fixture:     "FX-9",
		ProblemType: "Software",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	resolved, err := svc.ResolveTicket(context.Background(), actor, ticket.ID, "Reinicio del equipo", "Nadie Conocido")
	require.NoError(t, err)
	assert.Equal(t, "Nadie Conocido", resolved.SupportedBy)
}

func TestResolveTicketTwiceConflicts(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, _, _ := newTicketFixture(t, resolver)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "ACG",
		Fixture:     "FX-1",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityMedia,
	})
	require.NoError(t, err)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	_, err = svc.ResolveTicket(context.Background(), actor, ticket.ID, "listo", "")
	require.NoError(t, err)

	_, err = svc.ResolveTicket(context.Background(), actor, ticket.ID, "otra vez", "")
	require.Error(t, err)
}

func TestResolveTicketForbiddenForSupervisor(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "ACG",
		Fixture:     "FX-1",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityMedia,
	})
	require.NoError(t, err)

	supervisor := Actor{Name: "Sofia", Email: "sofia@test.mx", Role: domain.RoleSupervisor}
	_, err = svc.ResolveTicket(context.Background(), supervisor, ticket.ID, "listo", "")
	require.Error(t, err)
}

func TestRejectResolutionReopensAndKeepsExperience(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, userRepo, _ := newTicketFixture(t, resolver)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-5",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityMedia,
	})
	require.NoError(t, err)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	_, err = svc.ResolveTicket(context.Background(), actor, ticket.ID, "primer intento", "")
	require.NoError(t, err)

	reopened, err := svc.ConfirmResolution(context.Background(), reporter, ticket.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAbierto, reopened.Status)
	assert.False(t, reopened.Resolved)
	assert.False(t, reopened.PendingUserConfirmation)

	// rejection never retracts the grant; re-resolving awards again
	stored, err := userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Equal(t, domain.ExpPriorityMedia, stored.Exp)

	_, err = svc.ResolveTicket(context.Background(), actor, ticket.ID, "segundo intento", "")
	require.NoError(t, err)

	stored, err = userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Equal(t, 2*domain.ExpPriorityMedia, stored.Exp)
	assert.Equal(t, 2, stored.TicketsSolved)
}

func TestConfirmResolutionClosesTicket(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, _, _ := newTicketFixture(t, resolver)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-5",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	_, err = svc.ResolveTicket(context.Background(), actor, ticket.ID, "listo", "")
	require.NoError(t, err)

	closed, err := svc.ConfirmResolution(context.Background(), reporter, ticket.ID, true)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCerrado, closed.Status)
	assert.True(t, closed.Resolved)
	assert.False(t, closed.PendingUserConfirmation)
}

func TestConfirmResolutionRequiresReporterOrClosePrivilege(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, _, _ := newTicketFixture(t, resolver)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-5",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	_, err = svc.ResolveTicket(context.Background(), actor, ticket.ID, "listo", "")
	require.NoError(t, err)

	stranger := Actor{Name: "Otro", Email: "otro@test.mx", Role: domain.RoleIngeniero}
	_, err = svc.ConfirmResolution(context.Background(), stranger, ticket.ID, true)
	require.Error(t, err)

	gerente := Actor{Name: "Gloria", Email: "gloria@test.mx", Role: domain.RoleGerente}
	_, err = svc.ConfirmResolution(context.Background(), gerente, ticket.ID, true)
	require.NoError(t, err)
}

func TestForceCloseSkipsExperience(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, userRepo, _ := newTicketFixture(t, resolver)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "FLASH",
		Fixture:     "FX-7",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityAlta,
	})
	require.NoError(t, err)

	gerente := Actor{Name: "Gloria", Email: "gloria@test.mx", Role: domain.RoleGerente}
	closed, err := svc.CloseTicket(context.Background(), gerente, ticket.ID, "duplicado")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCerrado, closed.Status)
	assert.Zero(t, closed.ExpAwarded)
	require.NotNil(t, closed.ResolvedAt)

	stored, err := userRepo.GetByEmail(context.Background(), "pedro@test.mx")
	require.NoError(t, err)
	assert.Zero(t, stored.Exp)

	ingeniero := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	_, err = svc.CloseTicket(context.Background(), ingeniero, ticket.ID, "no debería")
	require.Error(t, err)
}

func TestAddCommentSequencesIDs(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-3",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	updated, err := svc.AddComment(context.Background(), reporter, ticket.ID, "sigue fallando")
	require.NoError(t, err)
	updated, err = svc.AddComment(context.Background(), reporter, ticket.ID, "sigue fallando")
	require.NoError(t, err)

	require.Len(t, updated.Comments, 2)
	assert.Equal(t, 1, updated.Comments[0].ID)
	assert.Equal(t, 2, updated.Comments[1].ID)

	_, err = svc.AddComment(context.Background(), reporter, ticket.ID, "   ")
	require.Error(t, err)
}

func TestAssignTicketOverwritesAssignment(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-3",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	gerente := Actor{Name: "Gloria", Email: "gloria@test.mx", Role: domain.RoleGerente}
	assigned, err := svc.AssignTicket(context.Background(), gerente, ticket.ID, "Pedro", "pedro@test.mx")
	require.NoError(t, err)
	assert.Equal(t, "Pedro", assigned.AssignedToName)
	assert.Equal(t, "Asignado a Pedro", assigned.Changelog[len(assigned.Changelog)-1].Action)
	assert.Equal(t, domain.SystemUser, assigned.Changelog[len(assigned.Changelog)-1].User)

	reassigned, err := svc.AssignTicket(context.Background(), gerente, ticket.ID, "Marta", "marta@test.mx")
	require.NoError(t, err)
	assert.Equal(t, "Marta", reassigned.AssignedToName)
	assert.Equal(t, "Asignado a Marta", reassigned.Changelog[len(reassigned.Changelog)-1].Action)
}

func TestAssignTicketForbiddenForSupervisor(t *testing.T) {
	svc, ticketRepo, _, _ := newTicketFixture(t)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-3",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	supervisor := Actor{Name: "Sofia", Email: "sofia@test.mx", Role: domain.RoleSupervisor}
	_, err = svc.AssignTicket(context.Background(), supervisor, ticket.ID, "Pedro", "pedro@test.mx")
	require.Error(t, err)

	stored, err := ticketRepo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AssignedToName)
	assert.Nil(t, stored.AssignedAt)
}

func TestCommentAndConfirmRequireKnownRole(t *testing.T) {
	resolver := engineer("Pedro", "pedro@test.mx", 0)
	svc, _, _, _ := newTicketFixture(t, resolver)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-3",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	outsider := Actor{Name: "Nadie", Email: "nadie@test.mx", Role: domain.Role("invitado")}
	_, err = svc.AddComment(context.Background(), outsider, ticket.ID, "no autorizado")
	require.Error(t, err)

	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}
	_, err = svc.ResolveTicket(context.Background(), actor, ticket.ID, "listo", "")
	require.NoError(t, err)

	// even the reporter's own email does not bypass the role gate
	impostor := Actor{Name: "Nadie", Email: "laura@test.mx", Role: domain.Role("invitado")}
	_, err = svc.ConfirmResolution(context.Background(), impostor, ticket.ID, true)
	require.Error(t, err)
}

func TestListTicketsMergesApprovedSupport(t *testing.T) {
	svc, _, _, supportRepo := newTicketFixture(t)
	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}

	approved := true
	reviewedAt := time.Now()
	require.NoError(t, supportRepo.Create(context.Background(), &domain.UnregisteredSupport{
		Area:           "ICT",
		Fixture:        "FX-2",
		Description:    "apoyo en turno nocturno",
		SubmitterName:  "Pedro",
		SubmitterEmail: "pedro@test.mx",
	}))
	entry, err := supportRepo.GetByID(context.Background(), "support-1")
	require.NoError(t, err)
	entry.Approved = &approved
	entry.ReviewedAt = &reviewedAt
	require.NoError(t, supportRepo.Update(context.Background(), entry))

	// a second, still pending claim must not appear
	require.NoError(t, supportRepo.Create(context.Background(), &domain.UnregisteredSupport{
		Area:           "ICT",
		Description:    "pendiente",
		SubmitterName:  "Pedro",
		SubmitterEmail: "pedro@test.mx",
	}))

	tickets, err := svc.ListTickets(context.Background(), actor, "all")
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	merged := tickets[0]
	assert.True(t, merged.IsUnregisteredSupport)
	assert.Equal(t, domain.StatusCerrado, merged.Status)
	assert.True(t, merged.Resolved)
	assert.Zero(t, merged.ExpAwarded)
}

func TestListTicketsUnknownFilter(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	actor := Actor{Name: "Pedro", Email: "pedro@test.mx", Role: domain.RoleIngeniero}

	_, err := svc.ListTickets(context.Background(), actor, "weird")
	require.Error(t, err)
}

func TestListTicketsScopesSupervisorToArea(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	_, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-1",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)
	_, err = svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "ICT",
		Fixture:     "FX-2",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	supervisor := Actor{Name: "Sofia", Email: "sofia@test.mx", Role: domain.RoleSupervisor, Area: "SMT"}
	tickets, err := svc.ListTickets(context.Background(), supervisor, "all")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "SMT", tickets[0].Area)
}

func TestDeleteTicketRequiresPrivilege(t *testing.T) {
	svc, _, _, _ := newTicketFixture(t)
	reporter := Actor{Name: "Laura", Email: "laura@test.mx", Role: domain.RoleIngeniero}

	ticket, err := svc.SubmitTicket(context.Background(), reporter, SubmitTicketInput{
		Area:        "SMT",
		Fixture:     "FX-1",
		ProblemType: "Mecánico",
		Priority:    domain.PriorityBaja,
	})
	require.NoError(t, err)

	require.Error(t, svc.DeleteTicket(context.Background(), reporter, ticket.ID))

	admin := Actor{Name: "Root", Email: "root@test.mx", Role: domain.RoleAdmin}
	require.NoError(t, svc.DeleteTicket(context.Background(), admin, ticket.ID))
	require.Error(t, svc.DeleteTicket(context.Background(), admin, ticket.ID))
}

func changelogIDs(entries []domain.ChangelogEntry) []int {
	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "menos de un minuto"},
		{5 * time.Minute, "5 minutos"},
		{time.Hour + 2*time.Minute, "1 hora 2 minutos"},
		{26*time.Hour + 30*time.Minute, "1 día 2 horas 30 minutos"},
		{48 * time.Hour, "2 días"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, formatElapsed(tc.in), tc.in.String())
	}
}
