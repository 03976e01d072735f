package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/analytics"
	"github.com/spec-kit/support-inbox/internal/domain"
)

func TestCreateTicketDefaultsAndActivity(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")

	ticket := f.newTicket(t, admin)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Regexp(t, `^TCK-[0-9A-F]{8}$`, ticket.TicketNumber)

	activities, err := f.tickets.ListActivities(context.Background(), admin.Company(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, domain.ActivityCreated, activities[0].Type)
}

func TestCreateTicketValidates(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")

	_, err := f.tickets.CreateTicket(context.Background(), admin, TicketCreateInput{Subject: "x"})
	requireDomainError(t, err, http.StatusBadRequest)

	_, err = f.tickets.CreateTicket(context.Background(), admin, TicketCreateInput{
		Subject: "x", SenderEmail: "a@b.com", Priority: "critical",
	})
	requireDomainError(t, err, http.StatusBadRequest)
}

func TestUpdateStatusNewToResolved(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)

	updated, activity, err := f.tickets.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusResolved, "customer confirmed")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)
	assert.Equal(t, domain.ActivityStatusChanged, activity.Type)
	assert.Contains(t, activity.Details, "customer confirmed")

	activities, err := f.tickets.ListActivities(context.Background(), admin.Company(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, domain.ActivityStatusChanged, activities[0].Type)
}

func TestUpdateStatusKeepsFirstResolvedAt(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)

	first := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	f.tickets.now = func() time.Time { return first }
	_, _, err := f.tickets.Resolve(context.Background(), admin, ticket.ID)
	require.NoError(t, err)

	f.tickets.now = func() time.Time { return first.Add(48 * time.Hour) }
	_, _, err = f.tickets.UpdateStatus(context.Background(), admin, ticket.ID, domain.TicketStatusInProgress, "")
	require.NoError(t, err)
	reopened, _, err := f.tickets.Resolve(context.Background(), admin, ticket.ID)
	require.NoError(t, err)
	assert.True(t, reopened.ResolvedAt.Equal(first))
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)

	_, _, err := f.tickets.UpdateStatus(context.Background(), admin, ticket.ID, "archived", "")
	requireDomainError(t, err, http.StatusBadRequest)
}

func TestTicketsAreScopedToCompany(t *testing.T) {
	f := newFixture(t)
	acme := f.registerBusiness(t, "Acme", "ana@acme.io")
	globex := f.registerBusiness(t, "Globex", "hank@globex.io")
	ticket := f.newTicket(t, acme)

	_, err := f.tickets.GetTicket(context.Background(), globex.Company(), ticket.ID)
	requireDomainError(t, err, http.StatusNotFound)

	_, _, err = f.tickets.Resolve(context.Background(), globex, ticket.ID)
	requireDomainError(t, err, http.StatusNotFound)
}

func TestEscalateRequiresReason(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)

	_, _, err := f.tickets.Escalate(context.Background(), admin, ticket.ID, "  ")
	requireDomainError(t, err, http.StatusBadRequest)

	escalated, activity, err := f.tickets.Escalate(context.Background(), admin, ticket.ID, "legal threat")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusEscalated, escalated.Status)
	assert.NotNil(t, escalated.EscalatedAt)
	assert.Equal(t, domain.ActivityEscalated, activity.Type)
	assert.True(t, escalated.IsClosed())
}

func TestUpdatePriorityAppendsActivity(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)

	updated, activity, err := f.tickets.UpdatePriority(context.Background(), admin, ticket.ID, domain.TicketPriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)
	assert.Equal(t, domain.ActivityPriorityChanged, activity.Type)
	assert.Equal(t, "Priority changed from medium to urgent", activity.Details)

	_, _, err = f.tickets.UpdatePriority(context.Background(), admin, ticket.ID, "extreme")
	requireDomainError(t, err, http.StatusBadRequest)
}

func TestAssignRequiresCompanyMember(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	outsider := f.registerBusiness(t, "Globex", "hank@globex.io")
	agent := f.addMember(t, admin, "bo@acme.io", domain.RoleAgent)
	ticket := f.newTicket(t, admin)

	_, _, err := f.tickets.Assign(context.Background(), admin, ticket.ID, outsider.UserID)
	requireDomainError(t, err, http.StatusBadRequest)

	assigned, activity, err := f.tickets.Assign(context.Background(), admin, ticket.ID, agent.UserID)
	require.NoError(t, err)
	assert.Equal(t, agent.UserID, *assigned.AssigneeID)
	assert.Equal(t, domain.ActivityAssigned, activity.Type)
	assert.Contains(t, activity.Details, "Member bo@acme.io")
}

func TestNotesAndCommentsLeaveStatus(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)

	note, err := f.tickets.AddNote(context.Background(), admin, ticket.ID, "call back tomorrow")
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityNote, note.Type)
	comment, err := f.tickets.AddComment(context.Background(), admin, ticket.ID, "looks like a carrier issue")
	require.NoError(t, err)
	assert.Equal(t, domain.ActivityComment, comment.Type)

	_, err = f.tickets.AddNote(context.Background(), admin, ticket.ID, "")
	requireDomainError(t, err, http.StatusBadRequest)

	reloaded, err := f.tickets.GetTicket(context.Background(), admin.Company(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, reloaded.Status)
}

func TestReplySendsMailAndMarksResponded(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)

	updated, activity, err := f.tickets.Reply(context.Background(), admin, ticket.ID, "We shipped a replacement.")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResponded, updated.Status)
	require.NotNil(t, updated.ResponseGeneratedAt)
	assert.Equal(t, domain.ActivityReply, activity.Type)

	sent := f.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "casey@example.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, ticket.TicketNumber)
	assert.Equal(t, "ana@acme.io", sent[0].ReplyTo)
}

func TestReplyFailureChangesNothing(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)
	f.mailer.err = errors.New("connection refused")

	_, _, err := f.tickets.Reply(context.Background(), admin, ticket.ID, "hello")
	requireDomainError(t, err, http.StatusInternalServerError)

	reloaded, err := f.tickets.GetTicket(context.Background(), admin.Company(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, reloaded.Status)
	assert.Nil(t, reloaded.ResponseGeneratedAt)
}

func TestRecordAIResponseStampsOnce(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)

	first, activity, err := f.tickets.RecordAIResponse(context.Background(), admin, ticket.ID, "Suggested reply")
	require.NoError(t, err)
	require.NotNil(t, first.ResponseGeneratedAt)
	assert.Equal(t, domain.ActivityResponded, activity.Type)
	assert.Nil(t, activity.ActorID)
	assert.Equal(t, domain.TicketStatusNew, first.Status)

	stamp := *first.ResponseGeneratedAt
	f.tickets.now = func() time.Time { return stamp.Add(time.Hour) }
	second, _, err := f.tickets.RecordAIResponse(context.Background(), admin, ticket.ID, "Another")
	require.NoError(t, err)
	assert.True(t, second.ResponseGeneratedAt.Equal(stamp))
}

func TestAcknowledgmentSentWhenEnabled(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	tpl := domain.DefaultAckTemplate()
	tpl.Enabled = true
	_, err := f.companies.UpdateEmailTemplate(context.Background(), admin, tpl)
	require.NoError(t, err)

	ticket := f.newTicket(t, admin)
	sent := f.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "We received your request ["+ticket.TicketNumber+"]", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "Hi Casey")
	assert.Contains(t, sent[0].Body, "Acme")
}

func TestListCountAndAnalytics(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	first := f.newTicket(t, admin)
	f.newTicket(t, admin)
	_, _, err := f.tickets.Resolve(context.Background(), admin, first.ID)
	require.NoError(t, err)

	list, err := f.tickets.ListTickets(context.Background(), admin.Company(), TicketListFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusNew},
	})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	count, err := f.tickets.CountTickets(context.Background(), admin.Company(), TicketListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	metrics, err := f.tickets.Analytics(context.Background(), admin.Company(), analytics.Range7Days)
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.Total)
	assert.InDelta(t, 50.0, metrics.ResolutionRate, 1e-9)
}
