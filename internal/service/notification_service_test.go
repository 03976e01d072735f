package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/domain"
)

func TestTicketCreatedNotifiesAgentsButNotActor(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	agent := f.addMember(t, admin, "bo@acme.io", domain.RoleAgent)
	viewer := f.addMember(t, admin, "vi@acme.io", domain.RoleViewer)

	ticket := f.newTicket(t, admin)

	agentItems, err := f.notifications.List(context.Background(), agent.UserID, 0)
	require.NoError(t, err)
	require.Len(t, agentItems, 1)
	assert.Equal(t, domain.NotificationTicketCreated, agentItems[0].Type)
	assert.Equal(t, ticket.ID, *agentItems[0].RelatedTicketID)
	assert.Equal(t, ticket.TicketNumber, agentItems[0].Metadata["ticketNumber"])
	assert.False(t, agentItems[0].IsRead)
	assert.Nil(t, agentItems[0].ReadAt)

	adminItems, err := f.notifications.List(context.Background(), admin.UserID, 0)
	require.NoError(t, err)
	assert.Empty(t, adminItems)

	viewerItems, err := f.notifications.List(context.Background(), viewer.UserID, 0)
	require.NoError(t, err)
	assert.Empty(t, viewerItems)
}

func TestAssignAndEscalateNotifications(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	ticket := f.newTicket(t, admin)
	agent := f.addMember(t, admin, "bo@acme.io", domain.RoleAgent)

	_, _, err := f.tickets.Assign(context.Background(), admin, ticket.ID, agent.UserID)
	require.NoError(t, err)
	_, _, err = f.tickets.Escalate(context.Background(), agent, ticket.ID, "needs refund approval")
	require.NoError(t, err)

	agentItems, err := f.notifications.List(context.Background(), agent.UserID, 0)
	require.NoError(t, err)
	require.Len(t, agentItems, 1)
	assert.Equal(t, domain.NotificationTicketAssigned, agentItems[0].Type)

	adminItems, err := f.notifications.List(context.Background(), admin.UserID, 0)
	require.NoError(t, err)
	require.Len(t, adminItems, 1)
	assert.Equal(t, domain.NotificationTicketEscalated, adminItems[0].Type)
	assert.Equal(t, domain.NotificationPriorityHigh, adminItems[0].Priority)
	assert.Contains(t, adminItems[0].Message, "needs refund approval")
}

func TestNotificationReadAndDelete(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	agent := f.addMember(t, admin, "bo@acme.io", domain.RoleAgent)
	f.newTicket(t, admin)
	f.newTicket(t, admin)
	f.newTicket(t, admin)
	ctx := context.Background()

	unread, err := f.notifications.UnreadCount(ctx, agent.UserID)
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	items, err := f.notifications.List(ctx, agent.UserID, 0)
	require.NoError(t, err)
	read, err := f.notifications.MarkRead(ctx, agent.UserID, items[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)

	_, err = f.notifications.MarkRead(ctx, admin.UserID, items[1].ID)
	requireDomainError(t, err, http.StatusNotFound)

	updated, err := f.notifications.MarkAllRead(ctx, agent.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	require.NoError(t, f.notifications.Delete(ctx, agent.UserID, items[0].ID))
	requireDomainError(t, f.notifications.Delete(ctx, agent.UserID, items[0].ID), http.StatusNotFound)

	removed, err := f.notifications.Clear(ctx, agent.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	unread, err = f.notifications.UnreadCount(ctx, agent.UserID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
