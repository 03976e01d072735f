package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/domain"
)

func TestTeamMembership(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	agent := f.addMember(t, admin, "bo@acme.io", domain.RoleAgent)
	ctx := context.Background()

	members, err := f.team.ListMembers(ctx, admin.Company())
	require.NoError(t, err)
	require.Len(t, members, 2)

	_, err = f.team.AddMember(ctx, agent, AddMemberInput{Name: "X", Email: "x@acme.io", Password: "password123"})
	requireDomainError(t, err, http.StatusForbidden)

	_, err = f.team.AddMember(ctx, admin, AddMemberInput{Name: "Dup", Email: "BO@acme.io", Password: "password123"})
	requireDomainError(t, err, http.StatusConflict)

	_, err = f.team.AddMember(ctx, admin, AddMemberInput{Name: "Bad", Email: "bad@acme.io", Password: "password123", Role: "owner"})
	requireDomainError(t, err, http.StatusBadRequest)
}

func TestChangeRoleKeepsOneAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	agent := f.addMember(t, admin, "bo@acme.io", domain.RoleAgent)
	ctx := context.Background()

	_, err := f.team.ChangeRole(ctx, admin, admin.UserID, domain.RoleAgent)
	requireDomainError(t, err, http.StatusConflict)

	promoted, err := f.team.ChangeRole(ctx, admin, agent.UserID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	demoted, err := f.team.ChangeRole(ctx, admin, admin.UserID, domain.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleViewer, demoted.Role)
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")
	other := f.registerBusiness(t, "Globex", "hank@globex.io")
	agent := f.addMember(t, admin, "bo@acme.io", domain.RoleAgent)
	ctx := context.Background()

	requireDomainError(t, f.team.RemoveMember(ctx, admin, admin.UserID), http.StatusConflict)
	requireDomainError(t, f.team.RemoveMember(ctx, other, agent.UserID), http.StatusNotFound)
	require.NoError(t, f.team.RemoveMember(ctx, admin, agent.UserID))

	members, err := f.team.ListMembers(ctx, admin.Company())
	require.NoError(t, err)
	assert.Len(t, members, 1)
}
