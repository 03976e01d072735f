package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-inbox/internal/domain"
)

func TestRegisterBusinessCreatesCompanyAndAdmin(t *testing.T) {
	f := newFixture(t)
	result, err := f.authSvc.Register(context.Background(), RegisterInput{
		Name:        "Ana",
		Email:       "Ana@Acme.io",
		Password:    "password123",
		AccountType: domain.AccountTypeBusiness,
		CompanyName: "Acme Support Co",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Company)

	assert.Equal(t, "acme-support-co", result.Company.Slug)
	assert.Equal(t, "ana@acme.io", result.User.Email)
	require.NotNil(t, result.User.Role)
	assert.Equal(t, domain.RoleAdmin, *result.User.Role)
	assert.Equal(t, result.Company.ID, *result.User.CompanyID)
	assert.NotEmpty(t, result.Token)

	claims, err := f.tokens.ParseToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.Company.ID, claims.Identity().Company())
}

func TestRegisterDuplicateSlugGetsSuffix(t *testing.T) {
	f := newFixture(t)
	f.registerBusiness(t, "Acme", "one@acme.io")
	result, err := f.authSvc.Register(context.Background(), RegisterInput{
		Name: "Two", Email: "two@acme.io", Password: "password123",
		AccountType: domain.AccountTypeBusiness, CompanyName: "Acme",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^acme-[0-9a-f]{8}$`, result.Company.Slug)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.registerBusiness(t, "Acme", "ana@acme.io")
	_, err := f.authSvc.Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "ANA@acme.io", Password: "password123", AccountType: domain.AccountTypePersonal,
	})
	requireDomainError(t, err, http.StatusConflict)
}

func TestRegisterPersonalHasNoCompany(t *testing.T) {
	f := newFixture(t)
	result, err := f.authSvc.Register(context.Background(), RegisterInput{
		Name: "Pat", Email: "pat@example.com", Password: "password123", AccountType: domain.AccountTypePersonal,
	})
	require.NoError(t, err)
	assert.Nil(t, result.Company)
	assert.Nil(t, result.User.CompanyID)
	assert.Nil(t, result.User.Role)
}

func TestLoginChecksPassword(t *testing.T) {
	f := newFixture(t)
	f.registerBusiness(t, "Acme", "ana@acme.io")

	_, err := f.authSvc.Login(context.Background(), "ana@acme.io", "wrong-password")
	requireDomainError(t, err, http.StatusUnauthorized)

	_, err = f.authSvc.Login(context.Background(), "nobody@acme.io", "password123")
	requireDomainError(t, err, http.StatusUnauthorized)

	result, err := f.authSvc.Login(context.Background(), " ANA@acme.io ", "password123")
	require.NoError(t, err)
	require.NotNil(t, result.Company)
	assert.Equal(t, "Acme", result.Company.Name)
}

func TestMeReturnsCompany(t *testing.T) {
	f := newFixture(t)
	admin := f.registerBusiness(t, "Acme", "ana@acme.io")

	user, company, err := f.authSvc.Me(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, admin.UserID, user.ID)
	assert.Equal(t, admin.Company(), company.ID)
}
