package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PBeekay/TesPITAI/internal/domain"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	_, queries := newTestDB(t)
	logger := testLogger()

	require.NoError(t, queries.SeedPlans(context.Background(), domain.DefaultPlans))

	quota := NewQuotaService(queries, logger)
	return NewUserService(queries, quota, logger)
}

func TestUserService_ProvisionAndLogin(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	user, err := svc.Provision(ctx, domain.ProvisionParams{
		Username: "user",
		Password: "user123",
		Name:     "Demo User",
		Role:     domain.UserRoleAdmin,
	})
	require.NoError(t, err)
	assert.True(t, user.ID > 0)
	assert.Equal(t, "user", user.Username)
	assert.Empty(t, user.PasswordHash)

	result, err := svc.Login(ctx, "user", "user123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Empty(t, result.User.PasswordHash)
	require.NotNil(t, result.User.LastLogin)

	// Users without an explicit subscription get the basic snapshot
	require.NotNil(t, result.Subscription)
	assert.Equal(t, domain.SubscriptionTierBasic, result.Subscription.Plan.Tier)
}

func TestUserService_ProvisionIsIdempotent(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	first, err := svc.Provision(ctx, domain.ProvisionParams{
		Username: "user",
		Password: "user123",
	})
	require.NoError(t, err)

	// A second provision with a different password leaves the account alone
	second, err := svc.Provision(ctx, domain.ProvisionParams{
		Username: "user",
		Password: "changed456",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.Login(ctx, "user", "user123")
	assert.NoError(t, err)
}

func TestUserService_ProvisionValidation(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Provision(ctx, domain.ProvisionParams{Username: "", Password: "user123"})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))

	_, err = svc.Provision(ctx, domain.ProvisionParams{Username: "user", Password: "abc"})
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestUserService_LoginRejectsBadCredentials(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Provision(ctx, domain.ProvisionParams{
		Username: "user",
		Password: "user123",
	})
	require.NoError(t, err)

	// Wrong password and unknown user fail the same way
	_, err = svc.Login(ctx, "user", "wrong")
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))

	_, err = svc.Login(ctx, "nobody", "user123")
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
}

func TestUserService_GetByUsername(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.GetByUsername(ctx, "ghost")
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))

	_, err = svc.Provision(ctx, domain.ProvisionParams{Username: "user", Password: "user123"})
	require.NoError(t, err)

	user, err := svc.GetByUsername(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, "user", user.Username)
	assert.Empty(t, user.PasswordHash)
}
