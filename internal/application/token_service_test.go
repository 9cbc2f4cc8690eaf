package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ineedllc/ineed-api/internal/application"
	"github.com/ineedllc/ineed-api/internal/domain/entity"
	"github.com/ineedllc/ineed-api/internal/testutil"
	"github.com/ineedllc/ineed-api/pkg/helpers"
)

func newTokenService() (*application.TokenService, *testutil.TokenLedger) {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	ledger := testutil.NewTokenLedger()
	clock := testutil.NewFixedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	svc := application.NewTokenService(jwt, ledger, clock, testPolicy(), helpers.NewLogger("test", "test"))
	return svc, ledger
}

func testUser() *entity.User {
	return &entity.User{ID: "5f6c9d0e-0000-4000-8000-000000000001", Role: entity.RoleUser}
}

func TestIssuePairRecordsLedgerRow(t *testing.T) {
	svc, ledger := newTokenService()

	pair, err := svc.IssuePair(context.Background(), testUser())
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 1, ledger.Outstanding(testUser().ID))

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, testUser().ID, claims.UserID)
	assert.Equal(t, string(entity.RoleUser), claims.Role)
	assert.Equal(t, helpers.ScopeFull, claims.Scope)
}

func TestRefreshMintsAccessOnly(t *testing.T) {
	svc, _ := newTokenService()
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)

	access, exp, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := svc.JWT.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, testUser().ID, claims.UserID)
	assert.Equal(t, helpers.ScopeFull, claims.Scope)

	// the refresh token is not rotated; it can be used again
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc, _ := newTokenService()

	_, _, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, application.ErrToken)
}

func TestRefreshRejectsAccessTokenAsRefresh(t *testing.T) {
	svc, _ := newTokenService()
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)

	// signed with the access secret, so the refresh parse fails
	_, _, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, application.ErrToken)
}

func TestRevokeOneBlacklistsToken(t *testing.T) {
	svc, _ := newTokenService()
	ctx := context.Background()

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)

	require.NoError(t, svc.RevokeOne(ctx, pair.RefreshToken))
	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, application.ErrToken)

	// idempotent
	assert.NoError(t, svc.RevokeOne(ctx, pair.RefreshToken))
}

func TestRevokeAllSweepsEverySession(t *testing.T) {
	svc, ledger := newTokenService()
	ctx := context.Background()
	u := testUser()

	first, err := svc.IssuePair(ctx, u)
	require.NoError(t, err)
	second, err := svc.IssuePair(ctx, u)
	require.NoError(t, err)
	require.Equal(t, 2, ledger.Outstanding(u.ID))

	require.NoError(t, svc.RevokeAllForUser(ctx, u.ID))
	assert.Equal(t, 0, ledger.Outstanding(u.ID))

	_, _, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, application.ErrToken)
	_, _, err = svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, application.ErrToken)
}

func TestResetPairIsScopedAndNotRefreshable(t *testing.T) {
	svc, _ := newTokenService()
	ctx := context.Background()

	pair, err := svc.IssueResetPair(ctx, testUser())
	require.NoError(t, err)

	claims, err := svc.JWT.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, helpers.ScopePasswordReset, claims.Scope)

	// the reset window bounds the access token, not the default TTL
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), pair.AccessExpiresAt, 5*time.Second)

	_, _, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, application.ErrToken)
}
