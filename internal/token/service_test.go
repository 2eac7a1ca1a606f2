package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxis-crm/praxis/internal/apperr"
	"github.com/praxis-crm/praxis/internal/shared"
)

type staticPrincipals struct {
	principal *shared.Principal
	err       error
}

func (s staticPrincipals) LoadPrincipal(context.Context, int64) (*shared.Principal, error) {
	return s.principal, s.err
}

func newTestService(principals PrincipalSource) (*Service, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(Config{
		Secret:     "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 168 * time.Hour,
	}, NewMemoryBlacklist(), principals)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestIssuePairAndValidate(t *testing.T) {
	svc, _ := newTestService(nil)
	pair, err := svc.IssuePair(7, "dina", []string{"STAFF"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(3600), pair.ExpiresIn)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := svc.Validate(context.Background(), pair.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "dina", claims.Username)
	assert.Equal(t, []string{"STAFF"}, claims.Roles)

	_, err = svc.Validate(context.Background(), pair.RefreshToken, TypeRefresh)
	assert.NoError(t, err)
}

func TestValidateRejectsWrongType(t *testing.T) {
	svc, _ := newTestService(nil)
	pair, err := svc.IssuePair(1, "u", nil)
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), pair.RefreshToken, TypeAccess)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)

	_, err = svc.Validate(context.Background(), pair.AccessToken, TypeRefresh)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestValidateRejectsTampered(t *testing.T) {
	svc, _ := newTestService(nil)
	other := NewService(Config{Secret: "other-secret"}, NewMemoryBlacklist(), nil)
	pair, err := other.IssuePair(1, "u", nil)
	require.NoError(t, err)

	_, err = svc.Validate(context.Background(), pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestValidateExpired(t *testing.T) {
	svc, now := newTestService(nil)
	pair, err := svc.IssuePair(1, "u", nil)
	require.NoError(t, err)

	*now = now.Add(2 * time.Hour)
	_, err = svc.Validate(context.Background(), pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)

	// The refresh lifetime is independent of the access lifetime.
	_, err = svc.Validate(context.Background(), pair.RefreshToken, TypeRefresh)
	assert.NoError(t, err)
}

func TestInvalidateRevokesUntilExpiry(t *testing.T) {
	svc, _ := newTestService(nil)
	pair, err := svc.IssuePair(1, "u", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Invalidate(context.Background(), pair.AccessToken))

	_, err = svc.Validate(context.Background(), pair.AccessToken, TypeAccess)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)

	// The refresh token stays valid, revocation is per token.
	_, err = svc.Validate(context.Background(), pair.RefreshToken, TypeRefresh)
	assert.NoError(t, err)
}

func TestInvalidateGarbageIsNoOp(t *testing.T) {
	svc, _ := newTestService(nil)
	assert.NoError(t, svc.Invalidate(context.Background(), "not-a-token"))
}

func TestIsExpired(t *testing.T) {
	svc, now := newTestService(nil)
	pair, err := svc.IssuePair(1, "u", nil)
	require.NoError(t, err)

	assert.False(t, svc.IsExpired(pair.AccessToken))

	*now = now.Add(2 * time.Hour)
	assert.True(t, svc.IsExpired(pair.AccessToken))

	// Fails closed on anything unparseable.
	assert.True(t, svc.IsExpired("garbage"))
	assert.True(t, svc.IsExpired(""))
}

func TestRefreshRotatesAndRevokesOldToken(t *testing.T) {
	svc, _ := newTestService(nil)
	pair, err := svc.IssuePair(4, "nam", []string{"STAFF"})
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)

	claims, err := svc.Validate(context.Background(), fresh.AccessToken, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(4), claims.UserID)

	// The spent refresh token cannot be replayed.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestRefreshExpiredRefreshToken(t *testing.T) {
	svc, now := newTestService(nil)
	pair, err := svc.IssuePair(1, "u", nil)
	require.NoError(t, err)

	// Past the refresh lifetime the session is over; the caller must log in
	// again instead of getting a new pair.
	*now = now.Add(200 * time.Hour)
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrTokenExpired)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestService(nil)
	pair, err := svc.IssuePair(1, "u", nil)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrTokenInvalid)
}

func TestPrincipalLoadsLiveIdentity(t *testing.T) {
	live := &shared.Principal{
		ID:          9,
		Username:    "mai",
		Permissions: map[string][]string{"USER": {"VIEW"}},
	}
	svc, _ := newTestService(staticPrincipals{principal: live})
	pair, err := svc.IssuePair(9, "mai", []string{"STAFF"})
	require.NoError(t, err)

	p, err := svc.Principal(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Same(t, live, p)
}

func TestPrincipalRejectsMissingIdentity(t *testing.T) {
	svc, _ := newTestService(staticPrincipals{})
	pair, err := svc.IssuePair(9, "gone", nil)
	require.NoError(t, err)

	_, err = svc.Principal(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
