package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

func TestSessionIssue(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()

	pair, err := f.sessions.Issue(42, "alice")
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	acc, err := f.codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, jwtx.KindSessionAccess, acc.Kind)
	require.Equal(t, "alice", acc.Subject)
	require.Equal(t, int64(42), acc.PrincipalID)
	require.Equal(t, now.Add(15*time.Minute).Unix(), acc.Expiry().Unix())
	require.Equal(t, pair.AccessExpiresAt.Unix(), acc.Expiry().Unix())

	refresh, err := f.codec.Verify(pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, jwtx.KindSessionRefresh, refresh.Kind)
	require.Equal(t, "alice", refresh.Subject)
	require.Equal(t, int64(42), refresh.PrincipalID)
	require.Equal(t, now.Add(7*24*time.Hour).Unix(), refresh.Expiry().Unix())
}

func TestSessionRefreshWithinTheSameSecond(t *testing.T) {
	f := newFixture(t)

	original, err := f.sessions.Issue(42, "alice")
	require.NoError(t, err)
	before, err := f.codec.Verify(original.AccessToken)
	require.NoError(t, err)

	pair, _, err := f.sessions.Refresh(t.Context(), original.RefreshToken)
	require.NoError(t, err)

	after, err := f.codec.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Greater(t, after.Expiry().Unix(), before.Expiry().Unix())
	require.Equal(t, pair.AccessExpiresAt.Unix(), after.Expiry().Unix())
	require.Equal(t, before.Expiry().Add(time.Second).Unix(), after.Expiry().Unix())
}

func TestSessionRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	original, err := f.sessions.Issue(42, "alice")
	require.NoError(t, err)
	before, err := f.codec.Verify(original.AccessToken)
	require.NoError(t, err)

	f.clock.Advance(30 * time.Second)

	t.Run("new pair for the same principal", func(t *testing.T) {
		pair, who, err := f.sessions.Refresh(ctx, original.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, int64(42), who.UserID)
		require.Equal(t, "alice", who.Username)

		after, err := f.codec.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, before.PrincipalID, after.PrincipalID)
		require.Equal(t, before.Subject, after.Subject)
		require.Greater(t, after.Expiry().Unix(), before.Expiry().Unix())
	})

	t.Run("refresh token is not rotated", func(t *testing.T) {
		_, _, err := f.sessions.Refresh(ctx, original.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("access token cannot refresh", func(t *testing.T) {
		_, _, err := f.sessions.Refresh(ctx, original.AccessToken)
		require.ErrorIs(t, err, access.ErrWrongTokenKind)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		f.clock.Advance(jwtx.DefaultRefreshTokenTTL)
		_, _, err := f.sessions.Refresh(ctx, original.RefreshToken)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})
}
