package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

func TestNewClaims(t *testing.T) {
	exp := time.Unix(1_700_000_900, 0)

	t.Run("session access", func(t *testing.T) {
		c := jwtx.NewClaims(jwtx.SessionClaims{Username: "alice", UserID: 7}, exp)
		require.Equal(t, jwtx.KindSessionAccess, c.Kind)
		require.Equal(t, "alice", c.Subject)
		require.Equal(t, int64(7), c.PrincipalID)
		require.Equal(t, exp.Unix(), c.Expiry().Unix())
		require.Zero(t, c.ResourceID)
	})

	t.Run("session refresh", func(t *testing.T) {
		c := jwtx.NewClaims(jwtx.SessionClaims{Refresh: true, Username: "alice", UserID: 7}, exp)
		require.Equal(t, jwtx.KindSessionRefresh, c.Kind)
	})

	t.Run("permanent", func(t *testing.T) {
		c := jwtx.NewClaims(jwtx.PermanentClaims{GoalID: 3, OwnerID: 7}, exp)
		require.Equal(t, jwtx.KindQRPermanent, c.Kind)
		require.Equal(t, int64(3), c.ResourceID)
		require.Equal(t, int64(7), c.PrincipalID)
		require.False(t, c.SingleUse)
	})

	t.Run("one-time", func(t *testing.T) {
		c := jwtx.NewClaims(jwtx.OneTimeClaims{GoalID: 3, ConsumptionID: "c1"}, exp)
		require.Equal(t, jwtx.KindQROneTime, c.Kind)
		require.Equal(t, "c1", c.ConsumptionID)
		require.True(t, c.SingleUse)
		require.Zero(t, c.PrincipalID)
	})
}

func TestClaimsVariant(t *testing.T) {
	exp := jwt.NewNumericDate(time.Unix(1_700_000_900, 0))

	t.Run("round trips every variant", func(t *testing.T) {
		variants := []jwtx.Variant{
			jwtx.SessionClaims{Username: "bob", UserID: 1},
			jwtx.SessionClaims{Refresh: true, Username: "bob", UserID: 1},
			jwtx.PermanentClaims{GoalID: 2, OwnerID: 1},
			jwtx.OneTimeClaims{GoalID: 2, ConsumptionID: "01HZX"},
		}
		for _, v := range variants {
			got, err := jwtx.NewClaims(v, exp.Time).Variant()
			require.NoError(t, err)
			require.Equal(t, v, got)
		}
	})

	t.Run("missing expiry", func(t *testing.T) {
		_, err := jwtx.Claims{Kind: jwtx.KindSessionAccess, Subject: "a", PrincipalID: 1}.Variant()
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)
	})

	t.Run("missing kind", func(t *testing.T) {
		_, err := jwtx.Claims{ExpiresAt: exp, Subject: "a", PrincipalID: 1}.Variant()
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)
	})

	t.Run("scoped kinds need a resource", func(t *testing.T) {
		_, err := jwtx.Claims{ExpiresAt: exp, Kind: jwtx.KindQRPermanent, PrincipalID: 1}.Variant()
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)

		_, err = jwtx.Claims{ExpiresAt: exp, Kind: jwtx.KindQROneTime, ConsumptionID: "c", SingleUse: true}.Variant()
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)
	})

	t.Run("one-time needs consumption id and single use", func(t *testing.T) {
		_, err := jwtx.Claims{ExpiresAt: exp, Kind: jwtx.KindQROneTime, ResourceID: 2, SingleUse: true}.Variant()
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)

		_, err = jwtx.Claims{ExpiresAt: exp, Kind: jwtx.KindQROneTime, ResourceID: 2, ConsumptionID: "c"}.Variant()
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := jwtx.Claims{ExpiresAt: exp, Kind: "admin"}.Variant()
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestKindValid(t *testing.T) {
	require.True(t, jwtx.KindSessionAccess.Valid())
	require.True(t, jwtx.KindQROneTime.Valid())
	require.False(t, jwtx.Kind("permanent_qr_access").Valid())
	require.False(t, jwtx.Kind("").Valid())
}
