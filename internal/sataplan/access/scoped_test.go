package access_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/access"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
	"github.com/aussiebroadwan/sataplan/pkg/kvx"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

func TestIssuePermanent(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()

	tok, err := f.scoped.IssuePermanent(3, 7)
	require.NoError(t, err)

	c, err := f.codec.Verify(tok.Token)
	require.NoError(t, err)
	require.Equal(t, jwtx.KindQRPermanent, c.Kind)
	require.Equal(t, int64(3), c.ResourceID)
	require.Equal(t, int64(7), c.PrincipalID)
	require.False(t, c.SingleUse)
	require.Equal(t, now.Add(15*time.Minute).Unix(), c.Expiry().Unix())
	require.Equal(t, tok.ExpiresAt.Unix(), c.Expiry().Unix())
}

func TestIssueOneTime(t *testing.T) {
	f := newFixture(t)
	now := f.clock.Now()

	a, err := f.scoped.IssueOneTime(3)
	require.NoError(t, err)
	b, err := f.scoped.IssueOneTime(3)
	require.NoError(t, err)

	ca, err := f.codec.Verify(a.Token)
	require.NoError(t, err)
	cb, err := f.codec.Verify(b.Token)
	require.NoError(t, err)

	require.Equal(t, jwtx.KindQROneTime, ca.Kind)
	require.True(t, ca.SingleUse)
	require.Equal(t, int64(3), ca.ResourceID)
	require.NotEmpty(t, ca.ConsumptionID)
	require.NotEqual(t, ca.ConsumptionID, cb.ConsumptionID)
	require.Equal(t, now.Add(time.Minute).Unix(), ca.Expiry().Unix())
}

func TestScopedPermanentShare(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	share, err := f.scoped.IssueScopedPermanent(ctx, 3, 7)
	require.NoError(t, err)
	require.NotEmpty(t, share.GoalPassword)

	c, err := f.codec.Verify(share.Token)
	require.NoError(t, err)
	require.Equal(t, jwtx.KindQRPermanent, c.Kind)

	t.Run("password redeems for a permanent token", func(t *testing.T) {
		tok, err := f.scoped.RedeemGoalPassword(ctx, 3, 7, share.GoalPassword)
		require.NoError(t, err)

		claims, err := f.gate.Authorize(ctx, tok.Token, jwtx.KindQRPermanent)
		require.NoError(t, err)
		require.Equal(t, int64(3), claims.ResourceID)
		require.Equal(t, int64(7), claims.PrincipalID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.scoped.RedeemGoalPassword(ctx, 3, 7, share.GoalPassword+"x")
		require.ErrorIs(t, err, access.ErrInvalidGoalPassword)
	})

	t.Run("password of another goal", func(t *testing.T) {
		_, err := f.scoped.RedeemGoalPassword(ctx, 4, 7, share.GoalPassword)
		require.ErrorIs(t, err, access.ErrInvalidGoalPassword)
	})

	t.Run("sharing again rotates the password", func(t *testing.T) {
		again, err := f.scoped.IssueScopedPermanent(ctx, 3, 7)
		require.NoError(t, err)
		require.NotEqual(t, share.GoalPassword, again.GoalPassword)

		_, err = f.scoped.RedeemGoalPassword(ctx, 3, 7, share.GoalPassword)
		require.ErrorIs(t, err, access.ErrInvalidGoalPassword)
		_, err = f.scoped.RedeemGoalPassword(ctx, 3, 7, again.GoalPassword)
		require.NoError(t, err)
	})
}

func TestGoalPasswords(t *testing.T) {
	ctx := t.Context()
	clock := newTestClock()
	store := kvx.NewMemory(kvx.MemoryConfig{Now: clock.Now})
	p := access.NewGoalPasswords(store, time.Hour, clock.Now)

	pw, err := p.Rotate(ctx, 1)
	require.NoError(t, err)

	t.Run("only the fingerprint is stored", func(t *testing.T) {
		e, err := store.Get(ctx, "1")
		require.NoError(t, err)
		require.NotEqual(t, pw, e.Value)
		require.NotContains(t, e.Value, pw)
	})

	require.NoError(t, p.Verify(ctx, 1, pw))

	t.Run("revoked", func(t *testing.T) {
		pw2, err := p.Rotate(ctx, 2)
		require.NoError(t, err)
		require.NoError(t, p.Revoke(ctx, 2))
		require.ErrorIs(t, p.Verify(ctx, 2, pw2), access.ErrInvalidGoalPassword)
	})

	t.Run("expired", func(t *testing.T) {
		clock.Advance(time.Hour)
		require.ErrorIs(t, p.Verify(ctx, 1, pw), access.ErrInvalidGoalPassword)
	})

	t.Run("sweep", func(t *testing.T) {
		_, err := p.Rotate(ctx, 5)
		require.NoError(t, err)
		clock.Advance(2 * time.Hour)

		n, err := p.Sweep(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})

	t.Run("store failure", func(t *testing.T) {
		broken := access.NewGoalPasswords(brokenStore{}, 0, clock.Now)
		require.ErrorIs(t, broken.Verify(ctx, 1, "x"), access.ErrInternal)
		_, err := broken.Rotate(ctx, 1)
		require.ErrorIs(t, err, errBrokenStore)
	})
}

// staleStore always returns its entry and cannot delete it.
type staleStore struct{ e kvx.Entry }

func (s staleStore) Get(context.Context, string) (kvx.Entry, error) { return s.e, nil }
func (staleStore) Put(context.Context, string, kvx.Entry) error    { return errBrokenStore }
func (staleStore) Delete(context.Context, string) error            { return errBrokenStore }

func TestGoalPasswordsLogsFailedEviction(t *testing.T) {
	clock := newTestClock()
	var buf bytes.Buffer
	ctx := slogx.WithContext(t.Context(), slog.New(slog.NewJSONHandler(&buf, nil)))

	store := staleStore{e: kvx.Entry{Value: "fingerprint", ExpiresAt: clock.Now().Add(-time.Second)}}
	p := access.NewGoalPasswords(store, time.Hour, clock.Now)

	require.ErrorIs(t, p.Verify(ctx, 9, "x"), access.ErrInvalidGoalPassword)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "WARN", line["level"])
	require.Equal(t, "failed to evict expired goal password", line["msg"])
	require.EqualValues(t, 9, line["goal_id"])
	require.Equal(t, errBrokenStore.Error(), line["err"])
}
