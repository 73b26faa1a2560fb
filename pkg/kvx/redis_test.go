package kvx_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/pkg/kvx"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisContract(t *testing.T) {
	_, client := newMiniRedis(t)
	now := time.Now()
	runStoreContract(t, kvx.NewRedis(client, "contract", func() time.Time { return now }), now)
}

func TestRedisNamespacesKeys(t *testing.T) {
	mr, client := newMiniRedis(t)
	ctx := context.Background()

	ledger := kvx.NewRedis(client, "consumed", nil)
	passwords := kvx.NewRedis(client, "goal_password", nil)

	require.NoError(t, ledger.Put(ctx, "1", kvx.Entry{Value: "ledger"}))
	require.NoError(t, passwords.Put(ctx, "1", kvx.Entry{Value: "password"}))

	require.True(t, mr.Exists("sataplan:consumed:1"))
	require.True(t, mr.Exists("sataplan:goal_password:1"))

	e, err := passwords.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "password", e.Value)
}

func TestRedisUsesTTL(t *testing.T) {
	mr, client := newMiniRedis(t)
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	s := kvx.NewRedis(client, "ttl", func() time.Time { return now })

	require.NoError(t, s.Put(ctx, "k", kvx.Entry{Value: "v", ExpiresAt: now.Add(time.Minute)}))
	require.Equal(t, time.Minute, mr.TTL("sataplan:ttl:k"))

	mr.FastForward(time.Minute)
	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, kvx.ErrNotFound)

	t.Run("already expired entries are not written", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "gone", kvx.Entry{Value: "v", ExpiresAt: now.Add(-time.Second)}))
		require.False(t, mr.Exists("sataplan:ttl:gone"))
	})

	t.Run("claim expires with the entry", func(t *testing.T) {
		stored, err := s.PutIfAbsent(ctx, "c", kvx.Entry{Value: "v", ExpiresAt: now.Add(time.Second)})
		require.NoError(t, err)
		require.True(t, stored)

		mr.FastForward(time.Second)

		stored, err = s.PutIfAbsent(ctx, "c", kvx.Entry{Value: "v", ExpiresAt: now.Add(time.Second)})
		require.NoError(t, err)
		require.True(t, stored)
	})
}

func TestRedisUnavailable(t *testing.T) {
	mr, client := newMiniRedis(t)
	s := kvx.NewRedis(client, "down", nil)
	mr.Close()

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, kvx.ErrNotFound)
}
