package kvx_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/pkg/kvx"
)

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, s kvx.Store, now time.Time) {
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, err := s.Get(ctx, "missing")
		require.ErrorIs(t, err, kvx.ErrNotFound)
	})

	t.Run("put get delete", func(t *testing.T) {
		exp := now.Add(time.Minute).Truncate(time.Millisecond)
		require.NoError(t, s.Put(ctx, "k1", kvx.Entry{Value: "v1", ExpiresAt: exp}))

		e, err := s.Get(ctx, "k1")
		require.NoError(t, err)
		require.Equal(t, "v1", e.Value)
		require.True(t, exp.Equal(e.ExpiresAt))

		require.NoError(t, s.Delete(ctx, "k1"))
		_, err = s.Get(ctx, "k1")
		require.ErrorIs(t, err, kvx.ErrNotFound)
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, s.Put(ctx, "k2", kvx.Entry{Value: "a"}))
		require.NoError(t, s.Put(ctx, "k2", kvx.Entry{Value: "b"}))

		e, err := s.Get(ctx, "k2")
		require.NoError(t, err)
		require.Equal(t, "b", e.Value)
		require.True(t, e.ExpiresAt.IsZero())
	})

	t.Run("delete missing is not an error", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "never-there"))
	})

	claimer, ok := s.(kvx.Claimer)
	if !ok {
		return
	}

	t.Run("put if absent", func(t *testing.T) {
		e := kvx.Entry{Value: "first", ExpiresAt: now.Add(time.Minute)}
		stored, err := claimer.PutIfAbsent(ctx, "claim", e)
		require.NoError(t, err)
		require.True(t, stored)

		stored, err = claimer.PutIfAbsent(ctx, "claim", kvx.Entry{Value: "second", ExpiresAt: now.Add(time.Minute)})
		require.NoError(t, err)
		require.False(t, stored)

		got, err := s.Get(ctx, "claim")
		require.NoError(t, err)
		require.Equal(t, "first", got.Value)
	})

	t.Run("put if absent races", func(t *testing.T) {
		var (
			wins atomic.Int32
			wg   sync.WaitGroup
		)
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				stored, err := claimer.PutIfAbsent(ctx, "race", kvx.Entry{Value: "x", ExpiresAt: now.Add(time.Minute)})
				assert.NoError(t, err)
				if stored {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		require.Equal(t, int32(1), wins.Load())
	})
}

func TestEntryExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	require.False(t, kvx.Entry{}.Expired(now), "zero expiry never expires")
	require.False(t, kvx.Entry{ExpiresAt: now.Add(time.Second)}.Expired(now))
	require.True(t, kvx.Entry{ExpiresAt: now}.Expired(now))
	require.True(t, kvx.Entry{ExpiresAt: now.Add(-time.Second)}.Expired(now))
}
