package jwtx_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

var testSecret = []byte("test-secret-that-is-long-enough-for-hs256")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newCodec(t *testing.T, now time.Time) *jwtx.Codec {
	t.Helper()
	c, err := jwtx.NewCodec(testSecret, "HS256", fixedClock(now))
	require.NoError(t, err)
	return c
}

func TestNewCodec(t *testing.T) {
	t.Run("defaults to HS256", func(t *testing.T) {
		c, err := jwtx.NewCodec(testSecret, "", nil)
		require.NoError(t, err)
		require.Equal(t, "HS256", c.Alg())
	})

	t.Run("accepts the HS family", func(t *testing.T) {
		for _, alg := range []string{"HS256", "HS384", "hs512"} {
			c, err := jwtx.NewCodec(testSecret, alg, nil)
			require.NoError(t, err)
			require.Equal(t, strings.ToUpper(alg), c.Alg())
		}
	})

	t.Run("rejects asymmetric algorithms", func(t *testing.T) {
		_, err := jwtx.NewCodec(testSecret, "RS256", nil)
		require.Error(t, err)
	})

	t.Run("rejects an empty secret", func(t *testing.T) {
		_, err := jwtx.NewCodec(nil, "HS256", nil)
		require.Error(t, err)
	})
}

func TestCodecRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	codec := newCodec(t, now)

	cases := map[string]jwtx.Claims{
		"session":   jwtx.NewClaims(jwtx.SessionClaims{Username: "alice", UserID: 42}, now.Add(jwtx.DefaultAccessTokenTTL)),
		"permanent": jwtx.NewClaims(jwtx.PermanentClaims{GoalID: 9, OwnerID: 42}, now.Add(jwtx.DefaultPermanentTTL)),
		"one-time":  jwtx.NewClaims(jwtx.OneTimeClaims{GoalID: 9, ConsumptionID: "01J0000000000000000000000"}, now.Add(jwtx.DefaultOneTimeTTL)),
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := codec.Sign(in)
			require.NoError(t, err)

			out, err := codec.Verify(token)
			require.NoError(t, err)

			require.Equal(t, in.Subject, out.Subject)
			require.Equal(t, in.PrincipalID, out.PrincipalID)
			require.Equal(t, in.Kind, out.Kind)
			require.Equal(t, in.ResourceID, out.ResourceID)
			require.Equal(t, in.ConsumptionID, out.ConsumptionID)
			require.Equal(t, in.SingleUse, out.SingleUse)
			require.Equal(t, in.Expiry().Unix(), out.Expiry().Unix())
		})
	}
}

func TestCodecSignRequiresExpiry(t *testing.T) {
	codec := newCodec(t, time.Now())

	_, err := codec.Sign(jwtx.Claims{Kind: jwtx.KindSessionAccess, Subject: "a", PrincipalID: 1})
	require.ErrorIs(t, err, jwtx.ErrMissingClaim)
}

func TestCodecVerifyFailures(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	codec := newCodec(t, now)

	valid, err := codec.Sign(jwtx.NewClaims(jwtx.SessionClaims{Username: "alice", UserID: 1}, now.Add(time.Minute)))
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwtx.NewCodec([]byte("some-other-secret-value-entirely"), "HS256", fixedClock(now))
		require.NoError(t, err)

		_, err = other.Verify(valid)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("expired one second ago", func(t *testing.T) {
		token, err := codec.Sign(jwtx.NewClaims(jwtx.SessionClaims{Username: "alice", UserID: 1}, now.Add(-time.Second)))
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("expired exactly now", func(t *testing.T) {
		token, err := codec.Sign(jwtx.NewClaims(jwtx.SessionClaims{Username: "alice", UserID: 1}, now))
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("tampered claims byte is a signature failure", func(t *testing.T) {
		parts := strings.Split(valid, ".")
		payload := []byte(parts[1])
		if payload[5] == 'A' {
			payload[5] = 'B'
		} else {
			payload[5] = 'A'
		}
		tampered := parts[0] + "." + string(payload) + "." + parts[2]

		_, err := codec.Verify(tampered)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
		require.NotErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("garbage claims segment with a bad signature", func(t *testing.T) {
		parts := strings.Split(valid, ".")
		_, err := codec.Verify(parts[0] + ".!!!not-base64!!!." + parts[2])
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("algorithm downgrade", func(t *testing.T) {
		hs384, err := jwtx.NewCodec(testSecret, "HS384", fixedClock(now))
		require.NoError(t, err)
		token, err := hs384.Sign(jwtx.NewClaims(jwtx.SessionClaims{Username: "alice", UserID: 1}, now.Add(time.Minute)))
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"kind": "session_access", "subject": "alice", "principal_id": 1,
			"expires_at": now.Add(time.Minute).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})

	t.Run("not a token", func(t *testing.T) {
		for _, raw := range []string{"", "abc", "a.b", "a.b.c.d"} {
			_, err := codec.Verify(raw)
			require.ErrorIs(t, err, jwtx.ErrMalformed, raw)
		}
	})

	t.Run("bad percent escape", func(t *testing.T) {
		_, err := codec.Verify(valid + "%zz")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("missing expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"kind": "session_access", "subject": "alice", "principal_id": 1,
		}).SignedString(testSecret)
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)
	})

	t.Run("missing resource on a scoped kind", func(t *testing.T) {
		token, err := codec.Sign(jwtx.Claims{
			Kind:          jwtx.KindQROneTime,
			ExpiresAt:     jwt.NewNumericDate(now.Add(time.Minute)),
			ConsumptionID: "c1",
			SingleUse:     true,
		})
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrMissingClaim)
	})
}

func TestCodecPercentDecodesOnce(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	codec := newCodec(t, now)

	in := jwtx.NewClaims(jwtx.OneTimeClaims{GoalID: 5, ConsumptionID: "c1"}, now.Add(time.Minute))
	token, err := codec.Sign(in)
	require.NoError(t, err)

	t.Run("encoded token decodes identically", func(t *testing.T) {
		encoded := strings.ReplaceAll(token, ".", "%2E")
		require.NotEqual(t, token, encoded)

		plain, err := codec.Verify(token)
		require.NoError(t, err)
		fromURL, err := codec.Verify(encoded)
		require.NoError(t, err)
		require.Equal(t, plain.ConsumptionID, fromURL.ConsumptionID)
		require.Equal(t, plain.ResourceID, fromURL.ResourceID)
	})

	t.Run("double encoding is not unwrapped twice", func(t *testing.T) {
		_, err := codec.Verify(strings.ReplaceAll(token, ".", "%252E"))
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})
}

func TestCodecConcurrentUse(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	codec := newCodec(t, now)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			token, err := codec.Sign(jwtx.NewClaims(jwtx.SessionClaims{Username: "u", UserID: id}, now.Add(time.Minute)))
			if !assert.NoError(t, err) {
				return
			}
			c, err := codec.Verify(token)
			assert.NoError(t, err)
			assert.Equal(t, id, c.PrincipalID)
		}(int64(i + 1))
	}
	wg.Wait()
}
