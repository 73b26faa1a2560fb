package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("encodes size bytes", func(t *testing.T) {
		for size, want := range map[int]int{8: 11, 16: 22, 32: 43} {
			token, err := GenerateToken(size)
			require.NoError(t, err)
			require.Len(t, token, want)
		}
	})

	t.Run("rejects non-positive sizes", func(t *testing.T) {
		for _, size := range []int{0, -1} {
			token, err := GenerateToken(size)
			require.Error(t, err)
			require.Empty(t, token)
		}
	})

	t.Run("no repeats", func(t *testing.T) {
		seen := make(map[string]struct{}, 100)
		for range 100 {
			token, err := GenerateToken(16)
			require.NoError(t, err)
			require.NotContains(t, seen, token)
			seen[token] = struct{}{}
		}
	})
}

func TestGenerateGoalPassword(t *testing.T) {
	pw, err := GenerateGoalPassword()
	require.NoError(t, err)
	require.Len(t, pw, 11)
	require.NotContains(t, pw, "+")
	require.NotContains(t, pw, "/")
	require.NotContains(t, pw, "=")

	other, err := GenerateGoalPassword()
	require.NoError(t, err)
	require.NotEqual(t, pw, other)
}

func TestFingerprints(t *testing.T) {
	fp := FingerprintToken("secret")

	require.Len(t, fp, 43)
	require.Equal(t, fp, FingerprintToken("secret"))
	require.NotEqual(t, fp, FingerprintToken("secret2"))

	require.True(t, EqualFingerprints(fp, FingerprintToken("secret")))
	require.False(t, EqualFingerprints(fp, FingerprintToken("Secret")))
	require.False(t, EqualFingerprints(fp, ""))
}
