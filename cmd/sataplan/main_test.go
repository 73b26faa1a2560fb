package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/app"
	"github.com/aussiebroadwan/sataplan/pkg/cryptox"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, app.BuildVersion+"\n", out)
}

func TestUserCreateCommand(t *testing.T) {
	cryptox.SetPasswordCost(bcrypt.MinCost)
	db := filepath.Join(t.TempDir(), "cli.db")

	out, err := run(t, "user", "create", "--database", db,
		"--username", "alice", "--email", "alice@example.com", "--password", "correct-horse")
	require.NoError(t, err)
	require.Contains(t, out, "created user alice")

	_, err = run(t, "user", "create", "--database", db,
		"--username", "alice", "--email", "other@example.com", "--password", "correct-horse")
	require.Error(t, err)
}
