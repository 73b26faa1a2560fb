package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/app"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/service"
	"github.com/aussiebroadwan/sataplan/internal/sataplan/store/drivers/sqlite"
)

var (
	flagUsername string
	flagEmail    string
	flagPassword string

	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	userCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a user directly in the database",
		RunE:  runUserCreate,
	}
)

func init() {
	userCreateCmd.Flags().StringVar(&flagUsername, "username", "", "username")
	userCreateCmd.Flags().StringVar(&flagEmail, "email", "", "email address")
	userCreateCmd.Flags().StringVar(&flagPassword, "password", "", "password")
	userCreateCmd.Flags().StringVar(&flagDatabase, "database", "", "SQLite database file (overrides DATABASE_FILE)")
	for _, f := range []string{"username", "email", "password"} {
		_ = userCreateCmd.MarkFlagRequired(f)
	}

	userCmd.AddCommand(userCreateCmd)
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	cfg := app.LoadConfig()
	if cmd.Flags().Changed("database") {
		cfg.DatabaseFile = flagDatabase
	}

	st, err := sqlite.NewStore(sqlite.DSN(cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	if err := st.ApplyMigrations(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	users := &service.UserService{Store: st}
	u, err := users.Register(cmd.Context(), flagUsername, flagEmail, flagPassword)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", u.Username, u.ID)
	return nil
}
