package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/sataplan/internal/sataplan/app"
)

var (
	flagPort         int
	flagDatabase     string
	flagStateBackend string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `
Usage: sataplan serve [options]

  Starts the API server and blocks until SIGINT or SIGTERM.

      $ SATAPLAN_SECRET_KEY=... sataplan serve --port 8080 --state-backend redis
  `,
		RunE: runServe,
	}
)

func init() {
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "HTTP port (overrides PORT)")
	serveCmd.Flags().StringVar(&flagDatabase, "database", "", "SQLite database file (overrides DATABASE_FILE)")
	serveCmd.Flags().StringVar(&flagStateBackend, "state-backend", "", "memory, sqlite or redis (overrides STATE_BACKEND)")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) app.Config {
	cfg := app.LoadConfig()
	if cmd.Flags().Changed("port") {
		cfg.Port = flagPort
	}
	if cmd.Flags().Changed("database") {
		cfg.DatabaseFile = flagDatabase
	}
	if cmd.Flags().Changed("state-backend") {
		cfg.StateBackend = flagStateBackend
	}
	return cfg
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, err := app.New(loadConfig(cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run()
}
