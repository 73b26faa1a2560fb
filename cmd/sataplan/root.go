package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sataplan",
	Short: "SataPlan tracks goals and shares them through QR codes",
	Long: `SataPlan is a goal tracking API. Goals can be shared with a permanent,
password protected QR code or with a QR code that opens exactly once.

Configuration is read from the environment (SATAPLAN_SECRET_KEY, DATABASE_FILE,
STATE_BACKEND, ...); flags override it.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(versionCmd)
}
