package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	apiKey     string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "clipctl",
	Short: "CLI client for the clipd extraction server",
	Long: `clipctl - CLI client for the clipd extraction server

Carve clips and snapshots out of whatever Plex is playing right now,
browse the extracted artifacts, and inspect the event history.

Run 'clipd' to start the server daemon.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8787", "Server URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (defaults to CLIPD_API_KEY)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("clipctl {{.Version}}\n")
}

// resolveAPIKey prefers the --api-key flag over the environment.
func resolveAPIKey() string {
	if apiKey != "" {
		return apiKey
	}
	return os.Getenv("CLIPD_API_KEY")
}
