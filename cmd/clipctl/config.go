package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmunix/clipd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without starting the server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := "config.toml"
	if len(args) > 0 {
		path = args[0]
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func printConfigErrors(e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Println("Missing environment variables:")
		for _, v := range e.Missing {
			fmt.Printf("  - %s\n", v)
		}
		fmt.Println()
	}
	if len(e.Errors) > 0 {
		fmt.Println("Validation errors:")
		for _, v := range e.Errors {
			fmt.Printf("  - %s\n", v)
		}
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Printf("Server:      %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Database:    %s\n", cfg.Database.Path)
	fmt.Printf("Plex:        %s\n", cfg.Plex.URL)
	fmt.Printf("Media root:  %s\n", cfg.Paths.MediaRoot)
	fmt.Printf("Output root: %s\n", cfg.Paths.OutputRoot)
	fmt.Printf("Transcoder:  %s (max %d concurrent)\n", cfg.Transcode.FFmpeg, cfg.Transcode.MaxConcurrent)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	if err := config.WriteDefault(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Edit it to point at your Plex server and media paths.")
	return nil
}
