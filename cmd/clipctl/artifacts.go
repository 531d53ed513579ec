package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List extracted clips and snapshots",
	RunE:  runArtifactsCmd,
}

var artifactsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an artifact and its output file",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtifactsRmCmd,
}

var artifactsEventsCmd = &cobra.Command{
	Use:   "events <id>",
	Short: "Show the event history for an artifact",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtifactsEventsCmd,
}

func init() {
	rootCmd.AddCommand(artifactsCmd)
	artifactsCmd.AddCommand(artifactsRmCmd)
	artifactsCmd.AddCommand(artifactsEventsCmd)
	artifactsCmd.Flags().StringP("kind", "k", "", "Filter by kind (video, image)")
	artifactsCmd.Flags().StringP("user", "u", "", "Filter by username")
	artifactsCmd.Flags().IntP("limit", "n", 50, "Number of artifacts to show")
}

func runArtifactsCmd(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	user, _ := cmd.Flags().GetString("user")
	limit, _ := cmd.Flags().GetInt("limit")

	client := NewClient(serverURL, resolveAPIKey())
	artifacts, err := client.Artifacts(kind, user, limit)
	if err != nil {
		return fmt.Errorf("failed to fetch artifacts: %w", err)
	}

	if jsonOutput {
		printJSON(artifacts)
		return nil
	}

	printArtifactsHuman(artifacts)
	return nil
}

func printArtifactsHuman(a *ListArtifactsResponse) {
	if len(a.Items) == 0 {
		fmt.Println("No artifacts")
		return
	}

	fmt.Printf("Artifacts (%d):\n\n", a.Total)
	fmt.Printf("  %4s  %-6s %-34s %-14s %s\n", "ID", "KIND", "TITLE", "USER", "CREATED")
	fmt.Println("  " + strings.Repeat("-", 72))

	for _, art := range a.Items {
		title := art.Title
		if art.Show != "" {
			title = art.Show + " - " + art.Title
		}
		if len(title) > 34 {
			title = title[:31] + "..."
		}
		created, _ := time.Parse(time.RFC3339, art.CreatedAt)
		fmt.Printf("  %4d  %-6s %-34s %-14s %s\n",
			art.ID, art.Kind, title, art.Username, formatTimeAgo(created.Unix()))
	}
}

func runArtifactsRmCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid artifact ID: %s", args[0])
	}

	client := NewClient(serverURL, resolveAPIKey())
	if err := client.DeleteArtifact(id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	fmt.Printf("Artifact %d deleted\n", id)
	return nil
}

func runArtifactsEventsCmd(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid artifact ID: %s", args[0])
	}

	client := NewClient(serverURL, resolveAPIKey())
	events, err := client.ArtifactEvents(id)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	if jsonOutput {
		printJSON(events)
		return nil
	}

	printEventsHuman(events)
	return nil
}
