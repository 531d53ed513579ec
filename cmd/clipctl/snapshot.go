package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <session-key>",
	Short: "Grab a single frame from a live session",
	Long: `Grab a single frame from the source file behind an active playback
session. Without --at, the frame is taken at the current playback
position.`,
	Args: cobra.ExactArgs(1),
	RunE: runSnapshotCmd,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.Flags().String("at", "", "Frame position within the source (seconds or clock notation)")
}

func runSnapshotCmd(cmd *cobra.Command, args []string) error {
	sessionKey := args[0]
	atStr, _ := cmd.Flags().GetString("at")

	client := NewClient(serverURL, resolveAPIKey())

	var offset float64
	if atStr != "" {
		var err error
		if offset, err = parseTimestamp(atStr); err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	} else {
		sess, err := client.Session(sessionKey)
		if err != nil {
			return fmt.Errorf("failed to resolve session: %w", err)
		}
		offset = sess.Offset
	}

	artifact, err := client.CreateSnapshot(SnapshotRequest{
		SessionKey:    sessionKey,
		OffsetSeconds: offset,
	})
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}

	if jsonOutput {
		printJSON(artifact)
		return nil
	}

	fmt.Printf("Snapshot created: %s\n", artifact.Filename)
	fmt.Printf("  %s for %s, frame at %s\n",
		artifact.Title, artifact.Username, formatClock(artifact.SourceOffset))
	return nil
}
