package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List active playback sessions",
	RunE:  runSessionsCmd,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.Flags().StringP("user", "u", "", "Match session by username (fuzzy)")
	sessionsCmd.Flags().StringP("title", "t", "", "Match session by media title (fuzzy)")
}

func runSessionsCmd(cmd *cobra.Command, args []string) error {
	user, _ := cmd.Flags().GetString("user")
	title, _ := cmd.Flags().GetString("title")

	client := NewClient(serverURL, resolveAPIKey())
	sessions, err := client.Sessions(user, title)
	if err != nil {
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}

	if jsonOutput {
		printJSON(sessions)
		return nil
	}

	printSessionsHuman(sessions)
	return nil
}

func printSessionsHuman(s *ListSessionsResponse) {
	if len(s.Items) == 0 {
		fmt.Println("No active sessions")
		return
	}

	fmt.Printf("Active Sessions (%d):\n\n", s.Total)
	fmt.Printf("  %-8s %-14s %-40s %s\n", "KEY", "USER", "TITLE", "POSITION")
	fmt.Println("  " + strings.Repeat("-", 76))

	for _, sess := range s.Items {
		title := sess.DisplayTitle
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		position := fmt.Sprintf("%s / %s",
			formatClock(sess.Offset), formatClock(sess.Duration))
		fmt.Printf("  %-8s %-14s %-40s %s\n", sess.SessionKey, sess.User, title, position)
	}
}

// formatClock renders seconds as H:MM:SS, dropping the hour when zero.
func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
