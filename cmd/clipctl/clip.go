package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var clipCmd = &cobra.Command{
	Use:   "clip <session-key>",
	Short: "Extract a clip from a live session",
	Long: `Extract a time-bounded clip from the source file behind an active
playback session. Timestamps accept plain seconds (90, 95.5) or
clock notation (1:30, 1:02:03).

With --last, the range is anchored to the current playback position:
'clipctl clip 42 --last 30' grabs the thirty seconds just watched.`,
	Args: cobra.ExactArgs(1),
	RunE: runClipCmd,
}

func init() {
	rootCmd.AddCommand(clipCmd)
	clipCmd.Flags().String("start", "", "Clip start within the source")
	clipCmd.Flags().String("end", "", "Clip end within the source")
	clipCmd.Flags().Float64("last", 0, "Clip the last N seconds before the playback position")
}

func runClipCmd(cmd *cobra.Command, args []string) error {
	sessionKey := args[0]
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	last, _ := cmd.Flags().GetFloat64("last")

	client := NewClient(serverURL, resolveAPIKey())

	var start, end float64
	switch {
	case last > 0:
		if startStr != "" || endStr != "" {
			return fmt.Errorf("--last cannot be combined with --start/--end")
		}
		sess, err := client.Session(sessionKey)
		if err != nil {
			return fmt.Errorf("failed to resolve session: %w", err)
		}
		end = sess.Offset
		start = end - last
		if start < 0 {
			start = 0
		}
	case startStr != "" && endStr != "":
		var err error
		if start, err = parseTimestamp(startStr); err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		if end, err = parseTimestamp(endStr); err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}
	default:
		return fmt.Errorf("either --start and --end, or --last is required")
	}

	artifact, err := client.CreateClip(ClipRequest{
		SessionKey:   sessionKey,
		StartSeconds: start,
		EndSeconds:   end,
	})
	if err != nil {
		return fmt.Errorf("clip failed: %w", err)
	}

	if jsonOutput {
		printJSON(artifact)
		return nil
	}

	fmt.Printf("Clip created: %s\n", artifact.Filename)
	fmt.Printf("  %s for %s, %s at %s\n",
		artifact.Title, artifact.Username,
		formatClock(artifact.Duration), formatClock(artifact.SourceOffset))
	return nil
}

// parseTimestamp converts "95", "95.5", "1:30" or "1:02:03" to seconds.
func parseTimestamp(s string) (float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many colons in %q", s)
	}

	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("bad segment %q in %q", part, s)
		}
		total = total*60 + v
	}
	return total, nil
}
