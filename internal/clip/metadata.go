package clip

import (
	"fmt"
	"math"
	"time"

	"github.com/vmunix/clipd/internal/plex"
)

// Tags builds the container metadata embedded in an extracted clip so a
// shared file still identifies its source. Pure: identical inputs always
// produce identical output. Missing optional fields map to empty strings,
// which the backend drops from the command line.
func Tags(s plex.Session, extractedAt time.Time) map[string]string {
	return map[string]string{
		"title":         s.Title,
		"artist":        s.User,
		"comment":       "Playback time: " + formatOffset(s.Offset),
		"creation_time": extractedAt.UTC().Format(time.RFC3339),
		"show":          s.Show,
		"season_number": s.Season,
		"episode_id":    s.Episode,
	}
}

// formatOffset renders a playback offset in seconds as HH:MM:SS.
func formatOffset(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
