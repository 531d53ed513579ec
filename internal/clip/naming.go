package clip

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vmunix/clipd/internal/pathguard"
	"github.com/vmunix/clipd/internal/plex"
)

// Output file extensions per artifact kind.
const (
	extClip     = "mp4"
	extSnapshot = "jpg"
)

// outputName builds a collision-free filename for an artifact. The
// nanosecond timestamp plus a shortened UUID keep concurrent jobs for
// the same title from racing on a name without any locking.
func outputName(s plex.Session, now time.Time, ext string) string {
	user := filenamePart(s.User)
	if user == "" {
		user = "unknown"
	}
	title := filenamePart(s.DisplayTitle())
	if title == "" {
		title = "untitled"
	}
	short := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%s_%d_%s.%s", user, title, now.UnixNano(), short, ext)
}

// filenamePart folds accents and strips characters unsafe in filenames,
// then joins the remaining words with underscores.
func filenamePart(s string) string {
	s = removeAccents(s)
	s = pathguard.SanitizeFilename(s)
	return strings.Join(strings.Fields(s), "_")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
