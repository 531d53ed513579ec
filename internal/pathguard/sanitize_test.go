package pathguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Movie Name", "Movie Name"},
		{"path separators", "Show/Name\\Here", "Show Name Here"},
		{"path traversal", "../../../etc/passwd", "etc passwd"},
		{"double dots", "Show..Name", "Show.Name"},
		{"illegal chars", "Show: The *Best* <One>", "Show The Best One"},
		{"null bytes", "Show\x00Name", "ShowName"},
		{"multiple spaces", "Show   Name", "Show Name"},
		{"leading/trailing", "  .Show Name.  ", "Show Name"},
		{"question mark", "What?", "What"},
		{"pipe", "This|That", "This That"},
		{"quotes", `Show "Name"`, "Show Name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			assert.Equal(t, tt.want, got, "SanitizeFilename(%q)", tt.input)
		})
	}
}
