package transcode

import (
	"errors"
	"fmt"
)

// ErrProbeFailed is returned when ffprobe cannot read a source file.
var ErrProbeFailed = errors.New("probe failed")

// ExtractionError reports an abnormal exit of the external transcoder.
type ExtractionError struct {
	ExitCode int
	Stderr   string // bounded tail of the process error stream
}

func (e *ExtractionError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("transcoder exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("transcoder exited with code %d: %s", e.ExitCode, e.Stderr)
}
