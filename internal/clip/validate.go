// Package clip orchestrates clip and snapshot extraction: it resolves a
// live playback session, validates the requested time range, authorizes
// every path against the configured roots, and drives the transcode
// backend. Each job is request-scoped; nothing is cached between calls.
package clip

// InvalidRangeError rejects a clip or snapshot request whose time bounds
// do not fit the source. Requests are never clamped: a silently shortened
// clip would surprise the user with no error signal.
type InvalidRangeError struct {
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return "invalid range: " + e.Reason
}

// ValidateRange checks a [start, end) clip request against the source
// duration. The upper bound is inclusive: end == duration is accepted.
func ValidateRange(start, end, duration float64) error {
	switch {
	case start < 0:
		return &InvalidRangeError{Reason: "negative start"}
	case end <= start:
		return &InvalidRangeError{Reason: "non-positive duration"}
	case end > duration:
		return &InvalidRangeError{Reason: "end exceeds source duration"}
	}
	return nil
}

// ValidateOffset checks a single-instant snapshot request against the
// source duration. offset == duration is accepted.
func ValidateOffset(offset, duration float64) error {
	switch {
	case offset < 0:
		return &InvalidRangeError{Reason: "negative start"}
	case offset > duration:
		return &InvalidRangeError{Reason: "offset exceeds source duration"}
	}
	return nil
}
