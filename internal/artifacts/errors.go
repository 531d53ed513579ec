package artifacts

import "errors"

// ErrNotFound is returned when an artifact record does not exist.
var ErrNotFound = errors.New("artifact not found")
