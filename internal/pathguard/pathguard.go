// Package pathguard canonicalizes filesystem paths and enforces that they
// stay inside a configured root. It is the single containment check for
// every path crossing the extraction engine's boundary.
package pathguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathTraversal indicates a path resolved outside its allowed root.
// Errors wrapping this sentinel must not carry the resolved path; the
// canonical form would leak filesystem layout to API clients.
var ErrPathTraversal = errors.New("path traversal detected")

// Guard holds the canonical media and output roots for a process.
// Built once at startup; read-only afterwards.
type Guard struct {
	mediaRoot  string
	outputRoot string
}

// New canonicalizes both roots and returns a Guard. The roots must be
// existing directories.
func New(mediaRoot, outputRoot string) (*Guard, error) {
	media, err := canonicalDir(mediaRoot)
	if err != nil {
		return nil, fmt.Errorf("media root: %w", err)
	}
	output, err := canonicalDir(outputRoot)
	if err != nil {
		return nil, fmt.Errorf("output root: %w", err)
	}
	return &Guard{mediaRoot: media, outputRoot: output}, nil
}

func canonicalDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", path)
	}
	return Canonical(path)
}

// MediaRoot returns the canonical media root.
func (g *Guard) MediaRoot() string { return g.mediaRoot }

// OutputRoot returns the canonical output root.
func (g *Guard) OutputRoot() string { return g.outputRoot }

// AuthorizeSource validates a source media path against the media root.
func (g *Guard) AuthorizeSource(path string) (string, error) {
	return Authorize(path, g.mediaRoot)
}

// AuthorizeOutput validates an output path against the output root.
func (g *Guard) AuthorizeOutput(path string) (string, error) {
	return Authorize(path, g.outputRoot)
}

// Authorize canonicalizes candidate and verifies it is root or a
// descendant of root. Returns the canonical path on success and
// ErrPathTraversal otherwise. The root is canonicalized as well, so
// callers may pass either form.
func Authorize(candidate, root string) (string, error) {
	cleanRoot, err := Canonical(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}
	cleanPath, err := Canonical(candidate)
	if err != nil {
		// A path that cannot be resolved is treated as escaping; the
		// caller gets the same answer as for an explicit traversal.
		return "", ErrPathTraversal
	}

	if cleanPath == cleanRoot {
		return cleanPath, nil
	}
	if strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator)) {
		return cleanPath, nil
	}
	return "", ErrPathTraversal
}

// Canonical resolves a path to its canonical absolute form: relative
// segments cleaned, symlinks resolved. Paths that do not exist yet
// (pending output files) are resolved through their deepest existing
// ancestor so a symlinked parent directory cannot smuggle a path
// outside its root.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", err
	}

	prefix := abs
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(prefix)
		if err == nil {
			if len(rest) == 0 {
				return resolved, nil
			}
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(prefix)
		if parent == prefix {
			return "", err
		}
		rest = append([]string{filepath.Base(prefix)}, rest...)
		prefix = parent
	}
}
