// Package safepath validates relative paths used as output and lockfile
// keys, rejecting anything that could escape a destination root.
package safepath

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrEmpty is returned for a zero-length path.
var ErrEmpty = errors.New("path is empty")

// Path is a validated, forward-slash-normalized relative path. It never
// contains a ".." component and is never absolute.
type Path string

// New validates and normalizes rel, returning a Path or an error describing
// why the input is unsafe.
func New(rel string) (Path, error) {
	if rel == "" {
		return "", ErrEmpty
	}

	normalized := strings.ReplaceAll(rel, "\\", "/")

	if strings.HasPrefix(normalized, "/") {
		return "", fmt.Errorf("path %q must not be absolute", rel)
	}

	cleaned := path.Clean(normalized)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path %q escapes its root via '..'", rel)
	}
	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return "", fmt.Errorf("path %q contains a '..' component", rel)
		}
	}

	return Path(cleaned), nil
}

// Join appends a relative segment and re-validates the result.
func (p Path) Join(seg string) (Path, error) {
	return New(string(p) + "/" + seg)
}

func (p Path) String() string { return string(p) }
