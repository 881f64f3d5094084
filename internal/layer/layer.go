// Package layer discovers and orders the layer roots considered by a single
// deploy invocation, following symlinks safely and tagging each layer with
// its precedence.
package layer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvin-dev/calvin/internal/home"
)

// Type identifies a layer's place in the precedence order.
type Type string

const (
	TypeUser    Type = "user"
	TypeCustom  Type = "custom"
	TypeProject Type = "project"
)

// Layer is one root directory of assets.
type Layer struct {
	Type         Type
	OriginalPath string // as supplied, possibly a symlink
	ResolvedPath string // canonicalized, real path
}

// ErrNoLayersFound is returned when resolution would yield an empty stack.
var ErrNoLayersFound = errors.New("no layers found")

// CircularSymlinkError is returned when canonicalizing a layer path loops.
type CircularSymlinkError struct {
	Path string
}

func (e *CircularSymlinkError) Error() string {
	return fmt.Sprintf("circular symlink detected resolving layer path %q", e.Path)
}

// Resolver discovers the layer stack for one invocation.
type Resolver struct {
	ProjectRoot         string
	ProjectLayerPath    string // empty uses "<ProjectRoot>/.promptpack"
	UserLayerPath       string // empty uses the default under home.Dir()
	AdditionalLayers    []string
	RemoteMode          bool
	DisableUserLayer    bool
	DisableProjectLayer bool
}

func (r *Resolver) projectLayerPath() string {
	if r.ProjectLayerPath != "" {
		return r.ProjectLayerPath
	}
	return filepath.Join(r.ProjectRoot, ".promptpack")
}

// defaultUserLayer returns "<home>/.calvin/.promptpack".
func defaultUserLayer() (string, error) {
	h, err := home.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(h, ".calvin", ".promptpack"), nil
}

// Resolve builds the ordered layer stack, lowest to highest precedence.
func (r *Resolver) Resolve() ([]Layer, error) {
	var candidates []struct {
		typ  Type
		path string
	}

	if r.RemoteMode {
		candidates = append(candidates, struct {
			typ  Type
			path string
		}{TypeProject, r.projectLayerPath()})
	} else {
		if !r.DisableUserLayer {
			userPath := r.UserLayerPath
			if userPath == "" {
				var err error
				userPath, err = defaultUserLayer()
				if err != nil {
					return nil, err
				}
			}
			candidates = append(candidates, struct {
				typ  Type
				path string
			}{TypeUser, userPath})
		}

		for _, p := range r.AdditionalLayers {
			candidates = append(candidates, struct {
				typ  Type
				path string
			}{TypeCustom, p})
		}

		if !r.DisableProjectLayer {
			candidates = append(candidates, struct {
				typ  Type
				path string
			}{TypeProject, r.projectLayerPath()})
		}
	}

	var present []Layer

	for _, c := range candidates {
		resolved, err := canonicalize(c.path)
		if err != nil {
			var cyc *CircularSymlinkError
			if errors.As(err, &cyc) {
				return nil, err
			}
			// Unreadable or nonexistent: not present, skip silently.
			continue
		}

		info, err := os.Stat(resolved)
		if err != nil || !info.IsDir() {
			continue
		}

		present = append(present, Layer{
			Type:         c.typ,
			OriginalPath: c.path,
			ResolvedPath: resolved,
		})
	}

	// Duplicates (same resolved path) collapse to the highest-precedence
	// occurrence: a project layer symlinked onto the user layer's directory
	// must still merge with project precedence.
	var layers []Layer
	for i, l := range present {
		dup := false
		for _, later := range present[i+1:] {
			if later.ResolvedPath == l.ResolvedPath {
				dup = true
				break
			}
		}
		if !dup {
			layers = append(layers, l)
		}
	}

	if len(layers) == 0 {
		return nil, ErrNoLayersFound
	}

	return layers, nil
}

// canonicalize resolves symlinks for the longest existing prefix of path,
// detecting cycles along the way. It never loops: EvalSymlinks gives up on a
// cyclic symlink chain, and a stat of the path then reports ELOOP, which we
// surface as CircularSymlinkError.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if isSymlinkLoop(err) {
		return "", &CircularSymlinkError{Path: p}
	}
	if _, statErr := os.Stat(abs); statErr != nil && isSymlinkLoop(statErr) {
		return "", &CircularSymlinkError{Path: p}
	}

	// Path doesn't fully exist yet: resolve the longest existing prefix.
	dir := filepath.Dir(abs)
	if dir == abs {
		return abs, nil
	}
	resolvedDir, dirErr := canonicalize(dir)
	if dirErr != nil {
		return "", dirErr
	}
	return filepath.Join(resolvedDir, filepath.Base(abs)), nil
}

func isSymlinkLoop(err error) bool {
	return errors.Is(err, os.ErrInvalid) || isELOOP(err)
}
