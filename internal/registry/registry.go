// Package registry maintains the global table of projects Calvin has
// deployed to, backing the fleet commands (projects, clean --all).
package registry

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/calvin-dev/calvin/internal/home"
)

// EnvRegistryPath overrides the registry location, for tests and unusual
// setups.
const EnvRegistryPath = "CALVIN_REGISTRY"

// Project is one registered deploy destination.
type Project struct {
	Path         string    `toml:"path"`
	LockfilePath string    `toml:"lockfile_path"`
	LastDeployed time.Time `toml:"last_deployed"`
	AssetCount   int       `toml:"asset_count"`
}

// Registry is the persisted registry document.
type Registry struct {
	Version  int       `toml:"version"`
	Projects []Project `toml:"projects"`
}

// CorruptedError means the registry file exists but failed to parse; it is
// never silently reset.
type CorruptedError struct {
	Path string
	Err  error
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("registry %s is corrupted: %v — delete it and re-deploy to recover", e.Path, e.Err)
}

func (e *CorruptedError) Unwrap() error { return e.Err }

// DefaultPath returns "<home>/.calvin/registry.toml", honoring the
// CALVIN_REGISTRY override.
func DefaultPath() (string, error) {
	if override := os.Getenv(EnvRegistryPath); override != "" {
		return override, nil
	}
	h, err := home.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(h, ".calvin", "registry.toml"), nil
}

// Load reads the registry, returning an empty v1 document when missing.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Registry{Version: 1}, nil
	}
	if err != nil {
		return nil, err
	}
	var r Registry
	if _, err := toml.Decode(string(data), &r); err != nil {
		return nil, &CorruptedError{Path: path, Err: err}
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return &r, nil
}

// Save persists the registry atomically, creating the parent directory.
func Save(path string, r *Registry) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(r); err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".calvin-registry-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp registry: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp registry: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp registry to %s: %w", path, err)
	}
	return nil
}

// Upsert adds or replaces the entry for p.Path, keeping the list sorted by
// path so the file diffs cleanly.
func (r *Registry) Upsert(p Project) {
	for i := range r.Projects {
		if r.Projects[i].Path == p.Path {
			r.Projects[i] = p
			return
		}
	}
	r.Projects = append(r.Projects, p)
	sort.Slice(r.Projects, func(i, j int) bool { return r.Projects[i].Path < r.Projects[j].Path })
}

// Remove drops the entry for path, reporting whether it existed.
func (r *Registry) Remove(path string) bool {
	for i := range r.Projects {
		if r.Projects[i].Path == path {
			r.Projects = append(r.Projects[:i], r.Projects[i+1:]...)
			return true
		}
	}
	return false
}

// Prune drops entries whose lockfile no longer exists, returning the
// removed entries.
func (r *Registry) Prune() []Project {
	var kept, pruned []Project
	for _, p := range r.Projects {
		if _, err := os.Stat(p.LockfilePath); err != nil {
			pruned = append(pruned, p)
			continue
		}
		kept = append(kept, p)
	}
	r.Projects = kept
	return pruned
}

// All returns a copy of the project list.
func (r *Registry) All() []Project {
	out := make([]Project, len(r.Projects))
	copy(out, r.Projects)
	return out
}
