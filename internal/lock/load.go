package lock

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CorruptedError means the lockfile exists but failed to parse. Per §4.6,
// this must never be silently treated as an empty lockfile.
type CorruptedError struct {
	Path string
	Err  error
}

func (e *CorruptedError) Error() string {
	return fmt.Sprintf("lockfile %s is corrupted: %v — delete it and re-deploy to recover", e.Path, e.Err)
}

func (e *CorruptedError) Unwrap() error { return e.Err }

// LoadOrNew reads path, returning a fresh v1 lockfile if it doesn't exist.
// A legacy "<source>/.calvin.lock" is not looked at here; callers move it to
// path with MigrateLegacy before loading.
func LoadOrNew(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}

	var lf Lockfile
	if _, err := toml.Decode(string(data), &lf); err != nil {
		return nil, &CorruptedError{Path: path, Err: err}
	}
	if lf.Version != 1 {
		return nil, &CorruptedError{Path: path, Err: fmt.Errorf("unsupported version %d — only version 1 is supported", lf.Version)}
	}
	if lf.Files == nil {
		lf.Files = make(map[string]*FileEntry)
	}
	return &lf, nil
}

// Save persists the lockfile atomically, or removes it entirely if empty.
func Save(path string, lf *Lockfile) error {
	if lf.Empty() {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing empty lockfile %s: %w", path, err)
		}
		return nil
	}

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(lf); err != nil {
		return fmt.Errorf("encoding lockfile: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".calvin-lock-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp lockfile: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(buf.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp lockfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp lockfile: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp lockfile to %s: %w", path, err)
	}
	return nil
}

// MigrateLegacy moves a legacy "<source>/.calvin.lock" to the current path
// if the legacy file exists and the current one doesn't yet.
func MigrateLegacy(legacyPath, currentPath string) error {
	if _, err := os.Stat(currentPath); err == nil {
		return nil // already migrated
	}
	if _, err := os.Stat(legacyPath); err != nil {
		return nil // no legacy file
	}
	if err := os.Rename(legacyPath, currentPath); err != nil {
		return fmt.Errorf("migrating legacy lockfile %s to %s: %w", legacyPath, currentPath, err)
	}
	return nil
}
