// Package fs is the filesystem port: the narrow capability interface every
// I/O stage of the pipeline goes through, with a local implementation and a
// remote one that shells out to ssh.
package fs

import "context"

// Port is the file-access capability set. Paths are relative to the
// implementation's root; implementations own containment and quoting.
type Port interface {
	// Root returns the absolute (or remote "host:base") destination root,
	// for display and lockfile-key decisions.
	Root() string
	Exists(ctx context.Context, rel string) (bool, error)
	IsDir(ctx context.Context, rel string) (bool, error)
	Read(ctx context.Context, rel string) ([]byte, error)
	// WriteAtomic writes content via a same-directory temp file and rename,
	// creating parent directories as needed.
	WriteAtomic(ctx context.Context, rel string, content []byte) error
	Remove(ctx context.Context, rel string) error
	ListDir(ctx context.Context, rel string) ([]string, error)
	Canonicalize(ctx context.Context, rel string) (string, error)
}
