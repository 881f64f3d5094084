package fs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path"
	"strings"
)

// Remote is the SSH-backed port. Every operation is marshalled as
// `ssh <host> '<cmd>'` with single-quote shell escaping; content moves over
// stdin/stdout so no temp files are needed on the local side.
type Remote struct {
	host string
	base string // expanded remote base path, no trailing slash
}

// NewRemote builds a Remote port for host rooted at base. A leading "~" in
// base is expanded by a one-shot `ssh host 'echo $HOME'` — quoting the
// remote path with the "~" still in it would suppress the server-side
// expansion, so it has to happen here, once.
func NewRemote(ctx context.Context, host, base string) (*Remote, error) {
	if base == "" {
		base = "~"
	}
	if base == "~" || strings.HasPrefix(base, "~/") {
		home, err := remoteHome(ctx, host)
		if err != nil {
			return nil, err
		}
		base = home + strings.TrimPrefix(base, "~")
	}
	return &Remote{host: host, base: strings.TrimSuffix(base, "/")}, nil
}

func remoteHome(ctx context.Context, host string) (string, error) {
	out, err := exec.CommandContext(ctx, "ssh", host, "echo $HOME").Output()
	if err != nil {
		return "", fmt.Errorf("resolving remote home on %s: %w", host, err)
	}
	home := strings.TrimSpace(string(out))
	if home == "" {
		return "", fmt.Errorf("resolving remote home on %s: empty $HOME", host)
	}
	return home, nil
}

func (r *Remote) Root() string { return r.host + ":" + r.base }

// Host returns the ssh destination, for the rsync batch strategy.
func (r *Remote) Host() string { return r.host }

// Base returns the expanded remote base path.
func (r *Remote) Base() string { return r.base }

func (r *Remote) abs(rel string) string {
	return path.Join(r.base, path.Clean(rel))
}

// shQuote single-quotes s for POSIX shells, closing and reopening around
// embedded single quotes.
func shQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (r *Remote) run(ctx context.Context, remoteCmd string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ssh", r.host, remoteCmd)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("ssh %s: %s: %w", r.host, msg, err)
		}
		return nil, fmt.Errorf("ssh %s: %w", r.host, err)
	}
	return out, nil
}

func (r *Remote) Exists(ctx context.Context, rel string) (bool, error) {
	out, err := r.run(ctx, fmt.Sprintf("test -e %s && echo yes || echo no", shQuote(r.abs(rel))), nil)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) == "yes", nil
}

func (r *Remote) IsDir(ctx context.Context, rel string) (bool, error) {
	out, err := r.run(ctx, fmt.Sprintf("test -d %s && echo yes || echo no", shQuote(r.abs(rel))), nil)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(out)) == "yes", nil
}

func (r *Remote) Read(ctx context.Context, rel string) ([]byte, error) {
	return r.run(ctx, fmt.Sprintf("cat %s", shQuote(r.abs(rel))), nil)
}

func (r *Remote) WriteAtomic(ctx context.Context, rel string, content []byte) error {
	abs := r.abs(rel)
	dir := path.Dir(abs)
	tmp := abs + ".calvin-tmp"
	cmd := fmt.Sprintf("mkdir -p %s && cat > %s && mv %s %s",
		shQuote(dir), shQuote(tmp), shQuote(tmp), shQuote(abs))
	_, err := r.run(ctx, cmd, content)
	return err
}

func (r *Remote) Remove(ctx context.Context, rel string) error {
	_, err := r.run(ctx, fmt.Sprintf("rm %s", shQuote(r.abs(rel))), nil)
	return err
}

func (r *Remote) ListDir(ctx context.Context, rel string) ([]string, error) {
	out, err := r.run(ctx, fmt.Sprintf("ls -1 %s", shQuote(r.abs(rel))), nil)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func (r *Remote) Canonicalize(_ context.Context, rel string) (string, error) {
	return r.abs(rel), nil
}
