// Package watch re-runs the deploy pipeline when source layers change.
// Events are debounced and coalesced by path; only one pipeline runs at a
// time, with changes arriving mid-run queued for the next cycle.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the coalescing window for filesystem events.
const DefaultDebounce = 300 * time.Millisecond

// Watcher drives the rebuild loop over one or more layer roots.
type Watcher struct {
	Roots    []string
	Debounce time.Duration
	// Run executes one full pipeline cycle. Errors are reported through
	// OnError and do not stop the loop — a broken asset mid-edit is normal.
	Run     func(ctx context.Context) error
	OnError func(err error)
	// OnCycle, if set, is called after each completed run with the paths
	// that triggered it.
	OnCycle func(changed []string)
}

// Watch blocks until ctx is cancelled, running one initial cycle and then
// one cycle per debounced batch of changes.
func (w *Watcher) Watch(ctx context.Context) error {
	debounce := w.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fsw.Close()

	for _, root := range w.Roots {
		if err := addRecursive(fsw, root); err != nil {
			return err
		}
	}

	w.runOnce(ctx, nil)

	changed := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if skipPath(ev.Name) {
				continue
			}
			// New directories need their own watch.
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(fsw, ev.Name)
				}
			}
			changed[ev.Name] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			batch := make([]string, 0, len(changed))
			for p := range changed {
				batch = append(batch, p)
			}
			changed = make(map[string]bool)
			// Run synchronously: events landing during the run queue up in
			// fsw.Events and start the next debounce window afterwards.
			w.runOnce(ctx, batch)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

func (w *Watcher) runOnce(ctx context.Context, changed []string) {
	if err := w.Run(ctx); err != nil && w.OnError != nil {
		w.OnError(err)
	}
	if w.OnCycle != nil {
		w.OnCycle(changed)
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if base := filepath.Base(path); strings.HasPrefix(base, ".") && path != root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// skipPath filters editor temp files and hidden paths out of the trigger
// set.
func skipPath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != ".calvinignore" {
		return true
	}
	if strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp") || strings.HasSuffix(base, ".tmp") {
		return true
	}
	return false
}
