package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatcherCoalescesBurstIntoOneRun(t *testing.T) {
	root := t.TempDir()
	var runs atomic.Int32
	cycle := make(chan struct{}, 16)

	w := &Watcher{
		Roots:    []string{root},
		Debounce: 80 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
		OnCycle: func([]string) { cycle <- struct{}{} },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Initial cycle fires unconditionally.
	waitCycle(t, cycle)
	if got := runs.Load(); got != 1 {
		t.Fatalf("initial runs = %d, want 1", got)
	}

	// A burst of writes inside one debounce window coalesces into a
	// single rebuild.
	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "a.md")
		if err := os.WriteFile(name, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	waitCycle(t, cycle)
	if got := runs.Load(); got != 2 {
		t.Errorf("after burst runs = %d, want 2 (initial + one coalesced)", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestSkipPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/src/.promptpack/policies/x.md", false},
		{"/src/.promptpack/.git", true},
		{"/src/.promptpack/x.md.swp", true},
		{"/src/.promptpack/x.md~", true},
		{"/src/.promptpack/.calvinignore", false},
	}
	for _, tt := range tests {
		if got := skipPath(tt.path); got != tt.want {
			t.Errorf("skipPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func waitCycle(t *testing.T, cycle <-chan struct{}) {
	t.Helper()
	select {
	case <-cycle:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a watch cycle")
	}
}
