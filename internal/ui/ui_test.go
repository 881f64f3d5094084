package ui

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/calvin-dev/calvin/internal/sync"
)

func TestJSONStreamShape(t *testing.T) {
	var buf strings.Builder
	j := NewJSON(&buf)

	j.Start("deploy")
	j.Event(sync.Event{Kind: sync.EventFileWritten, Path: ".cursor/rules/x/RULE.md", Reason: "new"})
	j.Event(sync.Event{Kind: sync.EventFileError, Path: "bad.md", Err: errors.New("boom")})
	j.Complete(sync.Summary{Written: 1, Errors: 1})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if first["event"] != "start" || first["command"] != "deploy" {
		t.Errorf("start event = %v", first)
	}

	var last map[string]any
	if err := json.Unmarshal([]byte(lines[3]), &last); err != nil {
		t.Fatalf("terminal line is not JSON: %v", err)
	}
	if last["event"] != "complete" {
		t.Errorf("terminal event = %v", last)
	}
	if last["success"] != false {
		t.Errorf("success should be false with errors: %v", last)
	}
	if last["written"] != float64(1) {
		t.Errorf("written = %v", last["written"])
	}
}

func TestHumanQuietSuppressesInfo(t *testing.T) {
	var out, errOut strings.Builder
	h := &Human{Out: &out, ErrOut: &errOut, Quiet: true}

	h.Info("should not appear")
	h.Event(sync.Event{Kind: sync.EventFileWritten, Path: "x.md", Reason: "new"})
	if out.Len() != 0 {
		t.Errorf("quiet mode leaked output: %q", out.String())
	}

	h.Event(sync.Event{Kind: sync.EventFileError, Path: "x.md", Err: errors.New("nope")})
	if !strings.Contains(errOut.String(), "nope") {
		t.Error("errors must always render")
	}
}

func TestHumanVerboseShowsSkips(t *testing.T) {
	var out strings.Builder
	h := &Human{Out: &out, ErrOut: &out, Verbose: true}
	h.Event(sync.Event{Kind: sync.EventFileSkipped, Path: "same.md", Reason: "unchanged"})
	if !strings.Contains(out.String(), "same.md") {
		t.Error("verbose mode should show skipped files")
	}
}
