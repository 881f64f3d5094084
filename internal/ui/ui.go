// Package ui renders the pipeline's event stream, either as plain leveled
// text or as one NDJSON object per line. No other internal package writes to
// stdout/stderr; the cmd package writes its version output, conflict
// prompts, rendered diffs and the JSON documents of its listing commands
// directly.
package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/calvin-dev/calvin/internal/sync"
)

// Human is the default text sink.
type Human struct {
	Out     io.Writer
	ErrOut  io.Writer
	Verbose bool
	Quiet   bool
}

// Info prints a line unless quiet mode is active.
func (h *Human) Info(format string, args ...any) {
	if !h.Quiet {
		fmt.Fprintf(h.Out, format+"\n", args...)
	}
}

// Detail prints a line only in verbose mode.
func (h *Human) Detail(format string, args ...any) {
	if h.Verbose {
		fmt.Fprintf(h.Out, "  "+format+"\n", args...)
	}
}

// Errorf prints an error message to stderr.
func (h *Human) Errorf(format string, args ...any) {
	fmt.Fprintf(h.ErrOut, "error: "+format+"\n", args...)
}

// Event renders one executor event.
func (h *Human) Event(e sync.Event) {
	switch e.Kind {
	case sync.EventFileWritten:
		h.Info("  %-8s %s", e.Reason, e.Path)
	case sync.EventFileSkipped:
		h.Detail("%-8s %s", "skip", e.Path)
	case sync.EventFileDeleted:
		h.Info("  %-8s %s", "deleted", e.Path)
	case sync.EventFileError:
		h.Errorf("%s: %v", e.Path, e.Err)
	}
}

// JSON emits the NDJSON event stream: a start object, per-file progress,
// and a terminal complete or error object.
type JSON struct {
	enc *json.Encoder
}

// NewJSON wraps w in an NDJSON sink.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

type jsonEvent struct {
	Event   string `json:"event"`
	Command string `json:"command,omitempty"`
	Path    string `json:"path,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`

	Written  *int  `json:"written,omitempty"`
	Skipped  *int  `json:"skipped,omitempty"`
	Errors   *int  `json:"errors,omitempty"`
	Deleted  *int  `json:"deleted,omitempty"`
	Success  *bool `json:"success,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Start emits the stream-opening event.
func (j *JSON) Start(command string) {
	_ = j.enc.Encode(jsonEvent{Event: "start", Command: command})
}

// Event renders one executor event.
func (j *JSON) Event(e sync.Event) {
	ev := jsonEvent{Event: string(e.Kind), Path: e.Path, Reason: e.Reason}
	if e.Err != nil {
		ev.Error = e.Err.Error()
	}
	_ = j.enc.Encode(ev)
}

// Warnings emits recoverable diagnostics (unknown config keys and the like).
func (j *JSON) Warnings(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	_ = j.enc.Encode(jsonEvent{Event: "warnings", Warnings: warnings})
}

// Complete emits the terminal complete object with counts; success is false
// when any file failed.
func (j *JSON) Complete(s sync.Summary) {
	success := s.Errors == 0
	_ = j.enc.Encode(jsonEvent{
		Event:   "complete",
		Written: &s.Written, Skipped: &s.Skipped, Errors: &s.Errors, Deleted: &s.Deleted,
		Success: &success,
	})
}

// Error emits the terminal failure object.
func (j *JSON) Error(err error) {
	success := false
	_ = j.enc.Encode(jsonEvent{Event: "error", Error: err.Error(), Success: &success})
}
