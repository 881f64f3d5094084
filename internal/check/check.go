// Package check validates a compiled asset set against the configured
// security mode without writing anything.
package check

import (
	"fmt"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/security"
	"github.com/calvin-dev/calvin/internal/suggest"
	syncpkg "github.com/calvin-dev/calvin/internal/sync"
)

// Options tunes a check run.
type Options struct {
	Mode           security.Mode
	StrictWarnings bool
}

// Result separates hard problems (always fail) from warnings (fail only
// with StrictWarnings).
type Result struct {
	Warnings []string
	Problems []string

	strictWarnings bool
}

// OK reports whether the run passes.
func (r *Result) OK() bool {
	if len(r.Problems) > 0 {
		return false
	}
	return !r.strictWarnings || len(r.Warnings) == 0
}

// Summary maps the result onto the shared terminal-count shape.
func (r *Result) Summary() syncpkg.Summary {
	errs := len(r.Problems)
	if r.strictWarnings {
		errs += len(r.Warnings)
	}
	return syncpkg.Summary{Errors: errs}
}

// Run checks each asset. Known targets come from the adapter registry;
// configWarnings (unknown config keys and the like) are folded in so one
// report covers the whole run.
func Run(assets []*asset.Asset, knownTargets []string, configWarnings []string, opts Options) *Result {
	r := &Result{strictWarnings: opts.StrictWarnings}
	r.Warnings = append(r.Warnings, configWarnings...)

	for _, a := range assets {
		for _, t := range a.Targets {
			if !containsString(knownTargets, t) {
				msg := fmt.Sprintf("%s: unknown target %q in frontmatter", a.SourcePath, t)
				if s := suggest.Closest(t, knownTargets); s != "" {
					msg += fmt.Sprintf(" — did you mean %q?", s)
				}
				r.Warnings = append(r.Warnings, msg)
			}
		}

		if a.Kind == asset.KindSkill && len(a.AllowedTools) == 0 {
			msg := fmt.Sprintf("%s: skill declares no allowed-tools", a.SourcePath)
			switch opts.Mode {
			case security.Strict:
				r.Problems = append(r.Problems, msg)
			case security.Balanced:
				r.Warnings = append(r.Warnings, msg)
			}
		}

		if a.Kind == asset.KindAgent && a.PermissionMode == "" && opts.Mode == security.Strict {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: agent declares no permission-mode", a.SourcePath))
		}
	}

	return r
}

func containsString(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
