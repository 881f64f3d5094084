package sync

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/calvin-dev/calvin/internal/hashid"
)

// Choice is one answer to a conflict prompt.
type Choice int

const (
	ChoiceOverwrite Choice = iota
	ChoiceSkip
	ChoiceDiff
	ChoiceAbort
	ChoiceOverwriteAll
	ChoiceSkipAll
)

// Status is the terminal outcome of conflict resolution.
type Status int

const (
	StatusResolved Status = iota
	StatusAborted
)

// ErrAborted is the distinct, non-retriable failure for an interactive
// abort. It maps to a non-zero exit without any file or lockfile change.
var ErrAborted = errors.New("deploy aborted at conflict prompt")

// Chooser supplies answers for interactive resolution. Tests script it;
// the CLI backs it with a TTY prompt.
type Chooser interface {
	Choose(c Conflict) (Choice, error)
}

// Strategy maps each conflict to a final overwrite/skip decision.
type Strategy interface {
	Decide(c Conflict) (Choice, error)
}

// ForceStrategy overwrites every conflict (--force).
type ForceStrategy struct{}

func (ForceStrategy) Decide(Conflict) (Choice, error) { return ChoiceOverwrite, nil }

// SafeStrategy skips every conflict (non-interactive default).
type SafeStrategy struct{}

func (SafeStrategy) Decide(Conflict) (Choice, error) { return ChoiceSkip, nil }

// InteractiveStrategy prompts through a Chooser, rendering diffs on demand
// and honoring the sticky OverwriteAll/SkipAll answers.
type InteractiveStrategy struct {
	Chooser Chooser
	Out     io.Writer // diff rendering destination
	Color   bool

	sticky *Choice
	cache  contentCache
}

func (s *InteractiveStrategy) Decide(c Conflict) (Choice, error) {
	if s.sticky != nil {
		return *s.sticky, nil
	}
	for {
		choice, err := s.Chooser.Choose(c)
		if err != nil {
			return 0, err
		}
		switch choice {
		case ChoiceDiff:
			old := s.cache.fetch(c.Existing)
			fmt.Fprint(s.Out, RenderDiff(c.Output.Path.String(), old, c.Output.Content, s.Color))
			continue // re-prompt
		case ChoiceOverwriteAll:
			all := ChoiceOverwrite
			s.sticky = &all
			return ChoiceOverwrite, nil
		case ChoiceSkipAll:
			all := ChoiceSkip
			s.sticky = &all
			return ChoiceSkip, nil
		default:
			return choice, nil
		}
	}
}

// contentCache keeps conflict file content keyed by hash for the duration
// of an interactive session, so repeated Diff renders of the same file
// don't depend on re-reads racing with outside edits.
type contentCache struct {
	byHash map[string][]byte
}

func (c *contentCache) fetch(content []byte) []byte {
	if c.byHash == nil {
		c.byHash = make(map[string][]byte)
	}
	key := string(hashid.FromContent(content))
	if cached, ok := c.byHash[key]; ok {
		return cached
	}
	c.byHash[key] = content
	return content
}

// ResolveConflicts refines a plan by deciding each conflict. Overwrites
// join ToWrite (reason update), skips join ToSkip. An abort returns
// StatusAborted with ErrAborted and no refined plan.
func ResolveConflicts(plan *Plan, strategy Strategy) (*Plan, Status, error) {
	refined := &Plan{
		ToWrite: append([]Item(nil), plan.ToWrite...),
		ToSkip:  append([]Item(nil), plan.ToSkip...),
		Orphans: plan.Orphans,
	}

	for _, c := range plan.Conflicts {
		choice, err := strategy.Decide(c)
		if err != nil {
			return nil, StatusAborted, err
		}
		switch choice {
		case ChoiceOverwrite:
			refined.ToWrite = append(refined.ToWrite, Item{Output: c.Output, Key: c.Key, Reason: ReasonUpdate})
		case ChoiceSkip:
			refined.ToSkip = append(refined.ToSkip, Item{Output: c.Output, Key: c.Key})
		case ChoiceAbort:
			return nil, StatusAborted, ErrAborted
		default:
			return nil, StatusAborted, fmt.Errorf("unexpected conflict choice %d", choice)
		}
	}

	return refined, StatusResolved, nil
}

// RenderDiff produces a line-numbered unified-style diff of the on-disk
// content vs the compiled content, optionally colored.
func RenderDiff(path string, disk, compiled []byte, color bool) string {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(string(disk), string(compiled))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	const (
		red   = "\x1b[31m"
		green = "\x1b[32m"
		reset = "\x1b[0m"
	)

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s (on disk)\n+++ %s (compiled)\n", path, path)

	oldLine, newLine := 1, 1
	for _, d := range diffs {
		for _, line := range splitDiffLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				if color {
					fmt.Fprintf(&b, "%s-%4d  %s%s\n", red, oldLine, line, reset)
				} else {
					fmt.Fprintf(&b, "-%4d  %s\n", oldLine, line)
				}
				oldLine++
			case diffmatchpatch.DiffInsert:
				if color {
					fmt.Fprintf(&b, "%s+%4d  %s%s\n", green, newLine, line, reset)
				} else {
					fmt.Fprintf(&b, "+%4d  %s\n", newLine, line)
				}
				newLine++
			default:
				fmt.Fprintf(&b, " %4d  %s\n", newLine, line)
				oldLine++
				newLine++
			}
		}
	}
	return b.String()
}

func splitDiffLines(text string) []string {
	trimmed := strings.TrimSuffix(text, "\n")
	if trimmed == "" && text != "" {
		return []string{""}
	}
	return strings.Split(trimmed, "\n")
}
