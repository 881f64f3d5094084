package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/calvin-dev/calvin/internal/registry"
	syncpkg "github.com/calvin-dev/calvin/internal/sync"
	"github.com/calvin-dev/calvin/internal/ui"
	"github.com/calvin-dev/calvin/pkg/calvin"
)

// human is the shared text sink; json output builds its own per command.
var human = &ui.Human{Out: os.Stdout, ErrOut: os.Stderr}

func initSinks() {
	human.Verbose = verbose
	human.Quiet = quiet
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	human.Info(format, args...)
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	human.Detail(format, args...)
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	human.Errorf(format, args...)
}

// projectRoot is the invocation directory; --source only relocates the
// source layer, never the deploy destination.
func projectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return wd, nil
}

// compileOptions assembles pipeline options from the shared flags plus the
// per-command layer flags.
func compileOptions(layers []string, noUserLayer, noAdditional, remoteMode bool, targets []string) (calvin.Options, error) {
	root, err := projectRoot()
	if err != nil {
		return calvin.Options{}, err
	}
	return calvin.Options{
		ProjectRoot:      root,
		SourcePath:       sourcePath,
		AdditionalLayers: layers,
		NoUserLayer:      noUserLayer,
		NoAdditional:     noAdditional,
		RemoteMode:       remoteMode,
		TargetsOverride:  targets,
	}, nil
}

func reportWarnings(c *calvin.Compiled, jsonSink *ui.JSON) {
	if jsonSink != nil {
		jsonSink.Warnings(c.Warnings)
		return
	}
	for _, w := range c.Warnings {
		errorf("warning: %s", w)
	}
}

func registryPath() string {
	path, err := registry.DefaultPath()
	if err != nil {
		return ""
	}
	return path
}

// splitTargets parses a --targets list; nil means "no override".
func splitTargets(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ttyChooser prompts on stderr and reads answers from stdin.
type ttyChooser struct {
	reader *bufio.Reader
}

func newTTYChooser() *ttyChooser {
	return &ttyChooser{reader: bufio.NewReader(os.Stdin)}
}

func (t *ttyChooser) Choose(c syncpkg.Conflict) (syncpkg.Choice, error) {
	label := "modified since last deploy"
	if c.Kind == syncpkg.ConflictUntracked {
		label = "exists but was never deployed by calvin"
	}
	fmt.Fprintf(os.Stderr, "\nconflict: %s (%s)\n", c.Output.Path, label)
	for {
		fmt.Fprint(os.Stderr, "  [o]verwrite  [s]kip  [d]iff  [a]bort  [O]verwrite all  [S]kip all: ")
		line, err := t.reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("reading conflict answer: %w", err)
		}
		switch strings.TrimSpace(line) {
		case "o":
			return syncpkg.ChoiceOverwrite, nil
		case "s":
			return syncpkg.ChoiceSkip, nil
		case "d":
			return syncpkg.ChoiceDiff, nil
		case "a":
			return syncpkg.ChoiceAbort, nil
		case "O":
			return syncpkg.ChoiceOverwriteAll, nil
		case "S":
			return syncpkg.ChoiceSkipAll, nil
		}
	}
}
