// Package security defines the security mode value object used by the check
// command and config validation.
package security

import (
	"fmt"
	"strings"
)

// Mode gates how permissive the check command and deploy prompts are about
// naked (non-sandboxed) writes and unreviewed skill tool permissions.
type Mode string

const (
	Yolo     Mode = "yolo"
	Balanced Mode = "balanced"
	Strict   Mode = "strict"
)

// Default is used when config omits [security].mode.
const Default = Balanced

// ValidValues lists the accepted string forms, in the order they should be
// shown in "did you mean" / validation messages.
var ValidValues = []string{string(Yolo), string(Balanced), string(Strict)}

// Parse is case-insensitive and returns an error listing ValidValues on
// failure so callers can surface it as a config warning.
func Parse(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Yolo):
		return Yolo, nil
	case string(Balanced):
		return Balanced, nil
	case string(Strict):
		return Strict, nil
	default:
		return "", fmt.Errorf("invalid security mode %q — valid values: %s", s, strings.Join(ValidValues, ", "))
	}
}
