// Package asset parses and merges prompt assets: markdown files with YAML
// frontmatter, one logical definition per file (or per skill directory).
package asset

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/calvin-dev/calvin/internal/layer"
)

// Kind classifies an asset by the directory convention it was found under.
type Kind string

const (
	KindPolicy  Kind = "policy"
	KindAction  Kind = "action"
	KindAgent   Kind = "agent"
	KindSkill   Kind = "skill"
	KindCommand Kind = "command"
)

var validKinds = map[Kind]bool{
	KindPolicy: true, KindAction: true, KindAgent: true, KindSkill: true, KindCommand: true,
}

// Scope selects the destination root a compiled output is written under.
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeUser    Scope = "user"
)

// Supplemental is a non-frontmatter file living alongside a SKILL.md, e.g. a
// bundled script or image.
type Supplemental struct {
	RelPath  string // relative to the skill directory
	Content  []byte
	IsBinary bool
}

// Asset is one logical prompt definition.
type Asset struct {
	ID             string
	Kind           Kind
	Scope          Scope
	Targets        []string // consulted only when TargetsAbsent is false; empty = none
	TargetsAbsent  bool
	Description    string
	Apply          string
	PermissionMode string
	AllowedTools   []string
	Body           string

	SourceLayer     layer.Type
	SourceLayerPath string
	SourcePath      string
	OverridesLayer  layer.Type // layer this asset shadowed during merge, if any

	Supplementals []Supplemental
}

// EmitsFor reports whether the asset selects the given enabled target.
func (a *Asset) EmitsFor(target string, enabled []string) bool {
	if !isEnabled(target, enabled) {
		return false
	}
	if a.TargetsAbsent {
		return true
	}
	for _, t := range a.Targets {
		if t == target {
			return true
		}
	}
	return false
}

func isEnabled(target string, enabled []string) bool {
	for _, e := range enabled {
		if e == target {
			return true
		}
	}
	return false
}

var idNormalizer = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeID lowercases and kebab-normalizes a filename stem into an asset
// id, matching the ASCII case-folding decided in SPEC_FULL.md §9.
func NormalizeID(stem string) string {
	lower := strings.ToLower(stem)
	kebab := idNormalizer.ReplaceAllString(lower, "-")
	return strings.Trim(kebab, "-")
}

// ParseKind validates a frontmatter "kind" value.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !validKinds[k] {
		return "", fmt.Errorf("unknown kind %q — must be one of: policy, action, agent, skill, command", s)
	}
	return k, nil
}

// KindFromDir infers a Kind from a containing directory name, e.g.
// "policies" -> KindPolicy.
func KindFromDir(dirName string) (Kind, bool) {
	switch dirName {
	case "policies":
		return KindPolicy, true
	case "actions":
		return KindAction, true
	case "agents":
		return KindAgent, true
	case "skills":
		return KindSkill, true
	case "commands":
		return KindCommand, true
	default:
		return "", false
	}
}
