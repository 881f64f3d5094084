// Package escape implements the per-output-format string escaping used by
// target adapters when embedding asset content into a target's native
// frontmatter shape.
package escape

import "strings"

// Format identifies the escaping policy to apply.
type Format int

const (
	Markdown Format = iota
	JSON
	TOML
	YAML
	Raw
)

// JSONString escapes backslash, double quote, newline, carriage return, and tab.
func JSONString(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return r.Replace(s)
}

// TOMLString escapes a value for a TOML basic string: backslash and double
// quote only.
func TOMLString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return r.Replace(s)
}

// YAMLString quotes and escapes s when it contains characters that would
// otherwise change YAML's parse of the value (block/flow indicators,
// leading/trailing whitespace, or characters reserved at the start of a
// scalar). Values that need no quoting are returned unchanged.
func YAMLString(s string) string {
	if !yamlNeedsQuoting(s) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func yamlNeedsQuoting(s string) bool {
	const special = ":#[]{},&*!|>'\""
	if strings.ContainsAny(s, special) {
		return true
	}
	if strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		return true
	}
	if strings.HasPrefix(s, "@") || strings.HasPrefix(s, "`") {
		return true
	}
	return false
}

// ForFormat dispatches to the policy for the given format.
func ForFormat(s string, format Format) string {
	switch format {
	case JSON:
		return JSONString(s)
	case TOML:
		return TOMLString(s)
	case YAML:
		return YAMLString(s)
	default: // Markdown, Raw
		return s
	}
}
