package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/calvin-dev/calvin/internal/suggest"
)

// ConfigFileName is the name of the per-layer config file.
const ConfigFileName = "config.toml"

// knownSections and knownKeys back the "did you mean" diagnostics: an
// unrecognized top-level key or section key is compared against this list
// with Levenshtein distance and the closest match (if any) is suggested.
var knownSections = []string{"targets", "security", "sources", "deploy", "output"}

var knownKeys = map[string][]string{
	"targets":  {"enabled"},
	"security": {"mode", "allow_naked"},
	"sources":  {"use_user_layer", "ignore_user_layer", "ignore_additional_layers", "disable_project_layer", "user_layer_path", "additional_layers"},
	"deploy":   {"target"},
	"output":   {"color", "unicode", "animation"},
}

// unknownKeyWarnings inspects the decoded key set and flags any top-level
// section or section key this package doesn't recognize, each with an
// optional "did you mean" suggestion.
func unknownKeyWarnings(meta toml.MetaData, path string) []string {
	var warnings []string
	for _, k := range meta.Keys() {
		switch len(k) {
		case 1:
			section := k[0]
			if !contains(knownSections, section) {
				warnings = append(warnings, fmt.Sprintf("%s: unknown section [%s]%s", path, section, suggestHint(section, knownSections)))
			}
		case 2:
			section, key := k[0], k[1]
			keys, ok := knownKeys[section]
			if !ok {
				continue // already warned about the section itself
			}
			if !contains(keys, key) {
				warnings = append(warnings, fmt.Sprintf("%s: unknown key '%s' in [%s]%s", path, key, section, suggestHint(key, keys)))
			}
		}
	}
	return warnings
}

func suggestHint(got string, candidates []string) string {
	if best := suggest.Closest(got, candidates); best != "" {
		return fmt.Sprintf(" — did you mean '%s'?", best)
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// EnvNoInherit returns true if CALVIN_NO_INHERIT is set to "1" or "true".
func EnvNoInherit() bool {
	return envBoolTrue("CALVIN_NO_INHERIT")
}

func envBoolTrue(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true"
}
