package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Parse reads and decodes a single config.toml. Invalid enum values are
// reset to their defaults here, per-layer, so a merged config never carries
// one; the resets come back as Warning diagnostics alongside any unknown-key
// warnings. Only unreadable or syntactically broken TOML is a hard error.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.MarkTargetsSection(meta.IsDefined("targets"))

	warnings := unknownKeyWarnings(meta, path)
	for _, w := range Normalize(&cfg) {
		warnings = append(warnings, path+": "+w)
	}
	if len(warnings) > 0 {
		return &cfg, &ValidationError{Errors: warnings, Warning: true}
	}

	return &cfg, nil
}

// Load reads a single config.toml. The returned error, if any, is either
// fatal (unreadable, broken TOML) or a Warning ValidationError the caller
// may surface and otherwise ignore — the config is usable either way.
func Load(path string) (*Config, error) {
	return Parse(path)
}

// LayerResult holds one layer's parsed config plus its load status, mirroring
// the per-layer reporting the CLI prints under -v/-vv.
type LayerResult struct {
	Path     string
	Level    string // "user" | "custom" | "project"
	Loaded   bool
	Warnings []string
	Err      error
}

// LoadLayered loads config.toml from each of the given layer roots (lowest
// to highest precedence) and merges them with strict section-level
// override. A missing config.toml in any layer is not an error; a present
// but unparsable one is fatal. Unknown keys and invalid enum values are
// recovered per layer and reported through each LayerResult's Warnings.
func LoadLayered(layerRoots []struct {
	Path  string
	Level string
}) (*Config, []LayerResult, error) {
	var results []LayerResult
	var configs []*Config

	for _, lr := range layerRoots {
		path := lr.Path
		res := LayerResult{Path: path, Level: lr.Level}

		cfg, err := Parse(path)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) && ve.Warning {
				// Recovered diagnostics don't block loading.
				res.Loaded = true
				res.Warnings = ve.Errors
				configs = append(configs, cfg)
				results = append(results, res)
				continue
			}
			if errors.Is(err, os.ErrNotExist) {
				results = append(results, res)
				continue
			}
			res.Err = err
			return nil, results, fmt.Errorf("loading %s config %s: %w", lr.Level, path, err)
		}

		res.Loaded = true
		configs = append(configs, cfg)
		results = append(results, res)
	}

	merged := &Config{}
	for _, cfg := range configs {
		merged = Merge(merged, cfg)
	}

	return merged, results, nil
}

// ValidationError holds recovered config diagnostics (unknown keys, invalid
// enum values reset to defaults) when Warning is set, or genuine load
// failures otherwise.
type ValidationError struct {
	Errors  []string
	Warning bool
}

func (e *ValidationError) Error() string {
	label := "config validation failed"
	if e.Warning {
		label = "config warnings"
	}
	return fmt.Sprintf("%s:\n  - %s", label, strings.Join(e.Errors, "\n  - "))
}

// Normalize resets any invalid enum value to its default (the zero value,
// which every consumer already treats as "use the built-in default") and
// returns one warning per reset listing the valid set.
func Normalize(cfg *Config) []string {
	var warnings []string

	switch cfg.Security.Mode {
	case "", "yolo", "balanced", "strict":
	default:
		warnings = append(warnings, fmt.Sprintf("[security] mode: invalid value %q, using default — valid values: yolo, balanced, strict", cfg.Security.Mode))
		cfg.Security.Mode = ""
	}

	switch cfg.Deploy.Target {
	case "", "project", "home", "unset":
	default:
		warnings = append(warnings, fmt.Sprintf("[deploy] target: invalid value %q, using default — valid values: project, home, unset", cfg.Deploy.Target))
		cfg.Deploy.Target = ""
	}

	switch cfg.Output.Color {
	case "", "auto", "always", "never":
	default:
		warnings = append(warnings, fmt.Sprintf("[output] color: invalid value %q, using default — valid values: auto, always, never", cfg.Output.Color))
		cfg.Output.Color = ""
	}

	switch cfg.Output.Animation {
	case "", "auto", "always", "minimal", "never":
	default:
		warnings = append(warnings, fmt.Sprintf("[output] animation: invalid value %q, using default — valid values: auto, always, minimal, never", cfg.Output.Animation))
		cfg.Output.Animation = ""
	}

	return warnings
}
