// Package config loads and merges config.toml layers (one per resolved
// asset layer) into the effective deploy configuration.
package config

import "github.com/calvin-dev/calvin/internal/security"

// Config is the parsed shape of one layer's config.toml.
type Config struct {
	Targets  TargetsSection  `toml:"targets"`
	Security SecuritySection `toml:"security"`
	Sources  SourcesSection  `toml:"sources"`
	Deploy   DeploySection   `toml:"deploy"`
	Output   OutputSection   `toml:"output"`

	// hasTargetsSection distinguishes an absent [targets] section (use
	// defaults) from a present-but-empty one (deploy nothing). TOML
	// doesn't carry this distinction on its own, so the loader sets it
	// after decoding the raw key set.
	hasTargetsSection bool
}

// TargetsSection lists enabled target identifiers.
type TargetsSection struct {
	Enabled []string `toml:"enabled"`
}

// SecuritySection controls the check command's strictness.
type SecuritySection struct {
	Mode       string `toml:"mode"`
	AllowNaked bool   `toml:"allow_naked"`
}

// SourcesSection controls layer discovery.
type SourcesSection struct {
	UseUserLayer           bool     `toml:"use_user_layer"`
	IgnoreUserLayer        bool     `toml:"ignore_user_layer"`
	IgnoreAdditionalLayers bool     `toml:"ignore_additional_layers"`
	DisableProjectLayer    bool     `toml:"disable_project_layer"`
	UserLayerPath          string   `toml:"user_layer_path"`
	AdditionalLayers       []string `toml:"additional_layers"`
}

// DeploySection picks the default deploy destination.
type DeploySection struct {
	Target string `toml:"target"` // "project" | "home" | "unset"
}

// OutputSection controls presentation; carried here only so config
// round-trips cleanly through layers that set it, even though rendering
// itself is out of scope.
type OutputSection struct {
	Color     string `toml:"color"`
	Unicode   bool   `toml:"unicode"`
	Animation string `toml:"animation"`
}

// SecurityMode parses the configured mode, defaulting to Balanced.
func (c *Config) SecurityMode() security.Mode {
	if c.Security.Mode == "" {
		return security.Default
	}
	m, err := security.Parse(c.Security.Mode)
	if err != nil {
		return security.Default
	}
	return m
}

// TargetsEnabled reports the effective enabled-target list and whether the
// section was present at all (needed to distinguish "disable everything"
// from "use built-in defaults").
func (c *Config) TargetsEnabled() (names []string, sectionPresent bool) {
	return c.Targets.Enabled, c.hasTargetsSection
}

// MarkTargetsSection records that [targets] was present in the source file,
// called by the loader right after toml.Decode.
func (c *Config) MarkTargetsSection(present bool) {
	c.hasTargetsSection = present
}
