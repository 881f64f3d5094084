package config

// Merge combines two configs where overlay takes precedence over base,
// section by section. Unlike a deep merge, a section present in overlay
// replaces the corresponding section in base wholesale — e.g. a project
// layer that sets [targets].enabled = ["cursor"] fully replaces a user
// layer's [targets], rather than unioning the two lists. SourcesSection
// (layer discovery) and OutputSection are compared for the zero value as a
// presence proxy since TOML gives us no other signal for them; TargetsSection
// uses the explicit hasTargetsSection flag so an empty-but-present
// `[targets]\nenabled = []` is distinguishable from an absent section.
func Merge(base, overlay *Config) *Config {
	if base == nil {
		return overlay
	}
	if overlay == nil {
		return base
	}

	result := *base

	if _, present := overlay.TargetsEnabled(); present {
		result.Targets = overlay.Targets
		result.MarkTargetsSection(true)
	}
	if overlay.Security != (SecuritySection{}) {
		result.Security = overlay.Security
	}
	if !sourcesSectionEmpty(overlay.Sources) {
		result.Sources = overlay.Sources
	}
	if overlay.Deploy != (DeploySection{}) {
		result.Deploy = overlay.Deploy
	}
	if overlay.Output != (OutputSection{}) {
		result.Output = overlay.Output
	}

	return &result
}

func sourcesSectionEmpty(s SourcesSection) bool {
	return !s.UseUserLayer && !s.IgnoreUserLayer && !s.IgnoreAdditionalLayers &&
		!s.DisableProjectLayer && s.UserLayerPath == "" && len(s.AdditionalLayers) == 0
}
