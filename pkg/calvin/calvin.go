// Package calvin is the public pipeline API: resolve layers, parse and
// merge assets, compile them for the enabled targets, and deploy the result
// against a destination.
//
// # Basic Usage
//
//	compiled, err := calvin.Compile(calvin.Options{ProjectRoot: "."})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := calvin.Deploy(ctx, compiled, calvin.DeployOptions{
//	    Dest:     dest,
//	    Strategy: syncpkg.SafeStrategy{},
//	})
package calvin

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/config"
	"github.com/calvin-dev/calvin/internal/home"
	"github.com/calvin-dev/calvin/internal/layer"
	"github.com/calvin-dev/calvin/internal/target"
)

// Environment overrides for Calvin-internal locations.
const (
	EnvUserConfig = "CALVIN_USER_CONFIG"
	EnvUserLayer  = "CALVIN_USER_LAYER"
)

// Options selects the layer stack and target set for one compile.
type Options struct {
	ProjectRoot string
	// SourcePath overrides the project layer location (default
	// "<ProjectRoot>/.promptpack").
	SourcePath       string
	UserLayerPath    string
	AdditionalLayers []string
	NoUserLayer      bool
	NoAdditional     bool
	RemoteMode       bool
	// TargetsOverride, when non-nil, beats the config's [targets] section.
	TargetsOverride []string
}

// Compiled is the in-memory result of one pipeline run up to (and
// including) target compilation.
type Compiled struct {
	ProjectRoot string
	SourceDir   string // resolved project layer path
	Layers      []layer.Layer
	Config      *config.Config
	Warnings    []string
	Assets      []*asset.Asset
	Overrides   map[string]*asset.Override
	Enabled     []string
	Outputs     []target.OutputFile
}

// Compile runs layer resolution, config load, parse, merge, and target
// compilation. It performs no writes.
func Compile(opts Options) (*Compiled, error) {
	projectRoot, err := filepath.Abs(opts.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	sourceDir := opts.SourcePath
	if sourceDir == "" {
		sourceDir = filepath.Join(projectRoot, ".promptpack")
	}

	userLayer := opts.UserLayerPath
	if userLayer == "" {
		userLayer = os.Getenv(EnvUserLayer)
	}

	// Preliminary config pass over the user and project sources, so
	// [sources] settings can shape layer discovery before the stack exists.
	preCfg, err := loadPreConfig(sourceDir, userLayer)
	if err != nil {
		return nil, err
	}

	if userLayer == "" {
		userLayer = preCfg.Sources.UserLayerPath
	}
	additional := opts.AdditionalLayers
	if len(additional) == 0 {
		additional = preCfg.Sources.AdditionalLayers
	}
	if opts.NoAdditional || preCfg.Sources.IgnoreAdditionalLayers {
		additional = nil
	}

	resolver := &layer.Resolver{
		ProjectRoot:         projectRoot,
		ProjectLayerPath:    sourceDir,
		UserLayerPath:       userLayer,
		AdditionalLayers:    additional,
		RemoteMode:          opts.RemoteMode,
		DisableUserLayer:    opts.NoUserLayer || preCfg.Sources.IgnoreUserLayer,
		DisableProjectLayer: preCfg.Sources.DisableProjectLayer,
	}

	layers, err := resolver.Resolve()
	if err != nil {
		return nil, err
	}

	// Full config pass across the resolved stack, lowest to highest.
	var roots []struct{ Path, Level string }
	for _, l := range layers {
		roots = append(roots, struct{ Path, Level string }{
			Path:  filepath.Join(l.ResolvedPath, config.ConfigFileName),
			Level: string(l.Type),
		})
	}
	cfg, layerResults, err := config.LoadLayered(roots)
	if err != nil {
		return nil, err
	}
	var warnings []string
	for _, lr := range layerResults {
		warnings = append(warnings, lr.Warnings...)
	}

	var perLayer [][]*asset.Asset
	for _, l := range layers {
		assets, err := asset.WalkLayer(l)
		if err != nil {
			return nil, err
		}
		perLayer = append(perLayer, assets)
	}

	merged, err := asset.Merge(perLayer)
	if err != nil {
		return nil, err
	}

	reg := target.NewRegistry()
	enabled := effectiveTargets(opts.TargetsOverride, cfg, reg)

	outputs, err := reg.Compile(merged.Assets, enabled)
	if err != nil {
		return nil, err
	}

	return &Compiled{
		ProjectRoot: projectRoot,
		SourceDir:   sourceDir,
		Layers:      layers,
		Config:      cfg,
		Warnings:    warnings,
		Assets:      merged.Assets,
		Overrides:   merged.Overrides,
		Enabled:     enabled,
		Outputs:     outputs,
	}, nil
}

// loadPreConfig merges the user and project config.toml before layer
// resolution. Missing files are fine; a broken file is fatal here rather
// than surfacing later with less context.
func loadPreConfig(sourceDir, userLayer string) (*config.Config, error) {
	userConfig := os.Getenv(EnvUserConfig)
	if userConfig == "" {
		// XDG fallback: honored only when the file actually exists, so the
		// user-layer config stays the default location.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			candidate := filepath.Join(xdg, "calvin", config.ConfigFileName)
			if _, err := os.Stat(candidate); err == nil {
				userConfig = candidate
			}
		}
	}
	if userConfig == "" {
		base := userLayer
		if base == "" {
			if h, err := home.Dir(); err == nil {
				base = filepath.Join(h, ".calvin", ".promptpack")
			}
		}
		if base != "" {
			userConfig = filepath.Join(base, config.ConfigFileName)
		}
	}

	var roots []struct{ Path, Level string }
	if userConfig != "" {
		roots = append(roots, struct{ Path, Level string }{userConfig, "user"})
	}
	roots = append(roots, struct{ Path, Level string }{filepath.Join(sourceDir, config.ConfigFileName), "project"})

	cfg, _, err := config.LoadLayered(roots)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// effectiveTargets applies the precedence: explicit override, then the
// config's [targets] section (present-but-empty means none), then all
// known targets.
func effectiveTargets(override []string, cfg *config.Config, reg *target.Registry) []string {
	if override != nil {
		return override
	}
	if enabled, present := cfg.TargetsEnabled(); present {
		return enabled
	}
	return reg.Known()
}
