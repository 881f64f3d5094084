package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseMarksTargetsSectionPresence(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[targets]\nenabled = []\n")

	cfg, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	enabled, present := cfg.TargetsEnabled()
	if !present {
		t.Fatal("expected [targets] section to be marked present")
	}
	if len(enabled) != 0 {
		t.Fatalf("expected empty enabled list, got %v", enabled)
	}
}

func TestParseAbsentTargetsSection(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[security]\nmode = \"strict\"\n")

	cfg, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, present := cfg.TargetsEnabled()
	if present {
		t.Fatal("expected [targets] section to be marked absent")
	}
}

func TestParseUnknownKeyWarns(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[security]\nmod = \"strict\"\n")

	_, err := Parse(path)
	if err == nil {
		t.Fatal("expected a warning error for the unknown key")
	}
	if ve, ok := err.(*ValidationError); !ok || !ve.Warning {
		t.Fatalf("got %v, want a Warning ValidationError", err)
	}
}

func TestMergeSectionLevelOverride(t *testing.T) {
	base := &Config{Targets: TargetsSection{Enabled: []string{"cursor"}}}
	base.MarkTargetsSection(true)

	overlay := &Config{Targets: TargetsSection{Enabled: []string{"codex"}}}
	overlay.MarkTargetsSection(true)

	merged := Merge(base, overlay)
	if len(merged.Targets.Enabled) != 1 || merged.Targets.Enabled[0] != "codex" {
		t.Fatalf("got %v, want overlay's targets to replace base's wholesale", merged.Targets.Enabled)
	}
}

func TestMergeLeavesBaseWhenOverlaySectionAbsent(t *testing.T) {
	base := &Config{Security: SecuritySection{Mode: "strict"}}
	overlay := &Config{}

	merged := Merge(base, overlay)
	if merged.Security.Mode != "strict" {
		t.Fatalf("got %q, want base's security mode preserved", merged.Security.Mode)
	}
}

func TestNormalizeResetsInvalidEnumWithWarning(t *testing.T) {
	cfg := &Config{Deploy: DeploySection{Target: "nowhere"}}
	warnings := Normalize(cfg)
	if len(warnings) != 1 {
		t.Fatalf("got %v, want one warning", warnings)
	}
	if !strings.Contains(warnings[0], "project, home, unset") {
		t.Errorf("warning should list the valid set: %s", warnings[0])
	}
	if cfg.Deploy.Target != "" {
		t.Errorf("invalid value should reset to the default, got %q", cfg.Deploy.Target)
	}
}

func TestParseInvalidEnumIsRecoveredNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "[security]\nmode = \"paranoid\"\n")

	cfg, err := Parse(path)
	ve, ok := err.(*ValidationError)
	if !ok || !ve.Warning {
		t.Fatalf("got %v, want a Warning ValidationError", err)
	}
	if cfg.Security.Mode != "" {
		t.Errorf("mode should fall back to default, got %q", cfg.Security.Mode)
	}
	if cfg.SecurityMode() != "balanced" {
		t.Errorf("effective mode = %q, want the balanced default", cfg.SecurityMode())
	}
}

func TestLoadLayeredRecoversInvalidEnum(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[deploy]\ntarget = \"nowhere\"\n[targets]\nenabled = [\"cursor\"]\n")

	cfg, results, err := LoadLayered([]struct{ Path, Level string }{
		{Path: filepath.Join(dir, ConfigFileName), Level: "project"},
	})
	if err != nil {
		t.Fatalf("invalid enum must not abort layered load: %v", err)
	}
	if cfg.Deploy.Target != "" {
		t.Errorf("merged config should carry the default, got %q", cfg.Deploy.Target)
	}
	if len(results) != 1 || len(results[0].Warnings) != 1 {
		t.Fatalf("results = %+v, want one layer with one warning", results)
	}
	enabled, present := cfg.TargetsEnabled()
	if !present || len(enabled) != 1 {
		t.Errorf("valid sections must survive recovery: %v, %v", enabled, present)
	}
}
