package check

import (
	"strings"
	"testing"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/security"
)

var knownTargets = []string{"cursor", "claude-code", "codex"}

func TestUnknownTargetWarnsWithSuggestion(t *testing.T) {
	a := &asset.Asset{ID: "x", Kind: asset.KindPolicy, Targets: []string{"cursr"}, SourcePath: "/p/x.md"}
	r := Run([]*asset.Asset{a}, knownTargets, nil, Options{Mode: security.Balanced})

	if len(r.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", r.Warnings)
	}
	if !strings.Contains(r.Warnings[0], `did you mean "cursor"`) {
		t.Errorf("warning should suggest cursor: %s", r.Warnings[0])
	}
	if !r.OK() {
		t.Error("warnings alone must not fail a non-strict run")
	}
}

func TestSkillWithoutToolsByMode(t *testing.T) {
	skill := &asset.Asset{ID: "s", Kind: asset.KindSkill, SourcePath: "/p/s/SKILL.md"}

	yolo := Run([]*asset.Asset{skill}, knownTargets, nil, Options{Mode: security.Yolo})
	if len(yolo.Warnings)+len(yolo.Problems) != 0 {
		t.Error("yolo mode should not care about missing allowed-tools")
	}

	balanced := Run([]*asset.Asset{skill}, knownTargets, nil, Options{Mode: security.Balanced})
	if len(balanced.Warnings) != 1 || len(balanced.Problems) != 0 {
		t.Errorf("balanced: warnings=%v problems=%v", balanced.Warnings, balanced.Problems)
	}

	strict := Run([]*asset.Asset{skill}, knownTargets, nil, Options{Mode: security.Strict})
	if len(strict.Problems) != 1 {
		t.Errorf("strict mode should fail: %v", strict.Problems)
	}
	if strict.OK() {
		t.Error("problems must fail the run")
	}
}

func TestStrictWarningsFlag(t *testing.T) {
	r := Run(nil, knownTargets, []string{"config.toml: unknown key"}, Options{Mode: security.Balanced, StrictWarnings: true})
	if r.OK() {
		t.Error("strict-warnings must fail on config warnings")
	}
	if r.Summary().Errors != 1 {
		t.Errorf("summary errors = %d, want 1", r.Summary().Errors)
	}
}
