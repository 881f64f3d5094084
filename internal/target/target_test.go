package target

import (
	"bytes"
	"strings"
	"testing"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/layer"
)

func testAsset(id string, kind asset.Kind) *asset.Asset {
	return &asset.Asset{
		ID:            id,
		Kind:          kind,
		Scope:         asset.ScopeProject,
		TargetsAbsent: true,
		Description:   "a test asset",
		Body:          "Hello body.",
		SourceLayer:   layer.TypeProject,
		SourcePath:    "/src/.promptpack/" + id + ".md",
	}
}

func TestCompileSelectionRules(t *testing.T) {
	reg := NewRegistry()
	enabled := []string{"cursor", "claude-code"}

	tests := []struct {
		name      string
		targets   []string
		absent    bool
		wantPaths int
	}{
		{"absent means all enabled", nil, true, 2},
		{"empty means none", []string{}, false, 0},
		{"listed means intersection", []string{"cursor", "codex"}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAsset("style", asset.KindPolicy)
			a.Targets = tt.targets
			a.TargetsAbsent = tt.absent

			outputs, err := reg.Compile([]*asset.Asset{a}, enabled)
			if err != nil {
				t.Fatalf("Compile: %v", err)
			}
			if len(outputs) != tt.wantPaths {
				t.Errorf("got %d outputs, want %d", len(outputs), tt.wantPaths)
			}
		})
	}
}

func TestCompileUnknownTarget(t *testing.T) {
	reg := NewRegistry()
	a := testAsset("style", asset.KindPolicy)

	_, err := reg.Compile([]*asset.Asset{a}, []string{"cursur"})
	if err == nil {
		t.Fatal("expected error for unknown target")
	}
	if !strings.Contains(err.Error(), `did you mean "cursor"`) {
		t.Errorf("error %q should suggest cursor", err)
	}
}

func TestCursorPolicyLayout(t *testing.T) {
	a := testAsset("style", asset.KindPolicy)
	a.Apply = "src/**/*.go"

	outputs, err := (&CursorAdapter{}).Compile(a)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("got %d outputs, want 1", len(outputs))
	}

	o := outputs[0]
	if got := o.Path.String(); got != ".cursor/rules/style/RULE.md" {
		t.Errorf("path = %q", got)
	}
	content := string(o.Content)
	if !strings.Contains(content, "globs: src/**/*.go") {
		t.Errorf("missing globs line in:\n%s", content)
	}
	if !strings.Contains(content, "Hello body.") {
		t.Errorf("missing body in:\n%s", content)
	}
	if !HasSignature(o.Content) {
		t.Error("output should carry the generated-file signature")
	}
}

func TestClaudeAgentNameEqualsID(t *testing.T) {
	a := testAsset("reviewer", asset.KindAgent)
	a.PermissionMode = "plan"

	outputs, err := (&ClaudeCodeAdapter{}).Compile(a)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	content := string(outputs[0].Content)
	if !strings.Contains(content, "name: reviewer") {
		t.Errorf("agent output must emit name equal to id:\n%s", content)
	}
	if !strings.Contains(content, "permissionMode: plan") {
		t.Errorf("permission-mode should be translated to camelCase:\n%s", content)
	}
}

func TestClaudeSkillSupplementals(t *testing.T) {
	a := testAsset("diag", asset.KindSkill)
	binary := []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}
	a.Supplementals = []asset.Supplemental{
		{RelPath: "assets/diagram.png", Content: binary, IsBinary: true},
		{RelPath: "run.sh", Content: []byte("#!/bin/sh\n"), IsBinary: false},
	}

	outputs, err := (&ClaudeCodeAdapter{}).Compile(a)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(outputs) != 3 {
		t.Fatalf("got %d outputs, want SKILL.md + 2 supplementals", len(outputs))
	}

	var png *OutputFile
	for i := range outputs {
		if strings.HasSuffix(outputs[i].Path.String(), "diagram.png") {
			png = &outputs[i]
		}
	}
	if png == nil {
		t.Fatal("supplemental diagram.png not emitted")
	}
	if !png.IsBinary {
		t.Error("binary supplemental must keep is_binary")
	}
	if !bytes.Equal(png.Content, binary) {
		t.Error("binary content must pass through untouched")
	}
}

func TestSkillFallbackFlattens(t *testing.T) {
	a := testAsset("diag", asset.KindSkill)
	a.Supplementals = []asset.Supplemental{{RelPath: "assets/diagram.png", IsBinary: true}}

	outputs, err := (&VSCodeAdapter{}).Compile(a)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(outputs) != 1 {
		t.Fatalf("fallback should flatten to one file, got %d", len(outputs))
	}
	if !strings.Contains(string(outputs[0].Content), "assets/diagram.png") {
		t.Error("flattened skill should list bundled files it cannot carry")
	}
}

func TestCodexAgentTOMLEscaping(t *testing.T) {
	a := testAsset("helper", asset.KindAgent)
	a.Description = `says "hi" with a \ backslash`

	outputs, err := (&CodexAdapter{}).Compile(a)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	var toml string
	for _, o := range outputs {
		if strings.HasSuffix(o.Path.String(), ".toml") {
			toml = string(o.Content)
		}
	}
	if toml == "" {
		t.Fatal("codex agent should emit a TOML descriptor")
	}
	if !strings.Contains(toml, `description = "says \"hi\" with a \\ backslash"`) {
		t.Errorf("TOML basic-string escaping wrong:\n%s", toml)
	}
	if !strings.Contains(toml, `name = "helper"`) {
		t.Errorf("agent name must equal id:\n%s", toml)
	}
}

func TestYAMLDescriptionQuoting(t *testing.T) {
	a := testAsset("tricky", asset.KindCommand)
	a.Description = "contains: a colon"

	outputs, err := (&ClaudeCodeAdapter{}).Compile(a)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(string(outputs[0].Content), `description: "contains: a colon"`) {
		t.Errorf("special characters should force double-quoting:\n%s", outputs[0].Content)
	}
}

func TestCompileDeterministicOrder(t *testing.T) {
	reg := NewRegistry()
	assets := []*asset.Asset{
		testAsset("zeta", asset.KindCommand),
		testAsset("alpha", asset.KindPolicy),
	}
	enabled := []string{"cursor", "claude-code"}

	first, err := reg.Compile(assets, enabled)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := reg.Compile(assets, enabled)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("output counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Path != second[i].Path {
			t.Errorf("order differs at %d: %s vs %s", i, first[i].Path, second[i].Path)
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].Path > first[i].Path {
			t.Errorf("outputs not sorted: %s before %s", first[i-1].Path, first[i].Path)
		}
	}
}

func TestOutputPathsAreSafe(t *testing.T) {
	reg := NewRegistry()
	a := testAsset("any", asset.KindPolicy)

	outputs, err := reg.Compile([]*asset.Asset{a}, reg.Known())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	for _, o := range outputs {
		p := o.Path.String()
		if strings.HasPrefix(p, "/") || strings.Contains(p, "..") {
			t.Errorf("unsafe output path %q", p)
		}
	}
}
