package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calvin-dev/calvin/internal/layer"
)

func writeAsset(t *testing.T, root, dir, name, content string) {
	t.Helper()
	full := filepath.Join(root, dir)
	if err := os.MkdirAll(full, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(full, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestParseFileMissingDescription(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "policies", "style.md", "---\nkind: policy\n---\nbody")
	l := layer.Layer{Type: layer.TypeProject, ResolvedPath: dir}

	_, err := ParseFile(l, filepath.Join(dir, "policies", "style.md"), "policies/style.md", "policies")
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != "MissingField" {
		t.Fatalf("got %v, want MissingField ParseError", err)
	}
}

func TestParseFileInfersKindFromDir(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "policies", "style.md", "---\ndescription: house style\n---\nbody text")
	l := layer.Layer{Type: layer.TypeProject, ResolvedPath: dir}

	a, err := ParseFile(l, filepath.Join(dir, "policies", "style.md"), "policies/style.md", "policies")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if a.Kind != KindPolicy {
		t.Errorf("Kind = %s, want policy", a.Kind)
	}
	if a.ID != "style" {
		t.Errorf("ID = %s, want style", a.ID)
	}
	if !a.TargetsAbsent {
		t.Error("expected TargetsAbsent when frontmatter omits 'targets'")
	}
}

func TestParseFileEmptyTargetsDistinctFromAbsent(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "policies", "style.md", "---\ndescription: x\ntargets: []\n---\nbody")
	l := layer.Layer{Type: layer.TypeProject, ResolvedPath: dir}

	a, err := ParseFile(l, filepath.Join(dir, "policies", "style.md"), "policies/style.md", "policies")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if a.TargetsAbsent {
		t.Fatal("expected TargetsAbsent = false when targets: [] is present")
	}
	if len(a.Targets) != 0 {
		t.Fatalf("expected zero targets, got %v", a.Targets)
	}
	if a.EmitsFor("cursor", []string{"cursor"}) {
		t.Error("present-but-empty targets must emit for nothing")
	}
}

func TestParseFileNoFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "policies", "style.md", "no frontmatter here")
	l := layer.Layer{Type: layer.TypeProject, ResolvedPath: dir}

	_, err := ParseFile(l, filepath.Join(dir, "policies", "style.md"), "policies/style.md", "policies")
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != "NoFrontmatter" {
		t.Fatalf("got %v, want NoFrontmatter", err)
	}
}

func TestMergeOverrideAcrossLayers(t *testing.T) {
	userAsset := &Asset{ID: "shared", Kind: KindPolicy, Body: "USER SHARED", SourceLayer: layer.TypeUser, SourceLayerPath: "/user"}
	projectAsset := &Asset{ID: "shared", Kind: KindPolicy, Body: "PROJECT SHARED", SourceLayer: layer.TypeProject, SourceLayerPath: "/project"}

	result, err := Merge([][]*Asset{{userAsset}, {projectAsset}})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(result.Assets) != 1 {
		t.Fatalf("got %d assets, want 1", len(result.Assets))
	}
	if result.Assets[0].Body != "PROJECT SHARED" {
		t.Errorf("Body = %q, want project layer to win", result.Assets[0].Body)
	}
	ov, ok := result.Overrides["shared"]
	if !ok {
		t.Fatal("expected an override record for 'shared'")
	}
	if ov.WinningLayer != layer.TypeProject {
		t.Errorf("WinningLayer = %s, want project", ov.WinningLayer)
	}
}

func TestMergeDuplicateKindCollisionSameLayer(t *testing.T) {
	a1 := &Asset{ID: "x", Kind: KindAgent, SourceLayerPath: "/project", SourcePath: "/project/agents/x.md"}
	a2 := &Asset{ID: "x", Kind: KindAction, SourceLayerPath: "/project", SourcePath: "/project/actions/x.md"}

	_, err := Merge([][]*Asset{{a1, a2}})
	perr, ok := err.(*ParseError)
	if !ok || perr.Kind != "DuplicateAssetId" {
		t.Fatalf("got %v, want DuplicateAssetId", err)
	}
}
