package lock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKeyRoundTrip(t *testing.T) {
	cases := []struct {
		ns   Namespace
		path string
	}{
		{NamespaceProject, "file.md"},
		{NamespaceHome, "file.md"},
		{NamespaceProject, "~/.config/test"},
		{NamespaceHome, "~"},
	}
	for _, c := range cases {
		key := Key(c.ns, c.path)
		gotNS, gotPath, ok := ParseKey(key)
		if !ok {
			t.Fatalf("ParseKey(%q) failed to parse", key)
		}
		wantNS := c.ns
		wantPath := c.path
		if c.path == "~" || len(c.path) > 1 && c.path[:2] == "~/" {
			wantNS = NamespaceHome
		} else if c.ns == NamespaceHome {
			wantPath = "~/" + c.path
		}
		if gotNS != wantNS || gotPath != wantPath {
			t.Errorf("Key(%s, %q) -> %q -> (%s, %q), want (%s, %q)", c.ns, c.path, key, gotNS, gotPath, wantNS, wantPath)
		}
	}
}

func TestKeyProjectPath(t *testing.T) {
	if got := Key(NamespaceProject, "file.md"); got != "project:file.md" {
		t.Errorf("got %q", got)
	}
}

func TestKeyHomePath(t *testing.T) {
	if got := Key(NamespaceHome, "file.md"); got != "home:~/file.md" {
		t.Errorf("got %q", got)
	}
}

func TestKeyTildePathAlwaysHome(t *testing.T) {
	if got := Key(NamespaceProject, "~/.config/test"); got != "home:~/.config/test" {
		t.Errorf("got %q", got)
	}
}

func TestLoadOrNewMissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	lf, err := LoadOrNew(filepath.Join(dir, "calvin.lock"))
	if err != nil {
		t.Fatalf("LoadOrNew: %v", err)
	}
	if lf.Version != 1 || !lf.Empty() {
		t.Fatalf("got %+v, want empty v1 lockfile", lf)
	}
}

func TestLoadOrNewCorruptedFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calvin.lock")
	if err := os.WriteFile(path, []byte("not valid toml {{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadOrNew(path)
	if _, ok := err.(*CorruptedError); !ok {
		t.Fatalf("got %v, want *CorruptedError", err)
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calvin.lock")

	lf := New()
	lf.SetEntry(Key(NamespaceProject, ".cursor/rules/style/RULE.md"), &FileEntry{
		Hash:        "sha256:abc",
		SourceLayer: "project",
		SourceAsset: "style",
	})

	if err := Save(path, lf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadOrNew(path)
	if err != nil {
		t.Fatalf("LoadOrNew: %v", err)
	}
	entry, ok := loaded.Files["project:.cursor/rules/style/RULE.md"]
	if !ok {
		t.Fatal("expected entry to round-trip")
	}
	if entry.Hash != "sha256:abc" {
		t.Errorf("Hash = %q, want sha256:abc", entry.Hash)
	}
}

func TestSaveEmptyRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calvin.lock")

	lf := New()
	lf.SetEntry("project:x", &FileEntry{Hash: "sha256:x"})
	if err := Save(path, lf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	lf.Remove("project:x")
	if err := Save(path, lf); err != nil {
		t.Fatalf("Save (empty): %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected lockfile to be removed once empty")
	}
}
