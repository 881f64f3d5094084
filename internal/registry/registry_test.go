package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingReturnsEmpty(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "registry.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if r.Version != 1 || len(r.Projects) != 0 {
		t.Errorf("got %+v, want empty v1 registry", r)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.toml")
	r := &Registry{Version: 1}
	r.Upsert(Project{
		Path:         "/work/app",
		LockfilePath: "/work/app/calvin.lock",
		LastDeployed: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
		AssetCount:   4,
	})

	if err := Save(path, r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(loaded.Projects))
	}
	p := loaded.Projects[0]
	if p.Path != "/work/app" || p.AssetCount != 4 {
		t.Errorf("round trip lost data: %+v", p)
	}
}

func TestUpsertReplacesByPath(t *testing.T) {
	r := &Registry{Version: 1}
	r.Upsert(Project{Path: "/b", AssetCount: 1})
	r.Upsert(Project{Path: "/a", AssetCount: 1})
	r.Upsert(Project{Path: "/b", AssetCount: 9})

	if len(r.Projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(r.Projects))
	}
	if r.Projects[0].Path != "/a" {
		t.Error("projects should stay sorted by path")
	}
	if r.Projects[1].AssetCount != 9 {
		t.Error("upsert should replace the existing entry")
	}
}

func TestRemove(t *testing.T) {
	r := &Registry{Version: 1}
	r.Upsert(Project{Path: "/a"})
	if !r.Remove("/a") {
		t.Error("Remove should report the entry existed")
	}
	if r.Remove("/a") {
		t.Error("second Remove should report false")
	}
}

func TestPruneDropsDeadLockfiles(t *testing.T) {
	dir := t.TempDir()
	alive := filepath.Join(dir, "calvin.lock")
	if err := os.WriteFile(alive, []byte("version = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r := &Registry{Version: 1}
	r.Upsert(Project{Path: "/alive", LockfilePath: alive})
	r.Upsert(Project{Path: "/dead", LockfilePath: filepath.Join(dir, "gone.lock")})

	pruned := r.Prune()
	if len(pruned) != 1 || pruned[0].Path != "/dead" {
		t.Errorf("pruned = %+v", pruned)
	}
	if len(r.Projects) != 1 || r.Projects[0].Path != "/alive" {
		t.Errorf("remaining = %+v", r.Projects)
	}
}

func TestCorruptedRegistryIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.toml")
	if err := os.WriteFile(path, []byte("version = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("corrupted registry must not load as empty")
	}
	var ce *CorruptedError
	if !errors.As(err, &ce) {
		t.Errorf("err = %T, want CorruptedError", err)
	}
}
