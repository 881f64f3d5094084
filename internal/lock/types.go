// Package lock implements the content-addressed lockfile: a persistent
// record of every output file the sync executor has written, keyed by a
// namespaced path so project and home deploys can share storage conventions.
package lock

// Lockfile is the root TOML document, schema version 1.
type Lockfile struct {
	Version int                     `toml:"version"`
	Files   map[string]*FileEntry   `toml:"files"`
}

// FileEntry records what was written for one namespaced key.
type FileEntry struct {
	Hash            string `toml:"hash"`
	IsBinary        bool   `toml:"is_binary"`
	SourceLayer     string `toml:"source_layer"`
	SourceLayerPath string `toml:"source_layer_path"`
	SourceAsset     string `toml:"source_asset"`
	SourceFile      string `toml:"source_file"`
	Overrides       string `toml:"overrides,omitempty"`
}

// New returns an empty version-1 lockfile.
func New() *Lockfile {
	return &Lockfile{Version: 1, Files: make(map[string]*FileEntry)}
}

// SetEntry upserts an entry.
func (lf *Lockfile) SetEntry(key string, entry *FileEntry) {
	if lf.Files == nil {
		lf.Files = make(map[string]*FileEntry)
	}
	lf.Files[key] = entry
}

// Remove deletes an entry, returning whether it existed.
func (lf *Lockfile) Remove(key string) bool {
	if _, ok := lf.Files[key]; !ok {
		return false
	}
	delete(lf.Files, key)
	return true
}

// Empty reports whether the lockfile has no entries (and should therefore
// be deleted from disk rather than persisted as an empty file).
func (lf *Lockfile) Empty() bool {
	return len(lf.Files) == 0
}
