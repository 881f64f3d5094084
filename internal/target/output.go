// Package target compiles assets into the per-tool file layouts of the
// supported coding assistants. Each adapter owns one target's output paths
// and frontmatter shape; the Registry runs the asset × enabled-target
// cross-product.
package target

import (
	"bytes"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/layer"
	"github.com/calvin-dev/calvin/internal/safepath"
)

// Signature markers let the cleanup engine recognize files Calvin wrote even
// after their lockfile hash no longer matches. Markdown outputs carry the
// HTML-comment form; TOML outputs carry the comment-line form.
const (
	SignatureMarkdown = "<!-- calvin:generated -->"
	SignatureTOML     = "# calvin:generated"
)

// HasSignature reports whether content carries either signature marker.
func HasSignature(content []byte) bool {
	return bytes.Contains(content, []byte(SignatureMarkdown)) ||
		bytes.Contains(content, []byte(SignatureTOML))
}

// Provenance records where an output file came from, carried into the
// lockfile so later runs can report and clean it.
type Provenance struct {
	SourceLayer     layer.Type
	SourceLayerPath string
	SourceAsset     string
	SourceFile      string
	Overrides       string // layer name this asset shadowed, if any
}

// OutputFile is one compiled artifact for one (asset, target) pair. Path is
// relative to the destination root chosen by Scope.
type OutputFile struct {
	Path       safepath.Path
	Content    []byte
	IsBinary   bool
	Scope      asset.Scope
	Provenance Provenance
}

// newOutput validates the path and stamps provenance from the source asset.
func newOutput(relPath string, content []byte, isBinary bool, a *asset.Asset) (OutputFile, error) {
	p, err := safepath.New(relPath)
	if err != nil {
		return OutputFile{}, err
	}
	prov := Provenance{
		SourceLayer:     a.SourceLayer,
		SourceLayerPath: a.SourceLayerPath,
		SourceAsset:     a.ID,
		SourceFile:      a.SourcePath,
		Overrides:       string(a.OverridesLayer),
	}
	return OutputFile{
		Path:       p,
		Content:    content,
		IsBinary:   isBinary,
		Scope:      a.Scope,
		Provenance: prov,
	}, nil
}
