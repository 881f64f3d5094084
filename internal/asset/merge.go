package asset

import (
	"fmt"
	"sort"

	"github.com/calvin-dev/calvin/internal/layer"
)

// Override records that a higher-precedence layer replaced a
// lower-precedence asset with the same id.
type Override struct {
	ID            string
	WinningLayer  layer.Type
	ShadowedLayer []layer.Type
}

// MergeResult is the deduplicated asset set plus override bookkeeping.
type MergeResult struct {
	Assets    []*Asset
	Overrides map[string]*Override
}

// Merge combines per-layer asset lists (ordered lowest to highest
// precedence) into one set, case-insensitively deduplicated by id.
func Merge(layerAssets [][]*Asset) (*MergeResult, error) {
	byID := make(map[string]*Asset)
	overrides := make(map[string]*Override)
	seenKindInLayer := make(map[string]map[string]Kind) // layerPath -> id -> kind, for same-layer collision detection

	for _, assets := range layerAssets {
		for _, a := range assets {
			key := a.ID // already normalized ASCII-lowercase by NormalizeID

			layerSeen := seenKindInLayer[a.SourceLayerPath]
			if layerSeen == nil {
				layerSeen = make(map[string]Kind)
				seenKindInLayer[a.SourceLayerPath] = layerSeen
			}
			if existingKind, ok := layerSeen[key]; ok && existingKind != a.Kind {
				return nil, &ParseError{
					Kind:    "DuplicateAssetId",
					File:    a.SourcePath,
					Message: fmt.Sprintf("asset id %q is defined as both %q and %q within the same layer", a.ID, existingKind, a.Kind),
				}
			}
			layerSeen[key] = a.Kind

			if existing, ok := byID[key]; ok {
				ov, has := overrides[key]
				if !has {
					ov = &Override{ID: key, WinningLayer: a.SourceLayer}
					overrides[key] = ov
				}
				ov.WinningLayer = a.SourceLayer
				ov.ShadowedLayer = append(ov.ShadowedLayer, existing.SourceLayer)
				a.OverridesLayer = existing.SourceLayer
			}
			byID[key] = a
		}
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]*Asset, 0, len(ids))
	for _, id := range ids {
		result = append(result, byID[id])
	}

	return &MergeResult{Assets: result, Overrides: overrides}, nil
}
