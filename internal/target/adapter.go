package target

import (
	"fmt"
	"sort"
	"strings"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/suggest"
)

// Capabilities declares which asset kinds a target lays out natively. Kinds
// without native support are emitted in a fallback form instead of being
// dropped (a skill is flattened into a single markdown file).
type Capabilities struct {
	NativeAgents bool
	NativeSkills bool
}

// Adapter compiles one asset into the output files for one target.
type Adapter interface {
	ID() string
	Capabilities() Capabilities
	Compile(a *asset.Asset) ([]OutputFile, error)
}

// Registry holds the adapter catalog, keyed by target id, built once at
// startup.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry builds the shipped adapter catalog.
func NewRegistry() *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range []Adapter{
		&CursorAdapter{},
		&ClaudeCodeAdapter{},
		&CodexAdapter{},
		&WindsurfAdapter{},
		&VSCodeAdapter{},
		&CopilotAdapter{},
	} {
		r.adapters[a.ID()] = a
		r.order = append(r.order, a.ID())
	}
	return r
}

// Get returns the adapter for a target id.
func (r *Registry) Get(id string) (Adapter, bool) {
	a, ok := r.adapters[id]
	return a, ok
}

// Known returns all registered target ids, in registration order.
func (r *Registry) Known() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// ValidateEnabled checks that every enabled target id is registered,
// returning an error with a closest-match suggestion otherwise.
func (r *Registry) ValidateEnabled(enabled []string) error {
	for _, id := range enabled {
		if _, ok := r.adapters[id]; !ok {
			msg := fmt.Sprintf("unknown target %q — known targets: %s", id, strings.Join(r.order, ", "))
			if s := suggest.Closest(id, r.order); s != "" {
				msg += fmt.Sprintf(" (did you mean %q?)", s)
			}
			return fmt.Errorf("%s", msg)
		}
	}
	return nil
}

// Compile runs the asset × enabled-target cross-product, applying each
// asset's targets selection rule: absent = all enabled, empty = none,
// listed = intersection with enabled. Outputs are returned sorted by
// (scope, path) so every downstream stage sees a deterministic order.
func (r *Registry) Compile(assets []*asset.Asset, enabled []string) ([]OutputFile, error) {
	if err := r.ValidateEnabled(enabled); err != nil {
		return nil, err
	}

	var outputs []OutputFile
	for _, a := range assets {
		for _, id := range r.order {
			if !a.EmitsFor(id, enabled) {
				continue
			}
			compiled, err := r.adapters[id].Compile(a)
			if err != nil {
				return nil, fmt.Errorf("compiling %s for target %s: %w", a.ID, id, err)
			}
			outputs = append(outputs, compiled...)
		}
	}

	sort.Slice(outputs, func(i, j int) bool {
		if outputs[i].Scope != outputs[j].Scope {
			return outputs[i].Scope < outputs[j].Scope
		}
		return outputs[i].Path < outputs[j].Path
	})
	return outputs, nil
}
