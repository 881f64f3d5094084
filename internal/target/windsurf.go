package target

import (
	"github.com/calvin-dev/calvin/internal/asset"
)

// WindsurfAdapter lays out assets under .windsurf/.
//
//	policy            -> .windsurf/rules/<id>.md
//	action | command  -> .windsurf/workflows/<id>.md
//	agent (fallback)  -> .windsurf/workflows/<id>.md
//	skill (fallback)  -> .windsurf/workflows/<id>.md (flattened)
type WindsurfAdapter struct{}

func (w *WindsurfAdapter) ID() string { return "windsurf" }

func (w *WindsurfAdapter) Capabilities() Capabilities { return Capabilities{} }

func (w *WindsurfAdapter) Compile(a *asset.Asset) ([]OutputFile, error) {
	switch a.Kind {
	case asset.KindPolicy:
		fm := &fmDoc{}
		fm.set("description", a.Description)
		if a.Apply != "" {
			fm.set("trigger", "glob")
			fm.set("globs", a.Apply)
		} else {
			fm.set("trigger", "always_on")
		}
		out, err := newOutput(".windsurf/rules/"+a.ID+".md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindAction, asset.KindCommand, asset.KindAgent:
		fm := &fmDoc{}
		if a.Kind == asset.KindAgent {
			fm.set("name", a.ID)
		}
		fm.set("description", a.Description)
		out, err := newOutput(".windsurf/workflows/"+a.ID+".md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindSkill:
		out, err := flattenSkill(a, ".windsurf/workflows/"+a.ID+".md", true)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil
	}
	return nil, nil
}
