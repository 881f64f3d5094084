package target

import (
	"github.com/calvin-dev/calvin/internal/asset"
)

// CursorAdapter lays out assets under .cursor/.
//
//	policy            -> .cursor/rules/<id>/RULE.md
//	action | command  -> .cursor/commands/<id>.md
//	agent (fallback)  -> .cursor/commands/<id>.md
//	skill (fallback)  -> .cursor/commands/<id>.md (flattened)
type CursorAdapter struct{}

func (c *CursorAdapter) ID() string { return "cursor" }

func (c *CursorAdapter) Capabilities() Capabilities { return Capabilities{} }

func (c *CursorAdapter) Compile(a *asset.Asset) ([]OutputFile, error) {
	switch a.Kind {
	case asset.KindPolicy:
		fm := &fmDoc{}
		fm.set("description", a.Description)
		if a.Apply != "" {
			fm.setRaw("globs", a.Apply)
			fm.setRaw("alwaysApply", "false")
		} else {
			fm.setRaw("alwaysApply", "true")
		}
		out, err := newOutput(".cursor/rules/"+a.ID+"/RULE.md", markdownDoc(fm, a.Body), false, a)
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
		out, err := newOutput(".cursor/commands/"+a.ID+".md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindSkill:
		out, err := flattenSkill(a, ".cursor/commands/"+a.ID+".md", true)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil
	}
	return nil, nil
}
