package target

import (
	"github.com/calvin-dev/calvin/internal/asset"
)

// VSCodeAdapter lays out assets as VS Code prompt files under .vscode/.
//
//	policy | action | command -> .vscode/prompts/<id>.prompt.md
//	agent (fallback)          -> .vscode/prompts/<id>.prompt.md (mode: agent)
//	skill (fallback)          -> .vscode/prompts/<id>.prompt.md (flattened)
type VSCodeAdapter struct{}

func (v *VSCodeAdapter) ID() string { return "vscode" }

func (v *VSCodeAdapter) Capabilities() Capabilities { return Capabilities{} }

func (v *VSCodeAdapter) Compile(a *asset.Asset) ([]OutputFile, error) {
	rel := ".vscode/prompts/" + a.ID + ".prompt.md"

	if a.Kind == asset.KindSkill {
		out, err := flattenSkill(a, rel, true)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil
	}

	fm := &fmDoc{}
	fm.set("description", a.Description)
	if a.Kind == asset.KindAgent {
		fm.set("name", a.ID)
		fm.set("mode", "agent")
	}
	out, err := newOutput(rel, markdownDoc(fm, a.Body), false, a)
	if err != nil {
		return nil, err
	}
	return []OutputFile{out}, nil
}
