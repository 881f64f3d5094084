package target

import (
	"github.com/calvin-dev/calvin/internal/asset"
)

// CopilotAdapter lays out assets under .github/ for GitHub Copilot.
//
//	policy            -> .github/instructions/<id>.instructions.md
//	action | command  -> .github/prompts/<id>.prompt.md
//	agent (fallback)  -> .github/chatmodes/<id>.chatmode.md
//	skill (fallback)  -> .github/prompts/<id>.prompt.md (flattened)
type CopilotAdapter struct{}

func (c *CopilotAdapter) ID() string { return "copilot" }

func (c *CopilotAdapter) Capabilities() Capabilities { return Capabilities{} }

func (c *CopilotAdapter) Compile(a *asset.Asset) ([]OutputFile, error) {
	switch a.Kind {
	case asset.KindPolicy:
		fm := &fmDoc{}
		fm.set("description", a.Description)
		if a.Apply != "" {
			fm.set("applyTo", a.Apply)
		} else {
			fm.set("applyTo", "**")
		}
		out, err := newOutput(".github/instructions/"+a.ID+".instructions.md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindAction, asset.KindCommand:
		fm := &fmDoc{}
		fm.set("description", a.Description)
		out, err := newOutput(".github/prompts/"+a.ID+".prompt.md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindAgent:
		fm := &fmDoc{}
		fm.set("name", a.ID)
		fm.set("description", a.Description)
		out, err := newOutput(".github/chatmodes/"+a.ID+".chatmode.md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindSkill:
		out, err := flattenSkill(a, ".github/prompts/"+a.ID+".prompt.md", true)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil
	}
	return nil, nil
}
