package target

import (
	"strings"

	"github.com/calvin-dev/calvin/internal/asset"
	"github.com/calvin-dev/calvin/internal/escape"
)

// CodexAdapter lays out assets under .codex/. Codex prompts carry no
// frontmatter; agents get a TOML descriptor next to their prompt body.
//
//	policy | action | command -> .codex/prompts/<id>.md
//	agent                     -> .codex/agents/<id>.toml + .codex/agents/<id>.md
//	skill (fallback)          -> .codex/prompts/<id>.md (flattened)
type CodexAdapter struct{}

func (c *CodexAdapter) ID() string { return "codex" }

func (c *CodexAdapter) Capabilities() Capabilities { return Capabilities{} }

func (c *CodexAdapter) Compile(a *asset.Asset) ([]OutputFile, error) {
	switch a.Kind {
	case asset.KindPolicy, asset.KindAction, asset.KindCommand:
		out, err := newOutput(".codex/prompts/"+a.ID+".md", markdownDoc(nil, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindAgent:
		var b strings.Builder
		b.WriteString(SignatureTOML + "\n")
		b.WriteString(`name = "` + escape.TOMLString(a.ID) + `"` + "\n")
		b.WriteString(`description = "` + escape.TOMLString(a.Description) + `"` + "\n")
		b.WriteString(`prompt_file = "` + escape.TOMLString(a.ID+".md") + `"` + "\n")
		desc, err := newOutput(".codex/agents/"+a.ID+".toml", []byte(b.String()), false, a)
		if err != nil {
			return nil, err
		}
		prompt, err := newOutput(".codex/agents/"+a.ID+".md", markdownDoc(nil, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{desc, prompt}, nil

	case asset.KindSkill:
		out, err := flattenSkill(a, ".codex/prompts/"+a.ID+".md", false)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil
	}
	return nil, nil
}
