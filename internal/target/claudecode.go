package target

import (
	"github.com/calvin-dev/calvin/internal/asset"
)

// ClaudeCodeAdapter lays out assets under .claude/. It is the only target
// with native agent and skill layouts.
//
//	policy | action | command -> .claude/commands/<id>.md
//	agent                     -> .claude/agents/<id>.md
//	skill                     -> .claude/skills/<id>/SKILL.md + supplementals
type ClaudeCodeAdapter struct{}

func (c *ClaudeCodeAdapter) ID() string { return "claude-code" }

func (c *ClaudeCodeAdapter) Capabilities() Capabilities {
	return Capabilities{NativeAgents: true, NativeSkills: true}
}

func (c *ClaudeCodeAdapter) Compile(a *asset.Asset) ([]OutputFile, error) {
	switch a.Kind {
	case asset.KindPolicy, asset.KindAction, asset.KindCommand:
		fm := &fmDoc{}
		fm.set("description", a.Description)
		out, err := newOutput(".claude/commands/"+a.ID+".md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindAgent:
		fm := &fmDoc{}
		fm.set("name", a.ID)
		fm.set("description", a.Description)
		// The source key is kebab-case; Claude's consumer wants camelCase.
		if a.PermissionMode != "" {
			fm.set("permissionMode", a.PermissionMode)
		}
		out, err := newOutput(".claude/agents/"+a.ID+".md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		return []OutputFile{out}, nil

	case asset.KindSkill:
		fm := &fmDoc{}
		fm.set("name", a.ID)
		fm.set("description", a.Description)
		fm.setList("allowed-tools", a.AllowedTools)
		main, err := newOutput(".claude/skills/"+a.ID+"/SKILL.md", markdownDoc(fm, a.Body), false, a)
		if err != nil {
			return nil, err
		}
		outputs := []OutputFile{main}
		for _, s := range a.Supplementals {
			out, err := newOutput(".claude/skills/"+a.ID+"/"+s.RelPath, s.Content, s.IsBinary, a)
			if err != nil {
				return nil, err
			}
			outputs = append(outputs, out)
		}
		return outputs, nil
	}
	return nil, nil
}
