package target

import (
	"strings"

	"github.com/calvin-dev/calvin/internal/asset"
)

// flattenSkill renders a skill as a single markdown document for targets
// without a native skill layout. The body is carried in full; supplemental
// files cannot be represented in a flat file, so they are listed by name
// rather than silently dropped.
func flattenSkill(a *asset.Asset, relPath string, withFrontmatter bool) (OutputFile, error) {
	var fm *fmDoc
	if withFrontmatter {
		fm = &fmDoc{}
		fm.set("description", a.Description)
		fm.setList("allowed-tools", a.AllowedTools)
	}

	body := a.Body
	if len(a.Supplementals) > 0 {
		var names []string
		for _, s := range a.Supplementals {
			names = append(names, s.RelPath)
		}
		body = strings.TrimRight(body, "\n") +
			"\n\nBundled files (not deployed for this tool): " + strings.Join(names, ", ") + "\n"
	}

	return newOutput(relPath, markdownDoc(fm, body), false, a)
}
