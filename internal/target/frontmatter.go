package target

import (
	"strings"

	"github.com/calvin-dev/calvin/internal/escape"
)

// fmDoc accumulates YAML frontmatter lines in emission order. Adapters only
// ever emit flat scalar/list values, so a line builder is enough — no YAML
// encoder round-trip that could reorder keys between runs.
type fmDoc struct {
	lines []string
}

func (d *fmDoc) set(key, value string) {
	if value == "" {
		return
	}
	d.lines = append(d.lines, key+": "+escape.YAMLString(value))
}

// setRaw emits a value verbatim, for literals like booleans and Cursor glob
// lists that must not be quoted.
func (d *fmDoc) setRaw(key, value string) {
	d.lines = append(d.lines, key+": "+value)
}

func (d *fmDoc) setList(key string, values []string) {
	if len(values) == 0 {
		return
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = escape.YAMLString(v)
	}
	d.lines = append(d.lines, key+": ["+strings.Join(quoted, ", ")+"]")
}

func (d *fmDoc) render() string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, l := range d.lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString("---\n")
	return b.String()
}

// markdownDoc assembles frontmatter, body, and the trailing signature
// marker. The exact bytes returned here are what gets hashed and written;
// the single trailing newline is part of that identity.
func markdownDoc(fm *fmDoc, body string) []byte {
	var b strings.Builder
	if fm != nil {
		b.WriteString(fm.render())
		b.WriteString("\n")
	}
	b.WriteString(strings.TrimRight(body, "\n"))
	b.WriteString("\n\n")
	b.WriteString(SignatureMarkdown)
	b.WriteString("\n")
	return []byte(b.String())
}
