package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"gopkg.in/yaml.v3"

	"github.com/calvin-dev/calvin/internal/layer"
)

// ParseError carries file/line context for frontmatter failures, matching
// the {kind, file, line?} shape used throughout the pipeline's error
// taxonomy.
type ParseError struct {
	Kind    string // "NoFrontmatter" | "UnclosedFrontmatter" | "InvalidFrontmatter" | "MissingField" | "UnknownKind" | "DuplicateAssetId"
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Kind, e.Message)
}

type frontmatter struct {
	Description    string   `yaml:"description"`
	Kind           string   `yaml:"kind"`
	Scope          string   `yaml:"scope"`
	Targets        []string `yaml:"targets"`
	targetsField   bool     // set by hasTargetsKey
	Apply          string   `yaml:"apply"`
	PermissionMode string   `yaml:"permission-mode"`
	AllowedTools   []string `yaml:"allowed-tools"`
}

// splitFrontmatter separates a leading "---\n...\n---\n" YAML block from the
// remaining markdown body.
func splitFrontmatter(file string, content []byte) (raw string, body string, err error) {
	text := string(content)
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != "---" {
		return "", "", &ParseError{Kind: "NoFrontmatter", File: file, Line: 1, Message: "file must begin with a '---' frontmatter fence"}
	}

	endIdx := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r") == "---" {
			endIdx = i
			break
		}
	}
	if endIdx == -1 {
		return "", "", &ParseError{Kind: "UnclosedFrontmatter", File: file, Line: 1, Message: "frontmatter fence was never closed with a second '---'"}
	}

	raw = strings.Join(lines[1:endIdx], "\n")
	body = strings.Join(lines[endIdx+1:], "\n")
	body = strings.TrimPrefix(body, "\n")
	return raw, body, nil
}

func hasTargetsKey(raw string) bool {
	var generic map[string]interface{}
	if err := yaml.Unmarshal([]byte(raw), &generic); err != nil {
		return false
	}
	_, ok := generic["targets"]
	return ok
}

// ParseFile parses one asset file (not a SKILL.md — see ParseSkill for
// that), deriving id from the filename stem and kind from dirHint when the
// frontmatter omits it.
func ParseFile(l layer.Layer, absPath, relPath, dirHint string) (*Asset, error) {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	raw, body, err := splitFrontmatter(absPath, content)
	if err != nil {
		return nil, err
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, &ParseError{Kind: "InvalidFrontmatter", File: absPath, Line: 1, Message: err.Error()}
	}
	fm.targetsField = hasTargetsKey(raw)

	if strings.TrimSpace(fm.Description) == "" {
		return nil, &ParseError{Kind: "MissingField", File: absPath, Message: "frontmatter field 'description' is required and must be non-empty"}
	}

	kind, err := resolveKind(fm.Kind, dirHint, absPath)
	if err != nil {
		return nil, err
	}

	scope := ScopeProject
	if fm.Scope == string(ScopeUser) {
		scope = ScopeUser
	}

	stem := strings.TrimSuffix(filepath.Base(relPath), filepath.Ext(relPath))
	id := NormalizeID(stem)

	a := &Asset{
		ID:              id,
		Kind:            kind,
		Scope:           scope,
		Description:     fm.Description,
		Apply:           fm.Apply,
		PermissionMode:  fm.PermissionMode,
		AllowedTools:    fm.AllowedTools,
		Body:            body,
		SourceLayer:     l.Type,
		SourceLayerPath: l.ResolvedPath,
		SourcePath:      absPath,
	}
	if fm.targetsField {
		a.Targets = fm.Targets
		a.TargetsAbsent = false
	} else {
		a.TargetsAbsent = true
	}
	return a, nil
}

func resolveKind(explicit, dirHint, file string) (Kind, error) {
	if explicit != "" {
		return ParseKind(explicit)
	}
	if k, ok := KindFromDir(dirHint); ok {
		return k, nil
	}
	return "", &ParseError{Kind: "UnknownKind", File: file, Message: fmt.Sprintf("cannot infer 'kind' from containing directory %q and frontmatter omits it", dirHint)}
}

// ParseSkill parses a skills/<id>/SKILL.md plus its supplemental files.
func ParseSkill(l layer.Layer, skillDir, skillID string) (*Asset, error) {
	smPath := filepath.Join(skillDir, "SKILL.md")
	a, err := ParseFile(l, smPath, skillID+".md", "skills")
	if err != nil {
		return nil, err
	}
	a.ID = NormalizeID(skillID)
	a.Kind = KindSkill

	// Everything under the skill directory except SKILL.md travels with the
	// skill, subdirectories and binaries included.
	err = filepath.Walk(skillDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(skillDir, path)
		if err != nil {
			return err
		}
		if rel == "SKILL.md" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		a.Supplementals = append(a.Supplementals, Supplemental{
			RelPath:  filepath.ToSlash(rel),
			Content:  content,
			IsBinary: looksBinary(content),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func looksBinary(content []byte) bool {
	limit := len(content)
	if limit > 8000 {
		limit = 8000
	}
	for _, b := range content[:limit] {
		if b == 0 {
			return true
		}
	}
	return false
}

// WalkLayer discovers and parses every asset under one layer root,
// respecting a .calvinignore and the hidden-directory/README.md
// conventions.
func WalkLayer(l layer.Layer) ([]*Asset, error) {
	matcher := loadIgnore(l.ResolvedPath)

	var assets []*Asset

	topEntries, err := os.ReadDir(l.ResolvedPath)
	if err != nil {
		return nil, err
	}

	for _, top := range topEntries {
		if strings.HasPrefix(top.Name(), ".") {
			continue
		}
		if !top.IsDir() {
			// Root-level assets are allowed but must declare their kind in
			// frontmatter, since there is no directory to infer it from.
			name := top.Name()
			if !strings.HasSuffix(name, ".md") || name == "README.md" {
				continue
			}
			if matcher != nil && matcher.MatchesPath(name) {
				continue
			}
			a, err := ParseFile(l, filepath.Join(l.ResolvedPath, name), name, "")
			if err != nil {
				return nil, err
			}
			assets = append(assets, a)
			continue
		}
		dirHint := top.Name()
		dirPath := filepath.Join(l.ResolvedPath, dirHint)

		if dirHint == "skills" {
			skillDirs, err := os.ReadDir(dirPath)
			if err != nil {
				return nil, err
			}
			for _, sd := range skillDirs {
				if !sd.IsDir() {
					continue
				}
				rel := filepath.Join(dirHint, sd.Name(), "SKILL.md")
				if matcher != nil && matcher.MatchesPath(rel) {
					continue
				}
				a, err := ParseSkill(l, filepath.Join(dirPath, sd.Name()), sd.Name())
				if err != nil {
					return nil, err
				}
				assets = append(assets, a)
			}
			continue
		}

		files, err := os.ReadDir(dirPath)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") || f.Name() == "README.md" {
				continue
			}
			rel := filepath.Join(dirHint, f.Name())
			if matcher != nil && matcher.MatchesPath(rel) {
				continue
			}
			a, err := ParseFile(l, filepath.Join(dirPath, f.Name()), rel, dirHint)
			if err != nil {
				return nil, err
			}
			assets = append(assets, a)
		}
	}

	return assets, nil
}

func loadIgnore(layerRoot string) *gitignore.GitIgnore {
	path := filepath.Join(layerRoot, ".calvinignore")
	m, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return m
}
