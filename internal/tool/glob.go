package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const maxGlobResults = 1000

// GlobTool finds workspace files matching a glob pattern. Results are
// reported relative to the workspace root.
type GlobTool struct {
	Workspace string
}

type globParams struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
}

func (t *GlobTool) Name() string        { return "glob" }
func (t *GlobTool) Description() string { return "Find workspace files matching a glob pattern" }

func (t *GlobTool) Schema() json.RawMessage {
	return json.RawMessage(`{
	"type": "object",
	"properties": {
		"pattern": {
			"type": "string",
			"description": "Glob pattern to match files (e.g., '**/*.go', 'src/*.ts')"
		},
		"path": {
			"type": "string",
			"description": "Directory to search in, relative to the workspace root"
		}
	},
	"required": ["pattern"]
}`)
}

func (t *GlobTool) Execute(_ context.Context, params json.RawMessage) (string, error) {
	var p globParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Sprintf("Error: invalid parameters: %v", err), nil
	}
	if p.Pattern == "" {
		return "Error: pattern is required", nil
	}

	dir := p.Path
	if dir == "" {
		dir = "."
	}
	root, err := resolveInWorkspace(t.Workspace, dir)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), nil
	}

	var matches []string
	if strings.Contains(p.Pattern, "**") {
		matches = recursiveGlob(root, p.Pattern)
	} else {
		matches, err = filepath.Glob(filepath.Join(root, p.Pattern))
		if err != nil {
			return fmt.Sprintf("Error: invalid pattern: %v", err), nil
		}
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No files matched the pattern: %s", p.Pattern), nil
	}

	for i, m := range matches {
		if rel, err := filepath.Rel(t.Workspace, m); err == nil {
			matches[i] = rel
		}
	}
	sort.Strings(matches)

	truncated := false
	if len(matches) > maxGlobResults {
		matches = matches[:maxGlobResults]
		truncated = true
	}

	result := strings.Join(matches, "\n")
	if truncated {
		result += fmt.Sprintf("\n\n[truncated: showing first %d of more results]", maxGlobResults)
	}
	return result, nil
}

// recursiveGlob handles patterns containing **.
func recursiveGlob(root, pattern string) []string {
	parts := strings.SplitN(pattern, "**", 2)
	prefix := parts[0]
	suffix := ""
	if len(parts) > 1 {
		suffix = strings.TrimPrefix(parts[1], "/")
		suffix = strings.TrimPrefix(suffix, string(filepath.Separator))
	}

	if prefix != "" {
		prefix = strings.TrimSuffix(prefix, "/")
		prefix = strings.TrimSuffix(prefix, string(filepath.Separator))
		root = filepath.Join(root, prefix)
	}

	var matches []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors
		}
		if len(matches) > maxGlobResults {
			return filepath.SkipAll
		}

		// Skip hidden directories
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && path != root {
			return filepath.SkipDir
		}

		if d.IsDir() {
			return nil
		}

		if suffix == "" {
			matches = append(matches, path)
			return nil
		}

		if matched, _ := filepath.Match(suffix, d.Name()); matched {
			matches = append(matches, path)
			return nil
		}

		// Also try matching against the path relative to root
		if rel, err := filepath.Rel(root, path); err == nil {
			if matched, _ := filepath.Match(suffix, rel); matched {
				matches = append(matches, path)
			}
		}

		return nil
	})
	return matches
}
