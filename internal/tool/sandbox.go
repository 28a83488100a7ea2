package tool

import (
	"fmt"
	"path/filepath"
	"strings"
)

// resolveInWorkspace resolves path relative to the workspace root and
// rejects results that escape it.
func resolveInWorkspace(workspace, path string) (string, error) {
	resolved := path
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(workspace, resolved)
	}
	resolved = filepath.Clean(resolved)

	root := filepath.Clean(workspace)
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s is outside the workspace", path)
	}
	return resolved, nil
}
