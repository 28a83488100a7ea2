package shell

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// SysCommands caches the executable names found on PATH. The scan runs
// once, on first use; Refresh forces a rescan.
type SysCommands struct {
	mu       sync.Mutex
	once     bool
	path     string
	commands []string
}

// NewSysCommands creates a cache over the given PATH string. An empty
// path uses the process environment.
func NewSysCommands(path string) *SysCommands {
	if path == "" {
		path = os.Getenv("PATH")
	}
	return &SysCommands{path: path}
}

// List returns the sorted command names, scanning PATH on first call.
func (s *SysCommands) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.once {
		s.commands = s.scan()
		s.once = true
	}
	return s.commands
}

// Refresh rescans PATH immediately.
func (s *SysCommands) Refresh() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = s.scan()
	s.once = true
	return s.commands
}

func (s *SysCommands) scan() []string {
	seen := make(map[string]bool)
	for _, dir := range filepath.SplitList(s.path) {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil || info.Mode()&0o111 == 0 {
				continue
			}
			seen[e.Name()] = true
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Matching returns the cached commands with the given prefix, used for
// completion hints after the shell keyword.
func (s *SysCommands) Matching(prefix string) []string {
	var out []string
	for _, c := range s.List() {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
