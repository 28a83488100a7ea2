// Package prompt loads YAML prompt templates from the workspace and
// expands them with named arguments.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is one prompt template loaded from a YAML file. Placeholders
// in the body use {name} syntax; Args lists the required placeholders.
type Template struct {
	Name        string   `yaml:"-"`
	Description string   `yaml:"description"`
	Args        []string `yaml:"args"`
	Body        string   `yaml:"template"`
}

// Store reads templates from a directory of <name>.yaml files.
type Store struct {
	dir string
}

// NewStore creates a Store over the given template directory. The
// directory may not exist yet; List and Load treat that as empty.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// ErrNotFound is returned when the named template has no file.
var ErrNotFound = errors.New("template not found")

// Load reads one template by name.
func (s *Store) Load(name string) (*Template, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name+".yaml"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading template %s: %w", name, err)
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("template %s: invalid YAML: %w", name, err)
	}
	if t.Body == "" {
		return nil, fmt.Errorf("template %s: missing template body", name)
	}
	t.Name = name
	return &t, nil
}

// List returns all templates in the store, sorted by name.
func (s *Store) List() ([]Template, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	var out []Template
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".yaml")
		t, err := s.Load(name)
		if err != nil {
			continue // skip unreadable templates
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Expand substitutes args into the template body. All placeholders
// named in Args must be provided.
func (t *Template) Expand(args map[string]string) (string, error) {
	var missing []string
	for _, a := range t.Args {
		if _, ok := args[a]; !ok {
			missing = append(missing, a)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("template %s: missing arguments: %s", t.Name, strings.Join(missing, ", "))
	}

	out := t.Body
	for k, v := range args {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out, nil
}

// argPattern matches key="value" tokens; values may contain escaped quotes.
var argPattern = regexp.MustCompile(`(\w+)="((?:[^"\\]|\\.)*)"`)

// ParseArgs extracts key="value" tokens from an invocation string.
func ParseArgs(s string) map[string]string {
	args := make(map[string]string)
	for _, m := range argPattern.FindAllStringSubmatch(s, -1) {
		val := strings.ReplaceAll(m[2], `\"`, `"`)
		args[m[1]] = val
	}
	return args
}
