package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAndExpand(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "review", `
description: Review a file
args:
  - file
  - focus
template: |
  Review {file} with a focus on {focus}.
`)

	s := NewStore(dir)
	tmpl, err := s.Load("review")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tmpl.Description != "Review a file" {
		t.Errorf("unexpected description %q", tmpl.Description)
	}

	out, err := tmpl.Expand(map[string]string{"file": "main.go", "focus": "errors"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Review main.go with a focus on errors.") {
		t.Errorf("unexpected expansion %q", out)
	}
}

func TestExpand_MissingRequiredArg(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "review", "args: [file]\ntemplate: \"Review {file}\"\n")

	tmpl, err := NewStore(dir).Load("review")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = tmpl.Expand(map[string]string{})
	if err == nil {
		t.Fatal("expected error for missing argument")
	}
	if !strings.Contains(err.Error(), "file") {
		t.Errorf("expected missing arg named in error, got %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.Load("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// Path traversal in a template name is treated as not found.
	if _, err := s.Load("../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for traversal, got %v", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "zeta", "template: z\n")
	writeTemplate(t, dir, "alpha", "template: a\n")
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a template"), 0644)

	list, err := NewStore(dir).List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(list))
	}
	if list[0].Name != "alpha" || list[1].Name != "zeta" {
		t.Errorf("expected sorted names, got %q, %q", list[0].Name, list[1].Name)
	}
}

func TestList_MissingDirIsEmpty(t *testing.T) {
	list, err := NewStore(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d", len(list))
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{"single", `file="main.go"`, map[string]string{"file": "main.go"}},
		{"multiple", `file="a.go" focus="speed"`, map[string]string{"file": "a.go", "focus": "speed"}},
		{"escaped quote", `msg="say \"hi\""`, map[string]string{"msg": `say "hi"`}},
		{"empty value", `note=""`, map[string]string{"note": ""}},
		{"none", "just words", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseArgs(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d args, got %d (%v)", len(tt.want), len(got), got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("arg %q: expected %q, got %q", k, v, got[k])
				}
			}
		})
	}
}
