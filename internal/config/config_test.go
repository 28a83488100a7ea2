package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := defaults()
	if d.Agent.Model != "moonshotai/kimi-k2" {
		t.Errorf("expected default model 'moonshotai/kimi-k2', got %q", d.Agent.Model)
	}
	if d.Agent.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("expected default base URL, got %q", d.Agent.BaseURL)
	}
	if d.Agent.APIKey != "" {
		t.Errorf("expected empty default API key")
	}
	if d.EmbeddingModel != "openai/text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %q", d.EmbeddingModel)
	}
}

func TestMergeFromFile_EmbeddingModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("embedding_model: custom/embedder\n"), 0o644)

	cfg := defaults()
	if err := mergeFromFile(&cfg, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EmbeddingModel != "custom/embedder" {
		t.Errorf("expected file override, got %q", cfg.EmbeddingModel)
	}
}

func TestMergeFromFile_NotExist(t *testing.T) {
	cfg := defaults()
	err := mergeFromFile(&cfg, "/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	// Config should remain at defaults.
	if cfg.Agent.Model != "moonshotai/kimi-k2" {
		t.Errorf("model should stay at default")
	}
}

func TestMergeFromFile_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte(`
agent:
  api_key: test-key-123
  model_name: custom-model
sub_agents:
  coder:
    model_name: small-model
`), 0644)

	cfg := defaults()
	err := mergeFromFile(&cfg, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Agent.APIKey != "test-key-123" {
		t.Errorf("expected api_key 'test-key-123', got %q", cfg.Agent.APIKey)
	}
	if cfg.Agent.Model != "custom-model" {
		t.Errorf("expected model 'custom-model', got %q", cfg.Agent.Model)
	}
	if cfg.Agent.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("base_url should stay at default, got %q", cfg.Agent.BaseURL)
	}
	if cfg.SubAgents["coder"].Model != "small-model" {
		t.Errorf("expected sub-agent model merged, got %q", cfg.SubAgents["coder"].Model)
	}
}

func TestMergeFromFile_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("agent: [\ninvalid:\n  - {\n"), 0644)

	cfg := defaults()
	err := mergeFromFile(&cfg, path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, ".captain"), 0755)
	os.WriteFile(filepath.Join(dir, ".captain", "config.yaml"),
		[]byte("agent:\n  api_key: file-key\n  model_name: file-model\n"), 0644)

	origDir, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(origDir)

	t.Setenv("HOME", dir) // keep the global layer out of the test
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("CAPTAIN_API_KEY", "env-key")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Agent.APIKey != "env-key" {
		t.Errorf("expected env var to override file; got api_key=%q", cfg.Agent.APIKey)
	}
	if cfg.Agent.Model != "file-model" {
		t.Errorf("expected model from file, got %q", cfg.Agent.Model)
	}
}

func TestLoad_CLIOverridesEverything(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, ".captain"), 0755)
	os.WriteFile(filepath.Join(dir, ".captain", "config.yaml"),
		[]byte("agent:\n  api_key: file-key\n  model_name: file-model\n"), 0644)

	origDir, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(origDir)

	t.Setenv("HOME", dir)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("CAPTAIN_API_KEY", "env-key")

	cfg, err := Load(Flags{Model: "cli-model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Agent.Model != "cli-model" {
		t.Errorf("expected CLI model to override; got %q", cfg.Agent.Model)
	}
	if cfg.Agent.APIKey != "env-key" {
		t.Errorf("expected env api key; got %q", cfg.Agent.APIKey)
	}
}

func TestLoad_ExplicitConfigFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	os.WriteFile(path, []byte("agent:\n  api_key: custom-key\n"), 0644)

	origDir, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(origDir)

	t.Setenv("HOME", dir)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("CAPTAIN_API_KEY", "")

	cfg, err := Load(Flags{ConfigPath: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Agent.APIKey != "custom-key" {
		t.Errorf("expected key from --config file, got %q", cfg.Agent.APIKey)
	}

	// A missing --config file is fatal, unlike the implicit layers.
	if _, err := Load(Flags{ConfigPath: filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Fatal("expected error for missing --config file")
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	dir := t.TempDir()

	origDir, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(origDir)

	t.Setenv("HOME", dir)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("CAPTAIN_API_KEY", "")

	_, err := Load(Flags{})
	if err == nil {
		t.Fatal("expected error for missing API key")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("expected helpful error message about the API key, got: %v", err)
	}
}

func TestLoad_DerivedPaths(t *testing.T) {
	dir := t.TempDir()

	origDir, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(origDir)

	t.Setenv("HOME", dir)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("CAPTAIN_API_KEY", "test-key")

	cfg, err := Load(Flags{Workspace: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Workspace != dir {
		t.Errorf("expected workspace %q, got %q", dir, cfg.Workspace)
	}
	if cfg.Output != filepath.Join(dir, ".captain", "transcript.md") {
		t.Errorf("unexpected default output path %q", cfg.Output)
	}
	if cfg.LogPath() != filepath.Join(dir, ".captain", "logs", "captain.log") {
		t.Errorf("unexpected log path %q", cfg.LogPath())
	}
}

func TestLoad_SubAgentInheritance(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, ".captain"), 0755)
	os.WriteFile(filepath.Join(dir, ".captain", "config.yaml"), []byte(`
agent:
  api_key: major-key
  model_name: major-model
  base_url: https://example.test/v1
sub_agents:
  researcher:
    system_prompt: You research things.
  coder:
    model_name: coder-model
    api_key: coder-key
`), 0644)

	origDir, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(origDir)

	t.Setenv("HOME", dir)
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("CAPTAIN_API_KEY", "")

	cfg, err := Load(Flags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := cfg.SubAgents["researcher"]
	if r.Model != "major-model" || r.APIKey != "major-key" || r.BaseURL != "https://example.test/v1" {
		t.Errorf("expected researcher to inherit major agent fields, got %#v", r)
	}
	c := cfg.SubAgents["coder"]
	if c.Model != "coder-model" || c.APIKey != "coder-key" {
		t.Errorf("expected coder overrides kept, got %#v", c)
	}
}

func TestLoad_WorkspaceMustExist(t *testing.T) {
	dir := t.TempDir()

	origDir, _ := os.Getwd()
	os.Chdir(dir)
	defer os.Chdir(origDir)

	t.Setenv("HOME", dir)
	t.Setenv("CAPTAIN_API_KEY", "test-key")

	if _, err := Load(Flags{Workspace: filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for nonexistent workspace")
	}
}
