package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/gavinyap/captain/internal/config"
	"github.com/gavinyap/captain/internal/llm"
	"github.com/gavinyap/captain/internal/stream"
)

// maxSpawnPreview caps the sub-agent summary returned to the parent model.
const maxSpawnPreview = 500

// SpawnAgentTool creates and runs a sub-agent with a focused task. The
// sub-agent shares the parent's event stream and tool call id counter,
// so its activity renders labeled inside the parent's turn.
type SpawnAgentTool struct {
	parent   *Agent
	profiles map[string]config.AgentConfig
}

// NewSpawnAgentTool creates a spawn_agent tool bound to the parent
// agent. profiles holds the named sub-agent configurations; an unnamed
// spawn inherits the parent's model and client.
func NewSpawnAgentTool(parent *Agent, profiles map[string]config.AgentConfig) *SpawnAgentTool {
	return &SpawnAgentTool{
		parent:   parent,
		profiles: profiles,
	}
}

type spawnAgentParams struct {
	Task  string `json:"task"`
	Agent string `json:"agent"`
}

func (t *SpawnAgentTool) Name() string { return "spawn_agent" }
func (t *SpawnAgentTool) Description() string {
	return "Spawn a sub-agent to work on a focused task"
}

func (t *SpawnAgentTool) Schema() json.RawMessage {
	return json.RawMessage(`{
	"type": "object",
	"properties": {
		"task": {
			"type": "string",
			"description": "The task description for the sub-agent"
		},
		"agent": {
			"type": "string",
			"description": "Name of a configured sub-agent profile (optional)"
		}
	},
	"required": ["task"]
}`)
}

func (t *SpawnAgentTool) Execute(ctx context.Context, params json.RawMessage) (string, error) {
	var p spawnAgentParams
	if err := json.Unmarshal(params, &p); err != nil {
		return fmt.Sprintf("Error: invalid parameters: %v", err), nil
	}
	if p.Task == "" {
		return "Error: task is required", nil
	}

	label := p.Agent
	if label == "" {
		label = "SubAgent"
	}

	client, model, systemPrompt := t.resolveProfile(p.Agent)
	if client == nil {
		return fmt.Sprintf("Error: unknown sub-agent profile: %s", p.Agent), nil
	}
	if systemPrompt == "" {
		systemPrompt = "You are a sub-agent. Complete the following task:\n\n" + p.Task +
			"\n\nWhen done, provide a concise summary of what you did and the results."
	}

	t.parent.logger.Info("spawning sub-agent",
		zap.String("agent", label),
		zap.String("model", model))

	t.parent.emit(stream.SubAgentStart{Agent: label, Task: p.Task})

	child := New(Options{
		Client:       client,
		Registry:     t.parent.registry,
		Model:        model,
		SystemPrompt: systemPrompt,
		Label:        label,
		Logger:       t.parent.logger,
	})
	// Share the parent's event stream and id counter.
	child.emit = t.parent.emit
	child.newID = t.parent.newID

	output, err := child.run(ctx, p.Task)
	if err != nil {
		t.parent.emit(stream.SubAgentEnd{Agent: label, Content: fmt.Sprintf("Sub-agent error: %v", err)})
		return fmt.Sprintf("Sub-agent error: %v", err), nil
	}
	if output == "" {
		output = "Sub-agent completed with no output"
	}

	t.parent.emit(stream.SubAgentEnd{Agent: label, Content: output})

	if r := []rune(output); len(r) > maxSpawnPreview {
		output = string(r[:maxSpawnPreview]) + "..."
	}
	return output, nil
}

// resolveProfile picks the client, model, and system prompt for the
// requested profile name. An empty name inherits the parent's setup.
func (t *SpawnAgentTool) resolveProfile(name string) (*llm.Client, string, string) {
	if name == "" {
		return t.parent.client, t.parent.model, ""
	}
	profile, ok := t.profiles[name]
	if !ok {
		return nil, "", ""
	}
	client := llm.NewClient(profile.APIKey)
	if profile.BaseURL != "" {
		client.SetBaseURL(profile.BaseURL)
	}
	return client, profile.Model, profile.SystemPrompt
}
