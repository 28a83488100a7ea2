// Package agent implements the conversation loop that sends messages
// to the LLM, handles tool calls, and manages conversation history.
// Each turn is surfaced as an ordered sequence of stream events that
// the renderer consumes.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gavinyap/captain/internal/llm"
	"github.com/gavinyap/captain/internal/stream"
	"github.com/gavinyap/captain/internal/tool"
)

// specialTokens are model-specific tokens that open-source models (via
// OpenRouter) sometimes emit as regular content. They must be stripped.
var specialTokens = []string{
	"<|tool_call_end|>",
	"<|tool_call_start|>",
	"<|function|>",
	"<|tool_sep|>",
	"<|im_end|>",
}

// Agent orchestrates a conversation with an LLM, dispatching tool calls
// and maintaining history. Events flow through emit; tool call ids come
// from newID, a per-turn counter shared with any spawned sub-agents so
// ids stay unique within the turn.
type Agent struct {
	client   *llm.Client
	registry *tool.Registry
	model    string
	label    string // empty for the major agent
	history  []llm.Message
	logger   *zap.Logger

	emit  func(stream.Event)
	newID func() string
}

// Options configures a new Agent.
type Options struct {
	Client       *llm.Client
	Registry     *tool.Registry
	Model        string
	SystemPrompt string
	Label        string
	Logger       *zap.Logger
}

// New creates an Agent with the given options.
// If SystemPrompt is non-empty, it is prepended to the conversation history.
func New(opts Options) *Agent {
	a := &Agent{
		client:   opts.Client,
		registry: opts.Registry,
		model:    opts.Model,
		label:    opts.Label,
		logger:   opts.Logger,
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}

	if opts.SystemPrompt != "" {
		a.history = append(a.history, llm.Message{
			Role:    "system",
			Content: opts.SystemPrompt,
		})
	}

	return a
}

// Send processes a user message through the conversation loop and
// returns the event stream for the turn. The channel is closed when the
// turn completes; failures arrive as a final stream.Error event. Tool
// call ids restart at "1" every turn.
func (a *Agent) Send(ctx context.Context, userMessage string) <-chan stream.Event {
	events := make(chan stream.Event, 64)

	seq := 0
	a.newID = func() string {
		seq++
		return strconv.Itoa(seq)
	}
	a.emit = func(ev stream.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	a.history = append(a.history, llm.Message{
		Role:    "user",
		Content: userMessage,
	})

	go func() {
		defer close(events)
		if _, err := a.loop(ctx); err != nil {
			a.logger.Error("agent turn failed", zap.Error(err))
			a.emit(stream.Error{Message: err.Error()})
		}
	}()

	return events
}

// run executes a task synchronously on the caller's goroutine, emitting
// events through the already-wired emit function. Used for sub-agents.
func (a *Agent) run(ctx context.Context, userMessage string) (string, error) {
	a.history = append(a.history, llm.Message{
		Role:    "user",
		Content: userMessage,
	})
	return a.loop(ctx)
}

// loop runs the core agent loop: send to LLM, handle tool calls, repeat
// until the model produces a text-only response. Returns the final
// answer text.
func (a *Agent) loop(ctx context.Context) (string, error) {
	for {
		// Check for context cancellation before each iteration.
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("agent cancelled: %w", err)
		}

		req := llm.ChatCompletionRequest{
			Model:    a.model,
			Messages: a.history,
			Tools:    a.convertToolDefs(),
		}

		// Stream the response, emitting thinking and answer deltas and
		// filtering out tool-call content and special tokens.
		msg, err := a.client.ChatCompletionStream(ctx, req, func(chunk llm.ChatCompletionChunk) {
			for _, choice := range chunk.Choices {
				if choice.Delta.Reasoning != "" {
					a.emit(stream.Thinking{Content: choice.Delta.Reasoning, Agent: a.label})
				}

				// Skip content when the chunk also carries tool call deltas;
				// some open-source models send tool call arguments as content.
				if len(choice.Delta.ToolCalls) > 0 {
					continue
				}

				content := stripSpecialTokens(choice.Delta.Content)
				if content != "" {
					a.emit(stream.Answer{Content: content, Agent: a.label})
				}
			}
		})
		if err != nil {
			return "", fmt.Errorf("LLM request failed: %w", err)
		}

		a.history = append(a.history, *msg)

		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		for _, tc := range msg.ToolCalls {
			id := a.newID()
			a.emit(stream.ToolCall{
				ID:    id,
				Name:  tc.Function.Name,
				Args:  stream.PrettyArgs(json.RawMessage(tc.Function.Arguments)),
				Agent: a.label,
			})

			result := a.executeTool(ctx, tc)

			a.emit(stream.ToolResult{ID: id, Content: result, Agent: a.label})
			a.history = append(a.history, llm.Message{
				Role:       "tool",
				ToolCallID: tc.ID,
				Name:       tc.Function.Name,
				Content:    result,
			})
		}

		// Loop back to send tool results to the model.
	}
}

// executeTool handles a single tool call: lookup and execution.
func (a *Agent) executeTool(ctx context.Context, tc llm.ToolCall) string {
	t := a.registry.Get(tc.Function.Name)
	if t == nil {
		a.logger.Warn("unknown tool requested", zap.String("tool", tc.Function.Name))
		return fmt.Sprintf("Unknown tool: %s", tc.Function.Name)
	}

	a.logger.Debug("executing tool",
		zap.String("tool", tc.Function.Name),
		zap.String("agent", a.label))

	result, err := t.Execute(ctx, json.RawMessage(tc.Function.Arguments))
	if err != nil {
		a.logger.Warn("tool failed", zap.String("tool", tc.Function.Name), zap.Error(err))
		return fmt.Sprintf("Tool error: %v", err)
	}

	return result
}

// convertToolDefs converts tool.ToolDef to llm.ToolDef.
func (a *Agent) convertToolDefs() []llm.ToolDef {
	defs := a.registry.Definitions()
	llmDefs := make([]llm.ToolDef, len(defs))
	for i, d := range defs {
		llmDefs[i] = llm.ToolDef{
			Type: d.Type,
			Function: llm.FunctionDef{
				Name:        d.Function.Name,
				Description: d.Function.Description,
				Parameters:  d.Function.Parameters,
			},
		}
	}
	return llmDefs
}

// stripSpecialTokens removes known model-specific special tokens from content.
func stripSpecialTokens(s string) string {
	for _, tok := range specialTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	return s
}
