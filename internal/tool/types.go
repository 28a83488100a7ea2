// Package tool provides tool registration, dispatch, and the standard
// set of built-in tools. All file tools resolve paths inside the
// configured workspace and refuse to escape it.
package tool

import (
	"context"
	"encoding/json"
)

// Tool is the interface all tools must implement. Execute returns tool
// output as the first value even for operational failures; the error is
// reserved for faults that should abort the agent turn.
type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, params json.RawMessage) (string, error)
}

// ToolDef represents a tool definition in OpenAI function calling format.
type ToolDef struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef describes a function for the LLM's tool use.
type FunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}
