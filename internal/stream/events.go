// Package stream defines the typed event union produced by an agent turn
// and consumed by the renderer. Each event kind is a concrete struct with
// a marker method, so dispatch is a closed type switch.
package stream

// Event is the interface for all events yielded by an agent response
// stream. Events carrying a non-empty Agent label belong to a nested
// sub-agent; a zero label means the top-level agent.
type Event interface {
	streamEvent()
}

// Thinking carries a fragment of model reasoning text.
type Thinking struct {
	Content string
	Agent   string
}

// Answer carries a fragment of the model's answer text.
type Answer struct {
	Content string
	Agent   string
}

// ToolCall signals that a tool invocation has been requested.
// Args is the pretty-printed JSON arguments, resolved once at the
// event-construction boundary.
type ToolCall struct {
	ID    string
	Name  string
	Args  string
	Agent string
}

// ToolResult carries the outcome of a tool invocation. It may arrive
// before its matching ToolCall.
type ToolResult struct {
	ID      string
	Content string
	Agent   string
}

// SubAgentStart announces that a sub-agent has been spawned for a task.
type SubAgentStart struct {
	Agent string
	Task  string
}

// SubAgentEnd carries the full final output of a completed sub-agent.
type SubAgentEnd struct {
	Agent   string
	Content string
}

// Error is an explicit error event from the upstream stream. It is not
// fatal to the turn.
type Error struct {
	Message string
}

func (Thinking) streamEvent()      {}
func (Answer) streamEvent()        {}
func (ToolCall) streamEvent()      {}
func (ToolResult) streamEvent()    {}
func (SubAgentStart) streamEvent() {}
func (SubAgentEnd) streamEvent()   {}
func (Error) streamEvent()         {}
