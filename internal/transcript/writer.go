// Package transcript persists streamed content to an append-style
// markdown file. Each save writes one complete section under a category
// heading; writes finish before the call returns so no content is lost
// on abrupt termination.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Categories accepted by Save. The tool_call category uses the
// structured SaveToolCall path instead.
const (
	CategoryThink          = "think"
	CategoryAnswer         = "answer"
	CategorySubAgentThink  = "sub_agent_think"
	CategorySubAgentAnswer = "sub_agent_answer"
	CategorySubAgent       = "sub_agent"
	CategoryToolCall       = "tool_call"
)

// headings maps categories to their markdown section titles.
var headings = map[string]string{
	CategoryThink:          "Thinking",
	CategoryAnswer:         "Answer",
	CategorySubAgentThink:  "Sub-Agent Thinking",
	CategorySubAgentAnswer: "Sub-Agent Answer",
	CategorySubAgent:       "Sub-Agent Output",
	CategoryToolCall:       "Tool Call",
}

// Writer appends categorized sections to a single output file.
type Writer struct {
	mu      sync.Mutex
	path    string
	session string
	stamped bool
}

// NewWriter creates a Writer targeting the given output path. The parent
// directory is created on first write, not here, so constructing a
// Writer never fails.
func NewWriter(path string) *Writer {
	return &Writer{
		path:    path,
		session: uuid.NewString(),
	}
}

// Path returns the output file path.
func (w *Writer) Path() string { return w.path }

// SaveText appends a text payload under the given category heading.
func (w *Writer) SaveText(category, text string) error {
	heading, ok := headings[category]
	if !ok {
		return fmt.Errorf("unknown transcript category %q", category)
	}
	return w.appendSection(heading, text)
}

// SaveToolCall appends a structured tool invocation record.
func (w *Writer) SaveToolCall(name, args string) error {
	body := fmt.Sprintf("**%s**\n\n```json\n%s\n```", name, args)
	return w.appendSection(headings[CategoryToolCall], body)
}

func (w *Writer) appendSection(heading, body string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer f.Close()

	if !w.stamped {
		header := fmt.Sprintf("\n---\n\n# Session %s (%s)\n", w.session, time.Now().Format(time.RFC3339))
		if _, err := f.WriteString(header); err != nil {
			return fmt.Errorf("writing transcript header: %w", err)
		}
		w.stamped = true
	}

	if _, err := f.WriteString(fmt.Sprintf("\n## %s\n\n%s\n", heading, body)); err != nil {
		return fmt.Errorf("writing transcript section: %w", err)
	}
	return f.Sync()
}
