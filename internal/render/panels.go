// panels.go builds the styled blocks the renderer draws: bordered panels
// for content, tool activity, sub-agent banners, and errors.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Display caps. Truncation is display-only; persisted payloads keep
// their full length.
const (
	maxResultDisplay   = 1000
	maxTaskDisplay     = 200
	maxSubAgentPreview = 500
)

// truncateResult caps a tool result for panel display.
func truncateResult(s string) string {
	r := []rune(s)
	if len(r) <= maxResultDisplay {
		return s
	}
	return string(r[:maxResultDisplay]) + "\n... (truncated)"
}

// truncateEllipsis caps a string at max runes with a trailing ellipsis.
func truncateEllipsis(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// panel renders a bordered block with a styled heading line.
func (r *Renderer) panel(border, title lipgloss.Style, heading, body string) string {
	inner := title.Render(heading)
	if body != "" {
		inner += "\n" + body
	}
	if w := r.width - 2; w > 10 {
		border = border.Width(w)
	}
	return border.Render(inner)
}

// markdown renders text through glamour, falling back to the raw text
// when rendering fails.
func (r *Renderer) markdown(text string) string {
	if r.md == nil {
		return text
	}
	rendered, err := r.md.Render(text)
	if err != nil {
		return text
	}
	// glamour pads with newlines; trim to keep panels tight.
	return strings.Trim(rendered, "\n")
}

// invocationName prefixes nested tool names with their sub-agent label.
func invocationName(inv *Invocation) string {
	if inv.Agent != "" {
		return fmt.Sprintf("[%s] %s", inv.Agent, inv.Name)
	}
	return inv.Name
}

// thinkingPanel renders the accumulated thinking buffer as plain text.
func (r *Renderer) thinkingPanel(agent string) string {
	heading := "Model Thinking"
	if agent != "" {
		heading = agent + " Thinking"
	}
	return r.panel(r.theme.ThinkingBorder, r.theme.ThinkingTitle, heading, r.thinking.String())
}

// answerPanel renders the accumulated answer buffer as markdown.
func (r *Renderer) answerPanel(agent string) string {
	heading := "Model Answer"
	border, title := r.theme.AnswerBorder, r.theme.AnswerTitle
	if agent != "" {
		heading = agent + " Answer"
		border, title = r.theme.SubAgentBorder, r.theme.SubAgentTitle
	}
	return r.panel(border, title, heading, r.markdown(r.answer.String()))
}

// pendingToolsBlock renders all pending invocations, or "" when none.
func (r *Renderer) pendingToolsBlock() string {
	pending := r.tools.Pending()
	if len(pending) == 0 {
		return ""
	}

	panels := make([]string, 0, len(pending))
	for _, inv := range pending {
		body := r.theme.Dim.Render("Args: ") + r.theme.ToolArgs.Render(inv.Args) +
			"\n\n" + r.theme.ToolSpinner.Render("Processing...")
		panels = append(panels, r.panel(
			r.theme.ToolPendingBorder,
			r.theme.ToolPendingTitle,
			"Tool Call: "+invocationName(inv),
			body,
		))
	}
	return strings.Join(panels, "\n")
}

// toolDonePanel renders the permanent completion panel for an invocation.
func (r *Renderer) toolDonePanel(inv *Invocation) string {
	heading := invocationName(inv) + " - Complete"
	if inv.Agent != "" {
		heading = fmt.Sprintf("%s: %s - Complete", inv.Agent, inv.Name)
	}
	body := r.theme.Dim.Render("Args: ") + r.theme.ToolArgs.Render(inv.Args) +
		"\n\n" + r.theme.Dim.Render("Result:") + "\n" +
		r.theme.ToolResult.Render(truncateResult(inv.Result))
	return r.panel(r.theme.ToolDoneBorder, r.theme.ToolDoneTitle, heading, body)
}

// subAgentBanner renders the permanent start banner for a sub-agent.
func (r *Renderer) subAgentBanner(agent, task string) string {
	body := "Task: " + truncateEllipsis(task, maxTaskDisplay)
	return r.panel(r.theme.SubAgentBorder, r.theme.SubAgentTitle, "Sub Agent: "+agent, body)
}

// subAgentDonePanel renders the permanent completion panel with a
// truncated markdown preview of the sub-agent's final output.
func (r *Renderer) subAgentDonePanel(content string) string {
	preview := r.markdown(truncateEllipsis(content, maxSubAgentPreview))
	return r.panel(r.theme.ToolDoneBorder, r.theme.ToolDoneTitle, "Sub Agent Complete", preview)
}

// errorPanel renders a permanent error panel.
func (r *Renderer) errorPanel(heading, message string) string {
	return r.panel(r.theme.ErrorBorder, r.theme.ErrorTitle, heading, message)
}
