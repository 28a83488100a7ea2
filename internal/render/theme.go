package render

import "github.com/charmbracelet/lipgloss"

// Theme holds all lipgloss styles used by the renderer's panels.
type Theme struct {
	ThinkingBorder lipgloss.Style
	ThinkingTitle  lipgloss.Style
	AnswerBorder   lipgloss.Style
	AnswerTitle    lipgloss.Style

	ToolPendingBorder lipgloss.Style
	ToolPendingTitle  lipgloss.Style
	ToolDoneBorder    lipgloss.Style
	ToolDoneTitle     lipgloss.Style
	ToolArgs          lipgloss.Style
	ToolResult        lipgloss.Style
	ToolSpinner       lipgloss.Style

	SubAgentBorder lipgloss.Style
	SubAgentTitle  lipgloss.Style

	ErrorBorder lipgloss.Style
	ErrorTitle  lipgloss.Style

	Dim lipgloss.Style
}

// DefaultTheme returns the renderer's default styles.
func DefaultTheme() Theme {
	yellow := lipgloss.Color("3")
	green := lipgloss.Color("2")
	cyan := lipgloss.Color("6")
	magenta := lipgloss.Color("5")
	red := lipgloss.Color("1")
	gray := lipgloss.Color("245")

	border := lipgloss.RoundedBorder()

	return Theme{
		ThinkingBorder: lipgloss.NewStyle().
			Border(border).
			BorderForeground(yellow).
			Padding(0, 1),
		ThinkingTitle: lipgloss.NewStyle().
			Foreground(yellow).
			Bold(true),
		AnswerBorder: lipgloss.NewStyle().
			Border(border).
			BorderForeground(green).
			Padding(0, 1),
		AnswerTitle: lipgloss.NewStyle().
			Foreground(green).
			Bold(true),

		ToolPendingBorder: lipgloss.NewStyle().
			Border(border).
			BorderForeground(cyan).
			Padding(0, 1),
		ToolPendingTitle: lipgloss.NewStyle().
			Foreground(cyan).
			Bold(true),
		ToolDoneBorder: lipgloss.NewStyle().
			Border(border).
			BorderForeground(green).
			Padding(0, 1),
		ToolDoneTitle: lipgloss.NewStyle().
			Foreground(green).
			Bold(true),
		ToolArgs: lipgloss.NewStyle().
			Foreground(cyan),
		ToolResult: lipgloss.NewStyle().
			Foreground(green),
		ToolSpinner: lipgloss.NewStyle().
			Foreground(yellow).
			Italic(true),

		SubAgentBorder: lipgloss.NewStyle().
			Border(border).
			BorderForeground(magenta).
			Padding(0, 1),
		SubAgentTitle: lipgloss.NewStyle().
			Foreground(magenta).
			Bold(true),

		ErrorBorder: lipgloss.NewStyle().
			Border(border).
			BorderForeground(red).
			Padding(0, 1),
		ErrorTitle: lipgloss.NewStyle().
			Foreground(red).
			Bold(true),

		Dim: lipgloss.NewStyle().
			Foreground(gray),
	}
}
