// Package tui implements the rich display surface: a Bubble Tea program
// running inline (no alternate screen) whose view holds the live content
// and tool regions while permanent blocks scroll into terminal history.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type printMsg struct{ block string }
type setContentMsg struct{ block string }
type commitContentMsg struct{}
type setToolsMsg struct{ block string }
type clearToolsMsg struct{}

// Model is the Bubble Tea model behind the surface. The content and
// tools slots redraw in place; committing the content slot turns its
// final frame into scrollback.
type Model struct {
	content string
	tools   string
	spin    spinner.Model
}

// NewModel creates the surface model with an idle spinner.
func NewModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	return Model{spin: sp}
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case printMsg:
		return m, tea.Println(msg.block)

	case setContentMsg:
		m.content = msg.block
		return m, nil

	case commitContentMsg:
		if m.content == "" {
			return m, nil
		}
		block := m.content
		m.content = ""
		return m, tea.Println(block)

	case setToolsMsg:
		m.tools = msg.block
		return m, nil

	case clearToolsMsg:
		m.tools = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	}
	return m, nil
}

// View stacks the live content slot above the live tools slot. The
// spinner line marks tool activity in progress.
func (m Model) View() string {
	var parts []string
	if m.content != "" {
		parts = append(parts, m.content)
	}
	if m.tools != "" {
		parts = append(parts, m.tools, m.spin.View()+"working")
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n") + "\n"
}
