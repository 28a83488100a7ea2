package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gavinyap/captain/internal/render"
)

var _ render.Surface = (*Surface)(nil)

// Surface drives the Bubble Tea program and exposes it as the
// renderer's output device. Input stays with the surrounding shell, so
// the program runs without its own stdin.
type Surface struct {
	prog *tea.Program
	done chan error
}

// NewSurface starts the program writing to out. A nil out uses stdout.
func NewSurface(out io.Writer) *Surface {
	opts := []tea.ProgramOption{
		tea.WithInput(nil),
		tea.WithFPS(12),
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	s := &Surface{
		prog: tea.NewProgram(NewModel(), opts...),
		done: make(chan error, 1),
	}
	go func() {
		_, err := s.prog.Run()
		s.done <- err
	}()
	return s
}

func (s *Surface) Print(block string)      { s.prog.Send(printMsg{block: block}) }
func (s *Surface) SetContent(block string) { s.prog.Send(setContentMsg{block: block}) }
func (s *Surface) CommitContent()          { s.prog.Send(commitContentMsg{}) }
func (s *Surface) SetTools(block string)   { s.prog.Send(setToolsMsg{block: block}) }
func (s *Surface) ClearTools()             { s.prog.Send(clearToolsMsg{}) }

// Close stops the program and waits for the terminal to be restored.
func (s *Surface) Close() error {
	s.prog.Quit()
	return <-s.done
}
