// Package shell implements the interactive read-eval loop: it reads
// input lines, classifies them through the command parser, runs local
// commands directly, and streams everything else through the agent into
// the renderer.
package shell

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/gavinyap/captain/internal/command"
	"github.com/gavinyap/captain/internal/config"
	"github.com/gavinyap/captain/internal/render"
	"github.com/gavinyap/captain/internal/stream"
)

// Runner produces the event stream for one agent turn. agent.Agent
// implements it.
type Runner interface {
	Send(ctx context.Context, message string) <-chan stream.Event
}

// Options configures a Shell.
type Options struct {
	Runner   Runner
	Parser   *command.Parser
	Renderer *render.Renderer
	Input    *InputReader
	Config   *config.Config
	Logger   *zap.Logger

	// Output receives prompts and plain status lines. Defaults to stderr.
	Output io.Writer

	// Interrupts delivers user interrupt signals (SIGINT). The shell
	// never installs signal handlers itself; the caller wires this up.
	Interrupts <-chan os.Signal
}

// Shell drives the interactive session.
type Shell struct {
	runner     Runner
	parser     *command.Parser
	renderer   *render.Renderer
	input      *InputReader
	cfg        *config.Config
	logger     *zap.Logger
	out        io.Writer
	interrupts <-chan os.Signal

	confirmExit bool
}

// New creates a Shell from options.
func New(opts Options) *Shell {
	s := &Shell{
		runner:     opts.Runner,
		parser:     opts.Parser,
		renderer:   opts.Renderer,
		input:      opts.Input,
		cfg:        opts.Config,
		logger:     opts.Logger,
		out:        opts.Output,
		interrupts: opts.Interrupts,
	}
	if s.out == nil {
		s.out = os.Stderr
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

type readResult struct {
	text string
	err  error
}

// Run executes the read-eval loop until the user exits, input reaches
// EOF, or the context is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, s.banner())

	// The reader goroutine blocks on stdin, so reads are requested one
	// at a time and the result consumed through a channel. This keeps
	// the main loop free to react to interrupts while idle.
	requests := make(chan struct{})
	results := make(chan readResult)
	go func() {
		for range requests {
			text, err := s.input.ReadInput()
			results <- readResult{text: text, err: err}
			if err != nil {
				return
			}
		}
	}()
	defer close(requests)

	for {
		requests <- struct{}{}

		var res readResult
	waitInput:
		for {
			select {
			case res = <-results:
				break waitInput
			case <-s.interrupts:
				if s.confirmExit {
					fmt.Fprintln(s.out)
					return nil
				}
				s.confirmExit = true
				fmt.Fprintln(s.out, "\nPress Ctrl+C again or type 'exit' to quit.")
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if res.err != nil {
			if res.err == io.EOF {
				fmt.Fprintln(s.out)
				return nil
			}
			return res.err
		}
		s.confirmExit = false

		if exit := s.dispatch(ctx, res.text); exit {
			return nil
		}
	}
}

// dispatch parses one line and acts on the result. Returns true when
// the session should end.
func (s *Shell) dispatch(ctx context.Context, line string) bool {
	res := s.parser.Parse(ctx, line)

	switch res.Kind {
	case command.KindExit:
		return true
	case command.KindEmpty:
		return false
	}

	if res.Title != "" || res.Body != "" {
		s.renderer.PrintNotice(noticeStyle(res.Style), res.Title, res.Body)
	}
	if res.ForwardedMessage != "" {
		s.runTurn(ctx, res.ForwardedMessage)
	}
	return false
}

// runTurn streams one agent turn through the renderer. An interrupt
// during streaming cancels the turn and finalizes immediately.
func (s *Shell) runTurn(ctx context.Context, message string) {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.logger.Debug("starting agent turn", zap.Int("message_len", len(message)))
	s.renderer.Reset()
	events := s.runner.Send(turnCtx, message)

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				s.renderer.Finalize()
				return
			}
			s.renderer.Handle(ev)
		case <-s.interrupts:
			cancel()
			for range events {
				// Drain until the producer winds down.
			}
			s.renderer.Finalize()
			fmt.Fprintln(s.out, "Interrupted.")
			return
		}
	}
}

func noticeStyle(st command.Style) render.NoticeStyle {
	switch st {
	case command.StyleError:
		return render.NoticeError
	case command.StyleWarning:
		return render.NoticeWarning
	case command.StyleInfo:
		return render.NoticeInfo
	default:
		return render.NoticeSuccess
	}
}

// banner renders the session header with the active configuration.
func (s *Shell) banner() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	label := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 1)

	var b strings.Builder
	b.WriteString(title.Render("Captain"))
	b.WriteString("\n")

	if s.cfg != nil {
		rows := [][2]string{
			{"Model", s.cfg.Agent.Model},
			{"Workspace", s.cfg.Workspace},
			{"Transcript", s.cfg.Output},
			{"Store", s.cfg.StorePath()},
		}
		if len(s.cfg.SubAgents) > 0 {
			names := make([]string, 0, len(s.cfg.SubAgents))
			for name := range s.cfg.SubAgents {
				names = append(names, name)
			}
			sort.Strings(names)
			rows = append(rows, [2]string{"Sub-agents", strings.Join(names, ", ")})
		}
		for _, row := range rows {
			fmt.Fprintf(&b, "%s %s\n", label.Render(row[0]+":"), row[1])
		}
	}
	b.WriteString(label.Render("Type a message, 'shell <cmd>', 'vector ...', '/list', or 'exit'."))

	return box.Render(b.String())
}
