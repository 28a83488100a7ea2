package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gavinyap/captain/internal/command"
	"github.com/gavinyap/captain/internal/prompt"
	"github.com/gavinyap/captain/internal/render"
	"github.com/gavinyap/captain/internal/stream"
)

// syncBuffer is a Writer safe to read while the shell goroutine writes.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// recordingSurface captures permanent prints; live regions are ignored.
type recordingSurface struct {
	prints []string
}

func (s *recordingSurface) Print(block string) { s.prints = append(s.prints, block) }
func (s *recordingSurface) SetContent(string)  {}
func (s *recordingSurface) CommitContent()     {}
func (s *recordingSurface) SetTools(string)    {}
func (s *recordingSurface) ClearTools()        {}

type recordingSink struct {
	texts []string
}

func (s *recordingSink) SaveText(category, text string) error {
	s.texts = append(s.texts, category+": "+text)
	return nil
}
func (s *recordingSink) SaveToolCall(name, args string) error { return nil }

// scriptedRunner replays fixed events for every Send call.
type scriptedRunner struct {
	events   []stream.Event
	messages []string
}

func (r *scriptedRunner) Send(_ context.Context, message string) <-chan stream.Event {
	r.messages = append(r.messages, message)
	ch := make(chan stream.Event, len(r.events))
	for _, ev := range r.events {
		ch <- ev
	}
	close(ch)
	return ch
}

func newTestShell(t *testing.T, in io.Reader, runner Runner) (*Shell, *recordingSurface, *recordingSink, *syncBuffer, chan os.Signal) {
	t.Helper()
	surface := &recordingSurface{}
	sink := &recordingSink{}
	renderer := render.New(render.Options{Surface: surface, Sink: sink})
	interrupts := make(chan os.Signal, 1)
	out := &syncBuffer{}

	parser := &command.Parser{
		Templates: prompt.NewStore(filepath.Join(t.TempDir(), "prompts")),
		Workspace: t.TempDir(),
	}

	s := New(Options{
		Runner:     runner,
		Parser:     parser,
		Renderer:   renderer,
		Input:      NewInputReaderWithIO(in, io.Discard),
		Output:     out,
		Interrupts: interrupts,
	})
	return s, surface, sink, out, interrupts
}

func runWithTimeout(t *testing.T, s *Shell) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not exit in time")
		return nil
	}
}

func TestRun_ExitCommand(t *testing.T) {
	runner := &scriptedRunner{}
	s, _, _, _, _ := newTestShell(t, strings.NewReader("exit\n"), runner)

	if err := runWithTimeout(t, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.messages) != 0 {
		t.Errorf("exit must not reach the agent, got %v", runner.messages)
	}
}

func TestRun_EOFExits(t *testing.T) {
	s, _, _, _, _ := newTestShell(t, strings.NewReader(""), &scriptedRunner{})
	if err := runWithTimeout(t, s); err != nil {
		t.Fatalf("unexpected error on EOF: %v", err)
	}
}

func TestRun_ForwardsMessageAndRendersStream(t *testing.T) {
	runner := &scriptedRunner{events: []stream.Event{
		stream.Answer{Content: "Forty-two."},
	}}
	s, _, sink, _, _ := newTestShell(t, strings.NewReader("what is the answer\nexit\n"), runner)

	if err := runWithTimeout(t, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.messages) != 1 || runner.messages[0] != "what is the answer" {
		t.Fatalf("expected forwarded message, got %v", runner.messages)
	}
	// The answer buffer flushes to the sink when the turn finalizes.
	found := false
	for _, entry := range sink.texts {
		if strings.Contains(entry, "Forty-two.") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected answer flushed to sink, got %v", sink.texts)
	}
}

func TestRun_LocalShellCommandPrintsNotice(t *testing.T) {
	runner := &scriptedRunner{}
	s, surface, _, _, _ := newTestShell(t, strings.NewReader("shell echo ping\nexit\n"), runner)

	if err := runWithTimeout(t, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.messages) != 0 {
		t.Error("local shell commands must not reach the agent")
	}
	found := false
	for _, p := range surface.prints {
		if strings.Contains(p, "ping") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected shell output in a printed panel, got %v", surface.prints)
	}
}

func TestRun_EmptyInputSkipped(t *testing.T) {
	runner := &scriptedRunner{}
	s, surface, _, _, _ := newTestShell(t, strings.NewReader("\n   \nexit\n"), runner)

	if err := runWithTimeout(t, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.messages) != 0 {
		t.Errorf("empty lines must not reach the agent, got %v", runner.messages)
	}
	if len(surface.prints) != 0 {
		t.Errorf("empty lines must not print panels, got %v", surface.prints)
	}
}

// blockingRunner holds the stream open until its context is cancelled.
type blockingRunner struct {
	started   chan struct{}
	cancelled chan struct{}
}

func (r *blockingRunner) Send(ctx context.Context, _ string) <-chan stream.Event {
	ch := make(chan stream.Event)
	go func() {
		close(r.started)
		<-ctx.Done()
		close(r.cancelled)
		close(ch)
	}()
	return ch
}

func TestRun_InterruptDuringStreamCancelsTurn(t *testing.T) {
	runner := &blockingRunner{
		started:   make(chan struct{}),
		cancelled: make(chan struct{}),
	}
	s, _, _, out, interrupts := newTestShell(t, strings.NewReader("long question\nexit\n"), runner)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("turn never started")
	}
	interrupts <- os.Interrupt

	select {
	case <-runner.cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("interrupt did not cancel the turn context")
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("shell did not exit after interrupt")
	}
	if !strings.Contains(out.String(), "Interrupted.") {
		t.Errorf("expected interruption notice, got %q", out.String())
	}
}

func TestRun_IdleDoubleInterruptExits(t *testing.T) {
	// A pipe with no writes keeps the reader blocked at the prompt.
	pr, pw := io.Pipe()
	t.Cleanup(func() { pw.Close() })

	s, _, _, out, interrupts := newTestShell(t, pr, &scriptedRunner{})

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	interrupts <- os.Interrupt
	deadline := time.After(5 * time.Second)
	for !strings.Contains(out.String(), "again") {
		select {
		case <-deadline:
			t.Fatalf("no exit confirmation prompt, got %q", out.String())
		case <-time.After(10 * time.Millisecond):
		}
	}
	interrupts <- os.Interrupt

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("second interrupt did not exit")
	}
}
