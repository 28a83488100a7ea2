// Package render implements the streaming response renderer: a state
// machine that consumes agent stream events one at a time and drives the
// live terminal display, the tool call correlator, and the buffer/flush
// cycle that persists transcript content at phase boundaries.
package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/gavinyap/captain/internal/stream"
	"github.com/gavinyap/captain/internal/transcript"
)

// Phase is the renderer's current display mode. Exactly one phase is
// active at a time.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseThinking
	PhaseAnswer
	PhaseToolActivity
	PhaseSubAgentBanner
	PhaseSubAgentThinking
	PhaseSubAgentAnswer
	PhaseSubAgentToolActivity
)

// Surface is the output device the renderer draws on. Permanent blocks
// scroll into history; the content and tools slots are live regions that
// redraw in place. CommitContent writes the content slot's final frame
// permanently before clearing it, while ClearTools discards the tools
// slot without a trace.
type Surface interface {
	Print(block string)
	SetContent(block string)
	CommitContent()
	SetTools(block string)
	ClearTools()
}

// Sink receives flushed transcript content. transcript.Writer implements it.
type Sink interface {
	SaveText(category, text string) error
	SaveToolCall(name, args string) error
}

// Options configures a new Renderer.
type Options struct {
	Surface Surface
	Sink    Sink
	Width   int // terminal width; 0 means 80
	Logger  *zap.Logger
}

// Renderer consumes stream events strictly sequentially and renders them
// as an ordered terminal presentation. It is owned by a single consumer;
// no method may be called concurrently with another.
type Renderer struct {
	surface Surface
	sink    Sink
	logger  *zap.Logger
	theme   Theme
	md      *glamour.TermRenderer
	width   int

	phase    Phase
	thinking strings.Builder
	answer   strings.Builder
	tools    *Correlator
}

// New creates a Renderer drawing on the given surface and flushing to
// the given sink.
func New(opts Options) *Renderer {
	r := &Renderer{
		surface: opts.Surface,
		sink:    opts.Sink,
		logger:  opts.Logger,
		theme:   DefaultTheme(),
		tools:   NewCorrelator(),
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.SetWidth(opts.Width)
	return r
}

// SetWidth updates the render width and rebuilds the markdown renderer.
func (r *Renderer) SetWidth(w int) {
	if w <= 0 {
		w = 80
	}
	r.width = w
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(w-6),
	)
	if err == nil {
		r.md = md
	}
}

// Phase returns the currently active phase.
func (r *Renderer) Phase() Phase { return r.phase }

// Pending returns the invocations still awaiting results.
func (r *Renderer) Pending() []*Invocation { return r.tools.Pending() }

// Reset clears all turn-scoped state: the correlator map, the early
// result cache, both text buffers, and any live regions. Called at the
// start of every top-level turn so tool ids reused across turns never
// match stale records.
func (r *Renderer) Reset() {
	r.surface.ClearTools()
	r.surface.CommitContent()
	r.tools.Reset()
	r.thinking.Reset()
	r.answer.Reset()
	r.phase = PhaseNone
}

// Handle dispatches one stream event to its handler. Events must arrive
// in stream order; Handle never blocks on anything but the sink.
func (r *Renderer) Handle(ev stream.Event) {
	switch ev := ev.(type) {
	case stream.Thinking:
		r.handleThinking(ev)
	case stream.Answer:
		r.handleAnswer(ev)
	case stream.ToolCall:
		r.handleToolCall(ev)
	case stream.ToolResult:
		r.handleToolResult(ev)
	case stream.SubAgentStart:
		r.handleSubAgentStart(ev)
	case stream.SubAgentEnd:
		r.handleSubAgentEnd(ev)
	case stream.Error:
		r.handleError(ev)
	default:
		// Unknown event kinds are skipped for forward compatibility.
	}
}

// NoticeStyle selects the coloring of a PrintNotice panel.
type NoticeStyle int

const (
	NoticeSuccess NoticeStyle = iota
	NoticeError
	NoticeWarning
	NoticeInfo
)

// PrintNotice prints a permanent styled panel outside the streaming
// state machine. The shell uses it for local command results.
func (r *Renderer) PrintNotice(style NoticeStyle, heading, body string) {
	var border, title lipgloss.Style
	switch style {
	case NoticeError:
		border, title = r.theme.ErrorBorder, r.theme.ErrorTitle
	case NoticeWarning:
		border, title = r.theme.ThinkingBorder, r.theme.ThinkingTitle
	case NoticeInfo:
		border, title = r.theme.ToolPendingBorder, r.theme.ToolPendingTitle
	default:
		border, title = r.theme.ToolDoneBorder, r.theme.ToolDoneTitle
	}
	r.surface.Print(r.panel(border, title, heading, body))
}

// Finalize flushes all remaining buffers and tears down both live
// regions. Safe to call more than once.
func (r *Renderer) Finalize() {
	r.surface.ClearTools()
	r.surface.CommitContent()
	r.flushBuffers()
	r.phase = PhaseNone
}

// ---- content phases ----

func (r *Renderer) handleThinking(ev stream.Thinking) {
	target := PhaseThinking
	if ev.Agent != "" {
		target = PhaseSubAgentThinking
	}
	r.enterContentPhase(target)

	r.thinking.WriteString(ev.Content)
	r.surface.SetContent(r.thinkingPanel(ev.Agent))
}

func (r *Renderer) handleAnswer(ev stream.Answer) {
	target := PhaseAnswer
	if ev.Agent != "" {
		target = PhaseSubAgentAnswer
	}
	r.enterContentPhase(target)

	r.answer.WriteString(ev.Content)
	r.surface.SetContent(r.answerPanel(ev.Agent))
}

// enterContentPhase applies the phase transition rule: moving into a
// different content phase flushes and clears both buffers, commits the
// previous content region, and tears down the tool region if the
// previous phase was tool activity. Re-entering the same phase is a
// no-op.
func (r *Renderer) enterContentPhase(target Phase) {
	if isToolPhase(r.phase) {
		r.surface.ClearTools()
	}
	if r.phase != target {
		r.flushBuffers()
		r.surface.CommitContent()
	}
	r.phase = target
}

// ---- tool phases ----

func (r *Renderer) handleToolCall(ev stream.ToolCall) {
	if !isToolPhase(r.phase) {
		r.flushBuffers()
		r.surface.CommitContent()
	}
	r.phase = toolPhaseFor(ev.Agent)

	inv := &Invocation{ID: ev.ID, Name: ev.Name, Args: ev.Args, Agent: ev.Agent}
	if r.tools.Call(inv) {
		// The result raced ahead of the call; complete immediately.
		r.completeInvocation(inv)
		return
	}
	r.refreshTools()
}

func (r *Renderer) handleToolResult(ev stream.ToolResult) {
	r.phase = toolPhaseFor(ev.Agent)

	inv := r.tools.Resolve(ev.ID, ev.Content)
	if inv == nil {
		// No matching call yet; the result is cached until it arrives.
		return
	}
	r.completeInvocation(inv)
}

// completeInvocation prints the permanent completion panel, persists the
// call record, and recomputes the pending region.
func (r *Renderer) completeInvocation(inv *Invocation) {
	r.surface.Print(r.toolDonePanel(inv))
	if err := r.sink.SaveToolCall(inv.Name, inv.Args); err != nil {
		r.logger.Warn("persisting tool call", zap.String("tool", inv.Name), zap.Error(err))
		r.surface.Print(r.errorPanel("Transcript write failed", err.Error()))
	}
	r.refreshTools()
}

// refreshTools redraws the pending region, tearing it down the instant
// the pending set becomes empty.
func (r *Renderer) refreshTools() {
	block := r.pendingToolsBlock()
	if block == "" {
		r.surface.ClearTools()
		return
	}
	r.surface.SetTools(block)
}

// ---- sub-agent lifecycle ----

func (r *Renderer) handleSubAgentStart(ev stream.SubAgentStart) {
	if !isToolPhase(r.phase) {
		r.flushBuffers()
		r.surface.CommitContent()
	}
	r.surface.ClearTools()
	r.phase = PhaseSubAgentBanner

	r.surface.Print(r.subAgentBanner(ev.Agent, ev.Task))
}

func (r *Renderer) handleSubAgentEnd(ev stream.SubAgentEnd) {
	r.flushBuffers()
	r.surface.CommitContent()
	r.surface.ClearTools()
	r.phase = PhaseNone

	r.surface.Print(r.subAgentDonePanel(ev.Content))
	if err := r.sink.SaveText(transcript.CategorySubAgent, ev.Content); err != nil {
		r.logger.Warn("persisting sub-agent output", zap.Error(err))
		r.surface.Print(r.errorPanel("Transcript write failed", err.Error()))
	}
}

func (r *Renderer) handleError(ev stream.Error) {
	r.surface.ClearTools()
	r.surface.CommitContent()
	r.surface.Print(r.errorPanel("Error from agent stream", ev.Message))
}

// ---- buffer & flush ----

// flushBuffers writes each non-empty buffer to the sink as one unit
// under the categories of the phase being left, then clears it. Empty
// buffers never touch the sink.
func (r *Renderer) flushBuffers() {
	thinkCat, answerCat := r.categories()

	if r.thinking.Len() > 0 {
		if err := r.sink.SaveText(thinkCat, r.thinking.String()); err != nil {
			r.logger.Warn("flushing thinking buffer", zap.Error(err))
			r.surface.Print(r.errorPanel("Transcript write failed", err.Error()))
		}
		r.thinking.Reset()
	}
	if r.answer.Len() > 0 {
		if err := r.sink.SaveText(answerCat, r.answer.String()); err != nil {
			r.logger.Warn("flushing answer buffer", zap.Error(err))
			r.surface.Print(r.errorPanel("Transcript write failed", err.Error()))
		}
		r.answer.Reset()
	}
}

// categories selects the flush category pair from the phase that is
// transitioning out. Only content phases accumulate text, so the pair
// matters only when leaving one.
func (r *Renderer) categories() (think, answer string) {
	switch r.phase {
	case PhaseSubAgentThinking, PhaseSubAgentAnswer:
		return transcript.CategorySubAgentThink, transcript.CategorySubAgentAnswer
	default:
		return transcript.CategoryThink, transcript.CategoryAnswer
	}
}

func isToolPhase(p Phase) bool {
	return p == PhaseToolActivity || p == PhaseSubAgentToolActivity
}

func toolPhaseFor(agent string) Phase {
	if agent != "" {
		return PhaseSubAgentToolActivity
	}
	return PhaseToolActivity
}
