// Package display implements the plain-terminal output surface: two
// in-place-redrawing live regions (content above, tool activity below)
// stacked under normal scrolling output, redrawn at a bounded rate to
// avoid flicker.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

// defaultRefresh bounds in-place redraws to ~12 per second.
const defaultRefresh = time.Second / 12

// Inline draws on a terminal using ANSI cursor movement. The live tail
// (content slot plus tools slot) is erased and redrawn in place;
// permanent blocks are inserted above it and scroll away normally.
type Inline struct {
	mu        sync.Mutex
	w         io.Writer
	content   string
	tools     string
	tailLines int
	lastDraw  time.Time
	refresh   time.Duration
}

// NewInline creates an Inline surface writing to w.
func NewInline(w io.Writer) *Inline {
	return &Inline{w: w, refresh: defaultRefresh}
}

// SetRefreshInterval overrides the redraw throttle. Zero disables it.
func (s *Inline) SetRefreshInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = d
}

// Print writes a permanent block above the live tail.
func (s *Inline) Print(block string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eraseTail()
	fmt.Fprintln(s.w, block)
	s.drawTail()
}

// SetContent creates or updates the content live region.
func (s *Inline) SetContent(block string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.content == ""
	s.content = block
	s.redraw(created)
}

// CommitContent writes the content region's final frame permanently and
// removes it from the live tail. No-op when the region is inactive.
func (s *Inline) CommitContent() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.content == "" {
		return
	}
	final := s.content
	s.content = ""
	s.eraseTail()
	fmt.Fprintln(s.w, final)
	s.drawTail()
}

// SetTools creates or updates the tool activity region.
func (s *Inline) SetTools(block string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.tools == ""
	s.tools = block
	s.redraw(created)
}

// ClearTools discards the tool activity region without a trace.
func (s *Inline) ClearTools() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tools == "" {
		return
	}
	s.tools = ""
	s.eraseTail()
	s.drawTail()
}

// redraw repaints the live tail, skipping intermediate frames that
// arrive faster than the refresh interval. Region creation and teardown
// always paint.
func (s *Inline) redraw(force bool) {
	if !force && s.refresh > 0 && time.Since(s.lastDraw) < s.refresh {
		// The slot state is already updated; the next event repaints.
		return
	}
	s.eraseTail()
	s.drawTail()
}

func (s *Inline) tail() string {
	switch {
	case s.content != "" && s.tools != "":
		return s.content + "\n" + s.tools
	case s.content != "":
		return s.content
	default:
		return s.tools
	}
}

// eraseTail moves the cursor to the top of the previously drawn tail and
// clears to the end of the screen.
func (s *Inline) eraseTail() {
	if s.tailLines == 0 {
		return
	}
	fmt.Fprintf(s.w, "\x1b[%dA\r\x1b[J", s.tailLines)
	s.tailLines = 0
}

func (s *Inline) drawTail() {
	tail := s.tail()
	if tail == "" {
		return
	}
	fmt.Fprintln(s.w, tail)
	s.tailLines = strings.Count(tail, "\n") + 1
	s.lastDraw = time.Now()
}

// Width reports the terminal width of stdout, or fallback when stdout is
// not a terminal.
func Width(fallback int) int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}
