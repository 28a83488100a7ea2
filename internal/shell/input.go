// input.go handles line reading with multi-line continuation and a
// persisted history file.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	primaryPrompt      = "> "
	continuationPrompt = ". "
)

// ErrInterrupted is returned by ReadInput when the read was cancelled
// by a user interrupt rather than by input.
var ErrInterrupted = errors.New("interrupted")

// InputReader reads user input with multi-line support and appends
// submitted lines to a history file.
type InputReader struct {
	scanner     *bufio.Scanner
	out         io.Writer
	historyPath string
}

// NewInputReader creates an InputReader that reads from stdin, prints
// prompts to stderr, and persists history to historyPath. An empty
// historyPath disables persistence.
func NewInputReader(historyPath string) *InputReader {
	return &InputReader{
		scanner:     bufio.NewScanner(os.Stdin),
		out:         os.Stderr,
		historyPath: historyPath,
	}
}

// NewInputReaderWithIO creates an InputReader with custom I/O for testing.
func NewInputReaderWithIO(in io.Reader, out io.Writer) *InputReader {
	return &InputReader{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// ReadInput reads user input, supporting multi-line input via backslash
// continuation. Returns io.EOF if the input stream is closed.
func (r *InputReader) ReadInput() (string, error) {
	fmt.Fprint(r.out, primaryPrompt)

	var lines []string
	first := true

	for {
		if !first {
			fmt.Fprint(r.out, continuationPrompt)
		}
		first = false

		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		line := r.scanner.Text()

		if strings.HasSuffix(line, "\\") {
			// Strip trailing backslash and continue reading.
			lines = append(lines, strings.TrimSuffix(line, "\\"))
			continue
		}

		lines = append(lines, line)
		break
	}

	input := strings.Join(lines, "\n")
	r.appendHistory(input)
	return input, nil
}

// History returns the persisted history lines, oldest first.
func (r *InputReader) History() []string {
	if r.historyPath == "" {
		return nil
	}
	data, err := os.ReadFile(r.historyPath)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			out = append(out, strings.ReplaceAll(line, "\\n", "\n"))
		}
	}
	return out
}

// appendHistory records one submitted input. Multi-line inputs are
// stored on one line with escaped newlines.
func (r *InputReader) appendHistory(input string) {
	if r.historyPath == "" || strings.TrimSpace(input) == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(r.historyPath), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(r.historyPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	fmt.Fprintln(f, strings.ReplaceAll(input, "\n", "\\n"))
}
