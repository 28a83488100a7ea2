// Package context assembles the agent's default system prompt from the
// workspace environment and an optional instruction file.
package context

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// WorkspaceContext holds the environment information injected into the
// system prompt when no explicit prompt is configured.
type WorkspaceContext struct {
	Workspace    string
	Instructions string // Contents of CAPTAIN.md or AGENTS.md
	SubAgents    []string
	Platform     string // runtime.GOOS
	Date         string // current date YYYY-MM-DD
}

// instructionFiles lists workspace instruction files in priority order.
var instructionFiles = []string{
	"CAPTAIN.md",
	"AGENTS.md",
}

// Load reads workspace context from the given directory. subAgents names
// the configured sub-agent profiles, if any.
func Load(dir string, subAgents []string) (*WorkspaceContext, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve directory: %w", err)
	}

	wc := &WorkspaceContext{
		Workspace: absDir,
		SubAgents: append([]string(nil), subAgents...),
		Platform:  runtime.GOOS,
		Date:      time.Now().Format("2006-01-02"),
	}
	sort.Strings(wc.SubAgents)

	for _, name := range instructionFiles {
		data, err := os.ReadFile(filepath.Join(absDir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		wc.Instructions = string(data)
		break
	}

	return wc, nil
}

// BuildSystemPrompt constructs the default system prompt.
func (wc *WorkspaceContext) BuildSystemPrompt() string {
	var b strings.Builder

	b.WriteString("You are Captain, an AI assistant operating in an interactive shell. You answer questions and carry out tasks inside the user's workspace using the available tools. All file paths are relative to the workspace.")

	if wc.Instructions != "" {
		b.WriteString("\n\n# Workspace Instructions\n\n")
		b.WriteString(wc.Instructions)
	}

	if len(wc.SubAgents) > 0 {
		b.WriteString("\n\n# Sub-agents\n")
		b.WriteString("The spawn_agent tool accepts these named profiles: ")
		b.WriteString(strings.Join(wc.SubAgents, ", "))
		b.WriteString(".\n")
	}

	b.WriteString("\n\n# Environment\n")
	b.WriteString(fmt.Sprintf("- Workspace: %s\n", wc.Workspace))
	b.WriteString(fmt.Sprintf("- Platform: %s\n", wc.Platform))
	b.WriteString(fmt.Sprintf("- Date: %s\n", wc.Date))

	return b.String()
}
