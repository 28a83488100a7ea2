// Package command classifies raw shell input into typed commands:
// exit, empty, local shell passthrough, vector store operations, prompt
// template expansion, or plain passthrough to the agent.
package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gavinyap/captain/internal/prompt"
	"github.com/gavinyap/captain/internal/vector"
)

// Kind identifies what a parsed line resolves to.
type Kind int

const (
	KindExit Kind = iota
	KindEmpty
	KindShell
	KindVectorOp
	KindPromptTemplate
	KindRagQuery
	KindPassthrough
)

// Style selects how a direct-display result is rendered.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleWarning
	StyleInfo
)

// Result is the outcome of parsing one input line. ForwardedMessage is
// set only for kinds that continue to the agent.
type Result struct {
	Kind             Kind
	Succeeded        bool
	Title            string
	Body             string
	Style            Style
	ForwardedMessage string
}

// CommandIndex lists known executable names, used for suggestion hints
// when a shell command is not found. shell.SysCommands implements it.
type CommandIndex interface {
	Matching(prefix string) []string
}

// Retriever is the vector store surface the parser dispatches to.
// vector.Store implements it.
type Retriever interface {
	Collections(ctx context.Context) ([]vector.CollectionInfo, error)
	StoreMarkdown(ctx context.Context, collection, path string, size, overlap int) (int, error)
	Search(ctx context.Context, collection, query string, topK int) ([]vector.Result, error)
}

// Parser classifies input lines. It is synchronous and total: any
// string yields a Result, never an error.
type Parser struct {
	Templates *prompt.Store
	Retriever Retriever
	Commands  CommandIndex
	Workspace string
}

// Parse classifies one raw input line.
func (p *Parser) Parse(ctx context.Context, line string) Result {
	trimmed := strings.TrimSpace(line)

	switch strings.ToLower(trimmed) {
	case "exit", "quit", "q":
		return Result{Kind: KindExit, Succeeded: true}
	case "":
		return Result{Kind: KindEmpty, Succeeded: true}
	}

	if rest, ok := strings.CutPrefix(trimmed, "shell "); ok {
		return p.runShell(ctx, strings.TrimSpace(rest))
	}
	if trimmed == "shell" {
		return p.runShell(ctx, "")
	}
	if rest, ok := strings.CutPrefix(trimmed, "vector "); ok {
		return p.vectorOp(ctx, strings.TrimSpace(rest))
	}
	if trimmed == "vector" {
		return vectorUsage()
	}
	if strings.HasPrefix(trimmed, "/") {
		return p.template(trimmed)
	}

	return Result{Kind: KindPassthrough, Succeeded: true, ForwardedMessage: trimmed}
}

// runShell executes the remainder as a local process and captures its
// combined output.
func (p *Parser) runShell(ctx context.Context, cmdline string) Result {
	if cmdline == "" {
		return Result{
			Kind:  KindShell,
			Title: "Shell",
			Body:  "usage: shell <command>",
			Style: StyleWarning,
		}
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", cmdline)
	cmd.Dir = p.Workspace
	output, err := cmd.CombinedOutput()

	body := strings.TrimRight(string(output), "\n")
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// 127 is the shell's command-not-found exit code.
			if exitErr.ExitCode() == 127 {
				if hint := p.suggestCommands(cmdline); hint != "" {
					body += "\n" + hint
				}
			}
			return Result{
				Kind:  KindShell,
				Title: fmt.Sprintf("Shell (exit %d)", exitErr.ExitCode()),
				Body:  body,
				Style: StyleError,
			}
		}
		return Result{
			Kind:  KindShell,
			Title: "Shell",
			Body:  err.Error(),
			Style: StyleError,
		}
	}

	return Result{
		Kind:      KindShell,
		Succeeded: true,
		Title:     "Shell",
		Body:      body,
		Style:     StyleSuccess,
	}
}

// suggestCommands hints at known executables sharing a prefix with the
// missing command's first word.
func (p *Parser) suggestCommands(cmdline string) string {
	if p.Commands == nil {
		return ""
	}
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return ""
	}

	word := []rune(fields[0])
	prefix := word
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	matches := p.Commands.Matching(string(prefix))
	if len(matches) == 0 {
		return ""
	}
	if len(matches) > 5 {
		matches = matches[:5]
	}
	return "similar commands: " + strings.Join(matches, ", ")
}

// vectorOp dispatches the list / store / rag sub-actions.
func (p *Parser) vectorOp(ctx context.Context, rest string) Result {
	if p.Retriever == nil {
		return Result{Kind: KindVectorOp, Title: "Vector", Body: "vector store is not configured", Style: StyleError}
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return vectorUsage()
	}

	switch fields[0] {
	case "list":
		return p.vectorList(ctx)
	case "store":
		return p.vectorStore(ctx, fields[1:])
	case "rag":
		return p.vectorRag(ctx, fields[1:])
	default:
		return vectorUsage()
	}
}

func vectorUsage() Result {
	return Result{
		Kind:  KindVectorOp,
		Title: "Vector",
		Body: "usage:\n" +
			"  vector list\n" +
			"  vector store markdown <file> [collection] [size] [overlap]\n" +
			"  vector rag <collection> <query> [top_k]",
		Style: StyleWarning,
	}
}

func (p *Parser) vectorList(ctx context.Context) Result {
	cols, err := p.Retriever.Collections(ctx)
	if err != nil {
		return Result{Kind: KindVectorOp, Title: "Vector", Body: err.Error(), Style: StyleError}
	}
	if len(cols) == 0 {
		return Result{Kind: KindVectorOp, Succeeded: true, Title: "Vector collections", Body: "no collections", Style: StyleInfo}
	}

	var b strings.Builder
	for _, c := range cols {
		fmt.Fprintf(&b, "%s (%d chunks)\n", c.Name, c.Chunks)
	}
	return Result{
		Kind:      KindVectorOp,
		Succeeded: true,
		Title:     "Vector collections",
		Body:      strings.TrimRight(b.String(), "\n"),
		Style:     StyleInfo,
	}
}

func (p *Parser) vectorStore(ctx context.Context, args []string) Result {
	if len(args) < 2 || args[0] != "markdown" {
		return vectorUsage()
	}

	file := args[1]
	collection := "default"
	size := vector.DefaultChunkSize
	overlap := vector.DefaultChunkOverlap

	if len(args) > 2 {
		collection = args[2]
	}
	if len(args) > 3 {
		n, err := strconv.Atoi(args[3])
		if err != nil || n <= 0 {
			return Result{Kind: KindVectorOp, Title: "Vector", Body: "size must be a positive integer", Style: StyleWarning}
		}
		size = n
	}
	if len(args) > 4 {
		n, err := strconv.Atoi(args[4])
		if err != nil || n < 0 {
			return Result{Kind: KindVectorOp, Title: "Vector", Body: "overlap must be a non-negative integer", Style: StyleWarning}
		}
		overlap = n
	}

	count, err := p.Retriever.StoreMarkdown(ctx, collection, file, size, overlap)
	if err != nil {
		return Result{Kind: KindVectorOp, Title: "Vector store", Body: err.Error(), Style: StyleError}
	}
	return Result{
		Kind:      KindVectorOp,
		Succeeded: true,
		Title:     "Vector store",
		Body:      fmt.Sprintf("stored %d chunks from %s into %q", count, file, collection),
		Style:     StyleSuccess,
	}
}

// vectorRag searches the collection and, on success, forwards the query
// augmented with the recalled context to the agent.
func (p *Parser) vectorRag(ctx context.Context, args []string) Result {
	if len(args) < 2 {
		return vectorUsage()
	}

	collection := args[0]
	queryWords := args[1:]
	topK := vector.DefaultTopK

	// A trailing integer is top_k when at least one query word remains.
	if len(queryWords) > 1 {
		if n, err := strconv.Atoi(queryWords[len(queryWords)-1]); err == nil && n > 0 {
			topK = n
			queryWords = queryWords[:len(queryWords)-1]
		}
	}
	query := strings.Join(queryWords, " ")

	results, err := p.Retriever.Search(ctx, collection, query, topK)
	if err != nil {
		return Result{Kind: KindRagQuery, Title: "RAG", Body: err.Error(), Style: StyleError}
	}
	if len(results) == 0 {
		return Result{
			Kind:  KindRagQuery,
			Title: "RAG",
			Body:  fmt.Sprintf("no matches in collection %q", collection),
			Style: StyleWarning,
		}
	}

	var contextText strings.Builder
	for i, r := range results {
		fmt.Fprintf(&contextText, "[%d] (%s, score %.3f)\n%s\n\n", i+1, r.Source, r.Score, r.Content)
	}

	forwarded := fmt.Sprintf(
		"%s\n\nUse the following retrieved context to answer:\n\n%s",
		query, strings.TrimSpace(contextText.String()))

	return Result{
		Kind:             KindRagQuery,
		Succeeded:        true,
		Title:            fmt.Sprintf("RAG: %d chunks from %q", len(results), collection),
		Body:             strings.TrimSpace(contextText.String()),
		Style:            StyleInfo,
		ForwardedMessage: forwarded,
	}
}

// template expands a /name invocation. /list is reserved and enumerates
// the available templates.
func (p *Parser) template(line string) Result {
	invocation := strings.TrimPrefix(line, "/")
	name, rest, _ := strings.Cut(invocation, " ")

	if name == "list" {
		return p.templateList()
	}

	tmpl, err := p.Templates.Load(name)
	if err != nil {
		if errors.Is(err, prompt.ErrNotFound) {
			return Result{
				Kind:  KindPromptTemplate,
				Title: "Template",
				Body:  fmt.Sprintf("unknown template: /%s (try /list)", name),
				Style: StyleError,
			}
		}
		return Result{Kind: KindPromptTemplate, Title: "Template", Body: err.Error(), Style: StyleError}
	}

	expanded, err := tmpl.Expand(prompt.ParseArgs(rest))
	if err != nil {
		return Result{Kind: KindPromptTemplate, Title: "Template", Body: err.Error(), Style: StyleWarning}
	}

	return Result{
		Kind:             KindPromptTemplate,
		Succeeded:        true,
		Title:            "Template /" + name,
		Body:             expanded,
		Style:            StyleInfo,
		ForwardedMessage: expanded,
	}
}

func (p *Parser) templateList() Result {
	templates, err := p.Templates.List()
	if err != nil {
		return Result{Kind: KindPromptTemplate, Title: "Templates", Body: err.Error(), Style: StyleError}
	}
	if len(templates) == 0 {
		return Result{Kind: KindPromptTemplate, Succeeded: true, Title: "Templates", Body: "no templates defined", Style: StyleInfo}
	}

	var b strings.Builder
	for _, t := range templates {
		fmt.Fprintf(&b, "/%s", t.Name)
		for _, a := range t.Args {
			fmt.Fprintf(&b, " %s=\"\"", a)
		}
		if t.Description != "" {
			fmt.Fprintf(&b, "  %s", t.Description)
		}
		b.WriteString("\n")
	}
	return Result{
		Kind:      KindPromptTemplate,
		Succeeded: true,
		Title:     "Templates",
		Body:      strings.TrimRight(b.String(), "\n"),
		Style:     StyleInfo,
	}
}
