// Entry point for the captain CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gavinyap/captain/internal/agent"
	"github.com/gavinyap/captain/internal/command"
	"github.com/gavinyap/captain/internal/config"
	projectctx "github.com/gavinyap/captain/internal/context"
	"github.com/gavinyap/captain/internal/display"
	"github.com/gavinyap/captain/internal/llm"
	"github.com/gavinyap/captain/internal/logging"
	"github.com/gavinyap/captain/internal/prompt"
	"github.com/gavinyap/captain/internal/render"
	"github.com/gavinyap/captain/internal/shell"
	"github.com/gavinyap/captain/internal/tool"
	"github.com/gavinyap/captain/internal/transcript"
	"github.com/gavinyap/captain/internal/tui"
	"github.com/gavinyap/captain/internal/vector"
)

var version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags config.Flags
	var plain bool

	cmd := &cobra.Command{
		Use:     "captain",
		Short:   "Interactive AI agent shell",
		Long:    "Captain is an interactive shell around a tool-using LLM agent\nwith streaming display, sub-agents, and a local vector store.",
		Version: version,

		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags, plain)
		},
	}

	cmd.Flags().StringVarP(&flags.ConfigPath, "config", "c", "", "config file (default ~/.captain/config.yaml, then <workspace>/.captain/config.yaml)")
	cmd.Flags().StringVarP(&flags.Workspace, "workspace", "w", "", "workspace directory (default current directory)")
	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "transcript output file")
	cmd.Flags().StringVarP(&flags.Model, "model", "m", "", "major agent model (overrides config)")
	cmd.Flags().BoolVar(&plain, "plain", false, "plain inline display instead of the live renderer")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(flags config.Flags, plain bool) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogPath(), cfg.Verbose)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logger.Sync()

	client := llm.NewClient(cfg.Agent.APIKey)
	if cfg.Agent.BaseURL != "" {
		client.SetBaseURL(cfg.Agent.BaseURL)
	}

	systemPrompt := cfg.Agent.SystemPrompt
	if systemPrompt == "" {
		profiles := make([]string, 0, len(cfg.SubAgents))
		for name := range cfg.SubAgents {
			profiles = append(profiles, name)
		}
		wsCtx, err := projectctx.Load(cfg.Workspace, profiles)
		if err != nil {
			return fmt.Errorf("loading workspace context: %w", err)
		}
		systemPrompt = wsCtx.BuildSystemPrompt()
	}

	registry := tool.DefaultRegistry(cfg.Workspace)
	rootAgent := agent.New(agent.Options{
		Client:       client,
		Registry:     registry,
		Model:        cfg.Agent.Model,
		SystemPrompt: systemPrompt,
		Logger:       logger,
	})
	registry.Register(agent.NewSpawnAgentTool(rootAgent, cfg.SubAgents))

	store, err := vector.Open(cfg.StorePath(), vector.NewClientEmbedder(client, cfg.EmbeddingModel))
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}
	defer store.Close()

	parser := &command.Parser{
		Templates: prompt.NewStore(cfg.PromptsDir()),
		Retriever: store,
		Commands:  shell.NewSysCommands(""),
		Workspace: cfg.Workspace,
	}

	width := display.Width(80)

	var surface render.Surface
	if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		surface = display.NewInline(os.Stdout)
	} else {
		rich := tui.NewSurface(nil)
		defer rich.Close()
		surface = rich
	}

	renderer := render.New(render.Options{
		Surface: surface,
		Sink:    transcript.NewWriter(cfg.Output),
		Width:   width,
		Logger:  logger,
	})

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT)
	defer signal.Stop(interrupts)

	sh := shell.New(shell.Options{
		Runner:     rootAgent,
		Parser:     parser,
		Renderer:   renderer,
		Input:      shell.NewInputReader(cfg.HistoryPath()),
		Config:     cfg,
		Logger:     logger,
		Interrupts: interrupts,
	})
	return sh.Run(context.Background())
}
