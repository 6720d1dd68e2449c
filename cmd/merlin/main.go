// Package main provides the merlin command-line agent. It reads user
// utterances, drives the agent loop against the configured model provider,
// and prints the final responses.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/Cyclone1070/merlin/internal/agent"
	"github.com/Cyclone1070/merlin/internal/agent/adapter"
	"github.com/Cyclone1070/merlin/internal/config"
	"github.com/Cyclone1070/merlin/internal/console"
	"github.com/Cyclone1070/merlin/internal/provider/gemini"
	providermodels "github.com/Cyclone1070/merlin/internal/provider/models"
	"github.com/Cyclone1070/merlin/internal/provider/openai"
	"github.com/Cyclone1070/merlin/internal/sandbox"
	"github.com/Cyclone1070/merlin/internal/tool/command"
	"github.com/Cyclone1070/merlin/internal/tool/executor"
	"github.com/Cyclone1070/merlin/internal/tool/search"
	"google.golang.org/genai"
)

func main() {
	if err := run(context.Background(), os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	policy, err := sandbox.NewPolicy(cwd, cfg.Roots)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg, policy)
	if err != nil {
		return err
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}

	cons := console.New(stdin, stdout, stderr)
	ag := agent.New(cfg, provider, registry, policy.Describe())

	return repl(ctx, cons, ag, cfg)
}

// buildRegistry wires the tool stack: executor, command tool and search tool,
// all bound to the sandbox policy.
func buildRegistry(cfg *config.Config, policy *sandbox.Policy) (*adapter.Registry, error) {
	commandExecutor := executor.NewOSCommandExecutor(cfg.MaxCommandOutputBytes)
	commandTool := command.New(commandExecutor, policy, cfg)
	searchTool := search.New(policy, cfg)

	return adapter.NewRegistry([]adapter.Tool{
		adapter.NewRunCommands(commandTool),
		adapter.NewFindFiles(searchTool),
	})
}

// newProvider constructs the configured model provider.
func newProvider(ctx context.Context, cfg *config.Config) (providermodels.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return gemini.New(gemini.NewRealGeminiClient(client), cfg.Model), nil
	default:
		return openai.New(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	}
}

// repl runs the read-eval-print loop until the user quits or input closes.
// A SIGINT during a turn cancels that turn (killing any in-flight subprocess
// and rolling the log back); at the prompt it exits cleanly.
func repl(ctx context.Context, cons *console.Console, ag *agent.Agent, cfg *config.Config) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	cons.WriteMessage("# Welcome to Merlin")
	cons.WriteStatus("Using model: " + cfg.Model)
	cons.WriteStatus("Type 'exit' or 'quit' to leave")

	for {
		// Drop any interrupt delivered between turns so it doesn't cancel
		// the next one.
		select {
		case <-sigCh:
			cons.WriteStatus("Goodbye!")
			return nil
		default:
		}

		line, err := cons.ReadLine(">>> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				cons.WriteStatus("Goodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch line {
		case "":
			continue
		case "exit", "quit":
			cons.WriteStatus("Goodbye!")
			return nil
		}

		if err := runTurn(ctx, sigCh, cons, ag, line); err != nil {
			cons.WriteError(err.Error())
			cons.WriteStatus("Please try again with a different query.")
		}
	}
}

// runTurn executes one turn under a context that a SIGINT cancels.
func runTurn(ctx context.Context, sigCh <-chan os.Signal, cons *console.Console, ag *agent.Agent, line string) error {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-turnCtx.Done():
		}
	}()

	reply, err := ag.RunTurn(turnCtx, line)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			cons.WriteStatus("Turn interrupted.")
			return nil
		}
		return err
	}

	cons.WriteMessage(reply)
	return nil
}
