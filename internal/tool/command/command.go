// Package command implements the run_commands tool: sequential shell command
// execution inside the directory sandbox, with cd tracking, background mode
// and per-step result aggregation.
package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Cyclone1070/merlin/internal/config"
	"github.com/Cyclone1070/merlin/internal/tool/executor"
)

// Tool executes shell commands on the local machine. It keeps a session
// working directory that `cd` steps mutate; the agent loop is single-threaded
// so the field needs no locking.
type Tool struct {
	executor   commandExecutor
	sandbox    pathResolver
	config     *config.Config
	workingDir string
}

// New creates a command Tool with injected dependencies. The session working
// directory starts at the sandbox's cwd root.
func New(exec commandExecutor, sb pathResolver, cfg *config.Config) *Tool {
	if exec == nil {
		panic("executor is required")
	}
	if sb == nil {
		panic("sandbox is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	return &Tool{
		executor:   exec,
		sandbox:    sb,
		config:     cfg,
		workingDir: sb.Cwd(),
	}
}

// WorkingDir returns the current session working directory.
func (t *Tool) WorkingDir() string {
	return t.workingDir
}

// Run executes each command in order. The working directory is resolved
// through the sandbox before any process is spawned; a rejection aborts the
// whole request. Individual command failures (non-zero exit, timeout, spawn
// error) are recorded per step and never abort the remaining steps, so the
// model always gets a complete transcript to react to.
func (t *Tool) Run(ctx context.Context, req Request) (Response, error) {
	dir := t.workingDir
	if req.WorkingDir != "" {
		resolved, err := t.sandbox.Resolve(req.WorkingDir)
		if err != nil {
			return Response{}, err
		}
		dir = resolved
	}

	timeout := time.Duration(t.config.CommandTimeoutSeconds) * time.Second
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(req.TimeoutSeconds) * time.Second
	}

	steps := make([]Step, 0, len(req.Commands))
	for _, raw := range req.Commands {
		if ctx.Err() != nil {
			return Response{}, ctx.Err()
		}

		if target, ok := cdTarget(raw); ok {
			step := t.changeDirectory(target)
			// Later steps in this request follow the cd, like a real shell session.
			if step.ExitCode == 0 {
				dir = t.workingDir
			}
			steps = append(steps, step)
			continue
		}

		if req.Background {
			steps = append(steps, t.startBackground(raw, dir))
			continue
		}

		steps = append(steps, t.runForeground(ctx, raw, dir, timeout))
	}

	return Response{Steps: steps, WorkingDir: t.workingDir}, nil
}

// changeDirectory handles a cd step without spawning a process. The target
// must resolve inside the sandbox and exist as a directory; failures are
// reported as a failed step, leaving the session directory unchanged.
func (t *Tool) changeDirectory(target string) Step {
	step := Step{Command: "cd " + target}

	resolved, err := t.sandbox.Resolve(target)
	if err != nil {
		step.ExitCode = 1
		step.Stderr = err.Error()
		return step
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		step.ExitCode = 1
		step.Stderr = fmt.Sprintf("directory not found: %s", resolved)
		return step
	}

	t.workingDir = resolved
	step.Note = "Changed directory to " + resolved
	return step
}

func (t *Tool) startBackground(raw, dir string) Step {
	step := Step{Command: raw}

	pid, err := t.executor.StartDetached(shellArgv(raw), dir, os.Environ())
	if err != nil {
		step.ExitCode = -1
		step.Stderr = err.Error()
		return step
	}

	step.Note = fmt.Sprintf("Started in background (pid %d)", pid)
	return step
}

func (t *Tool) runForeground(ctx context.Context, raw, dir string, timeout time.Duration) Step {
	step := Step{Command: raw}

	result, err := t.executor.RunWithTimeout(ctx, shellArgv(raw), dir, os.Environ(), timeout)
	if result != nil {
		step.ExitCode = result.ExitCode
		step.Stdout = result.Stdout
		step.Stderr = result.Stderr
		step.Truncated = result.Truncated
		step.TimedOut = result.TimedOut
	}

	switch {
	case err == nil:
	case errors.Is(err, executor.ErrTimeout):
		step.Note = fmt.Sprintf("Killed after exceeding the %s timeout", timeout)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		// Turn cancelled; surfaced by Run's ctx check on the next iteration.
		step.ExitCode = -1
		step.Stderr = err.Error()
	default:
		var cmdErr *executor.CommandError
		if errors.As(err, &cmdErr) {
			// Spawn failure: synthetic exit code with the error in stderr.
			step.ExitCode = -1
			step.Stderr = err.Error()
		}
		// Non-zero exits land here too; the exit code is already in the step.
	}

	return step
}

// cdTarget reports whether raw is a `cd` step and extracts its target.
// A bare `cd` goes to the user home directory, like a shell.
func cdTarget(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "cd" {
		return "~", true
	}
	if rest, ok := strings.CutPrefix(trimmed, "cd "); ok {
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// shellArgv wraps a raw command string for execution through the shell,
// matching how users expect pipelines and globs to behave.
func shellArgv(raw string) []string {
	return []string{"sh", "-c", raw}
}
