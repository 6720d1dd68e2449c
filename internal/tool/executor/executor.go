// Package executor runs subprocesses with capped output collection and
// wall-clock timeouts. It performs no path validation of its own; callers are
// responsible for resolving the working directory through the sandbox first.
package executor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	TimedOut  bool
}

// gracePeriod is how long a process gets to exit after an interrupt before it
// is killed outright.
const gracePeriod = 2 * time.Second

// OSCommandExecutor implements command execution using os/exec.
type OSCommandExecutor struct {
	maxOutputBytes int64
}

// NewOSCommandExecutor creates an executor that caps each captured stream at
// maxOutputBytes.
func NewOSCommandExecutor(maxOutputBytes int64) *OSCommandExecutor {
	if maxOutputBytes < 1 {
		panic("maxOutputBytes must be >= 1")
	}
	return &OSCommandExecutor{maxOutputBytes: maxOutputBytes}
}

// RunWithTimeout executes argv in dir and waits for completion. On timeout the
// process receives an interrupt, then a kill after a grace period, and the
// result reports TimedOut with exit code -1 alongside ErrTimeout. Context
// cancellation kills the process immediately and returns the context error.
func (f *OSCommandExecutor) RunWithTimeout(ctx context.Context, argv []string, dir string, env []string, timeout time.Duration) (*Result, error) {
	if len(argv) == 0 {
		return nil, os.ErrInvalid
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &CommandError{Cmd: argv[0], Cause: err, Stage: "start"}
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, &CommandError{Cmd: argv[0], Cause: err, Stage: "start"}
	}

	if err := cmd.Start(); err != nil {
		return nil, &CommandError{Cmd: argv[0], Cause: err, Stage: "start"}
	}

	// Collect output concurrently so it doesn't block the timeout select.
	var stdoutStr, stderrStr string
	var truncated bool
	collectDone := make(chan struct{})
	go func() {
		stdoutStr, stderrStr, truncated = f.collectOutput(stdoutPipe, stderrPipe)
		close(collectDone)
	}()

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var execErr error
	timedOut := false
	select {
	case err := <-done:
		execErr = err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		execErr = ctx.Err()
	case <-time.After(timeout):
		timedOut = true
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-done:
		case <-time.After(gracePeriod):
			_ = cmd.Process.Kill()
			<-done
		}
		execErr = ErrTimeout
	}

	<-collectDone

	exitCode := 0
	if execErr != nil {
		exitCode = f.getExitCode(execErr)
	}

	return &Result{
		Stdout:    stdoutStr,
		Stderr:    stderrStr,
		ExitCode:  exitCode,
		Truncated: truncated,
		TimedOut:  timedOut,
	}, execErr
}

// StartDetached starts argv in dir as a background process in its own session
// with output discarded, and returns its PID without waiting.
func (f *OSCommandExecutor) StartDetached(argv []string, dir string, env []string) (int, error) {
	if len(argv) == 0 {
		return 0, os.ErrInvalid
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, &CommandError{Cmd: argv[0], Cause: err, Stage: "start"}
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, &CommandError{Cmd: argv[0], Cause: err, Stage: "release"}
	}
	return pid, nil
}

func (f *OSCommandExecutor) collectOutput(stdout, stderr io.Reader) (string, string, bool) {
	stdoutCollector := newCollector(f.maxOutputBytes)
	stderrCollector := newCollector(f.maxOutputBytes)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stdoutCollector, stdout)
	}()

	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderrCollector, stderr)
	}()

	wg.Wait()

	truncated := stdoutCollector.Truncated() || stderrCollector.Truncated()
	return stdoutCollector.String(), stderrCollector.String(), truncated
}

func (f *OSCommandExecutor) getExitCode(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface {
		ExitCode() int
	}
	if ec, ok := err.(exitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}
