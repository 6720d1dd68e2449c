package command

import (
	"context"
	"time"

	"github.com/Cyclone1070/merlin/internal/tool/executor"
)

// commandExecutor is the minimal executor interface this tool needs.
type commandExecutor interface {
	RunWithTimeout(ctx context.Context, argv []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
	StartDetached(argv []string, dir string, env []string) (int, error)
}

// pathResolver validates paths against the directory sandbox.
type pathResolver interface {
	Resolve(path string) (string, error)
	Cwd() string
}
