package command

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/logging"
	"github.com/sirupsen/logrus"
)

// Runner launches an argument vector in a working directory and reports its
// exit code. Both stdout and stderr of the child go to the caller's sink.
// Without a timeout the run is bounded only by the caller's context.
type Runner struct {
	timeout  time.Duration
	executor Executor
	logger   *logrus.Entry
}

// NewRunner creates a Runner backed by a RealExecutor
func NewRunner() *Runner {
	return NewRunnerWithExecutor(&RealExecutor{})
}

// NewRunnerWithExecutor creates a Runner with a custom Executor
func NewRunnerWithExecutor(exec Executor) *Runner {
	return &Runner{
		executor: exec,
		logger:   logging.NewLogger("runner"),
	}
}

// WithTimeout bounds each run. Zero or a negative value means no limit.
func (r *Runner) WithTimeout(timeout time.Duration) *Runner {
	if timeout < 0 {
		timeout = 0
	}
	r.timeout = timeout
	return r
}

// Timeout returns the per-run timeout, 0 when unlimited.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// Run executes argv in dir and waits for it. env entries (KEY=VALUE) are laid
// over the inherited environment. A zero exit code returns (0, nil).
// A non-zero or missing exit code is reported as a COMMAND_FAILED error along
// with the code (-1 when the process never produced one).
func (r *Runner) Run(ctx context.Context, argv []string, dir string, env []string, stdout io.Writer) (int, error) {
	if len(argv) == 0 || argv[0] == "" {
		return -1, errors.New(errors.ErrCodeInvalidInput, "command name cannot be empty")
	}
	if stdout == nil {
		stdout = io.Discard
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := r.executor.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if len(env) > 0 {
		base := cmd.Env
		if base == nil {
			base = os.Environ()
		}
		cmd.Env = append(append([]string{}, base...), env...)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stdout

	r.logger.WithField("dir", dir).Debugf("starting %s", argv[0])

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	if r.timeout > 0 && stderrors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return -1, errors.CommandTimeout(argv[0], r.timeout.String())
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		return code, errors.CommandExited(argv[0], code)
	}

	return -1, errors.CommandFailed(argv[0], fmt.Errorf("launch %s: %w", argv[0], err))
}
