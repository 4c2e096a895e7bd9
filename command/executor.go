package command

import (
	"context"
	"os/exec"
)

// Executor creates exec.Cmd instances for the runner. Tests inject one that
// points packer at a helper process instead of a real binary.
type Executor interface {
	// CommandContext creates a new context-aware exec.Cmd instance.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// CommandContext calls f.
func (f ExecutorFunc) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return f(ctx, name, args...)
}

// RealExecutor is the production Executor backed by os/exec.
type RealExecutor struct{}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...) //nolint:gosec // argv is assembled by invocation.Builder
}
