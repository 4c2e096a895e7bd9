// Package resolver decides which packer executable a build runs.
//
// Two strategies exist. Without a job-level home the configured installation is
// specialized for the node and the build environment, and its home must hold a
// packer binary named for the node's real OS. With a job-level home the path
// is taken literally, resolved against the workspace, and the binary name is
// chosen from the shape of that path.
package resolver

import (
	"context"
	"os"
	"strings"

	"github.com/grovetools/packerci/config"
	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/logging"
	"github.com/grovetools/packerci/pkg/envvars"
	"github.com/grovetools/packerci/pkg/platform"
	"github.com/sirupsen/logrus"
)

// Request carries everything needed to pick an executable.
type Request struct {
	Installation config.Installation
	// PackerHome is the job-level override. Empty means use the installation.
	PackerHome string
	Workspace  platform.Path
	Node       platform.Node
	// Env is the build environment.
	Env envvars.EnvVars
}

// Resolver resolves packer executables.
type Resolver struct {
	processEnv envvars.EnvVars
	logger     *logrus.Entry
}

// New returns a resolver that expands installation homes against the
// current process environment.
func New() *Resolver {
	return NewWithEnv(envvars.FromOS())
}

// NewWithEnv returns a resolver that expands installation homes against
// processEnv.
func NewWithEnv(processEnv envvars.EnvVars) *Resolver {
	return &Resolver{
		processEnv: processEnv,
		logger:     logging.NewLogger("resolver"),
	}
}

// Resolve returns the executable path for req.
func (r *Resolver) Resolve(ctx context.Context, req Request) (string, error) {
	home := strings.TrimSpace(req.PackerHome)
	if home != "" {
		exe := LiteralExecutable(req.Workspace, req.Env.Expand(home))
		r.logger.WithField("packer", exe).Info("Using packer")
		return exe, nil
	}

	inst := req.Installation.ForNode(req.Node).ForEnvironment(req.Env)
	exe, found, err := locate(ctx, inst, req.Node, r.processEnv)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExecutableNotFound,
			"tool installation failed for: "+inst.Name).
			WithDetail("installation", inst.Name)
	}
	if !found {
		return "", errors.ExecutableNotFound(inst.Name, inst.Home)
	}
	r.logger.WithFields(logrus.Fields{
		"packer":       exe,
		"installation": inst.Name,
		"node":         req.Node.Name,
	}).Info("Using packer")
	return exe, nil
}

// LiteralExecutable resolves a job-level home against the workspace. A home
// already ending in packer.exe (any case) is used as is; otherwise the binary
// name follows the inferred path style of the result.
func LiteralExecutable(workspace platform.Path, home string) string {
	path := workspace.Child(strings.TrimSpace(home))
	if strings.HasSuffix(strings.ToLower(home), platform.WindowsPackerCommand) {
		return path.Value
	}
	if platform.IsUnix(path) {
		return path.Child(platform.UnixPackerCommand).Value
	}
	return path.Child(platform.WindowsPackerCommand).Value
}

// LocateExecutable looks for the packer binary inside inst's home on node,
// after expanding the home against the process environment. It reports false
// when no such file exists.
func LocateExecutable(ctx context.Context, inst config.Installation, node platform.Node) (string, bool, error) {
	return locate(ctx, inst, node, envvars.FromOS())
}

func locate(ctx context.Context, inst config.Installation, node platform.Node, processEnv envvars.EnvVars) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	home := processEnv.Expand(inst.Home)
	if home == "" {
		return "", false, nil
	}

	exe := joinForOS(home, platform.ExecutableName(node.OS), node.IsWindows())
	info, err := node.Filesystem().Stat(exe)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if info.IsDir() {
		return "", false, nil
	}
	return exe, true, nil
}

// joinForOS joins using the node's real separator, which may differ from the
// shape-based choice LiteralExecutable makes.
func joinForOS(home, name string, windows bool) string {
	sep := "/"
	if windows {
		sep = `\`
	}
	return strings.TrimRight(home, `/\`) + sep + name
}
