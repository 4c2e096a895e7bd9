// Package publisher runs one packer build end to end: find the job's
// installation, assemble the plan, launch packer in the working directory and
// report how it went.
package publisher

import (
	"context"
	"io"

	"github.com/grovetools/packerci/config"
	"github.com/grovetools/packerci/logging"
	"github.com/grovetools/packerci/pkg/envvars"
	"github.com/grovetools/packerci/pkg/invocation"
	"github.com/grovetools/packerci/pkg/platform"
	"github.com/sirupsen/logrus"
)

// InstallationLookup finds installations by name. *config.Store implements it.
type InstallationLookup interface {
	Lookup(name string) (config.Installation, error)
}

// Planner builds invocation plans. *invocation.Builder implements it.
type Planner interface {
	Build(ctx context.Context, req invocation.Request) (*invocation.Plan, error)
}

// ProcessRunner launches a command. *command.Runner implements it.
type ProcessRunner interface {
	Run(ctx context.Context, argv []string, dir string, env []string, stdout io.Writer) (int, error)
}

// Build describes one build.
type Build struct {
	Job       config.Job
	Workspace platform.Path
	Node      platform.Node
	Env       envvars.EnvVars
	// Stdout receives packer's output. Nil discards it.
	Stdout io.Writer
}

// Result reports the outcome of Perform.
type Result struct {
	Success  bool
	ExitCode int
	// Plan is nil when the build failed before a plan existed.
	Plan *invocation.Plan
}

// Publisher wires lookup, planning and execution together.
type Publisher struct {
	installations InstallationLookup
	planner       Planner
	runner        ProcessRunner
	logger        *logrus.Entry
}

// New returns a publisher.
func New(installations InstallationLookup, planner Planner, runner ProcessRunner) *Publisher {
	return &Publisher{
		installations: installations,
		planner:       planner,
		runner:        runner,
		logger:        logging.NewLogger("publisher"),
	}
}

// Plan looks up the job's installation and builds the plan without running it.
// Temp files are still created.
func (p *Publisher) Plan(ctx context.Context, b Build) (*invocation.Plan, error) {
	inst, err := p.installations.Lookup(b.Job.Installation)
	if err != nil {
		return nil, err
	}
	return p.planner.Build(ctx, invocation.Request{
		Installation: inst,
		Job:          b.Job,
		Workspace:    b.Workspace,
		Node:         b.Node,
		Env:          b.Env,
	})
}

// Perform plans and runs the build. The returned Result is never nil; err is
// set whenever Success is false.
func (p *Publisher) Perform(ctx context.Context, b Build) (*Result, error) {
	logger := p.logger.WithField("installation", b.Job.Installation)

	plan, err := p.Plan(ctx, b)
	if err != nil {
		logger.WithError(err).Error("Build setup failed")
		return &Result{ExitCode: -1}, err
	}

	stdout := b.Stdout
	if stdout == nil {
		stdout = io.Discard
	}

	logger.WithField("dir", plan.Dir).Infof("launch: %s", plan)
	code, err := p.runner.Run(ctx, plan.Argv(), plan.Dir, b.Env.List(), stdout)
	result := &Result{ExitCode: code, Plan: plan, Success: err == nil && code == 0}
	if err != nil {
		logger.WithError(err).Errorf("Execution failed: %s", plan)
		return result, err
	}
	logger.WithField("exit_code", code).Info("Build finished")
	return result, nil
}

// GlobalTemplateSummary describes an installation's template for display:
// the inline text itself, or the file it points at.
func GlobalTemplateSummary(inst config.Installation) string {
	if config.ModeText.Is(string(inst.Mode)) {
		return inst.Text
	}
	return "Using File: " + inst.File
}
