// Package invocation assembles the packer command line for one build: the
// executable, parameters from both scopes, variable file flags, the debug
// switch and the template, plus the directory packer runs in.
package invocation

import (
	"context"
	"strings"

	"github.com/grovetools/packerci/command"
	"github.com/grovetools/packerci/config"
	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/logging"
	"github.com/grovetools/packerci/pkg/envvars"
	"github.com/grovetools/packerci/pkg/materialize"
	"github.com/grovetools/packerci/pkg/platform"
	"github.com/grovetools/packerci/pkg/resolver"
	"github.com/grovetools/packerci/pkg/variables"
	"github.com/sirupsen/logrus"
)

const (
	// TemplatePrefix and TemplateSuffix name materialized inline templates.
	TemplatePrefix = "packer"
	TemplateSuffix = ".json"

	debugFlag = "-debug"
)

// ExecutableResolver picks the packer binary for a build.
type ExecutableResolver interface {
	Resolve(ctx context.Context, req resolver.Request) (string, error)
}

// Request is the input of a single build.
type Request struct {
	Installation config.Installation
	Job          config.Job
	Workspace    platform.Path
	Node         platform.Node
	Env          envvars.EnvVars
}

// Builder turns a Request into a Plan.
type Builder struct {
	resolver     ExecutableResolver
	materializer materialize.Materializer
	logger       *logrus.Entry
}

// NewBuilder returns a builder using res for executables and m for temp files.
func NewBuilder(res ExecutableResolver, m materialize.Materializer) *Builder {
	return &Builder{
		resolver:     res,
		materializer: m,
		logger:       logging.NewLogger("invocation"),
	}
}

// Build resolves the executable, materializes variables and any inline
// template into the working directory and returns the complete plan. Files
// created before a failure stay on disk.
func (b *Builder) Build(ctx context.Context, req Request) (*Plan, error) {
	job := req.Job
	inst := req.Installation

	source, err := selectTemplate(job, inst)
	if err != nil {
		return nil, err
	}

	exe, err := b.resolver.Resolve(ctx, resolver.Request{
		Installation: inst,
		PackerHome:   job.PackerHome,
		Workspace:    req.Workspace,
		Node:         req.Node,
		Env:          req.Env,
	})
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	plan.add(exe, false)
	plan.add("build", false)

	for _, p := range splitParams(inst.Params, req.Env) {
		plan.add(p, true)
	}
	for _, p := range splitParams(job.Params, req.Env) {
		plan.add(p, false)
	}

	wd := WorkingDir(req.Workspace, job.ChangeDir, req.Env)
	plan.Dir = wd.Value
	b.logger.WithField("dir", plan.Dir).Info("Using working dir")

	resolved := variables.Resolve(inst.Variables, job.Variables)
	materialized, err := variables.Materialize(ctx, b.materializer, resolved, plan.Dir)
	plan.TempFiles = append(plan.TempFiles, variables.Paths(materialized)...)
	if err != nil {
		return nil, err
	}
	for _, flag := range variables.Flags(materialized) {
		plan.add(flag, false)
	}

	if job.UseDebug {
		plan.add(debugFlag, false)
	}

	template, err := b.template(ctx, source, req, wd, plan)
	if err != nil {
		return nil, err
	}
	plan.add(template, false)

	return plan, nil
}

// templateSource is the outcome of the mode state machine: either inline text
// to materialize or a file path to resolve.
type templateSource struct {
	scope string
	mode  config.TemplateMode
	text  string
	file  string
}

// selectTemplate runs the template mode state machine. A global job defers to
// the installation, which may itself only be text or file.
func selectTemplate(job config.Job, inst config.Installation) (templateSource, error) {
	switch {
	case config.ModeGlobal.Is(string(job.Mode)):
		switch {
		case config.ModeText.Is(string(inst.Mode)):
			return templateSource{scope: "installation", mode: config.ModeText, text: inst.Text}, nil
		case config.ModeFile.Is(string(inst.Mode)):
			return templateSource{scope: "installation", mode: config.ModeFile, file: inst.File}, nil
		default:
			return templateSource{}, errors.UnknownTemplateMode("installation", string(inst.Mode)).
				WithDetail("installation", inst.Name)
		}
	case config.ModeText.Is(string(job.Mode)):
		return templateSource{scope: "job", mode: config.ModeText, text: job.Text}, nil
	case config.ModeFile.Is(string(job.Mode)):
		return templateSource{scope: "job", mode: config.ModeFile, file: job.File}, nil
	default:
		return templateSource{}, errors.UnknownTemplateMode("job", string(job.Mode))
	}
}

func (b *Builder) template(ctx context.Context, src templateSource, req Request, wd platform.Path, plan *Plan) (string, error) {
	logger := b.logger.WithFields(logrus.Fields{"scope": src.scope, "mode": src.mode})

	if src.mode == config.ModeText {
		if src.text == "" {
			return "", errors.ConfigInvalid("inline template text is empty").
				WithDetail("scope", src.scope)
		}
		path, err := b.materializer.CreateTextTempFile(ctx, wd.Value, TemplatePrefix, TemplateSuffix, src.text)
		if err != nil {
			return "", errors.MaterializationFailed("template", err).WithDetail("dir", wd.Value)
		}
		plan.TempFiles = append(plan.TempFiles, path)
		logger.WithField("template", path).Info("Using template text")
		return path, nil
	}

	file := strings.TrimSpace(req.Env.Expand(src.file))
	if file == "" {
		return "", errors.ConfigInvalid("template file path is empty").
			WithDetail("scope", src.scope)
	}
	path := TemplatePath(req.Workspace, req.Job.ChangeDir, file, req.Env).Value
	logger.WithField("template", path).Info("Using template file")
	return path, nil
}

// WorkingDir is the job's change directory resolved against the workspace, or
// the workspace itself when none is set.
func WorkingDir(workspace platform.Path, changeDir string, env envvars.EnvVars) platform.Path {
	return workspace.Child(strings.TrimSpace(env.Expand(changeDir)))
}

// TemplatePath resolves workspace / changeDir / template. Blank parts are
// skipped and an absolute part replaces everything before it.
func TemplatePath(workspace platform.Path, changeDir, template string, env envvars.EnvVars) platform.Path {
	path := workspace
	for _, part := range []string{changeDir, template} {
		path = path.Child(strings.TrimSpace(env.Expand(part)))
	}
	return path
}

// splitParams tokenizes a raw parameter string, drops blank tokens and
// expands macros in each remaining token.
func splitParams(raw string, env envvars.EnvVars) []string {
	var out []string
	for _, token := range command.Tokenize(raw) {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		out = append(out, env.Expand(token))
	}
	return out
}
