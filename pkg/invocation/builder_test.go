package invocation

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/packerci/config"
	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/pkg/envvars"
	"github.com/grovetools/packerci/pkg/materialize"
	"github.com/grovetools/packerci/pkg/platform"
	"github.com/grovetools/packerci/pkg/resolver"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	installationTemplate = `{"builders":[{"type":"global"}]}`
	jobTemplate          = `{"builders":[{"type":"job"}]}`
)

type staticResolver struct {
	exe  string
	err  error
	last resolver.Request
}

func (s *staticResolver) Resolve(_ context.Context, req resolver.Request) (string, error) {
	s.last = req
	return s.exe, s.err
}

type fixture struct {
	fs       afero.Fs
	resolver *staticResolver
	builder  *Builder
}

func newFixture() *fixture {
	fs := afero.NewMemMapFs()
	res := &staticResolver{exe: "/opt/packer/packer"}
	return &fixture{
		fs:       fs,
		resolver: res,
		builder:  NewBuilder(res, materialize.NewFS(fs)),
	}
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(f.fs, path)
	require.NoError(t, err)
	return string(data)
}

func request(inst config.Installation, job config.Job) Request {
	return Request{
		Installation: inst,
		Job:          job,
		Workspace:    platform.RemotePath("/ws"),
		Node:         platform.Node{Name: "agent", OS: "linux", Remote: true},
		Env:          envvars.EnvVars{},
	}
}

func installation(mode config.TemplateMode) config.Installation {
	return config.NewInstallation("default", "/opt/packer", "", config.TemplateSource{
		Mode: mode,
		File: "global.json",
		Text: installationTemplate,
	})
}

func job(mode config.TemplateMode) config.Job {
	return config.Job{
		Installation:   "default",
		TemplateSource: config.TemplateSource{Mode: mode, File: "local.json", Text: jobTemplate},
	}
}

func TestTemplateStateMachine(t *testing.T) {
	tests := []struct {
		jobMode  config.TemplateMode
		instMode config.TemplateMode
		wantFile string
		wantText string
	}{
		{config.ModeGlobal, config.ModeText, "", installationTemplate},
		{config.ModeGlobal, config.ModeFile, "/ws/global.json", ""},
		{config.ModeText, config.ModeText, "", jobTemplate},
		{config.ModeText, config.ModeFile, "", jobTemplate},
		{config.ModeFile, config.ModeText, "/ws/local.json", ""},
		{config.ModeFile, config.ModeFile, "/ws/local.json", ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("job %s installation %s", tt.jobMode, tt.instMode), func(t *testing.T) {
			f := newFixture()
			plan, err := f.builder.Build(context.Background(), request(installation(tt.instMode), job(tt.jobMode)))
			require.NoError(t, err)

			template := plan.Template()
			if tt.wantFile != "" {
				assert.Equal(t, tt.wantFile, template)
				assert.Empty(t, plan.TempFiles)
				return
			}

			require.Len(t, plan.TempFiles, 1)
			assert.Equal(t, plan.TempFiles[0], template)
			assert.Equal(t, "/ws", filepath.Dir(template))
			assert.True(t, strings.HasPrefix(filepath.Base(template), TemplatePrefix))
			assert.True(t, strings.HasSuffix(template, TemplateSuffix))
			assert.Equal(t, tt.wantText, f.read(t, template))
		})
	}
}

func TestUnknownTemplateModes(t *testing.T) {
	tests := []struct {
		name string
		inst config.Installation
		job  config.Job
	}{
		{"job mode unset", installation(config.ModeText), job("")},
		{"job mode bogus", installation(config.ModeText), job("inline")},
		{"installation global", installation(config.ModeGlobal), job(config.ModeGlobal)},
		{"installation bogus", installation("bogus"), job(config.ModeGlobal)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.builder.Build(context.Background(), request(tt.inst, tt.job))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeTemplateModeUnknown))
			assert.True(t, errors.IsConfiguration(err))

			empty, _ := afero.IsEmpty(f.fs, "/")
			assert.True(t, empty, "nothing materialized")
		})
	}
}

func TestEmptyTemplateInputs(t *testing.T) {
	f := newFixture()

	textJob := job(config.ModeText)
	textJob.Text = ""
	_, err := f.builder.Build(context.Background(), request(installation(config.ModeText), textJob))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))

	fileJob := job(config.ModeFile)
	fileJob.File = "   "
	_, err = f.builder.Build(context.Background(), request(installation(config.ModeText), fileJob))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))

	inst := installation(config.ModeFile)
	inst.File = ""
	_, err = f.builder.Build(context.Background(), request(inst, job(config.ModeGlobal)))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
}

// Overlapping variable names yield one flag carrying the job's contents.
func TestScenarioVariableOverride(t *testing.T) {
	f := newFixture()
	inst := config.NewInstallation("default", "/opt/packer", "-var 'a=b'",
		config.TemplateSource{Mode: config.ModeFile, File: "ami.json"},
		config.VariableEntry{Name: "x509_cert", Contents: "CERT"},
		config.VariableEntry{Name: "region", Contents: "us-east-1"},
	)
	j := config.Job{
		Installation:   "default",
		TemplateSource: config.TemplateSource{Mode: config.ModeGlobal},
		Params:         "-var 'ami=123'",
		Variables:      []config.VariableEntry{{Name: "region", Contents: "eu-west-1"}},
	}

	plan, err := f.builder.Build(context.Background(), request(inst, j))
	require.NoError(t, err)

	argv := plan.Argv()
	assert.Equal(t, []string{"/opt/packer/packer", "build", "-var", "a=b", "-var", "ami=123"}, argv[:6])

	var regionFlags []string
	varCount := 0
	for i, a := range argv {
		if a == "-var" {
			varCount++
		}
		if strings.HasPrefix(a, "region=") {
			regionFlags = append(regionFlags, a)
			assert.Equal(t, "-var", argv[i-1])
		}
	}
	assert.Equal(t, 4, varCount)
	require.Len(t, regionFlags, 1)

	path := strings.TrimPrefix(regionFlags[0], "region=")
	assert.Equal(t, "eu-west-1", f.read(t, path))
	assert.Len(t, plan.TempFiles, 2)
	assert.Equal(t, "/ws/ami.json", plan.Template())
}

func TestScenarioFileTemplate(t *testing.T) {
	f := newFixture()
	j := job(config.ModeFile)
	j.File = "somefile.json"

	plan, err := f.builder.Build(context.Background(), request(installation(config.ModeText), j))
	require.NoError(t, err)
	assert.Equal(t, "/ws/somefile.json", plan.Template())
	assert.Empty(t, plan.TempFiles)

	empty, _ := afero.IsEmpty(f.fs, "/")
	assert.True(t, empty)
}

func TestScenarioDebugPlacement(t *testing.T) {
	f := newFixture()
	inst := config.NewInstallation("default", "/opt/packer", "",
		config.TemplateSource{Mode: config.ModeFile, File: "ami.json"},
		config.VariableEntry{Name: "a", Contents: "1"},
		config.VariableEntry{Name: "b", Contents: "2"},
	)
	j := job(config.ModeGlobal)
	j.UseDebug = true

	plan, err := f.builder.Build(context.Background(), request(inst, j))
	require.NoError(t, err)

	argv := plan.Argv()
	n := len(argv)
	assert.Equal(t, "-debug", argv[n-2])
	assert.Equal(t, "/ws/ami.json", argv[n-1])

	lastVar := -1
	for i, a := range argv {
		if a == "-var" {
			lastVar = i
		}
	}
	assert.Equal(t, n-4, lastVar, "-debug follows the last -var pair")
}

func TestParamsMaskingAndExpansion(t *testing.T) {
	f := newFixture()
	inst := config.NewInstallation("default", "/opt/packer", `-var "secret=${TOKEN}"  -color=false`,
		config.TemplateSource{Mode: config.ModeFile, File: "ami.json"})
	j := job(config.ModeGlobal)
	j.Params = "-var 'build=${BUILD_NUMBER}' -only=amazon-ebs ''"

	req := request(inst, j)
	req.Env = envvars.EnvVars{"TOKEN": "hunter2", "BUILD_NUMBER": "42"}
	plan, err := f.builder.Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []Arg{
		{Value: "/opt/packer/packer"},
		{Value: "build"},
		{Value: "-var", Masked: true},
		{Value: "secret=hunter2", Masked: true},
		{Value: "-color=false", Masked: true},
		{Value: "-var"},
		{Value: "build=42"},
		{Value: "-only=amazon-ebs"},
		{Value: "/ws/ami.json"},
	}, plan.Args)

	rendered := plan.String()
	assert.NotContains(t, rendered, "hunter2")
	assert.Equal(t, "/opt/packer/packer build ****** ****** ****** -var build=42 -only=amazon-ebs /ws/ami.json", rendered)
}

func TestWorkingDirectory(t *testing.T) {
	f := newFixture()
	inst := config.NewInstallation("default", "/opt/packer", "", config.TemplateSource{Text: installationTemplate},
		config.VariableEntry{Name: "a", Contents: "1"})
	j := job(config.ModeGlobal)
	j.ChangeDir = "images/${FLAVOR}"

	req := request(inst, j)
	req.Env = envvars.EnvVars{"FLAVOR": "base"}
	plan, err := f.builder.Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "/ws/images/base", plan.Dir)
	require.Len(t, plan.TempFiles, 2)
	for _, p := range plan.TempFiles {
		assert.Equal(t, "/ws/images/base", filepath.Dir(p))
	}

	fileJob := job(config.ModeFile)
	fileJob.ChangeDir = "/abs/dir"
	plan, err = f.builder.Build(context.Background(), request(inst, fileJob))
	require.NoError(t, err)
	assert.Equal(t, "/abs/dir", plan.Dir)
	assert.Equal(t, "/abs/dir/local.json", plan.Template())
}

func TestResolverRequestAndFailure(t *testing.T) {
	f := newFixture()
	j := job(config.ModeFile)
	j.PackerHome = "bin"
	_, err := f.builder.Build(context.Background(), request(installation(config.ModeText), j))
	require.NoError(t, err)
	assert.Equal(t, "bin", f.resolver.last.PackerHome)
	assert.Equal(t, "default", f.resolver.last.Installation.Name)
	assert.Equal(t, "/ws", f.resolver.last.Workspace.Value)

	f.resolver.err = errors.ExecutableNotFound("default", "/opt/packer")
	_, err = f.builder.Build(context.Background(), request(installation(config.ModeText), job(config.ModeText)))
	assert.True(t, errors.Is(err, errors.ErrCodeExecutableNotFound))
}

func TestMaterializationFailure(t *testing.T) {
	res := &staticResolver{exe: "packer"}
	b := NewBuilder(res, materialize.NewFS(afero.NewReadOnlyFs(afero.NewMemMapFs())))

	_, err := b.Build(context.Background(), request(installation(config.ModeText), job(config.ModeGlobal)))
	assert.True(t, errors.IsMaterialization(err))

	inst := installation(config.ModeFile)
	inst.Variables = []config.VariableEntry{{Name: "a", Contents: "1"}}
	_, err = b.Build(context.Background(), request(inst, job(config.ModeGlobal)))
	assert.True(t, errors.IsMaterialization(err))
}

func TestWindowsWorkspace(t *testing.T) {
	f := newFixture()
	req := request(installation(config.ModeText), job(config.ModeFile))
	req.Workspace = platform.RemotePath(`C:\ci\ws`)
	req.Job.ChangeDir = "images"
	req.Job.File = "tpl/ami.json"

	plan, err := f.builder.Build(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `C:\ci\ws\images`, plan.Dir)
	assert.Equal(t, `C:\ci\ws\images\tpl\ami.json`, plan.Template())
}
