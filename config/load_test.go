package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grovetools/packerci/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const installationsYAML = `
logging:
  level: debug
installations:
  - name: default
    home: /opt/packer/
    params: "-color=false"
    template_text: '{"builders":[]}'
    variables:
      - name: region
        contents: us-east-1
  - name: files
    home: /usr/local/bin
    template_mode: file
    template: templates/ami.json
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadInstallationsYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "installations.yml", installationsYAML)

	file, err := LoadInstallations(path)
	require.NoError(t, err)
	require.Len(t, file.Installations, 2)

	def := file.Installations[0]
	assert.Equal(t, "default", def.Name)
	assert.Equal(t, "/opt/packer", def.Home)
	assert.Equal(t, ModeText, def.Mode)
	assert.Equal(t, `{"builders":[]}`, def.Text)
	assert.Equal(t, []VariableEntry{{Name: "region", Contents: "us-east-1"}}, def.Variables)

	files := file.Installations[1]
	assert.Equal(t, ModeFile, files.Mode)
	assert.Equal(t, "templates/ami.json", files.File)

	require.NotNil(t, file.Logging)
	assert.Equal(t, "debug", file.Logging.Level)
}

func TestLoadInstallationsTOML(t *testing.T) {
	content := `
[[installations]]
name = "default"
home = "C:\\packer\\"
template_mode = "file"
template = "ami.json"

[[installations.variables]]
name = "region"
contents = "eu-west-1"
`
	path := writeFile(t, t.TempDir(), "installations.toml", content)

	file, err := LoadInstallations(path)
	require.NoError(t, err)
	require.Len(t, file.Installations, 1)
	inst := file.Installations[0]
	assert.Equal(t, `C:\packer`, inst.Home)
	assert.Equal(t, ModeFile, inst.Mode)
	assert.Equal(t, "ami.json", inst.File)
	assert.Equal(t, "eu-west-1", inst.Variables[0].Contents)
	assert.Nil(t, file.Logging)
}

func TestLoadInstallationsLegacyShapes(t *testing.T) {
	content := `
installations:
  - name: legacy
    home: /opt/packer
    template_mode:
      value: file
      jsonTemplate: legacy.json
      jsonTemplateText: ignored-here
    variables:
      - var_file_name: x509_cert
        contents: CERT
`
	file, err := LoadInstallationsFromBytes([]byte(content), FormatYAML)
	require.NoError(t, err)
	inst := file.Installations[0]
	assert.Equal(t, ModeFile, inst.Mode)
	assert.Equal(t, "legacy.json", inst.File)
	assert.Equal(t, "ignored-here", inst.Text)
	assert.Equal(t, "x509_cert", inst.Variables[0].Name)
}

func TestLoadInstallationsErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadInstallations(filepath.Join(t.TempDir(), "nope.yml"))
		assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
		assert.True(t, errors.IsConfiguration(err))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadInstallationsFromBytes([]byte("installations: [\n"), FormatYAML)
		assert.True(t, errors.Is(err, errors.ErrCodeConfigInvalid))
	})

	t.Run("unknown mode", func(t *testing.T) {
		content := "installations:\n  - name: x\n    template_mode: bogus\n"
		_, err := LoadInstallationsFromBytes([]byte(content), FormatYAML)
		assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
	})

	t.Run("unknown key", func(t *testing.T) {
		content := "installations:\n  - name: x\n    hmoe: /opt\n"
		_, err := LoadInstallationsFromBytes([]byte(content), FormatYAML)
		assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
	})

	t.Run("missing name", func(t *testing.T) {
		content := "installations:\n  - home: /opt\n"
		_, err := LoadInstallationsFromBytes([]byte(content), FormatYAML)
		assert.True(t, errors.IsConfiguration(err))
	})

	t.Run("duplicate names", func(t *testing.T) {
		content := "installations:\n  - name: x\n  - name: x\n"
		_, err := LoadInstallationsFromBytes([]byte(content), FormatYAML)
		assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation))
	})
}

func TestLoadInstallationsEnvDefaults(t *testing.T) {
	t.Setenv("PACKERCI_TEST_HOME", "/env/packer")
	content := `
installations:
  - name: default
    home: ${PACKERCI_TEST_HOME:-/opt/packer}
    params: "-var build=${BUILD_NUMBER} -var tag=${PACKERCI_TEST_UNSET:-none}"
`
	file, err := LoadInstallationsFromBytes([]byte(content), FormatYAML)
	require.NoError(t, err)
	inst := file.Installations[0]
	assert.Equal(t, "/env/packer", inst.Home)
	assert.Equal(t, "-var build=${BUILD_NUMBER} -var tag=none", inst.Params)
}

func TestLoadJob(t *testing.T) {
	content := `
installation: default
template_mode: file
template: somefile.json
params: "-only=amazon-ebs"
use_debug: true
change_dir: images/base
variables:
  - name: region
    contents: eu-west-1
`
	path := writeFile(t, t.TempDir(), "job.yml", content)
	job, err := LoadJob(path)
	require.NoError(t, err)
	assert.Equal(t, "default", job.Installation)
	assert.Equal(t, ModeFile, job.Mode)
	assert.Equal(t, "somefile.json", job.File)
	assert.True(t, job.UseDebug)
	assert.Equal(t, "images/base", job.ChangeDir)
	assert.Len(t, job.Variables, 1)
}

func TestLoadJobDefaultsToGlobal(t *testing.T) {
	job, err := LoadJobFromBytes([]byte("installation: default\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, ModeGlobal, job.Mode)
	assert.False(t, job.UseDebug)
}

func TestLoadJobTOMLObjectMode(t *testing.T) {
	content := `
installation = "default"
packer_home = "/opt/custom"

[template_mode]
value = "text"
jsonTemplateText = "{}"
`
	job, err := LoadJobFromBytes([]byte(content), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, ModeText, job.Mode)
	assert.Equal(t, "{}", job.Text)
	assert.Equal(t, "/opt/custom", job.PackerHome)
}

func TestLoadJobErrors(t *testing.T) {
	_, err := LoadJobFromBytes([]byte("template_mode: file\n"), FormatYAML)
	assert.True(t, errors.IsConfiguration(err))

	_, err = LoadJobFromBytes([]byte("installation: x\nuse_debug: maybe\n"), FormatYAML)
	assert.True(t, errors.IsConfiguration(err))

	_, err = LoadJob(filepath.Join(t.TempDir(), "job.yml"))
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatForPath("x/installations.toml"))
	assert.Equal(t, FormatTOML, FormatForPath("X.TOML"))
	assert.Equal(t, FormatYAML, FormatForPath("installations.yml"))
	assert.Equal(t, FormatYAML, FormatForPath("installations"))
}
