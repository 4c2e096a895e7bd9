package config

import (
	"strings"

	"github.com/grovetools/packerci/logging"
	"github.com/grovetools/packerci/pkg/envvars"
	"github.com/grovetools/packerci/pkg/platform"
)

// VariableEntry is a named blob of text handed to packer as a var file path.
type VariableEntry struct {
	Name     string `yaml:"name" toml:"name" jsonschema:"required,description=Packer variable name the file path is bound to"`
	Contents string `yaml:"contents" toml:"contents" jsonschema:"description=Text written to the variable's temp file"`
}

// TemplateSource says where a template comes from.
type TemplateSource struct {
	Mode TemplateMode `yaml:"template_mode,omitempty" toml:"template_mode,omitempty" jsonschema:"enum=global,enum=text,enum=file,description=Template source selector"`
	File string       `yaml:"template,omitempty" toml:"template,omitempty" jsonschema:"description=Template path relative to the workspace (file mode)"`
	Text string       `yaml:"template_text,omitempty" toml:"template_text,omitempty" jsonschema:"description=Inline template text (text mode)"`
}

// Installation is a named, globally configured packer setup.
type Installation struct {
	Name           string `yaml:"name" toml:"name" jsonschema:"required,description=Installation name jobs refer to"`
	Home           string `yaml:"home" toml:"home" jsonschema:"description=Directory containing the packer executable"`
	Params         string `yaml:"params,omitempty" toml:"params,omitempty" jsonschema:"description=Extra packer build parameters; masked in logs"`
	TemplateSource `yaml:",inline"`
	Variables      []VariableEntry `yaml:"variables,omitempty" toml:"variables,omitempty" jsonschema:"description=Global variable files"`
}

// Job is the per-build configuration.
type Job struct {
	Installation   string `yaml:"installation" toml:"installation" jsonschema:"required,description=Name of the packer installation to use"`
	TemplateSource `yaml:",inline"`
	PackerHome     string          `yaml:"packer_home,omitempty" toml:"packer_home,omitempty" jsonschema:"description=Literal packer home overriding the installation"`
	Params         string          `yaml:"params,omitempty" toml:"params,omitempty" jsonschema:"description=Extra packer build parameters"`
	Variables      []VariableEntry `yaml:"variables,omitempty" toml:"variables,omitempty" jsonschema:"description=Job variable files; override global entries by name"`
	UseDebug       bool            `yaml:"use_debug,omitempty" toml:"use_debug,omitempty" jsonschema:"description=Pass -debug to packer"`
	ChangeDir      string          `yaml:"change_dir,omitempty" toml:"change_dir,omitempty" jsonschema:"description=Working directory relative to the workspace"`
}

// InstallationsFile is the on-disk shape of the installations registry.
type InstallationsFile struct {
	Logging       *logging.Config `yaml:"logging,omitempty" toml:"logging,omitempty" jsonschema:"description=Logging settings for packerci"`
	Installations []Installation  `yaml:"installations" toml:"installations" jsonschema:"required,description=Configured packer installations"`
}

// NewInstallation builds an installation with the default text template mode
// and a laundered home.
func NewInstallation(name, home, params string, template TemplateSource, variables ...VariableEntry) Installation {
	inst := Installation{
		Name:           name,
		Home:           LaunderHome(home),
		Params:         params,
		TemplateSource: template,
		Variables:      variables,
	}
	inst.SetDefaults()
	return inst
}

// SetDefaults fills unset fields.
func (i *Installation) SetDefaults() {
	if i.Mode == "" {
		i.Mode = ModeText
	}
	i.Home = LaunderHome(i.Home)
}

// SetDefaults fills unset fields.
func (j *Job) SetDefaults() {
	if j.Mode == "" {
		j.Mode = ModeGlobal
	}
	j.PackerHome = strings.TrimSpace(j.PackerHome)
}

// LaunderHome removes one trailing '/' or '\' from a configured home.
func LaunderHome(home string) string {
	return platform.TrimTrailingSeparator(home)
}

// ForEnvironment returns a copy of the installation with its home
// macro-expanded against env.
func (i Installation) ForEnvironment(env envvars.EnvVars) Installation {
	out := i.clone()
	out.Home = LaunderHome(env.Expand(i.Home))
	return out
}

// ForNode returns a copy of the installation with its home replaced by the
// node's tool location, when the node configures one.
func (i Installation) ForNode(node platform.Node) Installation {
	out := i.clone()
	if home, ok := node.ToolHome(i.Name); ok {
		out.Home = LaunderHome(home)
	}
	return out
}

func (i Installation) clone() Installation {
	out := i
	if i.Variables != nil {
		out.Variables = append([]VariableEntry(nil), i.Variables...)
	}
	return out
}
