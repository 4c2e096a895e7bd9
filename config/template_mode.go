package config

// TemplateMode selects where the packer template comes from.
type TemplateMode string

const (
	// ModeText materializes inline template text into a temp file.
	ModeText TemplateMode = "text"
	// ModeFile uses a template file path relative to the workspace.
	ModeFile TemplateMode = "file"
	// ModeGlobal defers to the installation's template. Only meaningful on a job.
	ModeGlobal TemplateMode = "global"
)

// Modes lists every recognized template mode.
var Modes = []TemplateMode{ModeGlobal, ModeText, ModeFile}

func (m TemplateMode) String() string {
	return string(m)
}

// Is reports whether candidate is exactly this mode's identifier.
func (m TemplateMode) Is(candidate string) bool {
	return candidate != "" && string(m) == candidate
}

// Valid reports whether m is one of the recognized modes.
func (m TemplateMode) Valid() bool {
	_, ok := ParseTemplateMode(string(m))
	return ok
}

// ParseTemplateMode maps an identifier to its mode.
func ParseTemplateMode(s string) (TemplateMode, bool) {
	for _, m := range Modes {
		if m.Is(s) {
			return m, true
		}
	}
	return "", false
}

// IsGlobalChecked reports whether a job's template selector should display as
// global. Anything that is not explicitly file or text, including an unset
// mode, falls back to global.
func IsGlobalChecked(mode TemplateMode) bool {
	return !ModeFile.Is(string(mode)) && !ModeText.Is(string(mode))
}
