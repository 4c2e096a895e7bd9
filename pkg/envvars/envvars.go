// Package envvars holds the build environment handed to a packer run and
// expands $VAR / ${VAR} macros against it.
package envvars

import (
	"os"
	"regexp"
	"sort"
	"strings"
)

var macroRegex = regexp.MustCompile(`\$([A-Za-z0-9_]+|\{[A-Za-z0-9_.]+\})`)

// EnvVars is an immutable-by-convention set of build variables.
type EnvVars map[string]string

// FromOS captures the current process environment.
func FromOS() EnvVars {
	return FromList(os.Environ())
}

// FromList parses KEY=VALUE pairs. Entries without '=' are ignored.
func FromList(list []string) EnvVars {
	env := make(EnvVars, len(list))
	for _, kv := range list {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		env[key] = value
	}
	return env
}

// Overlay returns a new set with override applied on top of e.
func (e EnvVars) Overlay(override EnvVars) EnvVars {
	merged := make(EnvVars, len(e)+len(override))
	for k, v := range e {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// Expand replaces $VAR and ${VAR} with values from e. Unknown variables are
// left in place verbatim so packer sees exactly what the user wrote.
func (e EnvVars) Expand(text string) string {
	if text == "" || !strings.Contains(text, "$") {
		return text
	}
	return macroRegex.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match[1:], "{"), "}")
		if value, ok := e[name]; ok {
			return value
		}
		return match
	})
}

// List renders the set as sorted KEY=VALUE pairs, suitable for exec.Cmd.Env.
func (e EnvVars) List() []string {
	list := make([]string, 0, len(e))
	for k, v := range e {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}
