// Package platform models where a build runs: the node, its filesystem, and
// the shape of paths on it. The node may not be the machine evaluating the
// path, so path style is inferred from the path string rather than runtime.GOOS.
package platform

import (
	"os"
	"regexp"
	"strings"
)

const (
	// UnixPackerCommand is the packer binary name on Unix-like nodes.
	UnixPackerCommand = "packer"
	// WindowsPackerCommand is the packer binary name on Windows nodes.
	WindowsPackerCommand = "packer.exe"
)

var drivePattern = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// Path is a path string on some node. Remote is true when the node is not the
// machine this process runs on.
type Path struct {
	Remote bool
	Value  string
}

// LocalPath wraps a path on this machine.
func LocalPath(p string) Path {
	return Path{Value: p}
}

// RemotePath wraps a path on another node.
func RemotePath(p string) Path {
	return Path{Remote: true, Value: p}
}

func (p Path) String() string {
	return p.Value
}

// IsUnix reports whether p uses Unix path conventions. Local paths follow this
// process's own convention. Remote paths are Windows-style when they look like
// X:\... or contain any backslash.
func IsUnix(p Path) bool {
	return isUnix(p, os.PathListSeparator)
}

func isUnix(p Path, listSeparator rune) bool {
	if !p.Remote {
		return listSeparator != ';'
	}
	v := p.Value
	if len(v) > 3 && v[1] == ':' && v[2] == '\\' {
		return false
	}
	return !strings.Contains(v, `\`)
}

// IsAbsolute reports whether s is absolute in either Unix or Windows form.
func IsAbsolute(s string) bool {
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, `\\`) || drivePattern.MatchString(s)
}

// Separator returns the separator used when joining onto p.
func (p Path) Separator() string {
	if IsUnix(p) {
		return "/"
	}
	return `\`
}

// Child resolves rel against p. An absolute rel replaces p; an empty rel
// returns p unchanged. The separator follows p's inferred style and a trailing
// separator on p is not doubled.
func (p Path) Child(rel string) Path {
	if rel == "" {
		return p
	}
	if IsAbsolute(rel) || p.Value == "" {
		return Path{Remote: p.Remote, Value: rel}
	}
	sep := p.Separator()
	if sep == `\` {
		rel = strings.ReplaceAll(rel, "/", `\`)
	}
	base := strings.TrimRight(p.Value, `/\`)
	return Path{Remote: p.Remote, Value: base + sep + rel}
}

// TrimTrailingSeparator strips one trailing '/' or '\' from home. Some
// downstream path joins break on doubled separators, mostly on Windows.
func TrimTrailingSeparator(home string) string {
	if strings.HasSuffix(home, "/") || strings.HasSuffix(home, `\`) {
		return home[:len(home)-1]
	}
	return home
}

// ExecutableName returns the packer binary name for a node OS (GOOS value).
func ExecutableName(goos string) string {
	if goos == "windows" {
		return WindowsPackerCommand
	}
	return UnixPackerCommand
}
