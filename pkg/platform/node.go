package platform

import (
	"runtime"

	"github.com/spf13/afero"
)

// BuiltInNodeName names the node this process runs on.
const BuiltInNodeName = "built-in"

// Node is an execution node: its real OS, the filesystem packer will see, and
// any per-installation home overrides configured for it.
type Node struct {
	Name   string
	OS     string
	Remote bool
	FS     afero.Fs

	// ToolLocations maps installation name to a node-specific home.
	ToolLocations map[string]string
}

// LocalNode describes the machine this process runs on.
func LocalNode() Node {
	return Node{
		Name: BuiltInNodeName,
		OS:   runtime.GOOS,
		FS:   afero.NewOsFs(),
	}
}

// IsWindows reports whether the node's actual OS is Windows.
func (n Node) IsWindows() bool {
	return n.OS == "windows"
}

// Filesystem returns the node filesystem, defaulting to the OS filesystem.
func (n Node) Filesystem() afero.Fs {
	if n.FS == nil {
		return afero.NewOsFs()
	}
	return n.FS
}

// Path wraps p as a path on this node.
func (n Node) Path(p string) Path {
	return Path{Remote: n.Remote, Value: p}
}

// ToolHome returns the node-specific home for an installation, if any.
func (n Node) ToolHome(installation string) (string, bool) {
	home, ok := n.ToolLocations[installation]
	return home, ok && home != ""
}
