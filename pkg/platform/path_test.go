package platform

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

func TestIsUnix(t *testing.T) {
	tests := []struct {
		name    string
		path    Path
		listSep rune
		want    bool
	}{
		{"local on unix host", LocalPath(`C:\anything`), ':', true},
		{"local on windows host", LocalPath("/opt/packer"), ';', false},
		{"remote unix", RemotePath("/var/lib/ci/ws"), ';', true},
		{"remote drive path", RemotePath(`C:\ci\ws`), ':', false},
		{"remote mixed separators", RemotePath(`D:/Program Files\packer`), ':', false},
		{"remote drive root only", RemotePath(`C:\`), ':', false},
		{"remote forward-slash drive", RemotePath("C:/ci/ws"), ':', true},
		{"remote unc", RemotePath(`\\share\ws`), ':', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnix(tt.path, tt.listSep))
		})
	}
}

func TestChild(t *testing.T) {
	tests := []struct {
		name string
		base Path
		rel  string
		want string
	}{
		{"relative unix", RemotePath("/ws"), "somefile.json", "/ws/somefile.json"},
		{"nested unix", RemotePath("/ws/"), "templates/ami.json", "/ws/templates/ami.json"},
		{"absolute replaces", RemotePath("/ws"), "/opt/packer", "/opt/packer"},
		{"windows root", RemotePath(`C:\`), "bin", `C:\bin`},
		{"windows nested", RemotePath(`C:\ws`), "tpl/ami.json", `C:\ws\tpl\ami.json`},
		{"windows absolute replaces", RemotePath(`C:\ws`), `D:\bin`, `D:\bin`},
		{"empty rel", RemotePath("/ws"), "", "/ws"},
		{"empty base", RemotePath(""), "bin", "bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.base.Child(tt.rel)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.base.Remote, got.Remote)
		})
	}
}

func TestTrimTrailingSeparator(t *testing.T) {
	assert.Equal(t, "/opt/packer", TrimTrailingSeparator("/opt/packer/"))
	assert.Equal(t, `C:\packer`, TrimTrailingSeparator(`C:\packer\`))
	assert.Equal(t, "/opt/packer", TrimTrailingSeparator("/opt/packer"))
	assert.Equal(t, "", TrimTrailingSeparator(""))
}

func TestExecutableName(t *testing.T) {
	assert.Equal(t, WindowsPackerCommand, ExecutableName("windows"))
	assert.Equal(t, UnixPackerCommand, ExecutableName("linux"))
	assert.Equal(t, UnixPackerCommand, ExecutableName("darwin"))
}

func TestNode(t *testing.T) {
	local := LocalNode()
	assert.Equal(t, BuiltInNodeName, local.Name)
	assert.False(t, local.Remote)

	agent := Node{Name: "win-agent", OS: "windows", Remote: true,
		ToolLocations: map[string]string{"packer-1.9": `D:\tools\packer`}}
	assert.True(t, agent.IsWindows())
	assert.IsType(t, &afero.OsFs{}, agent.Filesystem())

	home, ok := agent.ToolHome("packer-1.9")
	assert.True(t, ok)
	assert.Equal(t, `D:\tools\packer`, home)
	_, ok = agent.ToolHome("other")
	assert.False(t, ok)

	assert.Equal(t, RemotePath(`C:\ws`), agent.Path(`C:\ws`))
}
