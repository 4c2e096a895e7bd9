// Package materialize writes in-memory text to temp files so packer can be
// handed a path instead of a value.
package materialize

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
)

// Materializer creates a new text file inside dir and returns its path.
type Materializer interface {
	CreateTextTempFile(ctx context.Context, dir, prefix, suffix, contents string) (string, error)
}

// FS materializes files onto an afero filesystem: the OS filesystem in
// production, a MemMapFs in tests, or a node filesystem for remote builds.
type FS struct {
	fs afero.Fs
}

// NewFS returns a Materializer backed by fs.
func NewFS(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewOS returns a Materializer backed by the OS filesystem.
func NewOS() *FS {
	return NewFS(afero.NewOsFs())
}

// CreateTextTempFile writes contents to a uniquely named file
// <dir>/<prefix><random><suffix>. Files are never removed here; the
// workspace lifecycle owns cleanup.
func (m *FS) CreateTextTempFile(ctx context.Context, dir, prefix, suffix, contents string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create temp dir %s: %w", dir, err)
	}

	f, err := afero.TempFile(m.fs, dir, prefix+"*"+suffix)
	if err != nil {
		return "", fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	if _, err := f.WriteString(contents); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp file %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close temp file %s: %w", f.Name(), err)
	}
	return f.Name(), nil
}
