// Package variables merges the global and job-level variable entries and
// turns them into packer -var flags pointing at temp files.
package variables

import (
	"context"
	"fmt"

	"github.com/grovetools/packerci/command"
	"github.com/grovetools/packerci/config"
	"github.com/grovetools/packerci/errors"
	"github.com/grovetools/packerci/pkg/materialize"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FileSuffix is appended to every variable temp file.
const FileSuffix = ".tmp"

// Resolved maps variable name to contents in first-seen order.
type Resolved = orderedmap.OrderedMap[string, string]

// Materialized is a variable whose contents now live in a file.
type Materialized struct {
	Name string
	Path string
}

// Resolve applies global entries and then local ones. A local entry replaces
// the global entry of the same name but keeps its position.
func Resolve(global, local []config.VariableEntry) *Resolved {
	resolved := orderedmap.New[string, string]()
	for _, entry := range global {
		resolved.Set(entry.Name, entry.Contents)
	}
	for _, entry := range local {
		resolved.Set(entry.Name, entry.Contents)
	}
	return resolved
}

// Materialize writes one temp file per resolved entry into dir. Files created
// before a failure are left in place.
func Materialize(ctx context.Context, m materialize.Materializer, resolved *Resolved, dir string) ([]Materialized, error) {
	if resolved == nil {
		return nil, nil
	}
	out := make([]Materialized, 0, resolved.Len())
	for pair := resolved.Oldest(); pair != nil; pair = pair.Next() {
		path, err := m.CreateTextTempFile(ctx, dir, pair.Key, FileSuffix, pair.Value)
		if err != nil {
			return out, errors.MaterializationFailed(pair.Key, err).WithDetail("dir", dir)
		}
		out = append(out, Materialized{Name: pair.Key, Path: path})
	}
	return out, nil
}

// Flags renders each entry as -var "<name>=<path>" and splits the result the
// same way user-supplied parameters are split.
func Flags(materialized []Materialized) []string {
	flags := make([]string, 0, 2*len(materialized))
	for _, m := range materialized {
		flags = append(flags, command.Tokenize(fmt.Sprintf(`-var "%s=%s"`, m.Name, m.Path))...)
	}
	return flags
}

// Paths lists the file paths of materialized entries.
func Paths(materialized []Materialized) []string {
	paths := make([]string, 0, len(materialized))
	for _, m := range materialized {
		paths = append(paths, m.Path)
	}
	return paths
}
