package config

import (
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/grovetools/packerci/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Store holds the installation registry. Readers get a consistent snapshot;
// writers replace the whole list at once.
type Store struct {
	installations atomic.Pointer[[]Installation]
}

// NewStore returns a store seeded with installations.
func NewStore(installations ...Installation) *Store {
	s := &Store{}
	s.Replace(installations...)
	return s
}

// LoadStore reads an installations file into a new store.
func LoadStore(path string) (*Store, error) {
	file, err := LoadInstallations(path)
	if err != nil {
		return nil, err
	}
	return NewStore(file.Installations...), nil
}

// Replace swaps the entire installation list.
func (s *Store) Replace(installations ...Installation) {
	list := make([]Installation, len(installations))
	for idx, inst := range installations {
		list[idx] = inst.clone()
	}
	s.installations.Store(&list)
}

// All returns a copy of every installation in registry order.
func (s *Store) All() []Installation {
	current := s.snapshot()
	out := make([]Installation, len(current))
	for idx, inst := range current {
		out[idx] = inst.clone()
	}
	return out
}

// Lookup returns the first installation named name.
func (s *Store) Lookup(name string) (Installation, error) {
	if name != "" {
		for _, inst := range s.snapshot() {
			if inst.Name == name {
				return inst.clone(), nil
			}
		}
	}
	return Installation{}, errors.InstallationNotFound(name)
}

// Names lists installation names in registry order.
func (s *Store) Names() []string {
	current := s.snapshot()
	names := make([]string, 0, len(current))
	for _, inst := range current {
		names = append(names, inst.Name)
	}
	return names
}

func (s *Store) snapshot() []Installation {
	if p := s.installations.Load(); p != nil {
		return *p
	}
	return nil
}

// Save writes the whole installation list to path, keeping the logging section
// of any existing file. The file is written to a sibling temp file and renamed
// into place.
func (s *Store) Save(path string) error {
	file := InstallationsFile{Installations: s.All()}
	if existing, err := LoadInstallations(path); err == nil {
		file.Logging = existing.Logging
	}

	var (
		data []byte
		err  error
	)
	switch FormatForPath(path) {
	case FormatTOML:
		data, err = toml.Marshal(file)
	default:
		data, err = yaml.Marshal(file)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode installations")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create config directory").
			WithDetail("path", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create temp file").
			WithDetail("path", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write installations").
			WithDetail("path", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write installations").
			WithDetail("path", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to replace installations file").
			WithDetail("path", path)
	}
	return nil
}
