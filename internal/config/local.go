package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/envset/pkg/vars"
)

// LocalSetup is the shared definition of a setup.
type LocalSetup struct {
	Name string `yaml:"-"`
	// PublicEnvDir is relative to the directory of the local file. Empty means unset.
	PublicEnvDir string `yaml:"public_env_dir,omitempty"`
	// File is the run file, relative to the directory of the local file.
	File      string         `yaml:"file"`
	ArrayVars vars.ArrayVars `yaml:"array_vars,omitempty"`
	Vars      vars.Vars      `yaml:"vars,omitempty"`
}

// NewLocalSetup returns a setup with the default array vars and vars.
func NewLocalSetup(name, file string) LocalSetup {
	return LocalSetup{
		Name:      name,
		File:      file,
		ArrayVars: vars.DefaultArrayVars(),
		Vars:      vars.DefaultVars(),
	}
}

func (s LocalSetup) clone() LocalSetup {
	s.ArrayVars = slices.Clone(s.ArrayVars)
	s.Vars = slices.Clone(s.Vars)
	return s
}

// UnsetPublicEnvDir clears the public env directory.
func (s *LocalSetup) UnsetPublicEnvDir() error {
	if s.PublicEnvDir == "" {
		return ErrPublicEnvDirAlreadyUnset
	}
	s.PublicEnvDir = ""
	return nil
}

// LocalSetups is the ordered setup map of the local file.
type LocalSetups []LocalSetup

// UnmarshalYAML reads the setups mapping in document order.
func (s *LocalSetups) UnmarshalYAML(node *yaml.Node) error {
	var out LocalSetups
	err := decodeMapping(node, "setup", func(name string, value *yaml.Node) error {
		setup := LocalSetup{Name: name}
		if err := value.Decode(&setup); err != nil {
			return err
		}
		if setup.File == "" {
			return fmt.Errorf("line %d: missing run file", value.Line)
		}
		out = append(out, setup)
		return nil
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalYAML writes the setups mapping in slice order.
func (s LocalSetups) MarshalYAML() (any, error) {
	return encodeMapping(s, func(setup LocalSetup) string { return setup.Name })
}

type localDocument struct {
	Setups LocalSetups `yaml:"setups"`
}

// LocalStore is the project-local config file, shared through version control.
type LocalStore struct {
	file   string
	doc    localDocument
	logger *slog.Logger
}

// NewLocal creates an empty local store at file. It fails if the file exists.
func NewLocal(file string, logger *slog.Logger) (*LocalStore, error) {
	if err := requireAbs(file); err != nil {
		return nil, err
	}
	found, err := exists(file)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, file)
	}
	return &LocalStore{file: file, logger: orDiscard(logger)}, nil
}

// LoadLocal reads the local store at file.
func LoadLocal(file string, logger *slog.Logger) (*LocalStore, error) {
	if err := requireAbs(file); err != nil {
		return nil, err
	}
	s := &LocalStore{file: file, logger: orDiscard(logger)}
	if err := readYAML(file, &s.doc); err != nil {
		return nil, err
	}
	s.logger.Debug("loaded local config", "file", file, "setups", len(s.doc.Setups))
	return s, nil
}

// Save writes the store to disk.
func (s *LocalStore) Save() error {
	if err := writeYAML(s.file, s.doc, 0o644); err != nil {
		return err
	}
	s.logger.Debug("saved local config", "file", s.file)
	return nil
}

// File returns the absolute path of the local file.
func (s *LocalStore) File() string {
	return s.file
}

// Dir returns the directory holding the local file.
func (s *LocalStore) Dir() string {
	return filepath.Dir(s.file)
}

// Setups returns copies of all setups in order.
func (s *LocalStore) Setups() []LocalSetup {
	out := make([]LocalSetup, len(s.doc.Setups))
	for i, setup := range s.doc.Setups {
		out[i] = setup.clone()
	}
	return out
}

// Names returns the setup names in order.
func (s *LocalStore) Names() []string {
	names := make([]string, len(s.doc.Setups))
	for i, setup := range s.doc.Setups {
		names[i] = setup.Name
	}
	return names
}

// Setup returns a copy of the setup called name.
func (s *LocalStore) Setup(name string) (LocalSetup, bool) {
	idx := s.index(name)
	if idx < 0 {
		return LocalSetup{}, false
	}
	return s.doc.Setups[idx].clone(), true
}

// Add appends setup. Adding a name that already exists is a no-op and
// returns false.
func (s *LocalStore) Add(setup LocalSetup) bool {
	if s.index(setup.Name) >= 0 {
		return false
	}
	s.doc.Setups = append(s.doc.Setups, setup.clone())
	return true
}

// Update applies fn to the stored setup called name.
// The name cannot be changed through Update; use Rename.
func (s *LocalStore) Update(name string, fn func(*LocalSetup) error) error {
	idx := s.index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSetupNotFound, name)
	}
	setup := s.doc.Setups[idx].clone()
	if err := fn(&setup); err != nil {
		return err
	}
	setup.Name = name
	s.doc.Setups[idx] = setup
	return nil
}

// RemoveByName deletes the setup called name, if any.
func (s *LocalStore) RemoveByName(name string) {
	s.doc.Setups = slices.DeleteFunc(s.doc.Setups, func(setup LocalSetup) bool {
		return setup.Name == name
	})
}

// Rename changes the key of a setup, keeping its position and fields.
func (s *LocalStore) Rename(oldName, newName string) error {
	if err := s.CanRename(oldName, newName); err != nil {
		return err
	}
	s.doc.Setups[s.index(oldName)].Name = newName
	return nil
}

// CanRename reports why Rename would fail.
func (s *LocalStore) CanRename(oldName, newName string) error {
	if s.index(oldName) < 0 {
		return fmt.Errorf("%w: %s", ErrSetupNotFound, oldName)
	}
	if oldName != newName && s.index(newName) >= 0 {
		return fmt.Errorf("%w: %s", ErrSetupAlreadyExists, newName)
	}
	return nil
}

func (s *LocalStore) index(name string) int {
	return slices.IndexFunc(s.doc.Setups, func(setup LocalSetup) bool {
		return setup.Name == name
	})
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
