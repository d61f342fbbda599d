package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// ProjectSetup is the per-machine part of a setup.
type ProjectSetup struct {
	Name string `yaml:"-"`
	// PrivateEnvDir is absolute. Empty means unset.
	PrivateEnvDir string `yaml:"private_env_dir,omitempty"`
}

// ProjectSetups is the ordered per-setup map of a project.
type ProjectSetups []ProjectSetup

// UnmarshalYAML reads the setups mapping and validates private env dirs.
func (s *ProjectSetups) UnmarshalYAML(node *yaml.Node) error {
	var out ProjectSetups
	err := decodeMapping(node, "setup", func(name string, value *yaml.Node) error {
		setup := ProjectSetup{Name: name}
		if err := value.Decode(&setup); err != nil {
			return err
		}
		if setup.PrivateEnvDir != "" && !filepath.IsAbs(setup.PrivateEnvDir) {
			return fmt.Errorf("line %d: private_env_dir must be an absolute path", value.Line)
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
func (s ProjectSetups) MarshalYAML() (any, error) {
	return encodeMapping(s, func(setup ProjectSetup) string { return setup.Name })
}

// Current is the selected setup and env of a project.
type Current struct {
	Setup string `yaml:"setup,omitempty"`
	Env   string `yaml:"env,omitempty"`
}

// Project links a local file to its per-machine settings.
type Project struct {
	// File is the absolute path of the local file; it identifies the project.
	File    string        `yaml:"file"`
	Current *Current      `yaml:"current,omitempty"`
	Setups  ProjectSetups `yaml:"setups,omitempty"`
}

// Dir returns the project directory.
func (p *Project) Dir() string {
	return filepath.Dir(p.File)
}

func (p Project) clone() Project {
	if p.Current != nil {
		c := *p.Current
		p.Current = &c
	}
	p.Setups = slices.Clone(p.Setups)
	return p
}

// Setup returns the setup called name.
func (p *Project) Setup(name string) (ProjectSetup, bool) {
	idx := p.index(name)
	if idx < 0 {
		return ProjectSetup{}, false
	}
	return p.Setups[idx], true
}

// AddSetup registers a setup with no private env directory. It is a no-op
// returning false when the name exists.
func (p *Project) AddSetup(name string) bool {
	if p.index(name) >= 0 {
		return false
	}
	p.Setups = append(p.Setups, ProjectSetup{Name: name})
	return true
}

// RemoveSetup deletes the setup called name and clears the selection if it
// pointed at it.
func (p *Project) RemoveSetup(name string) {
	p.Setups = slices.DeleteFunc(p.Setups, func(s ProjectSetup) bool { return s.Name == name })
	if p.Current != nil && p.Current.Setup == name {
		p.Current = nil
	}
}

// CanRename reports why RenameSetup would fail.
func (p *Project) CanRename(oldName, newName string) error {
	if p.index(oldName) < 0 {
		return fmt.Errorf("%w: %s in project %s", ErrSetupNotFound, oldName, p.File)
	}
	if oldName != newName && p.index(newName) >= 0 {
		return fmt.Errorf("%w: %s in project %s", ErrSetupAlreadyExists, newName, p.File)
	}
	return nil
}

// RenameSetup changes a setup key and follows it in the selection.
func (p *Project) RenameSetup(oldName, newName string) error {
	if err := p.CanRename(oldName, newName); err != nil {
		return err
	}
	p.Setups[p.index(oldName)].Name = newName
	if p.Current != nil && p.Current.Setup == oldName {
		p.Current.Setup = newName
	}
	return nil
}

// SetPrivateEnvDir sets the absolute private env directory of a setup.
func (p *Project) SetPrivateEnvDir(name, dir string) error {
	if err := requireAbs(dir); err != nil {
		return err
	}
	idx := p.index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSetupNotFound, name)
	}
	p.Setups[idx].PrivateEnvDir = filepath.Clean(dir)
	return nil
}

// UnsetPrivateEnvDir clears the private env directory of a setup.
func (p *Project) UnsetPrivateEnvDir(name string) error {
	idx := p.index(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrSetupNotFound, name)
	}
	if p.Setups[idx].PrivateEnvDir == "" {
		return ErrPrivateEnvDirAlreadyUnset
	}
	p.Setups[idx].PrivateEnvDir = ""
	return nil
}

// SetCurrent selects a setup and optionally an env.
func (p *Project) SetCurrent(setup, env string) {
	p.Current = &Current{Setup: setup, Env: env}
}

// UnsetCurrent clears the selection.
func (p *Project) UnsetCurrent() {
	p.Current = nil
}

// UnsetCurrentEnv clears the selected env and keeps the setup.
func (p *Project) UnsetCurrentEnv() {
	if p.Current == nil {
		return
	}
	p.Current.Env = ""
	if p.Current.Setup == "" {
		p.Current = nil
	}
}

func (p *Project) index(name string) int {
	return slices.IndexFunc(p.Setups, func(s ProjectSetup) bool { return s.Name == name })
}

type globalDocument struct {
	Projects []Project `yaml:"projects"`
}

// GlobalStore is the per-machine config file.
type GlobalStore struct {
	file   string
	doc    globalDocument
	logger *slog.Logger
}

// LoadOrNewGlobal reads the global store at file, or returns an empty store
// when the file does not exist yet.
func LoadOrNewGlobal(file string, logger *slog.Logger) (*GlobalStore, error) {
	if err := requireAbs(file); err != nil {
		return nil, err
	}
	s := &GlobalStore{file: file, logger: orDiscard(logger)}
	found, err := exists(file)
	if err != nil {
		return nil, err
	}
	if !found {
		s.logger.Debug("global config not found, starting empty", "file", file)
		return s, nil
	}
	if err := readYAML(file, &s.doc); err != nil {
		return nil, err
	}
	for _, p := range s.doc.Projects {
		if !filepath.IsAbs(p.File) || filepath.Base(p.File) == "." {
			return nil, fmt.Errorf("failed to parse %s: project file %q must be an absolute file path", file, p.File)
		}
	}
	s.logger.Debug("loaded global config", "file", file, "projects", len(s.doc.Projects))
	return s, nil
}

// Save writes the store to disk.
func (s *GlobalStore) Save() error {
	if err := writeYAML(s.file, s.doc, 0o600); err != nil {
		return err
	}
	s.logger.Debug("saved global config", "file", s.file)
	return nil
}

// File returns the path of the global file.
func (s *GlobalStore) File() string {
	return s.file
}

// Projects returns copies of all projects.
func (s *GlobalStore) Projects() []Project {
	out := make([]Project, len(s.doc.Projects))
	for i, p := range s.doc.Projects {
		out[i] = p.clone()
	}
	return out
}

// AddProject registers the local file at file.
func (s *GlobalStore) AddProject(file string) error {
	if err := requireAbs(file); err != nil {
		return err
	}
	if s.index(file) >= 0 {
		return fmt.Errorf("%w: %s", ErrProjectAlreadyAdded, file)
	}
	s.doc.Projects = append(s.doc.Projects, Project{File: file})
	return nil
}

// ProjectByFile returns a copy of the project registered for file.
func (s *GlobalStore) ProjectByFile(file string) (Project, error) {
	idx := s.index(file)
	if idx < 0 {
		return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, file)
	}
	return s.doc.Projects[idx].clone(), nil
}

// UpdateProject applies fn to the project registered for file.
// Changes are discarded when fn fails.
func (s *GlobalStore) UpdateProject(file string, fn func(*Project) error) error {
	idx := s.index(file)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, file)
	}
	p := s.doc.Projects[idx].clone()
	if err := fn(&p); err != nil {
		return err
	}
	p.File = file
	s.doc.Projects[idx] = p
	return nil
}

// RemoveProject unregisters the project for file.
func (s *GlobalStore) RemoveProject(file string) error {
	idx := s.index(file)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, file)
	}
	s.doc.Projects = slices.Delete(s.doc.Projects, idx, idx+1)
	return nil
}

func (s *GlobalStore) index(file string) int {
	return slices.IndexFunc(s.doc.Projects, func(p Project) bool { return p.File == file })
}
