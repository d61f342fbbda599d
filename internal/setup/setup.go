package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/leapstack-labs/envset/internal/config"
	"github.com/leapstack-labs/envset/pkg/envfile"
	"github.com/leapstack-labs/envset/pkg/vars"
)

// Setup is a handle on a joined setup. It stores the setup name only and
// looks both records up again on every access, so a handle whose records
// were removed fails with ErrUnresolved.
type Setup struct {
	graph *Graph
	name  string
}

// Name returns the setup name.
func (s *Setup) Name() string {
	return s.name
}

// Local returns a copy of the local record.
func (s *Setup) Local() (config.LocalSetup, error) {
	local, ok := s.graph.local.Setup(s.name)
	if !ok {
		return config.LocalSetup{}, fmt.Errorf("%w: %s missing from %s", ErrUnresolved, s.name, s.graph.local.File())
	}
	return local, nil
}

// Global returns a copy of the global record.
func (s *Setup) Global() (config.ProjectSetup, error) {
	p, err := s.graph.Project()
	if err != nil {
		return config.ProjectSetup{}, fmt.Errorf("%w: %w", ErrUnresolved, err)
	}
	global, ok := p.Setup(s.name)
	if !ok {
		return config.ProjectSetup{}, fmt.Errorf("%w: %s missing from %s", ErrUnresolved, s.name, s.graph.global.File())
	}
	return global, nil
}

func (s *Setup) resolve() error {
	if _, err := s.Local(); err != nil {
		return err
	}
	_, err := s.Global()
	return err
}

// Rename renames the setup in both stores. Nothing changes unless both
// renames are possible.
func (s *Setup) Rename(newName string) error {
	if err := s.resolve(); err != nil {
		return err
	}
	if err := s.graph.local.CanRename(s.name, newName); err != nil {
		return err
	}
	p, err := s.graph.Project()
	if err != nil {
		return err
	}
	if err := p.CanRename(s.name, newName); err != nil {
		return err
	}

	err = s.graph.updateProject(func(p *config.Project) error {
		return p.RenameSetup(s.name, newName)
	})
	if err != nil {
		return err
	}
	if err := s.graph.local.Rename(s.name, newName); err != nil {
		// Roll back the global rename.
		_ = s.graph.updateProject(func(p *config.Project) error {
			return p.RenameSetup(newName, s.name)
		})
		return err
	}
	s.graph.logger.Debug("renamed setup", "from", s.name, "to", newName)
	s.name = newName
	return nil
}

// RunFile returns the absolute path of the run file.
func (s *Setup) RunFile() (string, error) {
	local, err := s.Local()
	if err != nil {
		return "", err
	}
	return s.fromLocalDir(local.File), nil
}

// PublicEnvDir returns the absolute public env directory.
func (s *Setup) PublicEnvDir() (string, error) {
	local, err := s.Local()
	if err != nil {
		return "", err
	}
	if local.PublicEnvDir == "" {
		return "", withHint(fmt.Errorf("%w for setup %s", ErrPublicEnvDirNotSet, s.name), `set it with "envset env dir <dir>"`)
	}
	return s.fromLocalDir(local.PublicEnvDir), nil
}

// PrivateEnvDir returns the private env directory.
func (s *Setup) PrivateEnvDir() (string, error) {
	global, err := s.Global()
	if err != nil {
		return "", err
	}
	if global.PrivateEnvDir == "" {
		return "", withHint(fmt.Errorf("%w for setup %s", ErrPrivateEnvDirNotSet, s.name), `set it with "envset env pdir <dir>"`)
	}
	return global.PrivateEnvDir, nil
}

// SetPublicEnvDir stores dir relative to the local file directory.
func (s *Setup) SetPublicEnvDir(dir string) error {
	rel := dir
	if filepath.IsAbs(dir) {
		r, err := filepath.Rel(s.graph.local.Dir(), dir)
		if err != nil {
			return fmt.Errorf("failed to make %s relative to %s: %w", dir, s.graph.local.Dir(), err)
		}
		rel = r
	}
	return s.graph.local.Update(s.name, func(l *config.LocalSetup) error {
		l.PublicEnvDir = filepath.ToSlash(filepath.Clean(rel))
		return nil
	})
}

// UnsetPublicEnvDir clears the public env directory.
func (s *Setup) UnsetPublicEnvDir() error {
	return s.graph.local.Update(s.name, func(l *config.LocalSetup) error {
		return l.UnsetPublicEnvDir()
	})
}

// SetPrivateEnvDir stores an absolute private env directory.
func (s *Setup) SetPrivateEnvDir(dir string) error {
	return s.graph.updateProject(func(p *config.Project) error {
		return p.SetPrivateEnvDir(s.name, dir)
	})
}

// UnsetPrivateEnvDir clears the private env directory.
func (s *Setup) UnsetPrivateEnvDir() error {
	return s.graph.updateProject(func(p *config.Project) error {
		return p.UnsetPrivateEnvDir(s.name)
	})
}

// EnvDirs returns the env directories that are set. A private directory equal
// to the public one is listed once.
func (s *Setup) EnvDirs() []string {
	var dirs []string
	if dir, err := s.PublicEnvDir(); err == nil {
		dirs = append(dirs, filepath.Clean(dir))
	}
	if dir, err := s.PrivateEnvDir(); err == nil && !slices.Contains(dirs, filepath.Clean(dir)) {
		dirs = append(dirs, filepath.Clean(dir))
	}
	return dirs
}

// EnvFile returns the path of the env called name. It fails with an
// *AmbiguousEnvError when both directories hold the env, without reading
// either file.
func (s *Setup) EnvFile(name string) (string, error) {
	if err := s.resolve(); err != nil {
		return "", err
	}
	public, err := s.candidate(s.PublicEnvDir, name)
	if err != nil {
		return "", err
	}
	private, err := s.candidate(s.PrivateEnvDir, name)
	if err != nil {
		return "", err
	}

	switch {
	case public != "" && public == private:
		return public, nil
	case public != "" && private != "":
		return "", &AmbiguousEnvError{Name: name, Public: public, Private: private}
	case public != "":
		return public, nil
	case private != "":
		return private, nil
	default:
		return "", withHint(fmt.Errorf("%w: %s in setup %s", ErrEnvNotFound, name, s.name), `list envs with "envset ls"`)
	}
}

// candidate returns the env file in the directory given by dirFn if it exists.
func (s *Setup) candidate(dirFn func() (string, error), name string) (string, error) {
	dir, err := dirFn()
	if err != nil {
		if errors.Is(err, ErrPublicEnvDirNotSet) || errors.Is(err, ErrPrivateEnvDirNotSet) {
			return "", nil
		}
		return "", err
	}
	file := envfile.FileForName(dir, name)
	info, err := os.Stat(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to stat env file: %w", err)
	}
	if info.IsDir() {
		return "", nil
	}
	return file, nil
}

// Env loads the env called name.
func (s *Setup) Env(name string) (*envfile.Env, error) {
	file, err := s.EnvFile(name)
	if err != nil {
		return nil, err
	}
	return envfile.Load(file)
}

// Envs loads every env of the public and private directories, sorted by path.
// Files that do not parse are logged and skipped. An env name found in both
// directories fails with an *AmbiguousEnvError.
func (s *Setup) Envs() ([]*envfile.Env, error) {
	if err := s.resolve(); err != nil {
		return nil, err
	}
	var envs []*envfile.Env
	byName := make(map[string]string)
	for _, dir := range s.EnvDirs() {
		found, err := envfile.ReadDir(dir)
		if err := s.skipUnparsable(err); err != nil {
			return nil, fmt.Errorf("failed to read envs of setup %s: %w", s.name, err)
		}
		s.graph.logger.Debug("scanned env directory", "setup", s.name, "dir", dir, "envs", len(found))
		for _, env := range found {
			name, err := env.Name()
			if err != nil {
				return nil, err
			}
			if other, ok := byName[name]; ok {
				return nil, &AmbiguousEnvError{Name: name, Public: other, Private: env.File()}
			}
			byName[name] = env.File()
		}
		envs = append(envs, found...)
	}
	envfile.Sort(envs)
	return envs, nil
}

// skipUnparsable logs the parse errors joined in err and returns the rest.
func (s *Setup) skipUnparsable(err error) error {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	var rest []error
	for _, e := range errs {
		var parseErr *envfile.ParseError
		if errors.As(e, &parseErr) {
			s.graph.logger.Warn("skipping file that is not an env file", "setup", s.name, "file", parseErr.File, "line", parseErr.Line, "error", parseErr.Err)
			continue
		}
		rest = append(rest, e)
	}
	return errors.Join(rest...)
}

// NewEnv creates an empty env file in the public or private directory.
// It fails when the name already exists in either directory.
func (s *Setup) NewEnv(name string, private bool) (*envfile.Env, error) {
	if _, err := s.EnvFile(name); err == nil {
		return nil, fmt.Errorf("%w: %s in setup %s", ErrEnvAlreadyExists, name, s.name)
	} else if !errors.Is(err, ErrEnvNotFound) {
		return nil, err
	}

	dirFn := s.PublicEnvDir
	if private {
		dirFn = s.PrivateEnvDir
	}
	dir, err := dirFn()
	if err != nil {
		return nil, err
	}
	env := envfile.New(envfile.FileForName(dir, name))
	if _, err := env.Name(); err != nil {
		return nil, err
	}
	if err := env.Save(); err != nil {
		return nil, err
	}
	return env, nil
}

// RemoveEnv deletes the file of the env called name.
func (s *Setup) RemoveEnv(name string) (*envfile.Env, error) {
	file, err := s.EnvFile(name)
	if err != nil {
		return nil, err
	}
	env := envfile.New(file)
	if err := env.Remove(); err != nil {
		return nil, err
	}
	return env, nil
}

// Vars projects env through the setup's array vars and vars, then sets
// SETUP_NAME and ENV_NAME.
func (s *Setup) Vars(env *envfile.Env) ([]vars.EnvVar, error) {
	local, err := s.Local()
	if err != nil {
		return nil, err
	}
	list, err := vars.Generate(env, local.ArrayVars, local.Vars)
	if err != nil {
		return nil, fmt.Errorf("failed to project vars of setup %s: %w", s.name, err)
	}
	envName, err := env.Name()
	if err != nil {
		return nil, err
	}
	return vars.Override(list, vars.Single(vars.SetupNameVar, s.name), vars.Single(vars.EnvNameVar, envName)), nil
}

func (s *Setup) fromLocalDir(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.graph.local.Dir(), filepath.FromSlash(path))
}
