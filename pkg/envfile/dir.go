package envfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NameOf returns the environment name of an env file path: the file name
// with its single leading '.' removed.
func NameOf(file string) (string, error) {
	base := filepath.Base(file)
	name, ok := strings.CutPrefix(base, ".")
	if !ok || name == "" {
		return "", fmt.Errorf("%w: %q must start with '.'", ErrInvalidEnvName, base)
	}
	return name, nil
}

// FileForName returns the path of the env called name inside dir.
func FileForName(dir, name string) string {
	return filepath.Join(dir, "."+name)
}

// ReadDir loads every regular file of dir whose name starts with '.'.
// A missing directory yields no envs. Envs that parsed are returned even when
// other files failed; the failures are joined in the error.
func ReadDir(dir string) ([]*Env, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read env directory: %w", err)
	}

	var envs []*Env
	var errs []error
	for _, item := range items {
		if !item.Type().IsRegular() || !IsEnvFileName(item.Name()) {
			continue
		}
		env, err := Load(filepath.Join(dir, item.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		envs = append(envs, env)
	}
	Sort(envs)
	return envs, errors.Join(errs...)
}

// ignored lists dot files commonly found next to env files that are not envs.
var ignored = map[string]bool{
	".gitignore":     true,
	".gitattributes": true,
	".gitmodules":    true,
	".dockerignore":  true,
	".editorconfig":  true,
	".DS_Store":      true,
}

// IsEnvFileName reports whether base names an env file.
func IsEnvFileName(base string) bool {
	return len(base) > 1 && strings.HasPrefix(base, ".") && !ignored[base]
}

// MostRecent returns the env whose file was modified last.
// On equal times the env that comes first is kept.
func MostRecent(envs []*Env) (*Env, error) {
	var recent *Env
	var recentTime int64
	for _, env := range envs {
		mod, err := env.ModTime()
		if err != nil {
			return nil, err
		}
		if recent == nil || mod.UnixNano() > recentTime {
			recent = env
			recentTime = mod.UnixNano()
		}
	}
	if recent == nil {
		return nil, errors.New("no env to choose from")
	}
	return recent, nil
}
