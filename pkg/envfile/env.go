package envfile

import (
	"cmp"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileMode is the permission used for newly created env files.
const FileMode fs.FileMode = 0o600

// DirMode is the permission used for directories created by Save.
const DirMode fs.FileMode = 0o750

// Env is an environment file: an absolute path and its ordered entries.
// Two Env values are ordered by path only.
type Env struct {
	file    string
	entries []Entry
}

// New returns an empty env bound to file.
func New(file string) *Env {
	return &Env{file: file}
}

// FromEntries returns an env bound to file holding a copy of entries.
func FromEntries(file string, entries []Entry) *Env {
	return &Env{file: file, entries: slices.Clone(entries)}
}

// Load reads and parses file.
func Load(file string) (*Env, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	entries, err := ParseBytes(data, file)
	if err != nil {
		return nil, err
	}
	return &Env{file: file, entries: entries}, nil
}

// File returns the path of the env file.
func (e *Env) File() string {
	return e.file
}

// Name returns the environment name derived from the file name.
func (e *Env) Name() (string, error) {
	return NameOf(e.file)
}

// Entries returns a copy of all entries.
func (e *Env) Entries() []Entry {
	return slices.Clone(e.entries)
}

// SetEntries replaces all entries.
func (e *Env) SetEntries(entries []Entry) {
	e.entries = slices.Clone(entries)
}

// Get returns the variable called name.
func (e *Env) Get(name string) (Var, error) {
	for _, entry := range e.entries {
		if entry.IsVar() && entry.Var.Name == name {
			return entry.Var, nil
		}
	}
	return Var{}, fmt.Errorf("%w: %s in %s", ErrVarNotFound, name, e.file)
}

// Has reports whether a variable called name exists.
func (e *Env) Has(name string) bool {
	_, err := e.Get(name)
	return err == nil
}

// Add appends a variable. It fails with ErrInvalidValue when the line would
// parse back under another name.
func (e *Env) Add(name, value string) error {
	if err := checkValue(name, value); err != nil {
		return err
	}
	e.entries = append(e.entries, VarEntry(name, value))
	return nil
}

// Set replaces the value of the first variable called name, or appends it.
// It fails like Add.
func (e *Env) Set(name, value string) error {
	if err := checkValue(name, value); err != nil {
		return err
	}
	for i, entry := range e.entries {
		if entry.IsVar() && entry.Var.Name == name {
			e.entries[i].Var.Value = value
			return nil
		}
	}
	return e.Add(name, value)
}

// checkValue rejects values that break the split on the last '='.
func checkValue(name, value string) error {
	if strings.ContainsAny(value, "=\r\n") {
		return fmt.Errorf("%w: %s=%q", ErrInvalidValue, name, value)
	}
	return nil
}

// Vars iterates over variables in file order, skipping comments and blank lines.
func (e *Env) Vars() iter.Seq[Var] {
	return func(yield func(Var) bool) {
		for _, entry := range e.entries {
			if !entry.IsVar() {
				continue
			}
			if !yield(entry.Var) {
				return
			}
		}
	}
}

// VarNames returns the names of all variables in file order.
func (e *Env) VarNames() []string {
	var names []string
	for v := range e.Vars() {
		names = append(names, v.Name)
	}
	return names
}

// String serializes the env.
func (e *Env) String() string {
	return Format(e.entries)
}

// Save writes the env to disk, creating parent directories.
// The content is written to a temporary file that is renamed over the target.
func (e *Env) Save() error {
	dir := filepath.Dir(e.file)
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return fmt.Errorf("failed to create env directory: %w", err)
	}

	mode := FileMode
	if info, err := os.Stat(e.file); err == nil {
		mode = info.Mode().Perm()
	}

	base := strings.TrimPrefix(filepath.Base(e.file), ".")
	tmp := filepath.Join(dir, fmt.Sprintf("%s.%s.tmp", base, uuid.NewString()))
	if err := os.WriteFile(tmp, []byte(e.String()), mode); err != nil {
		return fmt.Errorf("failed to write env file: %w", err)
	}
	if err := os.Rename(tmp, e.file); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace env file: %w", err)
	}
	return nil
}

// Remove deletes the env file.
func (e *Env) Remove() error {
	if err := os.Remove(e.file); err != nil {
		return fmt.Errorf("failed to remove env file: %w", err)
	}
	return nil
}

// ModTime returns the modification time of the file on disk.
func (e *Env) ModTime() (time.Time, error) {
	info, err := os.Stat(e.file)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat env file: %w", err)
	}
	return info.ModTime(), nil
}

// Compare orders envs by file path.
func Compare(a, b *Env) int {
	return cmp.Compare(a.file, b.file)
}

// Sort sorts envs by file path.
func Sort(envs []*Env) {
	slices.SortFunc(envs, Compare)
}
