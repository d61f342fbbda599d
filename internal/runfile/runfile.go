// Package runfile generates the script a setup runs.
package runfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/envset/pkg/vars"
)

// ErrExists is returned by Write when the run file exists and force is false.
var ErrExists = errors.New("run file already exists")

// Kind selects the shell dialect of a run file.
type Kind string

// Supported kinds.
const (
	KindBash Kind = "bash"
	KindSh   Kind = "sh"
)

// Kinds lists the supported kinds.
var Kinds = []Kind{KindBash, KindSh}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown run file kind %q (available: bash, sh)", s)
}

// Shebang returns the interpreter line.
func (k Kind) Shebang() string {
	if k == KindSh {
		return "#!/bin/sh"
	}
	return "#!/bin/bash"
}

// DefaultArrayVars returns the array vars a new setup of this kind starts with.
// Bash setups render "all" as an associative array literal.
func (k Kind) DefaultArrayVars() vars.ArrayVars {
	if k == KindBash {
		return vars.ArrayVars{{
			Name:      "all",
			Pattern:   ".*",
			Case:      vars.CaseCamel,
			Format:    "[{key}]='{value}'",
			Delimiter: " ",
		}}
	}
	return vars.DefaultArrayVars()
}

// Generate renders a run file declaring every array var and var as a shell
// local read from the exported environment.
func Generate(k Kind, arrayVars vars.ArrayVars, explicit vars.Vars) string {
	var b strings.Builder
	b.WriteString(k.Shebang())
	b.WriteByte('\n')

	var defined []vars.EnvVar
	for _, a := range arrayVars {
		v := vars.EnvVar{Name: a.Name, Kind: vars.KindArray, Array: a}
		if k == KindBash {
			fmt.Fprintf(&b, "declare -A %[1]s && eval %[1]s=($%[2]s)\n", v.VarName(), v.EnvName())
		} else {
			fmt.Fprintf(&b, "declare -r %s=$%s\n", v.VarName(), v.EnvName())
		}
		defined = append(defined, v)
	}
	for _, name := range explicit {
		v := vars.Single(name, "")
		fmt.Fprintf(&b, "declare -r %s=$%s\n", v.VarName(), v.EnvName())
		defined = append(defined, v)
	}

	b.WriteByte('\n')
	for _, v := range defined {
		fmt.Fprintf(&b, "declare -p %s\n", v.VarName())
	}
	return b.String()
}

// Write saves content as an executable file. An existing file is only
// replaced when force is true.
func Write(file, content string, force bool) error {
	if !force {
		if _, err := os.Stat(file); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, file)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat run file: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return fmt.Errorf("failed to create run file directory: %w", err)
	}
	if err := os.WriteFile(file, []byte(content), 0o755); err != nil {
		return fmt.Errorf("failed to write run file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(file, 0o755); err != nil {
		return fmt.Errorf("failed to make run file executable: %w", err)
	}
	return nil
}
