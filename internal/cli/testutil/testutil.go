// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// SetupTestProject points the global store at a temporary directory and
// changes into an empty project directory, which it returns.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	t.Setenv("ENVSET_GLOBAL_DIR", t.TempDir())
	t.Setenv("ENVSET_OUTPUT", "")
	t.Setenv("ENVSET_SETUP", "")
	t.Setenv("ENVSET_ENV", "")

	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// WriteEnv writes the env file .<name> in dir.
func WriteEnv(t *testing.T, dir, name, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", dir, err)
	}
	file := filepath.Join(dir, "."+name)
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", file, err)
	}
	return file
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
