package setup

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrSetupNotFound       = errors.New("setup not found")
	ErrUnresolved          = errors.New("setup no longer resolves")
	ErrPublicEnvDirNotSet  = errors.New("public env directory not set")
	ErrPrivateEnvDirNotSet = errors.New("private env directory not set")
	ErrEnvNotFound         = errors.New("env not found")
	ErrEnvAlreadyExists    = errors.New("env already exists")
	ErrAmbiguousEnv        = errors.New("env exists in both public and private directories")
	ErrNoSetupSelected     = errors.New("no setup selected")
	ErrNoEnvSelected       = errors.New("no env selected")
)

// AmbiguousEnvError is returned when an env name resolves in both directories.
type AmbiguousEnvError struct {
	Name    string
	Public  string
	Private string
}

func (e *AmbiguousEnvError) Error() string {
	return fmt.Sprintf("env %q is in conflict, delete one of: %s, %s", e.Name, e.Public, e.Private)
}

func (e *AmbiguousEnvError) Unwrap() error {
	return ErrAmbiguousEnv
}

// Hint describes how to resolve the conflict.
func (e *AmbiguousEnvError) Hint() string {
	return fmt.Sprintf("remove either %s or %s", e.Public, e.Private)
}

// hintError attaches a next step to an error.
type hintError struct {
	err  error
	hint string
}

func withHint(err error, hint string) error {
	return &hintError{err: err, hint: hint}
}

func (e *hintError) Error() string { return e.err.Error() }
func (e *hintError) Unwrap() error { return e.err }
func (e *hintError) Hint() string  { return e.hint }
