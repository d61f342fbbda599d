package envfile

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	// ErrSpaceOnVarName is returned when a variable name contains whitespace.
	ErrSpaceOnVarName = errors.New("variable name contains whitespace")
	// ErrEmptyVarName is returned for a line such as "=value".
	ErrEmptyVarName = errors.New("variable name is empty")
	// ErrMissingSeparator is returned for a non-comment line without '='.
	ErrMissingSeparator = errors.New("missing '=' separator")
	// ErrInvalidValue is returned when a value would not parse back as written.
	ErrInvalidValue = errors.New("value contains '=' or a line break")
	// ErrVarNotFound is returned by Get when the variable does not exist.
	ErrVarNotFound = errors.New("variable not found")
	// ErrInvalidEnvName is returned when a file name does not follow the ".<env>" rule.
	ErrInvalidEnvName = errors.New("invalid env file name")
	// ErrPolicyRejected is returned when a merge policy refuses a change.
	ErrPolicyRejected = errors.New("rejected by policy")
)

// ParseError reports a malformed line.
type ParseError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	loc := e.File
	if loc == "" {
		loc = "<input>"
	}
	return fmt.Sprintf("%s:%d: %v: %q", loc, e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RejectedError is returned by Merge when variables of the target could not be
// removed because the delete policy vetoed it. The vetoed variables are kept
// in the merged target.
type RejectedError struct {
	File string
	Vars []Var
}

func (e *RejectedError) Error() string {
	names := make([]string, len(e.Vars))
	for i, v := range e.Vars {
		names[i] = v.Name
	}
	return fmt.Sprintf("%s could not be synced: %s not deleted", e.File, strings.Join(names, ", "))
}

func (e *RejectedError) Unwrap() error {
	return ErrPolicyRejected
}

// Hint describes how to resolve the rejection.
func (e *RejectedError) Hint() string {
	return "delete them by hand or re-run with --delete"
}
