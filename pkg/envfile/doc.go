// Package envfile reads, edits and writes environment files.
//
// An environment file holds one entry per line:
//   - NAME=value variables
//   - #comment lines
//   - blank lines
//
// Parsing keeps every entry in order so that writing a parsed file back
// reproduces it, modulo whitespace trimmed around each line.
//
// The package also contains the merge engine used to propagate the variable
// set of one reference file onto the other files of the same setup.
//
// pkg/envfile imports only the standard library and github.com/google/uuid.
package envfile
