package envfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Parse reads entries from r. The file name is only used in error messages.
func Parse(r io.Reader, file string) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return ParseBytes(data, file)
}

// ParseBytes parses the content of an environment file.
func ParseBytes(data []byte, file string) ([]Entry, error) {
	data = bytes.TrimPrefix(data, bom)

	var entries []Entry
	reader := bufio.NewReader(bytes.NewReader(data))
	line := 0
	for {
		text, err := reader.ReadString('\n')
		if text != "" {
			line++
			text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
			entry, perr := ParseLine(text)
			if perr != nil {
				return nil, &ParseError{File: file, Line: line, Text: text, Err: perr}
			}
			entries = append(entries, entry)
		}
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
	}
}

// ParseLine classifies a single line.
func ParseLine(text string) (Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyEntry(), nil
	}
	if rest, ok := strings.CutPrefix(text, "#"); ok {
		return CommentEntry(rest), nil
	}

	// Split on the last '=' so that names keep everything before it.
	idx := strings.LastIndexByte(text, '=')
	if idx < 0 {
		return Entry{}, ErrMissingSeparator
	}
	name := strings.TrimSpace(text[:idx])
	value := strings.TrimSpace(text[idx+1:])
	if name == "" {
		return Entry{}, ErrEmptyVarName
	}
	if strings.ContainsFunc(name, unicode.IsSpace) {
		return Entry{}, fmt.Errorf("%w: %q", ErrSpaceOnVarName, name)
	}
	return VarEntry(name, value), nil
}

// Format renders entries in order.
func Format(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		e.writeTo(&b)
	}
	return b.String()
}
