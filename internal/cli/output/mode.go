// Package output renders command results for terminals, markdown consumers
// and scripts.
package output

import (
	"fmt"
	"slices"
)

// OutputMode selects how results are rendered.
type OutputMode string //nolint:revive // output.OutputMode reads fine at call sites

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Modes lists the accepted modes, for flag completion.
var Modes = []OutputMode{ModeAuto, ModeText, ModeMarkdown, ModeJSON}

// Mode converts s to an OutputMode. Unknown values fall back to ModeAuto.
func Mode(s string) OutputMode {
	m := OutputMode(s)
	if slices.Contains(Modes, m) {
		return m
	}
	return ModeAuto
}

// ParseMode is Mode that rejects unknown values.
func ParseMode(s string) (OutputMode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	m := OutputMode(s)
	if !slices.Contains(Modes, m) {
		return "", fmt.Errorf("unknown output mode %q (want auto, text, markdown or json)", s)
	}
	return m, nil
}

// Resolve turns ModeAuto into text on a terminal and markdown otherwise.
func (m OutputMode) Resolve(isTTY bool) OutputMode {
	if m != ModeAuto && m != "" {
		return m
	}
	if isTTY {
		return ModeText
	}
	return ModeMarkdown
}
