package vars

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Vars is an ordered set of explicit variable names.
type Vars []string

// DefaultVars is the explicit var list of a new setup.
func DefaultVars() Vars {
	return Vars{SetupNameVar}
}

// Has reports whether name is in the set.
func (v Vars) Has(name string) bool {
	for _, n := range v {
		if n == name {
			return true
		}
	}
	return false
}

// Add appends name unless it is already present.
func (v *Vars) Add(name string) bool {
	if v.Has(name) {
		return false
	}
	*v = append(*v, name)
	return true
}

// UnmarshalYAML reads a sequence and drops duplicates.
func (v *Vars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: vars must be a list", node.Line)
	}
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}
	out := make(Vars, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out.Add(name)
	}
	*v = out
	return nil
}
