package vars

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/envset/pkg/envfile"
)

// Defaults applied when rendering an array var.
const (
	DefaultFormat    = "{key}:{value}"
	DefaultDelimiter = ","
)

// ArrayVar groups the variables whose names match Pattern.
type ArrayVar struct {
	Name      string `yaml:"-"`
	Pattern   string `yaml:"pattern"`
	Case      Case   `yaml:"case,omitempty"`
	Format    string `yaml:"format,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
}

// NewArrayVar returns an array var with default rendering.
func NewArrayVar(name, pattern string) ArrayVar {
	return ArrayVar{Name: name, Pattern: pattern}
}

// Regexp compiles the pattern.
func (a ArrayVar) Regexp() (*regexp.Regexp, error) {
	re, err := regexp.Compile(a.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern for array var %q: %w", a.Name, err)
	}
	return re, nil
}

// Render joins vars with the configured format, case and delimiter.
func (a ArrayVar) Render(items []envfile.Var) string {
	format := a.Format
	if format == "" {
		format = DefaultFormat
	}
	delimiter := a.Delimiter
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	parts := make([]string, len(items))
	for i, v := range items {
		r := strings.NewReplacer("{key}", a.Case.Apply(v.Name), "{value}", v.Value)
		parts[i] = r.Replace(format)
	}
	return strings.Join(parts, delimiter)
}

// simple reports whether the var is fully described by its pattern.
func (a ArrayVar) simple() bool {
	return a.Case == CaseNone && a.Format == "" && a.Delimiter == ""
}

// arrayVarFields mirrors ArrayVar without its YAML methods.
type arrayVarFields ArrayVar

// UnmarshalYAML accepts either a plain pattern or a mapping.
func (a *ArrayVar) UnmarshalYAML(node *yaml.Node) error {
	name := a.Name
	switch node.Kind {
	case yaml.ScalarNode:
		*a = ArrayVar{Name: name, Pattern: node.Value}
	case yaml.MappingNode:
		var fields arrayVarFields
		if err := node.Decode(&fields); err != nil {
			return err
		}
		*a = ArrayVar(fields)
		a.Name = name
	default:
		return fmt.Errorf("line %d: array var must be a pattern or a mapping", node.Line)
	}
	if a.Pattern == "" {
		return fmt.Errorf("line %d: array var %q has no pattern", node.Line, name)
	}
	return nil
}

// MarshalYAML writes the plain pattern when no rendering option is set.
func (a ArrayVar) MarshalYAML() (any, error) {
	if a.simple() {
		return a.Pattern, nil
	}
	return arrayVarFields(a), nil
}

// ArrayVars is an ordered set of array vars keyed by name.
type ArrayVars []ArrayVar

// DefaultArrayVars groups every variable under "all".
func DefaultArrayVars() ArrayVars {
	return ArrayVars{NewArrayVar("all", ".*")}
}

// Get returns the array var called name.
func (s ArrayVars) Get(name string) (ArrayVar, bool) {
	for _, a := range s {
		if a.Name == name {
			return a, true
		}
	}
	return ArrayVar{}, false
}

// Add appends a; it is a no-op returning false when the name already exists.
func (s *ArrayVars) Add(a ArrayVar) bool {
	if _, ok := s.Get(a.Name); ok {
		return false
	}
	*s = append(*s, a)
	return true
}

// Remove deletes the array var called name.
func (s *ArrayVars) Remove(name string) {
	out := (*s)[:0]
	for _, a := range *s {
		if a.Name != name {
			out = append(out, a)
		}
	}
	*s = out
}

// UnmarshalYAML reads a mapping of name to array var, keeping document order.
func (s *ArrayVars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: array_vars must be a mapping", node.Line)
	}
	out := make(ArrayVars, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		a := ArrayVar{Name: node.Content[i].Value}
		if err := node.Content[i+1].Decode(&a); err != nil {
			return fmt.Errorf("array var %q: %w", a.Name, err)
		}
		out.Add(a)
	}
	*s = out
	return nil
}

// MarshalYAML writes a mapping in slice order.
func (s ArrayVars) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, a := range s {
		value := &yaml.Node{}
		if err := value.Encode(a); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: a.Name},
			value,
		)
	}
	return node, nil
}
