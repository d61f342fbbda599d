package vars

import (
	"strings"

	"github.com/leapstack-labs/envset/pkg/envfile"
)

// Names of the variables injected from the current selection.
const (
	SetupNameVar = "SETUP_NAME"
	EnvNameVar   = "ENV_NAME"
)

// Kind tells whether an EnvVar holds one value or a group.
type Kind int

// EnvVar kinds.
const (
	KindVar Kind = iota
	KindArray
)

// EnvVar is a named variable ready to be displayed or exported.
type EnvVar struct {
	Name string
	Kind Kind
	// Value is set for KindVar.
	Value string
	// Array and Items are set for KindArray. Items are in file order and
	// hold untransformed names.
	Array ArrayVar
	Items []envfile.Var
}

// Single returns a KindVar EnvVar.
func Single(name, value string) EnvVar {
	return EnvVar{Name: name, Kind: KindVar, Value: value}
}

// EnvName is the exported (uppercase) name.
func (v EnvVar) EnvName() string {
	return strings.ToUpper(v.Name)
}

// VarName is the shell local (lowercase) name.
func (v EnvVar) VarName() string {
	return strings.ToLower(v.Name)
}

// Render returns the display/export value.
func (v EnvVar) Render() string {
	if v.Kind == KindArray {
		return v.Array.Render(v.Items)
	}
	return v.Value
}

// Generate projects env through the array var and explicit var definitions.
//
// Each array var yields the group of variables whose names match its pattern,
// or a single var when the only match is the pattern itself. Each explicit var
// not already produced yields a single var looked up by its uppercase name,
// empty when absent.
func Generate(env *envfile.Env, arrayVars ArrayVars, explicit Vars) ([]EnvVar, error) {
	var out []EnvVar
	seen := make(map[string]bool)

	for _, a := range arrayVars {
		re, err := a.Regexp()
		if err != nil {
			return nil, err
		}
		var items []envfile.Var
		for v := range env.Vars() {
			if re.MatchString(v.Name) {
				items = append(items, v)
			}
		}

		var ev EnvVar
		if len(items) == 1 && items[0].Name == a.Pattern {
			ev = Single(a.Name, items[0].Value)
		} else {
			ev = EnvVar{Name: a.Name, Kind: KindArray, Array: a, Items: items}
		}
		out = append(out, ev)
		seen[ev.EnvName()] = true
	}

	for _, name := range explicit {
		ev := Single(name, "")
		if seen[ev.EnvName()] {
			continue
		}
		if v, err := env.Get(ev.EnvName()); err == nil {
			ev.Value = v.Value
		}
		out = append(out, ev)
		seen[ev.EnvName()] = true
	}
	return out, nil
}

// Override replaces the entries of list that share an EnvName with one of
// extra and appends the others.
func Override(list []EnvVar, extra ...EnvVar) []EnvVar {
	out := append([]EnvVar(nil), list...)
	for _, e := range extra {
		replaced := false
		for i := range out {
			if out[i].EnvName() == e.EnvName() {
				out[i] = e
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, e)
		}
	}
	return out
}

// Environ returns NAME=value pairs suitable for a process environment.
func Environ(list []EnvVar) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, v.EnvName()+"="+v.Render())
	}
	return out
}
