package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/envset/pkg/envfile"
)

func TestArrayVar_RenderDefaults(t *testing.T) {
	a := NewArrayVar("all", ".*")
	got := a.Render([]envfile.Var{{Name: "VAR1", Value: "VALUE1"}, {Name: "VAR2", Value: "VALUE2"}})
	assert.Equal(t, "VAR1:VALUE1,VAR2:VALUE2", got)
}

func TestArrayVar_RenderCustom(t *testing.T) {
	a := ArrayVar{Name: "all", Pattern: ".*", Case: CaseCamel, Format: "[{key}]='{value}'", Delimiter: " "}
	got := a.Render([]envfile.Var{{Name: "MY_VAR", Value: "1"}, {Name: "OTHER", Value: "2"}})
	assert.Equal(t, "[MyVar]='1' [Other]='2'", got)
}

func TestArrayVars_YAML(t *testing.T) {
	doc := `
all: ".*"
db:
  pattern: "^DB_"
  case: snake_case
  delimiter: ";"
sub:
  pattern: "^SUB_"
  case: camelcase
`
	var got ArrayVars
	require.NoError(t, yaml.Unmarshal([]byte(doc), &got))
	require.Len(t, got, 3)
	assert.Equal(t, NewArrayVar("all", ".*"), got[0])
	assert.Equal(t, ArrayVar{Name: "db", Pattern: "^DB_", Case: CaseSnake, Delimiter: ";"}, got[1])
	assert.Equal(t, CaseCamel, got[2].Case)

	out, err := yaml.Marshal(got)
	require.NoError(t, err)

	var again ArrayVars
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, got, again)

	// Simple array vars are written back as a plain pattern.
	var raw yaml.Node
	require.NoError(t, yaml.Unmarshal(out, &raw))
	mapping := raw.Content[0]
	assert.Equal(t, "all", mapping.Content[0].Value)
	assert.Equal(t, yaml.ScalarNode, mapping.Content[1].Kind)
	assert.Equal(t, yaml.MappingNode, mapping.Content[3].Kind)
	assert.Contains(t, string(out), "case: CamelCase")
}

func TestArrayVars_YAMLErrors(t *testing.T) {
	var got ArrayVars
	assert.Error(t, yaml.Unmarshal([]byte(`[a, b]`), &got))
	assert.Error(t, yaml.Unmarshal([]byte(`all: {case: snake_case}`), &got))
	assert.Error(t, yaml.Unmarshal([]byte(`all: {pattern: x, case: nope}`), &got))
}

func TestArrayVars_AddIsNoOpOnDuplicate(t *testing.T) {
	s := DefaultArrayVars()
	assert.False(t, s.Add(NewArrayVar("all", "^X")))
	assert.True(t, s.Add(NewArrayVar("x", "^X")))
	require.Len(t, s, 2)
	assert.Equal(t, ".*", s[0].Pattern)

	s.Remove("all")
	assert.Equal(t, ArrayVars{NewArrayVar("x", "^X")}, s)
}

func TestVars_YAMLDedupes(t *testing.T) {
	var v Vars
	require.NoError(t, yaml.Unmarshal([]byte("[A, B, A]"), &v))
	assert.Equal(t, Vars{"A", "B"}, v)

	assert.False(t, v.Add("B"))
	assert.True(t, v.Add("C"))
	assert.Equal(t, Vars{"A", "B", "C"}, v)
}
