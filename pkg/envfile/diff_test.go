package envfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedPrompter struct {
	confirms []bool
	answers  []string
	err      error
	asked    []string
}

func (p *scriptedPrompter) Confirm(question string) (bool, error) {
	p.asked = append(p.asked, question)
	if p.err != nil {
		return false, p.err
	}
	ok := p.confirms[0]
	p.confirms = p.confirms[1:]
	return ok, nil
}

func (p *scriptedPrompter) Ask(question string) (string, error) {
	p.asked = append(p.asked, question)
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func envOf(file string, entries ...Entry) *Env {
	return FromEntries(file, entries)
}

func TestMerge_CopyAddsMissingVar(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("VAR1", "1"), VarEntry("VAR2", "2"))
	target := envOf("/p/.target", VarEntry("VAR1", "1"))

	result, err := Merge(reference, target, Policy{Update: UpdateCopy})
	require.NoError(t, err)
	assert.Equal(t, "VAR1=1\nVAR2=2\n", target.String())
	assert.Equal(t, []Var{{Name: "VAR2", Value: "2"}}, result.Added)
	assert.True(t, result.Changed())
}

func TestMerge_EmptyPolicy(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("VAR1", "1"), VarEntry("VAR2", "2"))
	target := envOf("/p/.target")

	_, err := Merge(reference, target, Policy{Update: UpdateEmpty})
	require.NoError(t, err)
	assert.Equal(t, "VAR1=\nVAR2=\n", target.String())
}

func TestMerge_KeepsTargetValues(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("name1", "value1"), VarEntry("name2", "value2"))
	target := envOf("/p/.target", VarEntry("name1", "value1.1"))

	_, err := Merge(reference, target, Policy{Update: UpdateCopy})
	require.NoError(t, err)
	assert.Equal(t, "name1=value1.1\nname2=value2\n", target.String())
}

func TestMerge_CarriesReferenceShape(t *testing.T) {
	reference := envOf("/p/.ref",
		CommentEntry(" database"),
		VarEntry("DB", "x"),
		EmptyEntry(),
		CommentEntry(" api"),
		VarEntry("API", "y"),
	)
	target := envOf("/p/.target", VarEntry("API", "prod"), VarEntry("DB", "prod-db"))

	_, err := Merge(reference, target, Policy{Update: UpdateEmpty})
	require.NoError(t, err)
	assert.Equal(t, "# database\nDB=prod-db\n\n# api\nAPI=prod\n", target.String())
}

func TestMerge_NeverDeleteKeepsVarAndReports(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("VAR1", "1"))
	target := envOf("/p/.target", VarEntry("VAR1", "1"), VarEntry("VAR3", "3"))

	result, err := Merge(reference, target, Policy{Delete: DeleteNever})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPolicyRejected)

	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "/p/.target", rejected.File)
	assert.Equal(t, []Var{{Name: "VAR3", Value: "3"}}, rejected.Vars)
	assert.Contains(t, err.Error(), "VAR3")
	assert.NotEmpty(t, rejected.Hint())

	assert.Equal(t, "VAR1=1\nVAR3=3\n", target.String())
	assert.Equal(t, []Var{{Name: "VAR3", Value: "3"}}, result.Kept)
}

func TestMerge_VetoKeepsRelativePosition(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("A", "1"), VarEntry("C", "3"))
	target := envOf("/p/.target", VarEntry("A", "1"), VarEntry("B", "2"), VarEntry("C", "3"))

	_, err := Merge(reference, target, Policy{Delete: DeleteNever})
	require.Error(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, target.VarNames())
}

func TestMerge_ForceDelete(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("VAR1", "1"))
	target := envOf("/p/.target", VarEntry("VAR1", "1"), VarEntry("VAR3", "3"))

	result, err := Merge(reference, target, Policy{Delete: DeleteForce})
	require.NoError(t, err)
	assert.Equal(t, "VAR1=1\n", target.String())
	assert.Equal(t, []Var{{Name: "VAR3", Value: "3"}}, result.Removed)
}

func TestMerge_InteractiveDelete(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("A", "1"))
	target := envOf("/p/.dev", VarEntry("A", "1"), VarEntry("B", "2"), VarEntry("C", "3"))
	prompter := &scriptedPrompter{confirms: []bool{true, false}}

	_, err := Merge(reference, target, Policy{Delete: DeleteInteractive, Prompter: prompter})
	require.ErrorIs(t, err, ErrPolicyRejected)
	assert.Equal(t, []string{"A", "C"}, target.VarNames())
	require.Len(t, prompter.asked, 2)
	assert.Equal(t, "Remove `dev`:`B`=`2`", prompter.asked[0])
}

func TestMerge_InteractiveUpdate(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("A", "1"), VarEntry("B", "2"), VarEntry("C", "3"))
	target := envOf("/p/.dev")
	prompter := &scriptedPrompter{confirms: []bool{true, false, true}, answers: []string{"one\n", "three"}}

	_, err := Merge(reference, target, Policy{Update: UpdateInteractive, Prompter: prompter})
	require.NoError(t, err)
	assert.Equal(t, "A=one\nB=2\nC=three\n", target.String())
}

func TestMerge_InteractiveUpdateAsksAgainForSeparator(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("DB_URL", "postgres"))
	target := envOf("/p/.dev")
	prompter := &scriptedPrompter{confirms: []bool{true}, answers: []string{"a=b", "pg"}}

	_, err := Merge(reference, target, Policy{Update: UpdateInteractive, Prompter: prompter})
	require.NoError(t, err)
	assert.Equal(t, "DB_URL=pg\n", target.String())
	require.Len(t, prompter.asked, 3)
	assert.Contains(t, prompter.asked[2], "must not contain '='")

	entries, err := ParseBytes([]byte(target.String()), target.File())
	require.NoError(t, err)
	assert.Equal(t, []string{"DB_URL"}, FromEntries(target.File(), entries).VarNames())
}

func TestMerge_InteractiveUpdateGivesUp(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("A", "1"))
	target := envOf("/p/.dev")
	prompter := &scriptedPrompter{confirms: []bool{true}, answers: []string{"x=1", "y=2", "z=3"}}

	_, err := Merge(reference, target, Policy{Update: UpdateInteractive, Prompter: prompter})
	require.ErrorIs(t, err, ErrPolicyRejected)
	assert.Empty(t, target.String())
}

func TestMerge_PolicyErrorLeavesTargetUntouched(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("A", "1"), VarEntry("NEW", "x"))
	target := envOf("/p/.dev", VarEntry("A", "1"), VarEntry("OLD", "2"))
	boom := errors.New("boom")

	_, err := Merge(reference, target, Policy{Delete: DeleteInteractive, Prompter: &scriptedPrompter{err: boom}})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "A=1\nOLD=2\n", target.String())
}

func TestMerge_InteractiveRequiresPrompter(t *testing.T) {
	_, err := Merge(envOf("/p/.a"), envOf("/p/.b"), Policy{Update: UpdateInteractive})
	assert.Error(t, err)
}

func TestMerge_NoDataLossWhenDeletesVetoed(t *testing.T) {
	cases := []struct {
		reference []Entry
		target    []Entry
	}{
		{
			reference: nil,
			target:    []Entry{VarEntry("A", "1"), VarEntry("B", "2")},
		},
		{
			reference: []Entry{VarEntry("X", "1")},
			target:    []Entry{CommentEntry("c"), VarEntry("A", "1"), EmptyEntry(), VarEntry("B", "2"), VarEntry("C", "3")},
		},
		{
			reference: []Entry{VarEntry("A", "9"), EmptyEntry(), VarEntry("Z", "0")},
			target:    []Entry{VarEntry("Z", "1"), VarEntry("Y", "2"), VarEntry("A", "3")},
		},
	}

	for _, c := range cases {
		reference := envOf("/p/.ref", c.reference...)
		target := envOf("/p/.target", c.target...)
		before := target.Entries()

		_, _ = Merge(reference, target, Policy{Delete: DeleteNever, Update: UpdateCopy})

		for _, entry := range before {
			if !entry.IsVar() {
				continue
			}
			got, err := target.Get(entry.Var.Name)
			require.NoError(t, err)
			assert.Equal(t, entry.Var, got)
		}
		for v := range reference.Vars() {
			assert.True(t, target.Has(v.Name), "missing %s", v.Name)
		}
	}
}

func TestMergeAll_ScopesFailuresPerTarget(t *testing.T) {
	reference := envOf("/p/.ref", VarEntry("A", "1"))
	clean := envOf("/p/.clean")
	dirty := envOf("/p/.dirty", VarEntry("EXTRA", "x"))

	outcomes := MergeAll(reference, []*Env{reference, clean, dirty}, Policy{Update: UpdateCopy})
	require.Len(t, outcomes, 2)

	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, "A=1\n", clean.String())

	assert.ErrorIs(t, outcomes[1].Err, ErrPolicyRejected)
	assert.Equal(t, []string{"EXTRA", "A"}, dirty.VarNames())

	err := Failed(outcomes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/p/.dirty")
}
