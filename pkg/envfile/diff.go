package envfile

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
)

// Result describes what Merge changed in one target.
type Result struct {
	File string
	// Added holds variables inserted from the reference, with their chosen value.
	Added []Var
	// Removed holds variables the delete policy dropped.
	Removed []Var
	// Kept holds variables the delete policy vetoed.
	Kept []Var
}

// Changed reports whether the target's variable set changed.
func (r *Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Merge propagates the variable set of reference onto target.
//
// The merged entry list follows the reference's shape. Variables the target
// already has keep the target's entry. Variables only in the reference get a
// value from the update policy. Variables only in the target are removed when
// the delete policy agrees and are otherwise reinserted near their original
// position; in that case the merge is applied and a *RejectedError is returned.
//
// A policy error leaves the target untouched.
func Merge(reference, target *Env, policy Policy) (*Result, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	name := targetLabel(target)
	result := &Result{File: target.file}

	base := reference.Entries()
	for i, entry := range target.entries {
		if !entry.IsVar() || reference.Has(entry.Var.Name) {
			continue
		}
		drop, err := policy.remove(name, entry.Var)
		if err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", target.file, err)
		}
		if drop {
			result.Removed = append(result.Removed, entry.Var)
			continue
		}
		base = slices.Insert(base, min(i, len(base)), entry)
		result.Kept = append(result.Kept, entry.Var)
	}

	merged := make([]Entry, 0, len(base))
	for _, entry := range base {
		if idx := slices.IndexFunc(target.entries, entry.SameAs); idx >= 0 {
			merged = append(merged, target.entries[idx])
			continue
		}
		if !entry.IsVar() {
			merged = append(merged, entry)
			continue
		}
		v, err := policy.update(name, entry.Var)
		if err != nil {
			return nil, fmt.Errorf("failed to merge %s: %w", target.file, err)
		}
		merged = append(merged, VarEntry(v.Name, v.Value))
		result.Added = append(result.Added, v)
	}

	target.entries = merged
	if len(result.Kept) > 0 {
		return result, &RejectedError{File: target.file, Vars: result.Kept}
	}
	return result, nil
}

// Outcome is the per-target result of MergeAll.
type Outcome struct {
	Env    *Env
	Result *Result
	Err    error
}

// MergeAll merges reference into every target except the reference itself.
// A failure on one target does not stop the others.
func MergeAll(reference *Env, targets []*Env, policy Policy) []Outcome {
	var outcomes []Outcome
	for _, target := range targets {
		if target.file == reference.file {
			continue
		}
		result, err := Merge(reference, target, policy)
		outcomes = append(outcomes, Outcome{Env: target, Result: result, Err: err})
	}
	return outcomes
}

// Failed returns the errors of outcomes that did not merge cleanly.
func Failed(outcomes []Outcome) error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

func targetLabel(env *Env) string {
	if name, err := env.Name(); err == nil {
		return name
	}
	return filepath.Base(env.file)
}
