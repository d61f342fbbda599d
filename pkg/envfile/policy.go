package envfile

import (
	"fmt"
	"strings"
)

// UpdatePolicy decides the initial value of a variable added to a target.
type UpdatePolicy int

// Update policies.
const (
	// UpdateEmpty adds the variable with an empty value.
	UpdateEmpty UpdatePolicy = iota
	// UpdateCopy copies the reference value.
	UpdateCopy
	// UpdateInteractive asks the Prompter whether to change the reference value.
	UpdateInteractive
)

func (p UpdatePolicy) String() string {
	switch p {
	case UpdateEmpty:
		return "empty"
	case UpdateCopy:
		return "copy"
	case UpdateInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("UpdatePolicy(%d)", int(p))
	}
}

// DeletePolicy decides whether a variable absent from the reference is removed
// from a target.
type DeletePolicy int

// Delete policies.
const (
	// DeleteNever vetoes every removal.
	DeleteNever DeletePolicy = iota
	// DeleteForce removes the variable.
	DeleteForce
	// DeleteInteractive asks the Prompter.
	DeleteInteractive
)

func (p DeletePolicy) String() string {
	switch p {
	case DeleteNever:
		return "never"
	case DeleteForce:
		return "force"
	case DeleteInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("DeletePolicy(%d)", int(p))
	}
}

// maxAnswers bounds how often an interactive update asks for a value.
const maxAnswers = 3

// Prompter asks the user questions for the interactive policies.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(question string) (bool, error)
	// Ask reads a free-form answer.
	Ask(question string) (string, error)
}

// Policy groups the strategies used by Merge.
type Policy struct {
	Update UpdatePolicy
	Delete DeletePolicy
	// Prompter is required when either strategy is interactive.
	Prompter Prompter
}

func (p Policy) validate() error {
	interactive := p.Update == UpdateInteractive || p.Delete == DeleteInteractive
	if interactive && p.Prompter == nil {
		return fmt.Errorf("interactive policy requires a prompter")
	}
	return nil
}

func (p Policy) update(env string, v Var) (Var, error) {
	switch p.Update {
	case UpdateEmpty:
		v.Value = ""
		return v, nil
	case UpdateCopy:
		return v, nil
	case UpdateInteractive:
		change, err := p.Prompter.Confirm(fmt.Sprintf("Set `%s`:`%s`=`%s`. Change value ?", env, v.Name, v.Value))
		if err != nil {
			return v, err
		}
		if !change {
			return v, nil
		}
		question := fmt.Sprintf("New value `%s`=", v.Name)
		for range maxAnswers {
			value, err := p.Prompter.Ask(question)
			if err != nil {
				return v, err
			}
			value = strings.TrimSpace(value)
			if checkValue(v.Name, value) == nil {
				v.Value = value
				return v, nil
			}
			question = fmt.Sprintf("Value must not contain '='. New value `%s`=", v.Name)
		}
		return v, fmt.Errorf("%w: no valid value for %s after %d answers", ErrPolicyRejected, v.Name, maxAnswers)
	default:
		return v, fmt.Errorf("unknown update policy %v", p.Update)
	}
}

func (p Policy) remove(env string, v Var) (bool, error) {
	switch p.Delete {
	case DeleteForce:
		return true, nil
	case DeleteNever:
		return false, nil
	case DeleteInteractive:
		return p.Prompter.Confirm(fmt.Sprintf("Remove `%s`:`%s`=`%s`", env, v.Name, v.Value))
	default:
		return false, fmt.Errorf("unknown delete policy %v", p.Delete)
	}
}
