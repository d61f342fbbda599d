package setup

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/envset/internal/config"
)

// Selection is the setup and env a command works on.
type Selection struct {
	Setup string
	Env   string
}

// String formats the selection as setup:env.
func (s Selection) String() string {
	if s.Env == "" {
		return s.Setup
	}
	return s.Setup + ":" + s.Env
}

// SetupName returns the selected setup or ErrNoSetupSelected.
func (s Selection) SetupName() (string, error) {
	if s.Setup == "" {
		return "", withHint(ErrNoSetupSelected,
			`set a current setup with "envset use <setup>" or pass "-s <setup>"`)
	}
	return s.Setup, nil
}

// EnvName returns the selected env or ErrNoEnvSelected.
func (s Selection) EnvName() (string, error) {
	if s.Env == "" {
		return "", withHint(ErrNoEnvSelected,
			`set a current env with "envset use <setup> <env>" or pass "-e <env>"`)
	}
	return s.Env, nil
}

// Selection returns the current selection of the project overridden by the
// non-empty arguments. A current env whose file is gone is dropped from the
// result and from the project; the caller persists it with SaveGlobal.
func (g *Graph) Selection(setupName, envName string) (Selection, error) {
	var sel Selection
	p, err := g.Project()
	if err != nil && !errors.Is(err, config.ErrProjectNotFound) {
		return sel, err
	}
	if p.Current != nil {
		sel = Selection{Setup: p.Current.Setup, Env: p.Current.Env}
	}

	fromCurrent := sel.Env != "" && envName == ""
	if setupName != "" {
		if setupName != sel.Setup {
			sel.Env = ""
			fromCurrent = false
		}
		sel.Setup = setupName
	}
	if envName != "" {
		sel.Env = envName
	}

	if fromCurrent && sel.Setup != "" {
		s, err := g.Setup(sel.Setup)
		if err != nil {
			return sel, nil
		}
		if _, err := s.EnvFile(sel.Env); errors.Is(err, ErrEnvNotFound) {
			g.logger.Debug("current env no longer exists", "setup", sel.Setup, "env", sel.Env)
			sel.Env = ""
			if err := g.updateProject(func(p *config.Project) error {
				p.UnsetCurrentEnv()
				return nil
			}); err != nil {
				return sel, err
			}
		}
	}
	return sel, nil
}

// Use makes sel the current selection after checking it resolves.
func (g *Graph) Use(sel Selection) error {
	s, err := g.Setup(sel.Setup)
	if err != nil {
		return err
	}
	if sel.Env != "" {
		if _, err := s.EnvFile(sel.Env); err != nil {
			return fmt.Errorf("failed to use env %s: %w", sel.Env, err)
		}
	}
	return g.updateProject(func(p *config.Project) error {
		p.SetCurrent(sel.Setup, sel.Env)
		return nil
	})
}

// Unuse clears the current selection.
func (g *Graph) Unuse() error {
	return g.updateProject(func(p *config.Project) error {
		p.UnsetCurrent()
		return nil
	})
}

// UnuseEnv clears the current env when it is name, keeping the current setup.
func (g *Graph) UnuseEnv(setupName, envName string) error {
	return g.updateProject(func(p *config.Project) error {
		if p.Current != nil && p.Current.Setup == setupName && p.Current.Env == envName {
			p.UnsetCurrentEnv()
		}
		return nil
	})
}
