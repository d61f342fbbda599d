package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/setup"
)

// NewUseCommand creates the use command.
func NewUseCommand() *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "use [setup] [env]",
		Short: "Select the current setup and env",
		Long: `Store the setup and env that commands work on by default.

With one argument, a setup name selects that setup; any other name selects an
env of the current setup.`,
		Example: `  # Select setup api with env dev
  envset use api dev

  # Switch env within the current setup
  envset use prod

  # Clear the selection
  envset use --unset`,
		Args:              cobra.MaximumNArgs(2),
		ValidArgsFunction: completeSetups,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUse(cmd, args, unset)
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Clear the current setup and env")
	return cmd
}

func runUse(cmd *cobra.Command, args []string, unset bool) error {
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}

	if unset {
		if err := p.graph.Unuse(); err != nil {
			return err
		}
		if err := p.graph.SaveGlobal(); err != nil {
			return err
		}
		p.r.Success("current setup unset")
		return nil
	}

	sel, err := p.selection()
	if err != nil {
		return err
	}
	sel = resolveUseArgs(sel, args, func(name string) bool {
		_, ok := p.graph.Local().Setup(name)
		return ok
	})
	if _, err := sel.SetupName(); err != nil {
		return err
	}

	if err := p.graph.Use(sel); err != nil {
		return err
	}
	if err := p.graph.SaveGlobal(); err != nil {
		return err
	}
	p.r.Success(fmt.Sprintf("your current setup is `%s`", sel))
	return nil
}

// resolveUseArgs applies use's positional arguments to the current selection.
func resolveUseArgs(sel setup.Selection, args []string, isSetup func(string) bool) setup.Selection {
	switch len(args) {
	case 2:
		return setup.Selection{Setup: args[0], Env: args[1]}
	case 1:
		if isSetup(args[0]) || sel.Setup == "" {
			if args[0] != sel.Setup {
				return setup.Selection{Setup: args[0]}
			}
			return sel
		}
		sel.Env = args[0]
	}
	return sel
}
