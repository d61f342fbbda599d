package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRmCommand creates the rm command.
func NewRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <setup>",
		Aliases: []string{"remove"},
		Short:   "Remove a setup",
		Long: `Remove a setup from envset.yaml and the global store. Its run file and env
files are left on disk.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeSetups,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			if err := p.graph.Remove(args[0]); err != nil {
				return err
			}
			if err := p.graph.Save(); err != nil {
				return err
			}
			p.r.Success(fmt.Sprintf("setup `%s` removed", args[0]))
			return nil
		},
	}
}
