package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRenameCommand creates the rename command.
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <setup> <new-name>",
		Short: "Rename a setup",
		Long: `Rename a setup in envset.yaml and in the global store. The current selection
follows the rename. Nothing is changed when either store refuses the new name.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeSetups,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			s, err := p.graph.Setup(args[0])
			if err != nil {
				return err
			}
			if err := s.Rename(args[1]); err != nil {
				return err
			}
			if err := p.graph.Save(); err != nil {
				return err
			}
			p.r.Success(fmt.Sprintf("setup `%s` renamed to `%s`", args[0], args[1]))
			return nil
		},
	}
}
