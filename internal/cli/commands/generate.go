package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/runfile"
)

// GenerateOptions holds options for the generate command.
type GenerateOptions struct {
	Kind   string
	Force  bool
	Stdout bool
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [setup]",
		Short: "Regenerate the run file of a setup",
		Long: `Write the run file of a setup from its array_vars and vars, declaring each
projected variable as a shell local. Defaults to the current setup.`,
		Example: `  # Regenerate the current setup's run file
  envset generate --force

  # Regenerate another setup's run file for sh
  envset generate worker --kind sh --force

  # Print the run file instead of writing it
  envset generate --stdout`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSetups,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runGenerate(cmd, name, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", string(runfile.KindBash), "Run file kind (bash|sh)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite an existing run file")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Print the run file instead of writing it")
	cmd.MarkFlagsMutuallyExclusive("force", "stdout")
	_ = cmd.RegisterFlagCompletionFunc("kind", completeKinds)

	return cmd
}

func runGenerate(cmd *cobra.Command, name string, opts *GenerateOptions) error {
	kind, err := runfile.ParseKind(opts.Kind)
	if err != nil {
		return err
	}
	p, err := loadProject(cmd)
	if err != nil {
		return err
	}
	s, _, err := p.selectedSetup(name)
	if err != nil {
		return err
	}
	local, err := s.Local()
	if err != nil {
		return err
	}
	file, err := s.RunFile()
	if err != nil {
		return err
	}

	content := runfile.Generate(kind, local.ArrayVars, local.Vars)
	if opts.Stdout {
		p.r.Code(string(kind), content)
		return nil
	}
	if err := runfile.Write(file, content, opts.Force); err != nil {
		return withHint(err, "re-run with --force to overwrite it")
	}
	p.r.Success(fmt.Sprintf("run file of `%s` generated: %s", s.Name(), p.rel(file)))
	return nil
}
