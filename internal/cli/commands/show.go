package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/envset/internal/setup"
)

// DefaultShowFormat is the --format used when the flag has no value.
const DefaultShowFormat = "[{setup}:{env}]"

// ShowOptions holds options for the show command.
type ShowOptions struct {
	Setup  bool
	Env    bool
	Format string
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current setup and env",
		Long: `Show the current setup and env.

--setup, --env and --format print bare values without a trailing newline and
never fail, so they can be embedded in a shell prompt.`,
		Example: `  envset show
  PS1='$(envset show --format "[{setup}:{env}]") $ '`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Setup, "setup", false, "Print the current setup name")
	cmd.Flags().BoolVar(&opts.Env, "env", false, "Print the current env name")
	cmd.Flags().StringVar(&opts.Format, "format", "", "Print the selection with {setup} and {env} placeholders")
	cmd.Flags().Lookup("format").NoOptDefVal = DefaultShowFormat
	cmd.MarkFlagsMutuallyExclusive("setup", "env", "format")

	return cmd
}

func runShow(cmd *cobra.Command, opts *ShowOptions) error {
	bare := opts.Setup || opts.Env || opts.Format != ""

	p, err := loadProject(cmd)
	if err != nil {
		if bare {
			return nil
		}
		return err
	}
	sel, err := p.selection()
	if err != nil {
		if bare {
			return nil
		}
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.Setup:
		_, _ = fmt.Fprint(out, sel.Setup)
	case opts.Env:
		_, _ = fmt.Fprint(out, sel.Env)
	case opts.Format != "":
		_, _ = fmt.Fprint(out, formatSelection(opts.Format, sel))
	default:
		msg, ok := describeSelection(sel)
		if ok {
			p.r.Success(msg)
		} else {
			p.r.Warning(msg)
		}
	}
	return nil
}

func formatSelection(format string, sel setup.Selection) string {
	return strings.NewReplacer("{setup}", sel.Setup, "{env}", sel.Env).Replace(format)
}

// describeSelection returns the message for the selection and whether it is complete.
func describeSelection(sel setup.Selection) (string, bool) {
	switch {
	case sel.Setup != "" && sel.Env != "":
		return fmt.Sprintf("your current setup is %q:%q", sel.Setup, sel.Env), true
	case sel.Setup != "":
		return fmt.Sprintf("no env is configured for %q. You can use \"envset use <setup> <env>\"", sel.Setup), false
	case sel.Env != "":
		return fmt.Sprintf("no setup is configured with %[1]q env. You can use \"envset use <setup> %[1]s\"", sel.Env), false
	default:
		return "no setup is configured. You can use \"envset use <setup> <env>\"", false
	}
}
